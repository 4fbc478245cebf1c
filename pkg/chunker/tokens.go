package chunker

import (
	"fmt"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

// HeuristicTokenizer names the built-in Estimator.
const HeuristicTokenizer = "heuristic"

// Estimator estimates the number of model tokens in a piece of text.
type Estimator interface {
	Count(text string) int
}

// NewEstimator returns the heuristic estimator for "" or "heuristic", and a
// tiktoken BPE estimator for any encoding name tiktoken knows, such as
// "cl100k_base".
func NewEstimator(name string) (Estimator, error) {
	if name == "" || name == HeuristicTokenizer {
		return Heuristic{}, nil
	}

	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer %q: %w", name, err)
	}

	return &BPE{enc: enc}, nil
}

// Heuristic charges one token per started group of four word characters
// (letters, digits, underscore) and one per punctuation or symbol rune.
// Whitespace is free, so joining texts with whitespace adds their counts and
// appending text never lowers a count.
type Heuristic struct{}

func (Heuristic) Count(text string) int {
	tokens := 0
	run := 0
	for _, r := range text {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			run++
			continue
		case unicode.IsSpace(r):
		default:
			tokens++
		}
		tokens += (run + 3) / 4
		run = 0
	}
	return tokens + (run+3)/4
}

// BPE counts tokens with a tiktoken encoding.
type BPE struct {
	enc *tiktoken.Tiktoken
}

func (b *BPE) Count(text string) int {
	return len(b.enc.Encode(text, nil, nil))
}
