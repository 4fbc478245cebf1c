// Package chunker splits file contents into token-bounded chunks for storage
// as memory records.
package chunker

import (
	"unicode/utf8"
)

const (
	// DefaultMaxFileSize is the character count at or under which a file is
	// kept as a single chunk.
	DefaultMaxFileSize = 2048

	// DefaultMaxTokens bounds each chunk of a split file.
	DefaultMaxTokens = 1024
)

// Chunk is one piece of a file.
type Chunk struct {
	Index  int
	Text   string
	Tokens int
}

// Config holds configuration for the Chunker.
type Config struct {
	MaxFileSize int
	MaxTokens   int

	// Estimator defaults to Heuristic.
	Estimator Estimator
}

// Chunker decides whether a file fits in one record and splits it otherwise.
type Chunker struct {
	maxFileSize int
	maxTokens   int
	estimator   Estimator
}

// New creates a Chunker, applying defaults to zero config values.
func New(cfg Config) *Chunker {
	c := &Chunker{
		maxFileSize: cfg.MaxFileSize,
		maxTokens:   cfg.MaxTokens,
		estimator:   cfg.Estimator,
	}
	if c.maxFileSize <= 0 {
		c.maxFileSize = DefaultMaxFileSize
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if c.estimator == nil {
		c.estimator = Heuristic{}
	}
	return c
}

// ShouldSplit reports whether text is longer than the single-chunk limit.
func (c *Chunker) ShouldSplit(text string) bool {
	return utf8.RuneCountInString(text) > c.maxFileSize
}

// Chunk splits text with the strategy selected by the file extension ext.
// Text within the single-chunk limit is returned whole as chunk 0. Empty
// text yields no chunks.
func (c *Chunker) Chunk(text, ext string) []Chunk {
	if text == "" {
		return nil
	}

	if !c.ShouldSplit(text) {
		return []Chunk{{Index: 0, Text: text, Tokens: c.estimator.Count(text)}}
	}

	strategy := StrategyFor(ext)
	lines := strategy.SplitLines(text, c.maxTokens, c.estimator)
	paragraphs := strategy.SplitParagraphs(lines, c.maxTokens, c.estimator)

	chunks := make([]Chunk, 0, len(paragraphs))
	for i, p := range paragraphs {
		chunks = append(chunks, Chunk{Index: i, Text: p, Tokens: c.estimator.Count(p)})
	}

	return chunks
}

// Estimator returns the token estimator in use.
func (c *Chunker) Estimator() Estimator {
	return c.estimator
}
