package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// level picks the position at which an over-budget piece is cut in two.
// ok is false when the level has no usable position in text.
type level func(text string) (cut int, ok bool)

var (
	headingLine  = regexp.MustCompile(`^ {0,3}#{1,6}(\s|$)`)
	fenceLine    = regexp.MustCompile("^ {0,3}(```|~~~)")
	listItemLine = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s`)
)

// afterAny cuts right after the occurrence of any byte in chars that lies
// closest to the middle of the text.
func afterAny(chars string) level {
	return func(text string) (int, bool) {
		var cuts []int
		for i := 0; i < len(text); i++ {
			if strings.IndexByte(chars, text[i]) >= 0 {
				cuts = append(cuts, i+1)
			}
		}
		return nearestMiddle(cuts, len(text))
	}
}

// half cuts at the rune boundary closest to the middle.
func half(text string) (int, bool) {
	mid := len(text) / 2
	for mid > 0 && !utf8.RuneStart(text[mid]) {
		mid--
	}
	if mid == 0 {
		_, size := utf8.DecodeRuneInString(text)
		mid = size
	}
	return mid, mid > 0 && mid < len(text)
}

// markdownBlocks cuts at the start of a heading, at a code fence boundary or
// after a blank line. Headings and blank lines inside fences are ignored.
func markdownBlocks(text string) (int, bool) {
	var cuts []int
	inFence := false
	prevBlank := false

	scanLines(text, func(start int, line string) {
		switch {
		case fenceLine.MatchString(line) && !inFence:
			inFence = true
			cuts = append(cuts, start)
		case fenceLine.MatchString(line):
			inFence = false
			cuts = append(cuts, start+len(line)+1)
		case inFence:
		case headingLine.MatchString(line):
			cuts = append(cuts, start)
		case prevBlank && strings.TrimSpace(line) != "":
			cuts = append(cuts, start)
		}
		prevBlank = !inFence && strings.TrimSpace(line) == ""
	})

	return nearestMiddle(cuts, len(text))
}

// markdownListItems cuts at the start of a list item outside code fences.
func markdownListItems(text string) (int, bool) {
	var cuts []int
	inFence := false

	scanLines(text, func(start int, line string) {
		if fenceLine.MatchString(line) {
			inFence = !inFence
			return
		}
		if !inFence && listItemLine.MatchString(line) {
			cuts = append(cuts, start)
		}
	})

	return nearestMiddle(cuts, len(text))
}

func scanLines(text string, fn func(start int, line string)) {
	start := 0
	for start <= len(text) {
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			fn(start, text[start:])
			return
		}
		fn(start, text[start:start+end])
		start += end + 1
	}
}

// nearestMiddle returns the cut closest to n/2, ignoring cuts that would
// leave either side empty.
func nearestMiddle(cuts []int, n int) (int, bool) {
	best, bestDist := 0, n+1
	for _, c := range cuts {
		if c <= 0 || c >= n {
			continue
		}
		d := c - n/2
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist <= n
}

// lineSplitter recursively halves pieces above maxTokens, trying each level
// in order and stopping at the first level after which every piece fits.
type lineSplitter struct {
	maxTokens int
	trim      bool
	estimator Estimator
	levels    []level
}

func (s lineSplitter) split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if s.trim {
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return nil
	}

	pieces := []string{text}
	for _, lvl := range s.levels {
		var next []string
		over := false
		for _, p := range pieces {
			next, over = s.splitPiece(p, lvl, next, over)
		}
		pieces = next
		if !over {
			break
		}
	}

	return pieces
}

func (s lineSplitter) splitPiece(piece string, lvl level, out []string, over bool) ([]string, bool) {
	if s.estimator.Count(piece) <= s.maxTokens {
		return append(out, piece), over
	}

	cut, ok := lvl(piece)
	if !ok {
		return append(out, piece), true
	}

	for _, part := range []string{piece[:cut], piece[cut:]} {
		if s.trim {
			part = strings.TrimSpace(part)
		}
		if part == "" {
			continue
		}
		out, over = s.splitPiece(part, lvl, out, over)
	}

	return out, over
}
