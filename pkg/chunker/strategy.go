package chunker

import (
	"strings"
)

// Strategy selects the separator rules used to split a file.
type Strategy int

const (
	// Plain splits on line breaks, then sentence and clause punctuation.
	Plain Strategy = iota

	// Markup first splits on markdown structure: headings, code fences,
	// blank lines and list items.
	Markup
)

// StrategyFor returns Markup for markdown extensions and Plain otherwise.
func StrategyFor(ext string) Strategy {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return Markup
	default:
		return Plain
	}
}

func (s Strategy) String() string {
	if s == Markup {
		return "markup"
	}
	return "plain"
}

var (
	plainLevels = []level{
		afterAny("\n\r"),
		afterAny("."),
		afterAny("?!"),
		afterAny(";"),
		afterAny(":"),
		afterAny(","),
		afterAny(")]}"),
		afterAny(" "),
		afterAny("-"),
		half,
	}

	markupLevels = []level{
		markdownBlocks,
		markdownListItems,
		afterAny("\n\r"),
		afterAny("."),
		afterAny("?!"),
		afterAny(";"),
		afterAny(":"),
		afterAny(","),
		afterAny(")]}"),
		afterAny(" "),
		afterAny("-"),
		half,
	}
)

func (s Strategy) levels() []level {
	if s == Markup {
		return markupLevels
	}
	return plainLevels
}

// SplitLines splits text into trimmed line units of at most maxTokens each.
func (s Strategy) SplitLines(text string, maxTokens int, est Estimator) []string {
	return s.lines(text, maxTokens, true, est)
}

func (s Strategy) lines(text string, maxTokens int, trim bool, est Estimator) []string {
	return lineSplitter{
		maxTokens: maxTokens,
		trim:      trim,
		estimator: est,
		levels:    s.levels(),
	}.split(text)
}

// SplitParagraphs packs line units into paragraphs of at most maxTokens each.
func (s Strategy) SplitParagraphs(lines []string, maxTokens int, est Estimator) []string {
	if len(lines) == 0 {
		return nil
	}

	var units []string
	for _, line := range lines {
		units = append(units, s.lines(line, maxTokens, false, est)...)
	}

	paragraphs := s.buildParagraphs(units, maxTokens, est)
	return mergeShortTail(paragraphs, maxTokens, est)
}

func (s Strategy) buildParagraphs(units []string, maxTokens int, est Estimator) []string {
	var (
		paragraphs []string
		b          strings.Builder
	)

	flush := func() {
		if p := strings.TrimSpace(b.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
		b.Reset()
	}

	for _, unit := range units {
		if b.Len() > 0 {
			current := est.Count(b.String())
			switch {
			case current+est.Count(unit)+1 >= maxTokens:
				flush()
			case s == Markup && current >= maxTokens/2 && startsWithHeading(unit):
				flush()
			}
		}
		b.WriteString(unit)
		b.WriteByte('\n')
	}
	flush()

	return paragraphs
}

// mergeShortTail folds a last paragraph under a quarter of the budget into
// the one before it, as long as the result still fits.
func mergeShortTail(paragraphs []string, maxTokens int, est Estimator) []string {
	n := len(paragraphs)
	if n < 2 {
		return paragraphs
	}

	last, prev := paragraphs[n-1], paragraphs[n-2]
	lastTokens := est.Count(last)
	if lastTokens >= maxTokens/4 || est.Count(prev)+lastTokens > maxTokens {
		return paragraphs
	}

	merged := joinWords(prev) + " " + joinWords(last)
	return append(paragraphs[:n-2], merged)
}

// joinWords collapses runs of spaces. Other whitespace is kept.
func joinWords(s string) string {
	var words []string
	for _, w := range strings.Split(s, " ") {
		if w != "" {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

func startsWithHeading(unit string) bool {
	unit = strings.TrimLeft(unit, "\n")
	if i := strings.IndexByte(unit, '\n'); i >= 0 {
		unit = unit[:i]
	}
	return headingLine.MatchString(unit)
}
