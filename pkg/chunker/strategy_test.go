package chunker_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/repomem/pkg/chunker"
)

var _ = Describe("Strategy", func() {
	est := chunker.Heuristic{}

	DescribeTable("StrategyFor",
		func(ext string, want chunker.Strategy) {
			Expect(chunker.StrategyFor(ext)).To(Equal(want))
		},
		Entry("markdown", ".md", chunker.Markup),
		Entry("long markdown extension", ".markdown", chunker.Markup),
		Entry("upper case", ".MD", chunker.Markup),
		Entry("python", ".py", chunker.Plain),
		Entry("no extension", "", chunker.Plain),
	)

	Describe("SplitLines", func() {
		It("keeps text within budget as one trimmed line", func() {
			Expect(chunker.Plain.SplitLines("  short text \r\n", 100, est)).To(Equal([]string{"short text"}))
		})

		It("returns nothing for blank text", func() {
			Expect(chunker.Plain.SplitLines(" \n ", 100, est)).To(BeEmpty())
		})

		It("splits plain text at sentence ends before spaces", func() {
			lines := chunker.Plain.SplitLines("Alpha beta gamma. Delta epsilon zeta.", 8, est)
			Expect(lines).To(Equal([]string{"Alpha beta gamma.", "Delta epsilon zeta."}))
		})

		It("prefers line breaks over punctuation", func() {
			lines := chunker.Plain.SplitLines("one, two, three\nfour, five, six", 8, est)
			Expect(lines).To(Equal([]string{"one, two, three", "four, five, six"}))
		})

		It("halves text without any separator", func() {
			lines := chunker.Plain.SplitLines(strings.Repeat("a", 40), 4, est)
			Expect(lines).To(Equal([]string{
				strings.Repeat("a", 10), strings.Repeat("a", 10),
				strings.Repeat("a", 10), strings.Repeat("a", 10),
			}))
		})

		It("splits markdown at headings", func() {
			text := "# Alpha\none two three four five six\n\n# Beta\nseven eight nine ten eleven twelve"
			lines := chunker.Markup.SplitLines(text, 20, est)
			Expect(lines).To(Equal([]string{
				"# Alpha\none two three four five six",
				"# Beta\nseven eight nine ten eleven twelve",
			}))
		})
	})

	Describe("SplitParagraphs", func() {
		It("returns nothing for no lines", func() {
			Expect(chunker.Plain.SplitParagraphs(nil, 20, est)).To(BeEmpty())
		})

		It("packs lines until the budget is reached", func() {
			lines := []string{"# Alpha\none two three four five six", "# Beta\nseven eight nine ten eleven twelve"}
			paragraphs := chunker.Markup.SplitParagraphs(lines, 20, est)
			Expect(paragraphs).To(Equal(lines))

			paragraphs = chunker.Markup.SplitParagraphs(lines, 40, est)
			Expect(paragraphs).To(Equal([]string{strings.Join(lines, "\n")}))
		})

		It("folds a short last paragraph into the previous one", func() {
			lines := []string{strings.TrimSpace(strings.Repeat("word ", 16)), "tail tail tail tail"}
			paragraphs := chunker.Plain.SplitParagraphs(lines, 20, est)
			Expect(paragraphs).To(Equal([]string{lines[0] + " " + lines[1]}))
			Expect(est.Count(paragraphs[0])).To(Equal(20))
		})

		It("starts a new markdown paragraph at a heading once half full", func() {
			lines := []string{"one two three four five six seven eight nine ten", "# Next\nbody text here"}

			Expect(chunker.Markup.SplitParagraphs(lines, 20, est)).To(HaveLen(2))
			Expect(chunker.Plain.SplitParagraphs(lines, 20, est)).To(HaveLen(1))
		})
	})
})
