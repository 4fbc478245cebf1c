package archive_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/repomem/pkg/archive"
)

var _ = Describe("ParseRepository", func() {
	It("rewrites the URL onto the GitHub REST API", func() {
		ref, err := archive.ParseRepository("https://github.com/acme/widgets", "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(ref.APIURI).To(Equal("https://api.github.com/repos/acme/widgets"))
		Expect(ref.Branch).To(Equal("main"))
	})

	It("trims spaces and slashes from both ends", func() {
		ref, err := archive.ParseRepository("  https://github.com/acme/widgets/ ", "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(ref.APIURI).To(Equal("https://api.github.com/repos/acme/widgets"))
	})

	It("matches the host case-insensitively", func() {
		ref, err := archive.ParseRepository("https://GitHub.COM/acme/widgets", "dev")
		Expect(err).NotTo(HaveOccurred())
		Expect(ref.APIURI).To(Equal("https://api.github.com/repos/acme/widgets"))
	})

	It("derives archive, blob and identifier strings", func() {
		ref, err := archive.ParseRepository("https://github.com/acme/widgets", "dev")
		Expect(err).NotTo(HaveOccurred())
		Expect(ref.ArchiveURL()).To(Equal("https://api.github.com/repos/acme/widgets/zipball/dev"))
		Expect(ref.BlobURL("docs/a.md")).To(Equal("https://api.github.com/repos/acme/widgets/blob/dev/docs/a.md"))
		Expect(ref.InjectedFolder()).To(Equal("widgets-dev"))
		Expect(ref.String()).To(Equal("https://api.github.com/repos/acme/widgets-dev"))
	})

	DescribeTable("rejects unusable input",
		func(rawURL, branch string) {
			_, err := archive.ParseRepository(rawURL, branch)
			Expect(err).To(MatchError(archive.ErrInvalidInput))
		},
		Entry("empty URL", "", "main"),
		Entry("only slashes", " // ", "main"),
		Entry("no scheme", "github.com/acme/widgets", "main"),
		Entry("empty branch", "https://github.com/acme/widgets", " "),
	)
})
