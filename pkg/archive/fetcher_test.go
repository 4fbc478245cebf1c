package archive_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/repomem/pkg/archive"
	"github.com/papercomputeco/repomem/pkg/logger"
)

var _ = Describe("Fetcher", func() {
	var (
		tmpDir  string
		dest    string
		lastReq *http.Request
		status  int
		body    string
		server  *httptest.Server
		fetcher *archive.Fetcher
		ref     archive.RepositoryReference
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "fetcher-test-*")
		Expect(err).NotTo(HaveOccurred())
		dest = filepath.Join(tmpDir, "repo.zip")

		status = http.StatusOK
		body = "zip-bytes"
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastReq = r
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))

		fetcher = archive.NewFetcher(archive.FetcherConfig{}, logger.Nop())
		ref = archive.RepositoryReference{APIURI: server.URL + "/repos/acme/widgets", Branch: "main"}
	})

	AfterEach(func() {
		server.Close()
		os.RemoveAll(tmpDir)
	})

	It("downloads the zipball with GitHub API headers", func() {
		Expect(fetcher.Fetch(context.Background(), ref, "", dest)).To(Succeed())

		Expect(lastReq.URL.Path).To(Equal("/repos/acme/widgets/zipball/main"))
		Expect(lastReq.Header.Get("X-GitHub-Api-Version")).To(Equal("2022-11-28"))
		Expect(lastReq.Header.Get("Accept")).To(Equal("application/vnd.github+json"))
		Expect(lastReq.Header.Get("User-Agent")).To(Equal("repomem"))
		Expect(lastReq.Header.Get("Authorization")).To(BeEmpty())

		data, err := os.ReadFile(dest)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("zip-bytes"))
	})

	It("sends the credential as a bearer token", func() {
		Expect(fetcher.Fetch(context.Background(), ref, "secret-pat", dest)).To(Succeed())
		Expect(lastReq.Header.Get("Authorization")).To(Equal("Bearer secret-pat"))
	})

	It("uses the configured user agent", func() {
		fetcher = archive.NewFetcher(archive.FetcherConfig{UserAgent: "custom-agent"}, logger.Nop())
		Expect(fetcher.Fetch(context.Background(), ref, "", dest)).To(Succeed())
		Expect(lastReq.Header.Get("User-Agent")).To(Equal("custom-agent"))
	})

	It("returns a DownloadError for non-2xx responses", func() {
		status = http.StatusNotFound

		err := fetcher.Fetch(context.Background(), ref, "", dest)

		var dlErr *archive.DownloadError
		Expect(errors.As(err, &dlErr)).To(BeTrue())
		Expect(dlErr.StatusCode).To(Equal(http.StatusNotFound))
		Expect(err.Error()).To(ContainSubstring("404"))
		Expect(dest).NotTo(BeAnExistingFile())
	})

	It("returns ErrNetwork when the host is unreachable", func() {
		server.Close()

		err := fetcher.Fetch(context.Background(), ref, "", dest)
		Expect(err).To(MatchError(archive.ErrNetwork))
	})

	It("returns ErrNetwork when cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := fetcher.Fetch(ctx, ref, "", dest)
		Expect(err).To(MatchError(archive.ErrNetwork))
	})
})
