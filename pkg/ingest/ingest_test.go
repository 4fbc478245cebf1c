package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/repomem/pkg/archive"
	"github.com/papercomputeco/repomem/pkg/chunker"
	"github.com/papercomputeco/repomem/pkg/ingest"
	"github.com/papercomputeco/repomem/pkg/llm"
	"github.com/papercomputeco/repomem/pkg/logger"
	testutils "github.com/papercomputeco/repomem/pkg/utils/test"
)

const repoPath = "/acme/widgets"

var pyFixture = strings.Repeat("x = y + z;\n", 273)[:3000]

var _ = Describe("Orchestrator", func() {
	var (
		ctx       context.Context
		github    *testutils.FakeGitHub
		store     *testutils.MockMemoryStore
		generator *testutils.MockGenerator
		publisher *testutils.MockPublisher
		tempDir   string
		config    *ingest.Config
	)

	newOrchestrator := func() *ingest.Orchestrator {
		o, err := ingest.NewOrchestrator(config)
		Expect(err).NotTo(HaveOccurred())
		return o
	}

	serve := func(files map[string]string) {
		github.AddArchive(repoPath, "main", testutils.NewZipball(files))
	}

	blob := func(uri string) string {
		return github.URL(repoPath) + "/blob/main/" + uri
	}

	BeforeEach(func() {
		ctx = context.Background()
		github = testutils.NewFakeGitHub()
		store = testutils.NewMockMemoryStore()
		generator = testutils.NewMockGenerator("a summary")
		publisher = testutils.NewMockPublisher()
		tempDir = GinkgoT().TempDir()

		config = &ingest.Config{
			Fetcher:   archive.NewFetcher(archive.FetcherConfig{}, logger.Nop()),
			Chunker:   chunker.New(chunker.Config{}),
			Store:     store,
			Generator: generator,
			Publisher: publisher,
			TempDir:   tempDir,
			Logger:    logger.Nop(),
		}
	})

	AfterEach(func() {
		github.Close()
	})

	expectWorkspaceRemoved := func() {
		entries, err := os.ReadDir(tempDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	}

	Describe("NewOrchestrator", func() {
		It("requires a fetcher and a store", func() {
			_, err := ingest.NewOrchestrator(&ingest.Config{Store: store, Logger: logger.Nop()})
			Expect(err).To(HaveOccurred())

			_, err = ingest.NewOrchestrator(&ingest.Config{Fetcher: config.Fetcher, Logger: logger.Nop()})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RecordID", func() {
		It("keeps the uri for whole files", func() {
			Expect(ingest.RecordID("docs/a.md", 0, false)).To(Equal("docs/a.md"))
		})

		It("suffixes the chunk index for split files", func() {
			Expect(ingest.RecordID("src/a.py", 0, true)).To(Equal("src/a.py_0"))
			Expect(ingest.RecordID("src/a.py", 12, true)).To(Equal("src/a.py_12"))
		})
	})

	Describe("Summarize", func() {
		It("splits a large python file into suffixed records", func() {
			serve(map[string]string{"widgets-main/src/app.py": pyFixture})

			result, err := newOrchestrator().Summarize(ctx, ingest.Request{
				URL:     github.URL(repoPath),
				Pattern: "*.py",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Repository).To(Equal(github.URL(repoPath) + "-main"))

			records := store.Records()
			Expect(len(records)).To(BeNumerically(">=", 2))
			Expect(result.Records).To(Equal(len(records)))
			Expect(result.Files).To(Equal(1))

			var rebuilt strings.Builder
			for i, r := range records {
				Expect(r.Collection).To(Equal("generic"))
				Expect(r.ID).To(Equal(fmt.Sprintf("src/app.py_%d", i)))
				Expect(r.Text).To(HaveSuffix(" File:" + blob("src/app.py")))
				rebuilt.WriteString(strings.TrimSuffix(r.Text, " File:"+blob("src/app.py")))
			}
			Expect(strings.Join(strings.Fields(rebuilt.String()), "")).
				To(Equal(strings.Join(strings.Fields(pyFixture), "")))
			expectWorkspaceRemoved()
		})

		It("stores a small README as one record named by its uri", func() {
			readme := strings.Repeat("a", 90) + " repomem.\n"
			Expect(readme).To(HaveLen(100))
			serve(map[string]string{"widgets-main/README.md": readme})

			_, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL(repoPath)})
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Records()).To(ConsistOf(testutils.SavedRecord{
				Collection: "generic",
				ID:         "README.md",
				Text:       readme + " File:" + blob("README.md"),
			}))
		})

		It("succeeds with zero records when nothing matches", func() {
			serve(map[string]string{
				"widgets-main/main.py":     "print('hi')\n",
				"widgets-main/lib/util.py": "def f(): pass\n",
			})

			result, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL(repoPath), Pattern: "*.md"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Files).To(BeZero())
			Expect(result.Records).To(BeZero())
			Expect(store.Records()).To(BeEmpty())
			expectWorkspaceRemoved()
		})

		It("fails on an upstream 404 and removes the workspace", func() {
			_, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL("/acme/missing")})

			var downloadErr *archive.DownloadError
			Expect(errors.As(err, &downloadErr)).To(BeTrue())
			Expect(downloadErr.StatusCode).To(Equal(404))
			Expect(store.Records()).To(BeEmpty())
			Expect(publisher.Events()).To(BeEmpty())
			expectWorkspaceRemoved()
		})

		It("fails on a corrupt archive and removes the workspace", func() {
			github.AddArchive(repoPath, "main", []byte("not a zip"))

			_, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL(repoPath)})
			Expect(err).To(MatchError(archive.ErrCorruptArchive))
			expectWorkspaceRemoved()
		})

		It("rejects invalid input before downloading", func() {
			o := newOrchestrator()

			_, err := o.Summarize(ctx, ingest.Request{URL: "  / "})
			Expect(err).To(MatchError(archive.ErrInvalidInput))

			_, err = o.Summarize(ctx, ingest.Request{URL: github.URL(repoPath), Pattern: "[*.md"})
			Expect(err).To(MatchError(archive.ErrInvalidInput))

			Expect(github.Authorizations()).To(BeEmpty())
		})

		It("sends the PAT as a bearer token", func() {
			serve(map[string]string{"widgets-main/README.md": "# hi\n"})

			_, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL(repoPath), PAT: "ghp_secret"})
			Expect(err).NotTo(HaveOccurred())
			Expect(github.Authorizations()).To(ConsistOf("Bearer ghp_secret"))
		})

		It("honors the branch and collection of the request", func() {
			github.AddArchive(repoPath, "dev", testutils.NewZipball(map[string]string{
				"widgets-dev/docs/guide.md": "guide\n",
			}))

			result, err := newOrchestrator().Summarize(ctx, ingest.Request{
				URL:        github.URL(repoPath) + "/",
				Branch:     "dev",
				Collection: "widgets",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Repository).To(Equal(github.URL(repoPath) + "-dev"))
			Expect(result.Collection).To(Equal("widgets"))
			Expect(store.Records()).To(ConsistOf(testutils.SavedRecord{
				Collection: "widgets",
				ID:         "docs/guide.md",
				Text:       "guide\n File:" + github.URL(repoPath) + "/blob/dev/docs/guide.md",
			}))
		})

		It("skips empty files", func() {
			serve(map[string]string{
				"widgets-main/EMPTY.md":  "",
				"widgets-main/README.md": "hello\n",
			})

			result, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL(repoPath)})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Files).To(Equal(2))
			Expect(result.Records).To(Equal(1))
		})

		It("stores files concurrently when configured", func() {
			files := map[string]string{}
			for i := range 20 {
				files[fmt.Sprintf("widgets-main/docs/page%02d.md", i)] = fmt.Sprintf("page %d\n", i)
			}
			serve(files)
			config.Concurrency = 4

			result, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL(repoPath)})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Records).To(Equal(20))

			ids := make([]string, 0, 20)
			for _, r := range store.Records() {
				ids = append(ids, r.ID)
			}
			Expect(ids).To(ContainElements("docs/page00.md", "docs/page19.md"))
			Expect(ids).To(HaveLen(20))
		})

		It("fails when the store fails and still cleans up", func() {
			serve(map[string]string{"widgets-main/README.md": "hello\n"})
			store.FailSave = true

			_, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL(repoPath)})
			Expect(err).To(MatchError(ContainSubstring("storing README.md")))
			expectWorkspaceRemoved()
		})

		It("returns a network error when cancelled", func() {
			serve(map[string]string{"widgets-main/README.md": "hello\n"})
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := newOrchestrator().Summarize(cancelled, ingest.Request{URL: github.URL(repoPath)})
			Expect(err).To(MatchError(archive.ErrNetwork))
			expectWorkspaceRemoved()
		})

		It("publishes an ingestion event", func() {
			serve(map[string]string{"widgets-main/README.md": "hello\n"})

			_, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL(repoPath)})
			Expect(err).NotTo(HaveOccurred())

			events := publisher.Events()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Repository).To(Equal(github.URL(repoPath)))
			Expect(events[0].Branch).To(Equal("main"))
			Expect(events[0].Collection).To(Equal("generic"))
			Expect(events[0].Pattern).To(Equal("*.md"))
			Expect(events[0].Records).To(Equal(1))
		})

		It("does not fail when publishing fails", func() {
			serve(map[string]string{"widgets-main/README.md": "hello\n"})
			publisher.Fail = true

			_, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL(repoPath)})
			Expect(err).NotTo(HaveOccurred())
		})

		Context("when summarizing", func() {
			It("stores the generated summary under the same id", func() {
				serve(map[string]string{"widgets-main/src/app.py": pyFixture})

				_, err := newOrchestrator().Summarize(ctx, ingest.Request{
					URL:       github.URL(repoPath),
					Pattern:   "*.py",
					Summarize: true,
				})
				Expect(err).NotTo(HaveOccurred())

				records := store.Records()
				Expect(len(records)).To(BeNumerically(">=", 2))
				for i, r := range records {
					Expect(r.ID).To(Equal(fmt.Sprintf("src/app.py_%d", i)))
					Expect(r.Text).To(Equal("a summary File:" + blob("src/app.py")))
				}

				Expect(generator.Calls).To(HaveLen(len(records)))
				for _, call := range generator.Calls {
					Expect(call.Settings).To(Equal(llm.SummarizeSettings))
					Expect(call.Prompt).To(HavePrefix("BEGIN CONTENT TO SUMMARIZE:\n"))
					Expect(call.Prompt).To(HaveSuffix("BEGIN SUMMARY:\n"))
				}
			})

			It("fails with ErrGeneration when the generator fails", func() {
				serve(map[string]string{"widgets-main/README.md": "hello\n"})
				generator.Fail = true

				_, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL(repoPath), Summarize: true})
				Expect(err).To(MatchError(llm.ErrGeneration))
				Expect(store.Records()).To(BeEmpty())
				expectWorkspaceRemoved()
			})

			It("requires a generator", func() {
				config.Generator = nil
				_, err := newOrchestrator().Summarize(ctx, ingest.Request{URL: github.URL(repoPath), Summarize: true})
				Expect(err).To(MatchError(archive.ErrInvalidInput))
			})
		})
	})

	Describe("SummarizePrompt", func() {
		It("wraps the content in the summarize instructions", func() {
			Expect(ingest.SummarizePrompt("body")).To(Equal(
				"BEGIN CONTENT TO SUMMARIZE:\nbody\nEND CONTENT TO SUMMARIZE.\n\n" +
					"Summarize the content in 'CONTENT TO SUMMARIZE', identifying main points.\n" +
					"Do not incorporate other general knowledge.\n" +
					"Summary is in plain text, in complete sentences, with no markup or tags.\n\n" +
					"BEGIN SUMMARY:\n"))
		})
	})
})
