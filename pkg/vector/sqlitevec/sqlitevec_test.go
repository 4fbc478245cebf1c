package sqlitevec_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/repomem/pkg/logger"
	"github.com/papercomputeco/repomem/pkg/vector"
	"github.com/papercomputeco/repomem/pkg/vector/sqlitevec"
)

var _ = Describe("Driver", func() {
	var (
		ctx context.Context
		log *slog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		log = logger.Nop()
	})

	Describe("NewDriver", func() {
		It("should return an error when DBPath is empty", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{DBPath: ""}, log)
			Expect(err).To(MatchError(ContainSubstring("database path is required")))
		})

		It("should error when dimension not specified", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{DBPath: ":memory:"}, log)
			Expect(err).To(HaveOccurred())
		})

		It("should create a driver with an in-memory database", func() {
			driver, err := sqlitevec.NewDriver(sqlitevec.Config{DBPath: ":memory:", Dimensions: 3}, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver.Close()).To(Succeed())
		})
	})

	Describe("Upsert and Query", func() {
		var driver *sqlitevec.Driver

		BeforeEach(func() {
			var err error
			driver, err = sqlitevec.NewDriver(sqlitevec.Config{DBPath: ":memory:", Dimensions: 3}, log)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			driver.Close()
		})

		It("returns the closest records of the collection first", func() {
			Expect(driver.Upsert(ctx, "generic", []vector.Document{
				{ID: "a.md", Text: "alpha", Embedding: []float32{1, 0, 0}},
				{ID: "b.md", Text: "beta", Embedding: []float32{0, 1, 0}},
				{ID: "c.md", Text: "gamma", Embedding: []float32{0.9, 0.1, 0}},
			})).To(Succeed())

			results, err := driver.Query(ctx, "generic", []float32{1, 0, 0}, 2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("a.md"))
			Expect(results[0].Text).To(Equal("alpha"))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-5))
			Expect(results[1].ID).To(Equal("c.md"))
		})

		It("scopes records by collection", func() {
			Expect(driver.Upsert(ctx, "one", []vector.Document{{ID: "x", Text: "in one", Embedding: []float32{1, 0, 0}}})).To(Succeed())
			Expect(driver.Upsert(ctx, "two", []vector.Document{{ID: "x", Text: "in two", Embedding: []float32{0, 1, 0}}})).To(Succeed())

			results, err := driver.Query(ctx, "two", []float32{1, 0, 0}, 5, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Text).To(Equal("in two"))

			results, err = driver.Query(ctx, "three", []float32{1, 0, 0}, 5, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("replaces records with the same ID", func() {
			Expect(driver.Upsert(ctx, "generic", []vector.Document{{ID: "x", Text: "old", Embedding: []float32{0, 1, 0}}})).To(Succeed())
			Expect(driver.Upsert(ctx, "generic", []vector.Document{{ID: "x", Text: "new", Embedding: []float32{1, 0, 0}}})).To(Succeed())

			results, err := driver.Query(ctx, "generic", []float32{1, 0, 0}, 5, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Text).To(Equal("new"))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-5))
		})

		It("drops results below the minimum score", func() {
			Expect(driver.Upsert(ctx, "generic", []vector.Document{
				{ID: "near", Embedding: []float32{1, 0, 0}},
				{ID: "far", Embedding: []float32{0, 0, 1}},
			})).To(Succeed())

			results, err := driver.Query(ctx, "generic", []float32{1, 0, 0}, 5, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("near"))
		})

		It("rejects embeddings of the wrong size", func() {
			err := driver.Upsert(ctx, "generic", []vector.Document{{ID: "x", Embedding: []float32{1, 0}}})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})
	})

	It("persists records in a database file", func() {
		dir, err := os.MkdirTemp("", "sqlitevec-test-*")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)
		path := filepath.Join(dir, "vectors.db")

		driver, err := sqlitevec.NewDriver(sqlitevec.Config{DBPath: path, Dimensions: 3}, log)
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.Upsert(ctx, "generic", []vector.Document{{ID: "x", Text: "kept", Embedding: []float32{1, 0, 0}}})).To(Succeed())
		Expect(driver.Close()).To(Succeed())

		driver, err = sqlitevec.NewDriver(sqlitevec.Config{DBPath: path, Dimensions: 3}, log)
		Expect(err).NotTo(HaveOccurred())
		defer driver.Close()

		results, err := driver.Query(ctx, "generic", []float32{1, 0, 0}, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Text).To(Equal("kept"))
	})
})
