package inmemory_test

import (
	"context"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/repomem/pkg/vector"
	"github.com/papercomputeco/repomem/pkg/vector/inmemory"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *inmemory.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
	})

	It("returns nothing for an unknown collection", func() {
		results, err := driver.Query(ctx, "missing", []float32{1, 0}, 5, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	It("orders results by descending similarity and honours topK", func() {
		Expect(driver.Upsert(ctx, "generic", []vector.Document{
			{ID: "far", Text: "far", Embedding: []float32{0, 1}},
			{ID: "near", Text: "near", Embedding: []float32{1, 0}},
			{ID: "mid", Text: "mid", Embedding: []float32{1, 1}},
		})).To(Succeed())

		results, err := driver.Query(ctx, "generic", []float32{1, 0}, 2, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].ID).To(Equal("near"))
		Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-6))
		Expect(results[1].ID).To(Equal("mid"))
	})

	It("filters results below the minimum score", func() {
		Expect(driver.Upsert(ctx, "generic", []vector.Document{
			{ID: "near", Embedding: []float32{1, 0}},
			{ID: "far", Embedding: []float32{0, 1}},
		})).To(Succeed())

		results, err := driver.Query(ctx, "generic", []float32{1, 0}, 10, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].ID).To(Equal("near"))
	})

	It("scopes documents by collection", func() {
		Expect(driver.Upsert(ctx, "a", []vector.Document{{ID: "x", Text: "in a", Embedding: []float32{1}}})).To(Succeed())
		Expect(driver.Upsert(ctx, "b", []vector.Document{{ID: "x", Text: "in b", Embedding: []float32{1}}})).To(Succeed())

		results, err := driver.Query(ctx, "b", []float32{1}, 10, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Text).To(Equal("in b"))
	})

	It("replaces documents with the same ID", func() {
		Expect(driver.Upsert(ctx, "generic", []vector.Document{{ID: "x", Text: "old", Embedding: []float32{1}}})).To(Succeed())
		Expect(driver.Upsert(ctx, "generic", []vector.Document{{ID: "x", Text: "new", Embedding: []float32{1}}})).To(Succeed())

		Expect(driver.Len("generic")).To(Equal(1))
		results, err := driver.Query(ctx, "generic", []float32{1}, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].Text).To(Equal("new"))
	})

	It("is safe for concurrent use", func() {
		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				id := fmt.Sprintf("doc-%d", i)
				Expect(driver.Upsert(ctx, "generic", []vector.Document{{ID: id, Embedding: []float32{1, float32(i)}}})).To(Succeed())
				_, err := driver.Query(ctx, "generic", []float32{1, 0}, 3, 0)
				Expect(err).NotTo(HaveOccurred())
			}()
		}
		wg.Wait()
		Expect(driver.Len("generic")).To(Equal(20))
	})
})

var _ = Describe("CosineSimilarity", func() {
	It("is 1 for parallel vectors", func() {
		Expect(inmemory.CosineSimilarity([]float32{1, 2}, []float32{2, 4})).To(BeNumerically("~", 1.0, 1e-6))
	})

	It("is 0 for orthogonal, zero or mismatched vectors", func() {
		Expect(inmemory.CosineSimilarity([]float32{1, 0}, []float32{0, 1})).To(BeNumerically("~", 0, 1e-6))
		Expect(inmemory.CosineSimilarity([]float32{0, 0}, []float32{1, 1})).To(BeZero())
		Expect(inmemory.CosineSimilarity([]float32{1}, []float32{1, 1})).To(BeZero())
	})
})
