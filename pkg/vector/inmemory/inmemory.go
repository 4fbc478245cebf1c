// Package inmemory provides an in-process implementation of vector.Driver.
//
// Documents are kept per collection and queried by brute-force cosine
// similarity. Contents are lost when the process exits.
package inmemory

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/papercomputeco/repomem/pkg/vector"
)

// Driver implements vector.Driver using in-process data structures.
type Driver struct {
	mu sync.RWMutex

	// collections maps collection -> document ID -> document.
	collections map[string]map[string]vector.Document
}

// NewDriver creates an empty in-memory vector driver.
func NewDriver() *Driver {
	return &Driver{
		collections: make(map[string]map[string]vector.Document),
	}
}

// Upsert stores copies of docs in collection.
func (d *Driver) Upsert(_ context.Context, collection string, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.collections[collection]
	if !ok {
		c = make(map[string]vector.Document)
		d.collections[collection] = c
	}

	for _, doc := range docs {
		doc.Embedding = slices.Clone(doc.Embedding)
		c[doc.ID] = doc
	}

	return nil
}

// Query scores every document of collection against embedding.
func (d *Driver) Query(_ context.Context, collection string, embedding []float32, topK int, minScore float32) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = vector.DefaultTopK
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var results []vector.QueryResult
	for _, doc := range d.collections[collection] {
		score := CosineSimilarity(embedding, doc.Embedding)
		if score < minScore {
			continue
		}
		doc.Embedding = slices.Clone(doc.Embedding)
		results = append(results, vector.QueryResult{Document: doc, Score: score})
	}

	slices.SortFunc(results, func(a, b vector.QueryResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// Len returns the number of documents in collection.
func (d *Driver) Len(collection string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.collections[collection])
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// the lengths differ or either vector is zero.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

var _ vector.Driver = (*Driver)(nil)
