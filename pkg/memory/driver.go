// Package memory stores text records by collection and recalls them by
// semantic similarity.
//
// A [Store] is the only state shared between ingestion and recall. The
// [SemanticStore] implementation embeds record text with an
// embeddings.Embedder and keeps it in any vector.Driver:
//
//	[vector_store]
//	provider = "memory"   # or "sqlite", "chroma", "qdrant", "postgres"
package memory

import (
	"context"
)

// Store saves and searches memory records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Save stores text under id in collection, replacing an existing record
	// with the same id.
	Save(ctx context.Context, collection, id, text string) error

	// Search returns up to topK records of collection whose relevance to
	// query is at least minRelevance, most relevant first.
	Search(ctx context.Context, collection, query string, minRelevance float32, topK int) ([]Result, error)

	// Close releases store resources.
	Close() error
}

// Result is a recalled record.
type Result struct {
	ID   string `json:"id"`
	Text string `json:"text"`

	// Relevance is the cosine similarity between the query and the record.
	Relevance float32 `json:"relevance"`
}
