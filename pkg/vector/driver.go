// Package vector provides the vector store interface and its drivers.
package vector

import "context"

// DefaultTopK is used by drivers when a query asks for zero or fewer results.
const DefaultTopK = 10

// Document is a stored record with its embedding.
type Document struct {
	// ID is unique within a collection.
	ID string

	// Text is the record content returned on recall.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score is the cosine similarity to the query (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of documents grouped by collection.
// Drivers must be safe for concurrent use.
type Driver interface {
	// Upsert stores documents in collection, replacing documents with the
	// same ID.
	Upsert(ctx context.Context, collection string, docs []Document) error

	// Query returns up to topK documents of collection with a score of at
	// least minScore, most similar first. An unknown collection yields no
	// results.
	Query(ctx context.Context, collection string, embedding []float32, topK int, minScore float32) ([]QueryResult, error)

	// Close releases any resources held by the driver.
	Close() error
}
