package memory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/repomem/pkg/embeddings"
	"github.com/papercomputeco/repomem/pkg/vector"
)

// SemanticStore implements Store over an embedder and a vector driver.
type SemanticStore struct {
	embedder embeddings.Embedder
	driver   vector.Driver
	logger   *slog.Logger
}

// NewSemanticStore creates a SemanticStore. Close closes both collaborators.
func NewSemanticStore(embedder embeddings.Embedder, driver vector.Driver, logger *slog.Logger) *SemanticStore {
	return &SemanticStore{
		embedder: embedder,
		driver:   driver,
		logger:   logger,
	}
}

// Save embeds text and upserts it as a single document.
func (s *SemanticStore) Save(ctx context.Context, collection, id, text string) error {
	if collection == "" || id == "" {
		return fmt.Errorf("%w: collection %q, id %q", ErrInvalidRecord, collection, id)
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding record %s: %w", id, err)
	}

	err = s.driver.Upsert(ctx, collection, []vector.Document{{
		ID:        id,
		Text:      text,
		Embedding: embedding,
	}})
	if err != nil {
		return fmt.Errorf("saving record %s: %w", id, err)
	}

	s.logger.Debug("saved memory record",
		"collection", collection,
		"id", id,
		"chars", len(text),
	)

	return nil
}

// Search embeds query and returns the closest records.
func (s *SemanticStore) Search(ctx context.Context, collection, query string, minRelevance float32, topK int) ([]Result, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := s.driver.Query(ctx, collection, embedding, topK, minRelevance)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{ID: m.ID, Text: m.Text, Relevance: m.Score})
	}

	s.logger.Debug("searched memory",
		"collection", collection,
		"results", len(results),
	)

	return results, nil
}

// Close closes the embedder and the vector driver.
func (s *SemanticStore) Close() error {
	embErr := s.embedder.Close()
	if err := s.driver.Close(); err != nil {
		return err
	}
	return embErr
}

var _ Store = (*SemanticStore)(nil)
