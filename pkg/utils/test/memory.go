package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/repomem/pkg/memory"
)

// SavedRecord is a record captured by MockMemoryStore.
type SavedRecord struct {
	Collection string
	ID         string
	Text       string
}

// SearchCall captures the arguments of a MockMemoryStore.Search call.
type SearchCall struct {
	Collection   string
	Query        string
	MinRelevance float32
	TopK         int
}

// MockMemoryStore is a test memory store that records calls and returns
// configurable results.
type MockMemoryStore struct {
	mu sync.Mutex

	// Saved accumulates all records passed to Save, in call order.
	Saved []SavedRecord

	// Searches accumulates all Search calls.
	Searches []SearchCall

	// SearchResults is returned by Search for any query.
	SearchResults []memory.Result

	// FailSave causes Save to return an error.
	FailSave bool

	// FailSearch causes Search to return an error.
	FailSearch bool
}

// NewMockMemoryStore creates a new mock memory store.
func NewMockMemoryStore() *MockMemoryStore {
	return &MockMemoryStore{}
}

func (m *MockMemoryStore) Save(_ context.Context, collection, id, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave {
		return errors.New("mock save failure")
	}
	m.Saved = append(m.Saved, SavedRecord{Collection: collection, ID: id, Text: text})
	return nil
}

func (m *MockMemoryStore) Search(_ context.Context, collection, query string, minRelevance float32, topK int) ([]memory.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Searches = append(m.Searches, SearchCall{
		Collection:   collection,
		Query:        query,
		MinRelevance: minRelevance,
		TopK:         topK,
	})
	if m.FailSearch {
		return nil, errors.New("mock search failure")
	}
	return m.SearchResults, nil
}

// Records returns a copy of the saved records.
func (m *MockMemoryStore) Records() []SavedRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SavedRecord, len(m.Saved))
	copy(out, m.Saved)
	return out
}

func (m *MockMemoryStore) Close() error {
	return nil
}

var _ memory.Store = (*MockMemoryStore)(nil)
