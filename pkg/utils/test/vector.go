package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/repomem/pkg/vector"
)

// MockVectorDriver is a test vector driver
type MockVectorDriver struct {
	mu sync.Mutex

	// Documents maps collection to upserted documents, in call order.
	Documents map[string][]vector.Document

	// Results is returned by Query, truncated to topK.
	Results []vector.QueryResult

	// LastMinScore is the minScore of the most recent Query.
	LastMinScore float32

	// FailUpsert and FailQuery make the respective calls return an error.
	FailUpsert bool
	FailQuery  bool

	Closed bool
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		Documents: make(map[string][]vector.Document),
	}
}

func (m *MockVectorDriver) Upsert(_ context.Context, collection string, docs []vector.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpsert {
		return errors.New("mock upsert failure")
	}
	m.Documents[collection] = append(m.Documents[collection], docs...)
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, _ string, _ []float32, topK int, minScore float32) ([]vector.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastMinScore = minScore
	if m.FailQuery {
		return nil, errors.New("mock query failure")
	}
	if len(m.Results) < topK {
		return m.Results, nil
	}
	return m.Results[:topK], nil
}

func (m *MockVectorDriver) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Closed = true
	return nil
}

var _ vector.Driver = (*MockVectorDriver)(nil)
