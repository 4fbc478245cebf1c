package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/repomem/pkg/eventstream"
)

// MockPublisher is a test eventstream publisher that records events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.RepositoryIngestedEvent

	// Fail causes Publish to return an error.
	Fail bool

	// Block, when set, is received from before each Publish returns.
	Block chan struct{}

	Closed bool
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, event *eventstream.RepositoryIngestedEvent) error {
	if m.Block != nil {
		<-m.Block
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if event == nil {
		return eventstream.ErrNilEvent
	}
	if m.Fail {
		return errors.New("mock publish failure")
	}
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of the published events.
func (m *MockPublisher) Events() []*eventstream.RepositoryIngestedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*eventstream.RepositoryIngestedEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Closed = true
	return nil
}

var _ eventstream.Publisher = (*MockPublisher)(nil)
