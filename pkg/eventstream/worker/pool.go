// Package worker provides an asynchronous worker pool that publishes
// ingestion events with the provided eventstream.Publisher.
//
// The pool decouples event delivery from the ingestion request so a slow or
// unavailable broker never delays or fails an ingestion.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/repomem/pkg/eventstream"
)

var (
	defaultNumWorkers   uint = 1
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 30 * time.Second
)

// ErrQueueFull is returned by Publish when an event is dropped.
var ErrQueueFull = errors.New("event queue full")

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher delivers events to the backend.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds a single publish (defaults to 30s).
	JobTimeout time.Duration

	Logger *slog.Logger
}

// Pool publishes events asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan *eventstream.RepositoryIngestedEvent
	wg     sync.WaitGroup
	once   sync.Once
	logger *slog.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, errors.New("worker pool requires a publisher")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout == 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *eventstream.RepositoryIngestedEvent, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits an event for publishing.
// Returns true if enqueued, false if the queue is full, resulting in the event being dropped
func (p *Pool) Enqueue(event *eventstream.RepositoryIngestedEvent) bool {
	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			"event_id", event.EventID,
			"repository", event.Repository,
		)
		return true
	default:
		p.logger.Error("event not queued, queue full, event dropped",
			"event_id", event.EventID,
			"repository", event.Repository,
		)
		return false
	}
}

// Publish enqueues event, so the pool can stand in for any Publisher.
func (p *Pool) Publish(_ context.Context, event *eventstream.RepositoryIngestedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if !p.Enqueue(event) {
		return ErrQueueFull
	}
	return nil
}

// Close signals workers to stop, waits for queued events to drain, then
// closes the publisher. Call this during graceful shutdown after the HTTP
// server has stopped.
func (p *Pool) Close() error {
	var err error
	p.once.Do(func() {
		close(p.queue)
		p.wg.Wait()
		err = p.config.Publisher.Close()
	})
	return err
}

// worker is the inner worker thread that continuously pulls events off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("event worker started", "worker_id", id)

	for event := range p.queue {
		p.publish(event)
	}

	p.logger.Debug("event worker stopped", "worker_id", id)
}

// publish delivers one event. Errors are logged but not returned, the
// ingestion that produced the event has already succeeded.
func (p *Pool) publish(event *eventstream.RepositoryIngestedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	if err := p.config.Publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("event publish failed",
			"event_id", event.EventID,
			"repository", event.Repository,
			"error", err,
		)
		return
	}

	p.logger.Info("event published",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"repository", event.Repository,
	)
}

var _ eventstream.Publisher = (*Pool)(nil)
