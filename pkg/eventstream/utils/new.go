// Package eventstreamutils builds the configured event publisher.
package eventstreamutils

import (
	"fmt"
	"log/slog"

	"github.com/papercomputeco/repomem/pkg/eventstream"
	"github.com/papercomputeco/repomem/pkg/eventstream/kafka"
	"github.com/papercomputeco/repomem/pkg/eventstream/nop"
	"github.com/papercomputeco/repomem/pkg/eventstream/worker"
)

type NewPublisherOpts struct {
	// ProviderType is "none" (or empty) or "kafka".
	ProviderType string
	Brokers      []string
	Topic        string
	Logger       *slog.Logger
}

// NewPublisher returns a publisher for o. Backends other than "none" are
// wrapped in an asynchronous worker pool, so Publish never blocks on the
// broker. Close drains the pool.
func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.ProviderType {
	case "", "none":
		return nop.NewPublisher(), nil
	case "kafka":
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: o.Brokers,
			Topic:   o.Topic,
		}, o.Logger)
		if err != nil {
			return nil, err
		}
		return worker.NewPool(&worker.Config{
			Publisher: p,
			Logger:    o.Logger,
		})
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", o.ProviderType)
	}
}
