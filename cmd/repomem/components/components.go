// Package components builds the repomem collaborators shared by the serve,
// ingest and ask commands from a materialized config.
package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/papercomputeco/repomem/pkg/archive"
	"github.com/papercomputeco/repomem/pkg/chunker"
	"github.com/papercomputeco/repomem/pkg/config"
	"github.com/papercomputeco/repomem/pkg/dotdir"
	embeddingutils "github.com/papercomputeco/repomem/pkg/embeddings/utils"
	"github.com/papercomputeco/repomem/pkg/eventstream"
	eventstreamutils "github.com/papercomputeco/repomem/pkg/eventstream/utils"
	"github.com/papercomputeco/repomem/pkg/ingest"
	"github.com/papercomputeco/repomem/pkg/llm"
	"github.com/papercomputeco/repomem/pkg/llm/provider"
	"github.com/papercomputeco/repomem/pkg/memory"
	"github.com/papercomputeco/repomem/pkg/recall"
	vectorutils "github.com/papercomputeco/repomem/pkg/vector/utils"
)

// sqliteFileName is the vector database created in the .repomem/ directory
// when vector_store.sqlite_path is unset.
const sqliteFileName = "repomem.db"

// Options selects which collaborators New builds.
type Options struct {
	// ConfigDir overrides .repomem/ resolution for the SQLite database path.
	ConfigDir string

	// Generator builds the answer generator. Commands that only ingest
	// without summaries leave it off so hosted providers need no API key.
	Generator bool

	// Events builds the configured ingestion event publisher. Without it
	// events are dropped.
	Events bool
}

// Components holds one memory store and everything built on top of it.
type Components struct {
	Store        memory.Store
	Generator    llm.Generator
	Publisher    eventstream.Publisher
	Orchestrator *ingest.Orchestrator
	Engine       *recall.Engine

	logger *slog.Logger
}

// New builds the components for cfg. Close releases them.
func New(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (*Components, error) {
	c := &Components{logger: logger}

	store, err := newStore(ctx, cfg, opts.ConfigDir, logger)
	if err != nil {
		return nil, err
	}
	c.Store = store

	if opts.Generator {
		c.Generator, err = provider.New(provider.Config{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.Target,
		}, logger)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("creating answer generator: %w", err), c.Close())
		}
	}

	publisherType := "none"
	if opts.Events {
		publisherType = cfg.Events.Provider
	}
	c.Publisher, err = eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: publisherType,
		Brokers:      cfg.Events.BrokerList(),
		Topic:        cfg.Events.Topic,
		Logger:       logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating event publisher: %w", err), c.Close())
	}

	estimator, err := chunker.NewEstimator(cfg.Ingest.Tokenizer)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}

	c.Orchestrator, err = ingest.NewOrchestrator(&ingest.Config{
		Fetcher: archive.NewFetcher(archive.FetcherConfig{
			UserAgent: cfg.Ingest.UserAgent,
		}, logger),
		Chunker: chunker.New(chunker.Config{
			MaxFileSize: int(cfg.Ingest.MaxFileSize),
			MaxTokens:   int(cfg.Ingest.MaxTokens),
			Estimator:   estimator,
		}),
		Store:       c.Store,
		Generator:   c.Generator,
		Publisher:   c.Publisher,
		Collection:  cfg.Ingest.Collection,
		Branch:      cfg.Ingest.Branch,
		Pattern:     cfg.Ingest.SearchPattern,
		Concurrency: cfg.Ingest.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}

	c.Engine = recall.NewEngine(c.Store, c.Generator, recall.Config{
		Collection:   cfg.Recall.Collection,
		TopK:         int(cfg.Recall.TopK),
		MinRelevance: float32(cfg.Recall.MinRelevance),
		Settings: llm.CompletionSettings{
			MaxTokens:   int(cfg.LLM.MaxTokens),
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
		},
	}, logger)

	return c, nil
}

// Close flushes pending events and closes the memory store.
func (c *Components) Close() error {
	var errs []error
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}

func newStore(ctx context.Context, cfg *config.Config, configDir string, logger *slog.Logger) (memory.Store, error) {
	sqlitePath := cfg.VectorStore.SQLitePath
	if cfg.VectorStore.Provider == "sqlite" && sqlitePath == "" {
		var err error
		sqlitePath, err = dotdir.NewManager().DataPath(configDir, sqliteFileName)
		if err != nil {
			return nil, fmt.Errorf("resolving sqlite path: %w", err)
		}
	}

	driver, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       cfg.VectorStore.Target,
		SQLitePath:   sqlitePath,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		APIKey:       os.Getenv("OPENAI_API_KEY"),
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating embedder: %w", err), driver.Close())
	}

	logger.Info("memory store ready",
		"vector_store", cfg.VectorStore.Provider,
		"embedding_provider", cfg.Embedding.Provider,
		"embedding_model", cfg.Embedding.Model,
	)

	return memory.NewSemanticStore(embedder, driver, logger), nil
}
