package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/repomem/api/mcp"
	"github.com/papercomputeco/repomem/pkg/ingest"
)

// Ingester ingests repositories into memory.
type Ingester interface {
	Summarize(ctx context.Context, req ingest.Request) (*ingest.Result, error)
}

// Answerer recalls memory and answers questions from it.
type Answerer interface {
	Recall(ctx context.Context, query, collection string, minRelevance float32, topK int) (string, error)
	Ask(ctx context.Context, input, collection string) (string, error)
}

// Server is the API server for ingesting repositories and querying memory.
type Server struct {
	config   Config
	ingester Ingester
	answerer Answerer
	logger   *slog.Logger
	app      *fiber.App
}

// NewServer creates a new API server. The ingester and answerer share one
// memory store, created by the caller.
func NewServer(config Config, ingester Ingester, answerer Answerer, logger *slog.Logger) (*Server, error) {
	if ingester == nil {
		return nil, errors.New("ingester is required")
	}
	if answerer == nil {
		return nil, errors.New("answerer is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		ingester: ingester,
		answerer: answerer,
		logger:   logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/SummarizeRepository", s.handleSummarizeRepository)
	app.Post("/SummarizeRepository", s.handleSummarizeRepository)
	app.Post("/GitHubMemoryQuery", s.handleGitHubMemoryQuery)

	if !config.DisableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Ingester: ingester,
			Answerer: answerer,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// App returns the underlying fiber app, e.g. for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
		"mcp", !s.config.DisableMCP,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
