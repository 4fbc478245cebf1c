// Package mcp provides an MCP (Model Context Protocol) server exposing
// repository ingestion and memory queries as tools.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/repomem/pkg/ingest"
	"github.com/papercomputeco/repomem/pkg/utils"
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

type Config struct {
	Ingester Ingester
	Answerer Answerer

	// DefaultCollection is used by memory_recall when no collection is given.
	DefaultCollection string

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the ingestion and memory tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "repomem",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Ingester == nil {
			return nil, errors.New("ingester is required")
		}
		if c.Answerer == nil {
			return nil, errors.New("answerer is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}
		if s.config.DefaultCollection == "" {
			s.config.DefaultCollection = ingest.DefaultCollection
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        summarizeToolName,
			Description: summarizeDescription,
		}, s.handleSummarize)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        memoryQueryToolName,
			Description: memoryQueryDescription,
		}, s.handleMemoryQuery)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        memoryRecallToolName,
			Description: memoryRecallDescription,
		}, s.handleMemoryRecall)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying server, e.g. for in-memory transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
