package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/repomem/pkg/ingest"
)

var (
	summarizeToolName    = "summarize_repository"
	summarizeDescription = "Download a GitHub repository branch and store its matching files as memory records. Large files are split into chunks. Returns the repository identifier and the number of records stored."
)

// SummarizeInput represents the input arguments for the summarize_repository tool.
type SummarizeInput struct {
	URL        string `json:"url" jsonschema:"the GitHub repository URL, e.g. https://github.com/owner/repo"`
	Branch     string `json:"branch,omitempty" jsonschema:"the branch to ingest (default: main)"`
	Pattern    string `json:"pattern,omitempty" jsonschema:"glob applied to file names (default: *.md)"`
	Collection string `json:"collection,omitempty" jsonschema:"the memory collection to store records in"`
	Summarize  bool   `json:"summarize,omitempty" jsonschema:"store an LLM summary of each chunk instead of its text"`
}

// handleSummarize processes a summarize_repository request. The PAT is not
// accepted over MCP.
func (s *Server) handleSummarize(ctx context.Context, _ *mcp.CallToolRequest, input SummarizeInput) (*mcp.CallToolResult, ingest.Result, error) {
	if input.URL == "" {
		return errorResult("url is required"), ingest.Result{}, nil
	}

	s.config.Logger.Debug("MCP summarize request",
		"url", input.URL,
		"branch", input.Branch,
		"pattern", input.Pattern,
	)

	result, err := s.config.Ingester.Summarize(ctx, ingest.Request{
		URL:        input.URL,
		Branch:     input.Branch,
		Pattern:    input.Pattern,
		Collection: input.Collection,
		Summarize:  input.Summarize,
	})
	if err != nil {
		s.config.Logger.Error("MCP summarize failed", "url", input.URL, "error", err)
		return errorResult(fmt.Sprintf("Ingestion failed: %v", err)), ingest.Result{}, nil
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err)), ingest.Result{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, *result, nil
}
