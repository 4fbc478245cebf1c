package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	memoryQueryToolName    = "memory_query"
	memoryQueryDescription = "Answer a question using only the repository content stored in a memory collection."

	memoryRecallToolName    = "memory_recall"
	memoryRecallDescription = "Recall the stored repository content most relevant to a query, without generating an answer. Use this to retrieve raw context from ingested repositories."
)

// MemoryQueryInput represents the input arguments for the memory_query tool.
type MemoryQueryInput struct {
	Input      string `json:"input" jsonschema:"the question to answer"`
	Collection string `json:"collection,omitempty" jsonschema:"the memory collection to search (default: generic)"`
}

// MemoryQueryOutput represents the structured output of a memory query.
type MemoryQueryOutput struct {
	Answer string `json:"answer"`
}

// MemoryRecallInput represents the input arguments for the memory_recall tool.
type MemoryRecallInput struct {
	Query        string  `json:"query" jsonschema:"the text to find relevant records for"`
	Collection   string  `json:"collection,omitempty" jsonschema:"the memory collection to search (default: generic)"`
	TopK         int     `json:"top_k,omitempty" jsonschema:"number of records to recall (default: 5)"`
	MinRelevance float32 `json:"min_relevance,omitempty" jsonschema:"minimum cosine similarity of recalled records (default: 0)"`
}

// MemoryRecallOutput represents the structured output of a memory recall.
type MemoryRecallOutput struct {
	Context string `json:"context"`
}

func (s *Server) handleMemoryQuery(ctx context.Context, _ *mcp.CallToolRequest, input MemoryQueryInput) (*mcp.CallToolResult, MemoryQueryOutput, error) {
	if input.Input == "" {
		return errorResult("input is required"), MemoryQueryOutput{}, nil
	}

	answer, err := s.config.Answerer.Ask(ctx, input.Input, input.Collection)
	if err != nil {
		s.config.Logger.Error("MCP memory query failed", "error", err)
		return errorResult(fmt.Sprintf("Memory query failed: %v", err)), MemoryQueryOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: answer},
		},
	}, MemoryQueryOutput{Answer: answer}, nil
}

func (s *Server) handleMemoryRecall(ctx context.Context, _ *mcp.CallToolRequest, input MemoryRecallInput) (*mcp.CallToolResult, MemoryRecallOutput, error) {
	if input.Query == "" {
		return errorResult("query is required"), MemoryRecallOutput{}, nil
	}

	collection := input.Collection
	if collection == "" {
		collection = s.config.DefaultCollection
	}
	topK := input.TopK
	if topK <= 0 {
		topK = 5
	}

	recalled, err := s.config.Answerer.Recall(ctx, input.Query, collection, input.MinRelevance, topK)
	if err != nil {
		return errorResult(fmt.Sprintf("Memory recall failed: %v", err)), MemoryRecallOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: recalled},
		},
	}, MemoryRecallOutput{Context: recalled}, nil
}
