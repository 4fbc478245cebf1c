// Package llm defines the text generation collaborator used to answer memory
// queries and summarize ingested chunks.
package llm

import (
	"context"
	"errors"
)

// ErrGeneration is returned when the language model fails or times out.
var ErrGeneration = errors.New("generation failed")

// CompletionSettings are the sampling parameters of a single completion.
// Zero values are left to the provider's defaults.
type CompletionSettings struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// SummarizeSettings are used when chunks are replaced by their summary.
var SummarizeSettings = CompletionSettings{
	MaxTokens:   1024,
	Temperature: 0.1,
	TopP:        0.5,
}

// Generator completes a prompt into text.
type Generator interface {
	Complete(ctx context.Context, prompt string, settings CompletionSettings) (string, error)
}

// CallFunc is the signature for a single LLM inference call.
type CallFunc func(ctx context.Context, prompt string, settings CompletionSettings) (string, error)

// Complete calls f.
func (f CallFunc) Complete(ctx context.Context, prompt string, settings CompletionSettings) (string, error) {
	return f(ctx, prompt, settings)
}
