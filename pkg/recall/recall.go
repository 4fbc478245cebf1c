// Package recall answers questions from memory: it recalls the records most
// relevant to a question and asks the generator to answer from them alone.
package recall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/repomem/pkg/llm"
	"github.com/papercomputeco/repomem/pkg/memory"
	"github.com/papercomputeco/repomem/pkg/utils"
)

const (
	// DefaultTopK is the number of records recalled for a question.
	DefaultTopK = 1

	// DefaultMinRelevance accepts every record.
	DefaultMinRelevance float32 = 0

	// DefaultCollection is used when a query names no collection.
	DefaultCollection = "generic"

	logQueryLen = 80
)

// Config holds recall settings.
type Config struct {
	// Collection is used when Ask is called without one.
	Collection   string
	TopK         int
	MinRelevance float32

	// Settings are passed to the generator for every answer.
	Settings llm.CompletionSettings
}

// Engine recalls memory records and builds answer prompts.
type Engine struct {
	store     memory.Store
	generator llm.Generator
	config    Config
	logger    *slog.Logger
}

// NewEngine creates a recall engine. Zero config values take defaults.
func NewEngine(store memory.Store, generator llm.Generator, c Config, logger *slog.Logger) *Engine {
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	return &Engine{
		store:     store,
		generator: generator,
		config:    c,
		logger:    logger,
	}
}

// Recall searches collection for query and joins the recalled texts with
// newlines, most relevant first. No matching records yields "".
func (e *Engine) Recall(ctx context.Context, query, collection string, minRelevance float32, topK int) (string, error) {
	results, err := e.store.Search(ctx, collection, query, minRelevance, topK)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRecall, err)
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}

	e.logger.Debug("recalled memory",
		"query", utils.Truncate(query, logQueryLen),
		"collection", collection,
		"records", len(results),
		"top_k", topK,
		"min_relevance", minRelevance,
	)
	return strings.Join(texts, "\n"), nil
}

// Ask answers input from the records of collection. An empty collection
// uses the configured default. The generator is called even when nothing is
// recalled, and its text is returned verbatim.
func (e *Engine) Ask(ctx context.Context, input, collection string) (string, error) {
	if e.generator == nil {
		return "", fmt.Errorf("%w: no answer generator configured", ErrGeneration)
	}
	if collection == "" {
		collection = e.config.Collection
	}

	recalled, err := e.Recall(ctx, input, collection, e.config.MinRelevance, e.config.TopK)
	if err != nil {
		e.logger.Error("recall failed", "collection", collection, "error", err)
		return "", err
	}

	answer, err := e.generator.Complete(ctx, BuildPrompt(recalled, input), e.config.Settings)
	if err != nil {
		e.logger.Error("answer generation failed", "collection", collection, "error", err)
		if errors.Is(err, ErrGeneration) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	return answer, nil
}

// BuildPrompt places the recalled text above the question.
func BuildPrompt(recalled, input string) string {
	var b strings.Builder
	b.WriteString(recalled)
	b.WriteString("\n---\n")
	b.WriteString("Considering only the information above, which has been loaded from a GitHub repository, answer the following.\n")
	b.WriteString("Question: ")
	b.WriteString(input)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
