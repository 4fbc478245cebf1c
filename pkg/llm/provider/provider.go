// Package provider builds an llm.Generator for a configured provider.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/papercomputeco/repomem/pkg/llm"
	"github.com/papercomputeco/repomem/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/repomem/pkg/llm/provider/ollama"
	"github.com/papercomputeco/repomem/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	Anthropic = "anthropic"
	OpenAI    = "openai"
	Ollama    = "ollama"
)

const (
	// DefaultTimeout bounds hosted provider calls.
	DefaultTimeout = 30 * time.Second

	// DefaultOllamaTimeout is longer since local models may need loading.
	DefaultOllamaTimeout = 2 * time.Minute
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Anthropic, OpenAI, Ollama}
}

// Config holds configuration for creating a generator.
type Config struct {
	Provider string // "openai", "anthropic", or "ollama"
	Model    string // e.g. "gpt-4o-mini", "claude-haiku-4-5-20251001"
	BaseURL  string // override base URL

	// APIKey takes precedence over OPENAI_API_KEY / ANTHROPIC_API_KEY.
	APIKey string

	// Timeout bounds a single call. Defaults per provider.
	Timeout time.Duration
}

// New creates a Generator for the given configuration. Every failure of the
// returned generator wraps llm.ErrGeneration.
func New(cfg Config, logger *slog.Logger) (llm.Generator, error) {
	provider := strings.ToLower(cfg.Provider)

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = resolveAPIKeyFromEnv(provider)
	}

	timeout := cfg.Timeout
	var call llm.CallFunc
	switch provider {
	case OpenAI:
		if apiKey == "" {
			return nil, errors.New("openai generator requires an API key (set OPENAI_API_KEY)")
		}
		call = openai.New(apiKey, cfg.Model, cfg.BaseURL, http.DefaultClient)

	case Anthropic:
		if apiKey == "" {
			return nil, errors.New("anthropic generator requires an API key (set ANTHROPIC_API_KEY)")
		}
		call = anthropic.New(apiKey, cfg.Model, cfg.BaseURL, http.DefaultClient)

	case Ollama, "":
		provider = Ollama
		if timeout == 0 {
			timeout = DefaultOllamaTimeout
		}
		call = ollama.New(cfg.Model, cfg.BaseURL, http.DefaultClient)

	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", cfg.Provider, SupportedProviders())
	}

	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &generator{
		provider: provider,
		call:     call,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

type generator struct {
	provider string
	call     llm.CallFunc
	timeout  time.Duration
	logger   *slog.Logger
}

func (g *generator) Complete(ctx context.Context, prompt string, settings llm.CompletionSettings) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.call(ctx, prompt, settings)
	if err != nil {
		g.logger.Warn("generation failed",
			"provider", g.provider,
			"duration", time.Since(start),
			"error", err,
		)
		return "", fmt.Errorf("%w: %w", llm.ErrGeneration, err)
	}

	g.logger.Debug("generation complete",
		"provider", g.provider,
		"prompt_chars", len(prompt),
		"response_chars", len(text),
		"duration", time.Since(start),
	)
	return text, nil
}

func resolveAPIKeyFromEnv(provider string) string {
	switch provider {
	case Anthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case OpenAI:
		return os.Getenv("OPENAI_API_KEY")
	default:
		return ""
	}
}
