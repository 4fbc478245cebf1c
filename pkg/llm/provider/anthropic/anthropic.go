// Package anthropic implements an llm.Generator over Anthropic's messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/papercomputeco/repomem/pkg/llm"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-haiku-4-5-20251001"

	// DefaultBaseURL is the Anthropic API URL.
	DefaultBaseURL = "https://api.anthropic.com"

	// APIVersion is sent as the anthropic-version header.
	APIVersion = "2023-06-01"

	// defaultMaxTokens is required by the messages API.
	defaultMaxTokens = 1024
)

// New returns a caller for POST {baseURL}/v1/messages.
func New(apiKey, model, baseURL string, client *http.Client) llm.CallFunc {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	target := strings.TrimRight(baseURL, "/") + "/v1/messages"

	return func(ctx context.Context, prompt string, settings llm.CompletionSettings) (string, error) {
		reqBody := messagesRequest{
			Model:     model,
			MaxTokens: settings.MaxTokens,
			Messages: []message{
				{Role: "user", Content: prompt},
			},
		}
		if reqBody.MaxTokens == 0 {
			reqBody.MaxTokens = defaultMaxTokens
		}

		// Newer models reject temperature and top_p together, temperature wins.
		switch {
		case settings.Temperature != 0:
			reqBody.Temperature = &settings.Temperature
		case settings.TopP != 0 && settings.TopP != 1:
			reqBody.TopP = &settings.TopP
		}

		data, err := json.Marshal(reqBody)
		if err != nil {
			return "", fmt.Errorf("marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", apiKey)
		req.Header.Set("anthropic-version", APIVersion)

		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("anthropic request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(body))
		}

		var result messagesResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("unmarshal response: %w", err)
		}

		if result.Error != nil {
			return "", fmt.Errorf("anthropic error: %s", result.Error.Message)
		}

		var text strings.Builder
		for _, block := range result.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		if text.Len() == 0 {
			return "", errors.New("anthropic returned no content")
		}

		return text.String(), nil
	}
}
