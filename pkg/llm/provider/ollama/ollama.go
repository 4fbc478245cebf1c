// Package ollama implements an llm.Generator over Ollama's chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/papercomputeco/repomem/pkg/llm"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "llama3.2"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"
)

// New returns a caller for non-streaming POST {baseURL}/api/chat.
func New(model, baseURL string, client *http.Client) llm.CallFunc {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	target := strings.TrimRight(baseURL, "/") + "/api/chat"

	return func(ctx context.Context, prompt string, settings llm.CompletionSettings) (string, error) {
		request := chatRequest{
			Model: model,
			Messages: []chatMessage{
				{Role: "user", Content: prompt},
			},
			Stream:  false,
			Options: toOptions(settings),
		}

		payload, err := json.Marshal(request)
		if err != nil {
			return "", fmt.Errorf("marshal ollama request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("create ollama request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("send ollama request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode, string(body))
		}

		var response chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
			return "", fmt.Errorf("decode ollama response: %w", err)
		}
		if response.Error != "" {
			return "", fmt.Errorf("ollama error: %s", response.Error)
		}

		return response.Message.Content, nil
	}
}

func toOptions(s llm.CompletionSettings) *options {
	if s == (llm.CompletionSettings{}) {
		return nil
	}
	o := &options{NumPredict: s.MaxTokens}
	if s.Temperature != 0 {
		o.Temperature = &s.Temperature
	}
	if s.TopP != 0 {
		o.TopP = &s.TopP
	}
	return o
}
