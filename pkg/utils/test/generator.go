package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/repomem/pkg/llm"
)

// GenerateCall captures the arguments of a MockGenerator.Complete call.
type GenerateCall struct {
	Prompt   string
	Settings llm.CompletionSettings
}

// MockGenerator is a test generator that records prompts and returns a fixed
// response, or a response derived from the prompt when Respond is set.
type MockGenerator struct {
	mu sync.Mutex

	// Calls accumulates all Complete calls.
	Calls []GenerateCall

	// Response is returned when Respond is nil.
	Response string

	// Respond computes the response from the prompt.
	Respond func(prompt string) string

	// Fail causes Complete to return an error wrapping llm.ErrGeneration.
	Fail bool
}

// NewMockGenerator creates a mock generator returning response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

func (m *MockGenerator) Complete(_ context.Context, prompt string, settings llm.CompletionSettings) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, GenerateCall{Prompt: prompt, Settings: settings})
	if m.Fail {
		return "", errors.Join(llm.ErrGeneration, errors.New("mock generation failure"))
	}
	if m.Respond != nil {
		return m.Respond(prompt), nil
	}
	return m.Response, nil
}

// Prompts returns a copy of the prompts received so far.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		out[i] = c.Prompt
	}
	return out
}

var _ llm.Generator = (*MockGenerator)(nil)
