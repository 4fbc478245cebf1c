package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// FakeOllama serves /api/embed with a fixed embedding and /api/chat with a
// fixed answer.
type FakeOllama struct {
	Server *httptest.Server

	// Answer is the assistant message returned by /api/chat.
	Answer string

	mu      sync.Mutex
	prompts []string
	embeds  int
}

// NewFakeOllama starts a fake ollama. Callers must Close it.
func NewFakeOllama(answer string) *FakeOllama {
	o := &FakeOllama{Answer: answer}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/embed", o.embed)
	mux.HandleFunc("POST /api/chat", o.chat)
	o.Server = httptest.NewServer(mux)
	return o
}

func (o *FakeOllama) URL() string {
	return o.Server.URL
}

// Prompts returns the user messages received by /api/chat, in order.
func (o *FakeOllama) Prompts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.prompts))
	copy(out, o.prompts)
	return out
}

// Embeds returns the number of /api/embed calls.
func (o *FakeOllama) Embeds() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.embeds
}

func (o *FakeOllama) Close() {
	o.Server.Close()
}

func (o *FakeOllama) embed(w http.ResponseWriter, _ *http.Request) {
	o.mu.Lock()
	o.embeds++
	o.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"embeddings": [][]float32{{0.1, 0.2, 0.3}},
	})
}

func (o *FakeOllama) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
		return
	}

	o.mu.Lock()
	for _, m := range req.Messages {
		o.prompts = append(o.prompts, m.Content)
	}
	o.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": map[string]string{"role": "assistant", "content": o.Answer},
		"done":    true,
	})
}
