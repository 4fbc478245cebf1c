// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/papercomputeco/repomem/pkg/vector"
)

const (
	collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"
	heartbeatPath   = "/api/v2/heartbeat"

	defaultMaxRetries    = 5
	defaultRetryDelay    = 500 * time.Millisecond
	defaultMaxRetryDelay = 5 * time.Second
)

// Driver implements vector.Driver using Chroma's REST API. Each repomem
// collection maps to a Chroma collection of the same name using cosine
// distance.
type Driver struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu            sync.Mutex
	collectionIDs map[string]string
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// MaxRetries bounds the connection attempts made by NewDriver while
	// Chroma starts up. Defaults to 5.
	MaxRetries int

	// RetryDelay is the first backoff delay, doubled after each attempt up
	// to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewDriver creates a new Chroma vector driver once the server answers its
// heartbeat.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, errors.New("chroma URL is required")
	}

	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	delay := c.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	maxDelay := c.MaxRetryDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxRetryDelay
	}

	d := &Driver{
		baseURL: c.URL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger:        logger,
		collectionIDs: make(map[string]string),
	}

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = d.heartbeat(context.Background()); err == nil {
			logger.Info("connected to Chroma", "url", c.URL)
			return d, nil
		}

		logger.Debug("chroma not ready", "attempt", attempt, "error", err)
		if attempt < maxRetries {
			time.Sleep(delay)
			delay = min(delay*2, maxDelay)
		}
	}

	return nil, fmt.Errorf("%w: chroma at %s after %d attempts: %v", vector.ErrConnection, c.URL, maxRetries, err)
}

func (d *Driver) heartbeat(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+heartbeatPath, nil)
	if err != nil {
		return fmt.Errorf("creating heartbeat request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending heartbeat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heartbeat returned status %d", resp.StatusCode)
	}
	return nil
}

// collectionID returns the ID of the named collection, creating it with
// cosine distance on first use.
func (d *Driver) collectionID(ctx context.Context, name string, create bool) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id, ok := d.collectionIDs[name]; ok {
		return id, nil
	}

	var (
		collection chromaCollection
		err        error
	)
	if create {
		err = d.post(ctx, collectionsPath, chromaCreateCollectionRequest{
			Name:        name,
			Metadata:    map[string]any{"hnsw:space": "cosine"},
			GetOrCreate: true,
		}, &collection)
	} else {
		err = d.get(ctx, collectionsPath+"/"+url.PathEscape(name), &collection)
	}
	if err != nil {
		return "", err
	}

	d.collectionIDs[name] = collection.ID
	return collection.ID, nil
}

// Upsert stores documents in the named collection.
func (d *Driver) Upsert(ctx context.Context, collection string, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	id, err := d.collectionID(ctx, collection, true)
	if err != nil {
		return fmt.Errorf("resolving collection %q: %w", collection, err)
	}

	reqBody := chromaUpsertRequest{
		IDs:        make([]string, len(docs)),
		Embeddings: make([][]float32, len(docs)),
		Documents:  make([]string, len(docs)),
	}
	for i, doc := range docs {
		reqBody.IDs[i] = doc.ID
		reqBody.Embeddings[i] = doc.Embedding
		reqBody.Documents[i] = doc.Text
	}

	if err := d.post(ctx, collectionsPath+"/"+id+"/upsert", reqBody, nil); err != nil {
		return fmt.Errorf("upserting documents: %w", err)
	}

	d.logger.Debug("upserted documents to chroma",
		"collection", collection,
		"count", len(docs),
	)

	return nil
}

// Query finds the topK most similar documents of the named collection.
// The score is 1 - cosine distance.
func (d *Driver) Query(ctx context.Context, collection string, embedding []float32, topK int, minScore float32) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = vector.DefaultTopK
	}

	id, err := d.collectionID(ctx, collection, false)
	if err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving collection %q: %w", collection, err)
	}

	var queryResp chromaQueryResponse
	err = d.post(ctx, collectionsPath+"/"+id+"/query", chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"documents", "distances"},
	}, &queryResp)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}

	// Process first group (we only query with one embedding)
	if len(queryResp.IDs) == 0 {
		return nil, nil
	}

	var results []vector.QueryResult
	for i, docID := range queryResp.IDs[0] {
		result := vector.QueryResult{Document: vector.Document{ID: docID}}

		if len(queryResp.Distances) > 0 && i < len(queryResp.Distances[0]) {
			result.Score = 1 - queryResp.Distances[0][i]
		}
		if result.Score < minScore {
			continue
		}

		if len(queryResp.Documents) > 0 && i < len(queryResp.Documents[0]) && queryResp.Documents[0][i] != nil {
			result.Text = *queryResp.Documents[0][i]
		}

		results = append(results, result)
	}

	d.logger.Debug("queried chroma",
		"collection", collection,
		"results", len(results),
	)

	return results, nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}

func (d *Driver) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return d.do(req, out)
}

func (d *Driver) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return d.do(req, out)
}

func (d *Driver) do(req *http.Request, out any) error {
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

var _ vector.Driver = (*Driver)(nil)
