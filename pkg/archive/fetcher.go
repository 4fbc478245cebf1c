package archive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
)

const (
	// DefaultUserAgent is sent when FetcherConfig.UserAgent is empty.
	DefaultUserAgent = "repomem"

	githubAPIVersion = "2022-11-28"
	githubAccept     = "application/vnd.github+json"

	copyBufferSize = 64 * 1024
)

// FetcherConfig holds configuration for the archive Fetcher.
type FetcherConfig struct {
	UserAgent string

	// Client defaults to a client without timeout; the request context bounds
	// the download.
	Client *http.Client
}

// Fetcher downloads repository zipballs.
type Fetcher struct {
	userAgent string
	client    *http.Client
	logger    *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig, logger *slog.Logger) *Fetcher {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	return &Fetcher{
		userAgent: userAgent,
		client:    client,
		logger:    logger,
	}
}

// Fetch streams the zipball of ref into dest. A non-empty credential is sent
// as a bearer token.
func (f *Fetcher) Fetch(ctx context.Context, ref RepositoryReference, credential string, dest string) error {
	archiveURL := ref.ArchiveURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", ErrInvalidInput, err)
	}
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	req.Header.Set("Accept", githubAccept)
	req.Header.Set("User-Agent", f.userAgent)
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	f.logger.Debug("downloading archive",
		"url", archiveURL,
		"authenticated", credential != "",
	)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: downloading %s: %v", ErrNetwork, archiveURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DownloadError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriterSize(out, copyBufferSize)
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading archive body: %v", ErrNetwork, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing archive file: %w", err)
	}

	f.logger.Debug("archive downloaded", "url", archiveURL, "bytes", n)

	return out.Close()
}
