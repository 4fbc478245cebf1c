// Package ingest turns a GitHub repository branch into memory records.
//
// One ingestion downloads the branch zipball into a temporary workspace,
// extracts it, lists the files matching a glob, chunks every file and saves
// each chunk under a stable id:
//
//	docs/setup.md        file stored whole
//	src/main.py_0        first chunk of a split file
//	src/main.py_1
//
// The workspace is removed whatever the outcome.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/repomem/pkg/archive"
	"github.com/papercomputeco/repomem/pkg/chunker"
	"github.com/papercomputeco/repomem/pkg/eventstream"
	"github.com/papercomputeco/repomem/pkg/llm"
	"github.com/papercomputeco/repomem/pkg/memory"
	"github.com/papercomputeco/repomem/pkg/walker"
)

const (
	// DefaultCollection receives records when neither the request nor the
	// config names a collection.
	DefaultCollection = "generic"

	// DefaultBranch is ingested when a request names no branch.
	DefaultBranch = "main"
)

// Fetcher downloads the archive of a repository reference into dest.
type Fetcher interface {
	Fetch(ctx context.Context, ref archive.RepositoryReference, credential, dest string) error
}

// Config holds the orchestrator's collaborators and defaults.
type Config struct {
	Fetcher Fetcher
	Chunker *chunker.Chunker
	Store   memory.Store

	// Generator is required only for summarizing ingestions.
	Generator llm.Generator

	// Publisher receives an event after every successful ingestion.
	// Defaults to dropping events.
	Publisher eventstream.Publisher

	Collection string
	Branch     string
	Pattern    string

	// Concurrency is the number of files stored in parallel. Defaults to 1.
	Concurrency uint

	// TempDir holds workspaces. Defaults to os.TempDir().
	TempDir string

	Logger *slog.Logger
}

// Request describes one ingestion. Empty fields take the configured defaults.
type Request struct {
	URL     string
	Branch  string
	Pattern string

	// PAT is an optional GitHub token used for the download only.
	PAT string

	Collection string

	// Summarize stores a generated summary of each chunk instead of its text.
	Summarize bool
}

// Result reports a successful ingestion.
type Result struct {
	// Repository is "{APIURI}-{Branch}".
	Repository string `json:"repository"`
	Collection string `json:"collection"`
	Files      int    `json:"files"`
	Records    int    `json:"records"`
}

// Orchestrator runs ingestions. It is safe for concurrent use; every call
// works in its own workspace.
type Orchestrator struct {
	config *Config
	logger *slog.Logger
}

// NewOrchestrator validates c and applies defaults.
func NewOrchestrator(c *Config) (*Orchestrator, error) {
	if c.Fetcher == nil {
		return nil, errors.New("ingest orchestrator requires a fetcher")
	}
	if c.Store == nil {
		return nil, errors.New("ingest orchestrator requires a memory store")
	}
	if c.Chunker == nil {
		c.Chunker = chunker.New(chunker.Config{})
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
	if c.Pattern == "" {
		c.Pattern = walker.DefaultPattern
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
	if c.Logger == nil {
		return nil, errors.New("ingest orchestrator requires a logger")
	}

	return &Orchestrator{config: c, logger: c.Logger}, nil
}

// Summarize ingests the repository branch named by req.
func (o *Orchestrator) Summarize(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	branch := req.Branch
	if branch == "" {
		branch = o.config.Branch
	}
	pattern := req.Pattern
	if pattern == "" {
		pattern = o.config.Pattern
	}
	collection := req.Collection
	if collection == "" {
		collection = o.config.Collection
	}

	ref, err := archive.ParseRepository(req.URL, branch)
	if err != nil {
		return nil, err
	}
	if err := walker.ValidatePattern(pattern); err != nil {
		return nil, fmt.Errorf("%w: %w", archive.ErrInvalidInput, err)
	}
	if req.Summarize && o.config.Generator == nil {
		return nil, fmt.Errorf("%w: summarization requires a configured llm", archive.ErrInvalidInput)
	}

	log := o.logger.With(
		"repository", ref.APIURI,
		"branch", ref.Branch,
		"collection", collection,
	)
	o.transition(log, StateIdle)

	ws := archive.NewWorkspace(o.config.TempDir)
	defer func() {
		if err := ws.Cleanup(); err != nil {
			log.Warn("workspace cleanup failed", "dir", ws.Dir, "error", err)
		}
		o.transition(log, StateCleanedUp)
	}()

	o.transition(log, StateDownloading)
	if err := o.config.Fetcher.Fetch(ctx, ref, req.PAT, ws.Archive); err != nil {
		log.Error("archive download failed", "error", err)
		return nil, err
	}

	o.transition(log, StateExtracting)
	if err := archive.Extract(ws.Archive, ws.Dir); err != nil {
		log.Error("archive extraction failed", "error", err)
		return nil, err
	}

	o.transition(log, StateWalking)
	files, err := walker.ListFiles(ws.Dir, pattern, ref.InjectedFolder())
	if err != nil {
		log.Error("listing files failed", "pattern", pattern, "error", err)
		return nil, err
	}
	log.Info("files matched", "pattern", pattern, "files", len(files))

	o.transition(log, StateSummarizing)
	records, err := o.storeFiles(ctx, log, ref, files, collection, req.Summarize)
	if err != nil {
		log.Error("storing files failed", "error", err)
		return nil, err
	}

	o.transition(log, StateResponding)
	result := &Result{
		Repository: ref.String(),
		Collection: collection,
		Files:      len(files),
		Records:    records,
	}
	o.publish(ctx, log, ref, pattern, req.Summarize, result, time.Since(start))

	log.Info("repository ingested",
		"files", result.Files,
		"records", result.Records,
		"duration", time.Since(start),
	)
	return result, nil
}

// storeFiles stores every file, config.Concurrency at a time. Record ids of
// distinct files never collide, so order does not matter.
func (o *Orchestrator) storeFiles(ctx context.Context, log *slog.Logger, ref archive.RepositoryReference, files []walker.File, collection string, summarize bool) (int, error) {
	var records atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(o.config.Concurrency))

	for _, f := range files {
		if err := gctx.Err(); err != nil {
			break
		}

		g.Go(func() error {
			n, err := o.storeFile(gctx, log, ref, f, collection, summarize)
			if err != nil {
				return err
			}
			records.Add(int64(n))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("ingestion cancelled: %w", err)
	}

	return int(records.Load()), nil
}

// storeFile chunks one file and saves its records, returning how many were
// saved. Empty files save nothing.
func (o *Orchestrator) storeFile(ctx context.Context, log *slog.Logger, ref archive.RepositoryReference, f walker.File, collection string, summarize bool) (int, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", f.URI, err)
	}

	text := string(data)
	chunks := o.config.Chunker.Chunk(text, f.Ext)
	if len(chunks) == 0 {
		log.Debug("skipping empty file", "uri", f.URI)
		return 0, nil
	}

	split := o.config.Chunker.ShouldSplit(text)
	link := " File:" + ref.BlobURL(f.URI)

	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		id := RecordID(f.URI, c.Index, split)

		body := c.Text
		if summarize {
			body, err = o.config.Generator.Complete(ctx, SummarizePrompt(c.Text), llm.SummarizeSettings)
			if err != nil {
				if !errors.Is(err, llm.ErrGeneration) {
					err = fmt.Errorf("%w: %w", llm.ErrGeneration, err)
				}
				return 0, fmt.Errorf("summarizing %s: %w", id, err)
			}
		}

		if err := o.config.Store.Save(ctx, collection, id, body+link); err != nil {
			return 0, fmt.Errorf("storing %s: %w", id, err)
		}
	}

	log.Debug("file stored",
		"uri", f.URI,
		"chunks", len(chunks),
		"split", split,
	)
	return len(chunks), nil
}

func (o *Orchestrator) publish(ctx context.Context, log *slog.Logger, ref archive.RepositoryReference, pattern string, summarized bool, result *Result, elapsed time.Duration) {
	if o.config.Publisher == nil {
		return
	}

	event := eventstream.NewRepositoryIngestedEvent(ref.APIURI, ref.Branch, result.Collection)
	event.Pattern = pattern
	event.Files = result.Files
	event.Records = result.Records
	event.DurationMs = elapsed.Milliseconds()
	event.Summarized = summarized

	if err := o.config.Publisher.Publish(ctx, event); err != nil {
		log.Warn("ingestion event not published", "event_id", event.EventID, "error", err)
	}
}

func (o *Orchestrator) transition(log *slog.Logger, s State) {
	log.Info("ingestion state", "state", string(s))
}

// RecordID names chunk index of the file at uri. Files stored whole keep
// the bare uri.
func RecordID(uri string, index int, split bool) string {
	if !split {
		return uri
	}
	return uri + "_" + strconv.Itoa(index)
}
