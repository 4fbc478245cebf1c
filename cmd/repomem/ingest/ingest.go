// Package ingestcmder provides the ingest command, storing a GitHub
// repository branch in memory.
package ingestcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/repomem/cmd/repomem/components"
	"github.com/papercomputeco/repomem/pkg/cliui"
	"github.com/papercomputeco/repomem/pkg/config"
	"github.com/papercomputeco/repomem/pkg/git"
	"github.com/papercomputeco/repomem/pkg/ingest"
	"github.com/papercomputeco/repomem/pkg/logger"
)

// patEnv is read when --pat is not given.
const patEnv = "GITHUB_TOKEN"

type ingestCommander struct {
	debug     bool
	pat       string
	branchSet bool
	out       io.Writer
	errw      io.Writer

	logger *slog.Logger
}

const ingestLongDesc string = `Ingest a GitHub repository branch into memory.

Downloads the branch archive, stores every file matching the search
pattern as memory records and prints how many were saved. Files up to
ingest.max_file_size characters are stored whole, larger files are split
into chunks of at most ingest.max_tokens tokens.

The in-memory vector store lives only as long as the command; configure
vector_store.provider (sqlite, chroma, qdrant or postgres) to keep the
records for "repomem ask" and "repomem serve".

A path to a local checkout ingests its origin remote at the checked out
branch, unless --branch is given.

Private repositories need a GitHub token, passed with --pat or the
GITHUB_TOKEN environment variable.

Examples:
  repomem ingest https://github.com/owner/repo
  repomem ingest .
  repomem ingest https://github.com/owner/repo -b develop -p "*.go"
  repomem ingest https://github.com/owner/repo --summarize -c summaries`

const ingestShortDesc string = "Ingest a GitHub repository into memory"

// Keys returns the registry keys of the flags the ingest command registers.
func Keys() []string {
	keys := []string{
		config.FlagCollection,
		config.FlagBranch,
		config.FlagSearchPattern,
		config.FlagMaxFileSize,
		config.FlagMaxTokens,
		config.FlagConcurrency,
		config.FlagTokenizer,
		config.FlagSummarize,
	}
	keys = append(keys, components.StoreFlags...)
	keys = append(keys, components.LLMFlags...)
	keys = append(keys, components.EventFlags...)
	return keys
}

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <repository-url>",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.out = cmd.OutOrStdout()
			cmder.errw = cmd.ErrOrStderr()
			cmder.branchSet = cmd.Flags().Changed(config.Registry[config.FlagBranch].Name)

			cfg, err := components.LoadConfig(cmd, Keys())
			if err != nil {
				return err
			}

			return cmder.run(cmd.Context(), cfg, args[0])
		},
	}

	components.Flags(cmd, Keys()...)
	cmd.Flags().StringVar(&cmder.pat, "pat", "", "GitHub personal access token (default: $GITHUB_TOKEN)")

	return cmd
}

func (c *ingestCommander) run(ctx context.Context, cfg *config.Config, target string) error {
	url, branch, err := c.resolveTarget(ctx, target, cfg.Ingest.Branch)
	if err != nil {
		return err
	}

	level := logger.WithLevel("warn")
	if c.debug {
		level = logger.WithDebug(true)
	}
	c.logger = logger.New(level, logger.WithPretty(true), logger.WithWriter(c.errw))

	comps, err := components.New(ctx, cfg, components.Options{
		Generator: cfg.Ingest.Summarize,
		Events:    true,
	}, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := comps.Close(); err != nil {
			c.logger.Error("closing components", "error", err)
		}
	}()

	pat := c.pat
	if pat == "" {
		pat = os.Getenv(patEnv)
	}

	req := ingest.Request{
		URL:        url,
		Branch:     branch,
		Pattern:    cfg.Ingest.SearchPattern,
		PAT:        pat,
		Collection: cfg.Ingest.Collection,
		Summarize:  cfg.Ingest.Summarize,
	}

	var result *ingest.Result
	start := time.Now()
	err = cliui.Step(c.out, fmt.Sprintf("Ingesting %s@%s", url, req.Branch), func() error {
		var err error
		result, err = comps.Orchestrator.Summarize(ctx, req)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "  %s\n", cliui.KeyValue("repository", result.Repository))
	fmt.Fprintf(c.out, "  %s\n", cliui.KeyValue("collection", result.Collection))
	fmt.Fprintf(c.out, "  %s\n", cliui.KeyValue("files", strconv.Itoa(result.Files)))
	fmt.Fprintf(c.out, "  %s\n", cliui.KeyValue("records", strconv.Itoa(result.Records)))
	fmt.Fprintf(c.out, "  %s\n", cliui.KeyValue("took", cliui.FormatDuration(time.Since(start))))

	return nil
}

// resolveTarget returns target unchanged unless it names a local directory,
// in which case the checkout's GitHub remote and branch are used.
func (c *ingestCommander) resolveTarget(ctx context.Context, target, branch string) (string, string, error) {
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return target, branch, nil
	}

	checkout, err := git.Detect(ctx, target)
	if err != nil {
		return "", "", fmt.Errorf("resolving repository of %s: %w", target, err)
	}

	if !c.branchSet && checkout.Branch != "" {
		branch = checkout.Branch
	}
	return checkout.URL, branch, nil
}
