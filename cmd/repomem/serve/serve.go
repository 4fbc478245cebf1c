// Package servecmder provides the serve command running the repomem API
// server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/repomem/api"
	"github.com/papercomputeco/repomem/cmd/repomem/components"
	"github.com/papercomputeco/repomem/pkg/cliui"
	"github.com/papercomputeco/repomem/pkg/config"
	"github.com/papercomputeco/repomem/pkg/logger"
)

type serveCommander struct {
	debug      bool
	disableMCP bool
	logger     *slog.Logger
}

const serveLongDesc string = `Run the repomem API server.

The server ingests GitHub repositories into memory and answers questions
from the stored records:
  GET|POST /SummarizeRepository    Ingest a repository branch
  POST     /GitHubMemoryQuery      Answer a question from memory
  GET      /ping                   Liveness check
  ANY      /mcp                    MCP tools over streamable HTTP

All requests share one memory store, configured in the vector_store and
embedding sections of config.toml.`

const serveShortDesc string = "Run the repomem API server"

// Keys returns the registry keys of the flags the serve command registers.
func Keys() []string {
	keys := []string{
		config.FlagAPIListen,
		config.FlagCollection,
		config.FlagSummarize,
		config.FlagConcurrency,
		config.FlagTokenizer,
	}
	keys = append(keys, components.StoreFlags...)
	keys = append(keys, components.LLMFlags...)
	keys = append(keys, components.EventFlags...)
	return keys
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cfg, err := components.LoadConfig(cmd, Keys())
			if err != nil {
				return err
			}

			return cmder.run(cmd.Context(), cfg)
		},
	}

	components.Flags(cmd, Keys()...)
	cmd.Flags().BoolVar(&cmder.disableMCP, "disable-mcp", false, "Do not mount the MCP endpoint at /mcp")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cfg *config.Config) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(cliui.IsTerminal(os.Stdout)),
		logger.WithJSON(!cliui.IsTerminal(os.Stdout)),
	)

	comps, err := components.New(ctx, cfg, components.Options{
		Generator: true,
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

	server, err := api.NewServer(api.Config{
		ListenAddr: cfg.API.Listen,
		Summarize:  cfg.Ingest.Summarize,
		DisableMCP: c.disableMCP,
	}, comps.Orchestrator, comps.Engine, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		c.logger.Info("context done, shutting down")
	}

	if err := server.Shutdown(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
