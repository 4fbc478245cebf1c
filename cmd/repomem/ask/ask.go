// Package askcmder provides the ask command, answering a question from the
// records stored in memory.
package askcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/repomem/cmd/repomem/components"
	"github.com/papercomputeco/repomem/pkg/cliui"
	"github.com/papercomputeco/repomem/pkg/config"
	"github.com/papercomputeco/repomem/pkg/logger"
)

type askCommander struct {
	debug      bool
	recallOnly bool
	raw        bool
	out        io.Writer
	errw       io.Writer

	logger *slog.Logger
}

const askLongDesc string = `Answer a question from memory.

Recalls the most relevant records of the collection and asks the answer
generator to answer using only them. Run against the vector store that
"repomem ingest" or "repomem serve" wrote to.

Use --recall-only to print the recalled records without generating an
answer.

Examples:
  repomem ask "How do I run the tests?"
  repomem ask -c docs -k 3 "Which flags does serve take?"
  repomem ask --recall-only "kafka publisher"`

const askShortDesc string = "Answer a question from memory"

// Keys returns the registry keys of the flags the ask command registers.
func Keys() []string {
	keys := []string{
		config.FlagRecallCollection,
		config.FlagTopK,
		config.FlagMinRelevance,
	}
	keys = append(keys, components.StoreFlags...)
	keys = append(keys, components.LLMFlags...)
	return keys
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.out = cmd.OutOrStdout()
			cmder.errw = cmd.ErrOrStderr()

			cfg, err := components.LoadConfig(cmd, Keys())
			if err != nil {
				return err
			}

			return cmder.run(cmd.Context(), cfg, strings.Join(args, " "))
		},
	}

	components.Flags(cmd, Keys()...)
	cmd.Flags().BoolVar(&cmder.recallOnly, "recall-only", false, "Print the recalled records instead of an answer")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the answer without markdown rendering")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cfg *config.Config, question string) error {
	level := logger.WithLevel("warn")
	if c.debug {
		level = logger.WithDebug(true)
	}
	c.logger = logger.New(level, logger.WithPretty(true), logger.WithWriter(c.errw))

	comps, err := components.New(ctx, cfg, components.Options{
		Generator: !c.recallOnly,
	}, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := comps.Close(); err != nil {
			c.logger.Error("closing components", "error", err)
		}
	}()

	if c.recallOnly {
		recalled, err := comps.Engine.Recall(ctx, question,
			cfg.Recall.Collection,
			float32(cfg.Recall.MinRelevance),
			int(cfg.Recall.TopK),
		)
		if err != nil {
			return err
		}
		if recalled == "" {
			fmt.Fprintln(c.out, cliui.DimStyle.Render("No matching records."))
			return nil
		}
		fmt.Fprintln(c.out, recalled)
		return nil
	}

	answer, err := comps.Engine.Ask(ctx, question, cfg.Recall.Collection)
	if err != nil {
		return err
	}

	return c.print(answer)
}

func (c *askCommander) print(answer string) error {
	if c.raw || !cliui.IsTerminal(c.out) {
		fmt.Fprintln(c.out, answer)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(answer, cliui.WrapWidth(c.out))
	if err != nil {
		fmt.Fprintln(c.out, answer)
		return nil
	}
	fmt.Fprint(c.out, rendered)
	return nil
}
