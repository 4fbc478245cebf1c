// Package configcmder provides the config command for managing persistent
// repomem configuration stored in the .repomem/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/repomem/pkg/cliui"
	"github.com/papercomputeco/repomem/pkg/config"
)

const configLongDesc string = `Manage persistent repomem configuration.

Configuration is stored as config.toml in the .repomem/ directory and provides
default values for command flags. CLI flags and REPOMEM_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen,
  ingest.collection, ingest.branch, ingest.search_pattern, ingest.summarize,
  recall.collection, recall.top_k, recall.min_relevance,
  vector_store.provider, vector_store.target, vector_store.sqlite_path,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  llm.provider, llm.target, llm.model,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  repomem config set <key> <value>    Set a configuration value
  repomem config get <key>            Get a configuration value
  repomem config list                 List all configuration values

Examples:
  repomem config set vector_store.provider sqlite
  repomem config set llm.provider anthropic
  repomem config get ingest.collection
  repomem config list`

const configShortDesc string = "Manage persistent repomem configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// validKeys completes the first positional argument with config keys.
func validKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// printTarget writes the config file header shared by get and set.
func printTarget(w io.Writer, target string) {
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}
