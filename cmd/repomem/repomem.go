// Package repomemcmder provides the root repomem command.
package repomemcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/repomem/cmd/repomem/ask"
	configcmder "github.com/papercomputeco/repomem/cmd/repomem/config"
	ingestcmder "github.com/papercomputeco/repomem/cmd/repomem/ingest"
	initcmder "github.com/papercomputeco/repomem/cmd/repomem/init"
	servecmder "github.com/papercomputeco/repomem/cmd/repomem/serve"
	versioncmder "github.com/papercomputeco/repomem/cmd/version"
)

const repomemLongDesc string = `repomem turns GitHub repositories into a queryable memory.

Ingest a repository branch, then ask questions answered only from what
was stored:
  repomem ingest https://github.com/owner/repo    Ingest a repository
  repomem ask "How do I configure X?"             Answer from memory
  repomem serve                                   Run the API server

Settings live in config.toml inside .repomem/ (see "repomem config").`

const repomemShortDesc string = "repomem - GitHub repository memory"

func NewRepomemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "repomem",
		Short:        repomemShortDesc,
		Long:         repomemLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .repomem/ directory")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
