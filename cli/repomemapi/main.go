package main

import (
	"os"

	servecmder "github.com/papercomputeco/repomem/cmd/repomem/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "repomemapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .repomem/ directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
