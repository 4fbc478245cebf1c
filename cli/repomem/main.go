package main

import (
	"os"

	repomemcmder "github.com/papercomputeco/repomem/cmd/repomem"
)

func main() {
	cmd := repomemcmder.NewRepomemCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
