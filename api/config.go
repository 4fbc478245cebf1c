// Package api provides the HTTP API for ingesting repositories into memory
// and asking questions about them.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Summarize is used when a SummarizeRepository request has no
	// summarize parameter.
	Summarize bool

	// DisableMCP leaves /mcp unmounted.
	DisableMCP bool
}
