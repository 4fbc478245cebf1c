package components

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/repomem/pkg/config"
)

// StoreFlags select the vector store and embedding provider.
var StoreFlags = []string{
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagSQLite,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

// LLMFlags select the answer generator.
var LLMFlags = []string{
	config.FlagLLMProv,
	config.FlagLLMTgt,
	config.FlagLLMModel,
}

// EventFlags select the ingestion event publisher.
var EventFlags = []string{
	config.FlagEventsProv,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
}

// Flags registers every registry key in keys on cmd. The registered values
// are only read back through viper by LoadConfig.
func Flags(cmd *cobra.Command, keys ...string) {
	for _, key := range keys {
		switch key {
		case config.FlagEmbeddingDims, config.FlagTopK, config.FlagMaxFileSize,
			config.FlagMaxTokens, config.FlagConcurrency:
			config.AddUintFlag(cmd, config.Registry, key, new(uint))
		case config.FlagMinRelevance:
			config.AddFloatFlag(cmd, config.Registry, key, new(float64))
		case config.FlagSummarize:
			config.AddBoolFlag(cmd, config.Registry, key, new(bool))
		default:
			config.AddStringFlag(cmd, config.Registry, key, new(string))
		}
	}
}

// LoadConfig materializes the config for cmd with the flag > env > file >
// default precedence. keys must be the registry keys registered with Flags.
func LoadConfig(cmd *cobra.Command, keys []string) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Registry, keys)

	return config.FromViper(v)
}
