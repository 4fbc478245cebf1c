package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --collection
// on "repomem serve", "repomem ingest" and "repomem ask").
type Flag struct {
	// Name is the long flag name (e.g. "collection").
	Name string

	// Shorthand is the one-letter short flag (e.g. "c"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "ingest.collection").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling the Add*Flag helpers and
// BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagAPIListen        = "api-listen"
	FlagCollection       = "collection"
	FlagRecallCollection = "recall-collection"
	FlagBranch           = "branch"
	FlagSearchPattern    = "search-pattern"
	FlagMaxFileSize      = "max-file-size"
	FlagMaxTokens        = "max-tokens"
	FlagConcurrency      = "concurrency"
	FlagTokenizer        = "tokenizer"
	FlagSummarize        = "summarize"
	FlagTopK             = "top-k"
	FlagMinRelevance     = "min-relevance"
	FlagVectorStoreProv  = "vector-store-provider"
	FlagVectorStoreTgt   = "vector-store-target"
	FlagSQLite           = "sqlite"
	FlagEmbeddingProv    = "embedding-provider"
	FlagEmbeddingTgt     = "embedding-target"
	FlagEmbeddingModel   = "embedding-model"
	FlagEmbeddingDims    = "embedding-dimensions"
	FlagLLMProv          = "llm-provider"
	FlagLLMTgt           = "llm-target"
	FlagLLMModel         = "llm-model"
	FlagEventsProv       = "events-provider"
	FlagEventsBrokers    = "events-brokers"
	FlagEventsTopic      = "events-topic"
)

// Registry holds the definition of every flag repomem commands register.
var Registry = FlagSet{
	FlagAPIListen:        {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagCollection:       {Name: "collection", Shorthand: "c", ViperKey: "ingest.collection", Description: "Memory collection to save records into"},
	FlagRecallCollection: {Name: "collection", Shorthand: "c", ViperKey: "recall.collection", Description: "Memory collection to search"},
	FlagBranch:           {Name: "branch", Shorthand: "b", ViperKey: "ingest.branch", Description: "Repository branch to download"},
	FlagSearchPattern:    {Name: "pattern", Shorthand: "p", ViperKey: "ingest.search_pattern", Description: "Glob matched against file names"},
	FlagMaxFileSize:      {Name: "max-file-size", ViperKey: "ingest.max_file_size", Description: "Character count at or under which a file is stored whole"},
	FlagMaxTokens:        {Name: "max-tokens", ViperKey: "ingest.max_tokens", Description: "Token budget of each stored chunk"},
	FlagConcurrency:      {Name: "concurrency", ViperKey: "ingest.concurrency", Description: "Number of files stored in parallel"},
	FlagTokenizer:        {Name: "tokenizer", ViperKey: "ingest.tokenizer", Description: "Token estimator: heuristic or a tiktoken encoding name"},
	FlagSummarize:        {Name: "summarize", ViperKey: "ingest.summarize", Description: "Store a generated summary of each chunk"},
	FlagTopK:             {Name: "top-k", Shorthand: "k", ViperKey: "recall.top_k", Description: "Number of memories recalled per question"},
	FlagMinRelevance:     {Name: "min-relevance", ViperKey: "recall.min_relevance", Description: "Minimum relevance score of recalled memories"},
	FlagVectorStoreProv:  {Name: "vector-store-provider", ViperKey: "vector_store.provider", Description: "Vector store provider (memory, sqlite, chroma, qdrant, postgres)"},
	FlagVectorStoreTgt:   {Name: "vector-store-target", ViperKey: "vector_store.target", Description: "Vector store URL, address or connection string"},
	FlagSQLite:           {Name: "sqlite", Shorthand: "s", ViperKey: "vector_store.sqlite_path", Description: "Path to the SQLite vector database"},
	FlagEmbeddingProv:    {Name: "embedding-provider", ViperKey: "embedding.provider", Description: "Embedding provider (ollama, openai)"},
	FlagEmbeddingTgt:     {Name: "embedding-target", ViperKey: "embedding.target", Description: "Embedding provider URL"},
	FlagEmbeddingModel:   {Name: "embedding-model", ViperKey: "embedding.model", Description: "Embedding model name"},
	FlagEmbeddingDims:    {Name: "embedding-dimensions", ViperKey: "embedding.dimensions", Description: "Embedding vector dimensions"},
	FlagLLMProv:          {Name: "llm-provider", ViperKey: "llm.provider", Description: "Answer generator provider (ollama, openai, anthropic)"},
	FlagLLMTgt:           {Name: "llm-target", ViperKey: "llm.target", Description: "Answer generator URL"},
	FlagLLMModel:         {Name: "llm-model", ViperKey: "llm.model", Description: "Answer generator model name"},
	FlagEventsProv:       {Name: "events-provider", ViperKey: "events.provider", Description: "Ingestion event publisher (none, kafka)"},
	FlagEventsBrokers:    {Name: "events-brokers", ViperKey: "events.brokers", Description: "Comma separated Kafka broker addresses"},
	FlagEventsTopic:      {Name: "events-topic", ViperKey: "events.topic", Description: "Kafka topic for ingestion events"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddFloatFlag registers a float64 flag on cmd from the given FlagSet.
func AddFloatFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *float64) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetFloat64(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().Float64VarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().Float64Var(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper instance holding only NewDefaultConfig values.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
