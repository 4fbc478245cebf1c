package config

const (
	defaultAPIListen = ":8081"

	defaultCollection    = "generic"
	defaultBranch        = "main"
	defaultSearchPattern = "*.md"
	defaultMaxFileSize   = 2048
	defaultMaxTokens     = 1024
	defaultConcurrency   = 1
	defaultUserAgent     = "repomem"
	defaultTokenizer     = "heuristic"

	defaultTopK = 1

	defaultVectorProvider = "memory"

	defaultOllamaTarget        = "http://localhost:11434"
	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultLLMProvider  = "ollama"
	defaultLLMModel     = "llama3.2"
	defaultLLMMaxTokens = 1024
	defaultLLMTopP      = 1.0

	defaultEventsProvider = "none"
	defaultEventsTopic    = "repomem.ingested"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Ingest: IngestConfig{
			Collection:    defaultCollection,
			Branch:        defaultBranch,
			SearchPattern: defaultSearchPattern,
			MaxFileSize:   defaultMaxFileSize,
			MaxTokens:     defaultMaxTokens,
			Concurrency:   defaultConcurrency,
			UserAgent:     defaultUserAgent,
			Tokenizer:     defaultTokenizer,
		},
		Recall: RecallConfig{
			Collection: defaultCollection,
			TopK:       defaultTopK,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultOllamaTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		LLM: LLMConfig{
			Provider:  defaultLLMProvider,
			Target:    defaultOllamaTarget,
			Model:     defaultLLMModel,
			MaxTokens: defaultLLMMaxTokens,
			TopP:      defaultLLMTopP,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
