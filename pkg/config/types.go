package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent repomem configuration stored as
// config.toml in the .repomem/ directory.
type Config struct {
	Version     int               `toml:"version"`
	API         APIConfig         `toml:"api"`
	Ingest      IngestConfig      `toml:"ingest"`
	Recall      RecallConfig      `toml:"recall"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	LLM         LLMConfig         `toml:"llm"`
	Events      EventsConfig      `toml:"events"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// IngestConfig holds repository ingestion settings.
type IngestConfig struct {
	// Collection is the memory collection records are saved into.
	Collection string `toml:"collection,omitempty"`

	// Branch and SearchPattern are used when a request does not name them.
	Branch        string `toml:"branch,omitempty"`
	SearchPattern string `toml:"search_pattern,omitempty"`

	// MaxFileSize is the character count at or under which a file is stored
	// as a single record.
	MaxFileSize uint `toml:"max_file_size,omitempty"`

	// MaxTokens bounds every line and chunk of a split file.
	MaxTokens uint `toml:"max_tokens,omitempty"`

	// Concurrency is the number of files stored in parallel.
	Concurrency uint `toml:"concurrency,omitempty"`

	UserAgent string `toml:"user_agent,omitempty"`

	// Tokenizer is "heuristic" or a tiktoken encoding name such as "cl100k_base".
	Tokenizer string `toml:"tokenizer,omitempty"`

	// Summarize stores a generated summary of each chunk instead of its text.
	Summarize bool `toml:"summarize,omitempty"`
}

// RecallConfig holds memory query settings.
type RecallConfig struct {
	Collection   string  `toml:"collection,omitempty"`
	TopK         uint    `toml:"top_k,omitempty"`
	MinRelevance float64 `toml:"min_relevance,omitempty"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	// Provider is one of "memory", "sqlite", "chroma", "qdrant", "postgres".
	Provider string `toml:"provider,omitempty"`

	// Target is the URL, address or connection string of remote providers.
	Target string `toml:"target,omitempty"`

	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// LLMConfig holds the answer generator settings. API keys are read from
// OPENAI_API_KEY / ANTHROPIC_API_KEY and are never written to config.toml.
type LLMConfig struct {
	Provider    string  `toml:"provider,omitempty"`
	Target      string  `toml:"target,omitempty"`
	Model       string  `toml:"model,omitempty"`
	MaxTokens   uint    `toml:"max_tokens,omitempty"`
	Temperature float64 `toml:"temperature,omitempty"`
	TopP        float64 `toml:"top_p,omitempty"`
}

// EventsConfig holds ingestion event publishing settings.
type EventsConfig struct {
	// Provider is "none" or "kafka".
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma separated list of broker addresses.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// BrokerList splits Brokers on commas, dropping empty entries.
func (e EventsConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(e.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			if v == "" {
				*field(c) = 0
				return nil
			}
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func floatKey(name string, field func(c *Config) *float64) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			if v == "" {
				*field(c) = 0
				return nil
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = f
			return nil
		},
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			if v == "" {
				*field(c) = false
				return nil
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// orderedKeys lists every supported key in TOML section order.
var orderedKeys = []string{
	"api.listen",
	"ingest.collection",
	"ingest.branch",
	"ingest.search_pattern",
	"ingest.max_file_size",
	"ingest.max_tokens",
	"ingest.concurrency",
	"ingest.user_agent",
	"ingest.tokenizer",
	"ingest.summarize",
	"recall.collection",
	"recall.top_k",
	"recall.min_relevance",
	"vector_store.provider",
	"vector_store.target",
	"vector_store.sqlite_path",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.dimensions",
	"llm.provider",
	"llm.target",
	"llm.model",
	"llm.max_tokens",
	"llm.temperature",
	"llm.top_p",
	"events.provider",
	"events.brokers",
	"events.topic",
}

// configKeys is the authoritative map of all supported config keys.
var configKeys = map[string]configKeyInfo{
	"api.listen": stringKey(func(c *Config) *string { return &c.API.Listen }),

	"ingest.collection":     stringKey(func(c *Config) *string { return &c.Ingest.Collection }),
	"ingest.branch":         stringKey(func(c *Config) *string { return &c.Ingest.Branch }),
	"ingest.search_pattern": stringKey(func(c *Config) *string { return &c.Ingest.SearchPattern }),
	"ingest.max_file_size":  uintKey("ingest.max_file_size", func(c *Config) *uint { return &c.Ingest.MaxFileSize }),
	"ingest.max_tokens":     uintKey("ingest.max_tokens", func(c *Config) *uint { return &c.Ingest.MaxTokens }),
	"ingest.concurrency":    uintKey("ingest.concurrency", func(c *Config) *uint { return &c.Ingest.Concurrency }),
	"ingest.user_agent":     stringKey(func(c *Config) *string { return &c.Ingest.UserAgent }),
	"ingest.tokenizer":      stringKey(func(c *Config) *string { return &c.Ingest.Tokenizer }),
	"ingest.summarize":      boolKey("ingest.summarize", func(c *Config) *bool { return &c.Ingest.Summarize }),

	"recall.collection":    stringKey(func(c *Config) *string { return &c.Recall.Collection }),
	"recall.top_k":         uintKey("recall.top_k", func(c *Config) *uint { return &c.Recall.TopK }),
	"recall.min_relevance": floatKey("recall.min_relevance", func(c *Config) *float64 { return &c.Recall.MinRelevance }),

	"vector_store.provider":    stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":      stringKey(func(c *Config) *string { return &c.VectorStore.Target }),
	"vector_store.sqlite_path": stringKey(func(c *Config) *string { return &c.VectorStore.SQLitePath }),

	"embedding.provider":   stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":     stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":      stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions": uintKey("embedding.dimensions", func(c *Config) *uint { return &c.Embedding.Dimensions }),

	"llm.provider":    stringKey(func(c *Config) *string { return &c.LLM.Provider }),
	"llm.target":      stringKey(func(c *Config) *string { return &c.LLM.Target }),
	"llm.model":       stringKey(func(c *Config) *string { return &c.LLM.Model }),
	"llm.max_tokens":  uintKey("llm.max_tokens", func(c *Config) *uint { return &c.LLM.MaxTokens }),
	"llm.temperature": floatKey("llm.temperature", func(c *Config) *float64 { return &c.LLM.Temperature }),
	"llm.top_p":       floatKey("llm.top_p", func(c *Config) *float64 { return &c.LLM.TopP }),

	"events.provider": stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.brokers":  stringKey(func(c *Config) *string { return &c.Events.Brokers }),
	"events.topic":    stringKey(func(c *Config) *string { return &c.Events.Topic }),
}
