package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/repomem/pkg/config"
)

var _ = Describe("Configer config", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("loads a valid config file", func() {
			data := `version = 0

[ingest]
collection = "docs"
branch = "develop"
max_tokens = 512
summarize = true

[vector_store]
provider = "qdrant"
target = "localhost:6334"
`
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Ingest.Collection).To(Equal("docs"))
			Expect(cfg.Ingest.Branch).To(Equal("develop"))
			Expect(cfg.Ingest.MaxTokens).To(Equal(uint(512)))
			Expect(cfg.Ingest.Summarize).To(BeTrue())
			Expect(cfg.VectorStore.Provider).To(Equal("qdrant"))
			Expect(cfg.VectorStore.Target).To(Equal("localhost:6334"))
		})

		It("fills unset fields with defaults", func() {
			data := `[ingest]
branch = "develop"
`
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Ingest.Branch).To(Equal("develop"))
			Expect(cfg.Ingest.Collection).To(Equal(defaults.Ingest.Collection))
			Expect(cfg.Ingest.SearchPattern).To(Equal("*.md"))
			Expect(cfg.Ingest.MaxFileSize).To(Equal(uint(2048)))
			Expect(cfg.Ingest.MaxTokens).To(Equal(uint(1024)))
			Expect(cfg.Recall.TopK).To(Equal(uint(1)))
			Expect(cfg.LLM.TopP).To(Equal(defaults.LLM.TopP))
		})

		It("rejects an unsupported version", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("version = 99\n"), 0o600)).To(Succeed())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version 99")))
		})

		It("rejects malformed TOML", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[ingest\n"), 0o600)).To(Succeed())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("parsing config TOML")))
		})
	})

	Describe("SaveConfig", func() {
		It("round trips through config.toml", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Ingest.Collection = "kernel"
			cfg.Events.Brokers = "a:9092,b:9092"
			Expect(c.SaveConfig(cfg)).To(Succeed())

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Ingest.Collection).To(Equal("kernel"))
			Expect(loaded.Events.BrokerList()).To(Equal([]string{"a:9092", "b:9092"}))
		})

		It("rejects a nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(nil)).To(MatchError("cannot save nil config"))
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		var c *config.Configer

		BeforeEach(func() {
			var err error
			c, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("sets and reads back a string key", func() {
			Expect(c.SetConfigValue("vector_store.provider", "postgres")).To(Succeed())

			val, err := c.GetConfigValue("vector_store.provider")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("postgres"))
		})

		It("sets numeric and boolean keys", func() {
			Expect(c.SetConfigValue("recall.top_k", "5")).To(Succeed())
			Expect(c.SetConfigValue("recall.min_relevance", "0.75")).To(Succeed())
			Expect(c.SetConfigValue("ingest.summarize", "true")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Recall.TopK).To(Equal(uint(5)))
			Expect(cfg.Recall.MinRelevance).To(Equal(0.75))
			Expect(cfg.Ingest.Summarize).To(BeTrue())
		})

		It("rejects unparsable values", func() {
			Expect(c.SetConfigValue("recall.top_k", "many")).To(MatchError(ContainSubstring("invalid value for recall.top_k")))
		})

		It("rejects unknown keys", func() {
			Expect(c.SetConfigValue("proxy.upstream", "x")).To(MatchError(ContainSubstring("unknown config key")))
			_, err := c.GetConfigValue("proxy.upstream")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})
	})

	Describe("ValidConfigKeys", func() {
		It("lists every key in section order", func() {
			keys := config.ValidConfigKeys()
			Expect(keys[0]).To(Equal("api.listen"))
			Expect(keys).To(ContainElements("ingest.collection", "recall.top_k", "llm.model", "events.topic"))
			for _, k := range keys {
				Expect(config.IsValidConfigKey(k)).To(BeTrue())
			}
		})

		It("returns a copy", func() {
			keys := config.ValidConfigKeys()
			keys[0] = "mutated"
			Expect(config.ValidConfigKeys()[0]).To(Equal("api.listen"))
		})
	})

	Describe("PresetConfig", func() {
		It("points openai at the OpenAI APIs", func() {
			cfg, err := config.PresetConfig("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.LLM.Provider).To(Equal("openai"))
			Expect(cfg.Embedding.Model).To(Equal("text-embedding-ada-002"))
			Expect(cfg.Embedding.Dimensions).To(Equal(uint(1536)))
		})

		It("keeps ollama embeddings for anthropic", func() {
			cfg, err := config.PresetConfig("Anthropic")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.LLM.Provider).To(Equal("anthropic"))
			Expect(cfg.Embedding.Provider).To(Equal("ollama"))
		})

		It("rejects unknown presets", func() {
			_, err := config.PresetConfig("bogus")
			Expect(err).To(MatchError(ContainSubstring("unknown preset")))
		})
	})
})

var _ = Describe("Viper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-viper-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("materializes defaults", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(config.NewDefaultConfig()))
	})

	It("lets environment variables override the config file", func() {
		data := `[ingest]
collection = "from-file"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		GinkgoT().Setenv("REPOMEM_INGEST_COLLECTION", "from-env")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Ingest.Collection).To(Equal("from-env"))
	})

	It("binds cobra flags to viper keys via registry", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Registry, config.FlagAPIListen, &listen)

		Expect(cmd.Flags().Set("listen", ":7777")).To(Succeed())

		config.BindRegisteredFlags(v, cmd, config.Registry, []string{config.FlagAPIListen})

		Expect(v.GetString("api.listen")).To(Equal(":7777"))
	})

	It("falls through to config when flag not set", func() {
		data := `[api]
listen = ":5555"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Registry, config.FlagAPIListen, &listen)

		config.BindRegisteredFlags(v, cmd, config.Registry, []string{config.FlagAPIListen})

		Expect(v.GetString("api.listen")).To(Equal(":5555"))
	})

	It("skips bindings for nonexistent registry keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		config.BindRegisteredFlags(v, cmd, config.Registry, []string{"nonexistent"})

		Expect(v.GetString("api.listen")).To(Equal(":8081"))
	})

	It("registers typed flags with their defaults", func() {
		cmd := &cobra.Command{Use: "test"}
		var (
			branch    string
			topK      uint
			minRel    float64
			summarize bool
		)
		config.AddStringFlag(cmd, config.Registry, config.FlagBranch, &branch)
		config.AddUintFlag(cmd, config.Registry, config.FlagTopK, &topK)
		config.AddFloatFlag(cmd, config.Registry, config.FlagMinRelevance, &minRel)
		config.AddBoolFlag(cmd, config.Registry, config.FlagSummarize, &summarize)

		f := cmd.Flags().Lookup("branch")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("b"))
		Expect(f.DefValue).To(Equal("main"))

		Expect(cmd.Flags().Lookup("top-k").DefValue).To(Equal("1"))
		Expect(cmd.Flags().Lookup("min-relevance").DefValue).To(Equal("0"))
		Expect(cmd.Flags().Lookup("summarize").DefValue).To(Equal("false"))
	})
})
