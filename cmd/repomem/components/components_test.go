package components_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/repomem/cmd/repomem/components"
	"github.com/papercomputeco/repomem/pkg/config"
	"github.com/papercomputeco/repomem/pkg/logger"
)

var _ = Describe("Flags and LoadConfig", func() {
	var (
		tmpDir string
		cmd    *cobra.Command
		keys   []string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "repomem-components-test-*")
		Expect(err).NotTo(HaveOccurred())

		cmd = &cobra.Command{Use: "test"}
		cmd.Flags().String("config-dir", "", "")
		keys = append([]string{config.FlagTopK, config.FlagSummarize, config.FlagMinRelevance}, components.StoreFlags...)
		components.Flags(cmd, keys...)

		Expect(cmd.Flags().Set("config-dir", tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("registers typed flags", func() {
		Expect(cmd.Flags().Lookup("top-k").Value.Type()).To(Equal("uint"))
		Expect(cmd.Flags().Lookup("summarize").Value.Type()).To(Equal("bool"))
		Expect(cmd.Flags().Lookup("min-relevance").Value.Type()).To(Equal("float64"))
		Expect(cmd.Flags().Lookup("embedding-dimensions").Value.Type()).To(Equal("uint"))
		Expect(cmd.Flags().Lookup("vector-store-provider").Value.Type()).To(Equal("string"))
	})

	It("returns defaults when nothing is set", func() {
		cfg, err := components.LoadConfig(cmd, keys)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(config.NewDefaultConfig()))
	})

	It("prefers flags over the config file", func() {
		data := `[vector_store]
provider = "qdrant"

[recall]
top_k = 3
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		Expect(cmd.Flags().Set("top-k", "7")).To(Succeed())
		Expect(cmd.Flags().Set("summarize", "true")).To(Succeed())

		cfg, err := components.LoadConfig(cmd, keys)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.VectorStore.Provider).To(Equal("qdrant"))
		Expect(cfg.Recall.TopK).To(Equal(uint(7)))
		Expect(cfg.Ingest.Summarize).To(BeTrue())
	})
})

var _ = Describe("New", func() {
	var (
		ctx context.Context
		cfg *config.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = config.NewDefaultConfig()
	})

	It("builds an in-memory stack without a generator", func() {
		c, err := components.New(ctx, cfg, components.Options{}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Store).NotTo(BeNil())
		Expect(c.Orchestrator).NotTo(BeNil())
		Expect(c.Engine).NotTo(BeNil())
		Expect(c.Publisher).NotTo(BeNil())
		Expect(c.Generator).To(BeNil())
		Expect(c.Close()).To(Succeed())
	})

	It("builds the configured generator", func() {
		c, err := components.New(ctx, cfg, components.Options{Generator: true}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Generator).NotTo(BeNil())
		Expect(c.Close()).To(Succeed())
	})

	It("fails when a hosted generator has no API key", func() {
		GinkgoT().Setenv("OPENAI_API_KEY", "")
		cfg.LLM.Provider = "openai"

		_, err := components.New(ctx, cfg, components.Options{Generator: true}, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("creating answer generator")))
	})

	It("rejects unknown vector store providers", func() {
		cfg.VectorStore.Provider = "cassandra"

		_, err := components.New(ctx, cfg, components.Options{}, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("unsupported vector store provider")))
	})

	It("rejects unknown tokenizers", func() {
		cfg.Ingest.Tokenizer = "no_such_encoding"

		_, err := components.New(ctx, cfg, components.Options{}, logger.Nop())
		Expect(err).To(HaveOccurred())
	})
})
