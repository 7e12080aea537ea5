// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deep-research/internal/ai"
	"github.com/pdiddy/deep-research/internal/research"
	"github.com/pdiddy/deep-research/internal/search"
	"github.com/pdiddy/deep-research/pkg/types"
)

// addPipelineFlags registers the flags shared by every pipeline command.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("ai-provider", "openai", "AI provider: openai (or compatible gateway via --ai-base-url)")
	cmd.Flags().String("ai-base-url", "", "override the AI API endpoint")
	cmd.Flags().String("ai-api-key", "", "AI API key (default: .secrets/openai-api-key)")
	cmd.Flags().String("thinking-model", "o4-mini", "model for planning and final report writing")
	cmd.Flags().String("task-model", "gpt-4o-mini", "model for per-query synthesis")
	cmd.Flags().String("search-provider", "tavily", "search provider: model, tavily, pubmed, or biomed")
	cmd.Flags().String("search-api-key", "", "search API key (default: .secrets/tavily-api-key or ncbi-api-key)")
	cmd.Flags().Int("max-results", 5, "maximum sources per search query")
	cmd.Flags().String("language", "", "force the response language (default: mirror the user)")
	cmd.Flags().Bool("references", true, "include citation markers and a reference list")
	cmd.Flags().Bool("citation-images", true, "embed research images in the final report")
	cmd.Flags().String("requirement", "", "free-form writing requirement for the final report")
	cmd.Flags().String("output-dir", "output", "directory for stage handoff files and reports")
	cmd.Flags().Bool("gene", false, "force the gene-research pipeline variant")
}

// pipelineConfig assembles the pipeline configuration from flags, config
// file, and loaded secrets. Flags win over config file values.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	str := func(name, viperKey string) string {
		if cmd.Flags().Changed(name) || !viper.IsSet(viperKey) {
			v, _ := cmd.Flags().GetString(name)
			return v
		}
		return viper.GetString(viperKey)
	}

	aiProvider := str("ai-provider", "ai.provider")
	searchProvider := str("search-provider", "search.provider")

	aiKey, _ := cmd.Flags().GetString("ai-api-key")
	searchKey, _ := cmd.Flags().GetString("search-api-key")
	searchSecret := "tavily-api-key"
	if searchProvider == "pubmed" || searchProvider == "biomed" {
		searchSecret = "ncbi-api-key"
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	references, _ := cmd.Flags().GetBool("references")
	citationImages, _ := cmd.Flags().GetBool("citation-images")

	return types.PipelineConfig{
		AI: types.AIConfig{
			Provider:      aiProvider,
			BaseURL:       str("ai-base-url", "ai.base_url"),
			APIKey:        secretDefault("openai-api-key", aiKey),
			ThinkingModel: str("thinking-model", "ai.thinking_model"),
			TaskModel:     str("task-model", "ai.task_model"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "deep-research/" + version,
			},
			Provider:   searchProvider,
			APIKey:     secretDefault(searchSecret, searchKey),
			MaxResults: maxResults,
		},
		Research: types.ResearchConfig{
			Language:            str("language", "research.language"),
			EnableCitationImage: citationImages,
			EnableReferences:    references,
			Requirement:         str("requirement", "research.requirement"),
			OutputDir:           str("output-dir", "research.output_dir"),
		},
		TaskStore: types.TaskStoreConfig{
			DataDir: dataDir(),
		},
	}
}

func dataDir() string {
	if dir := viper.GetString("task_store.data_dir"); dir != "" {
		return dir
	}
	return "data"
}

// newEngine wires the AI generator and search providers for one run.
func newEngine(cmd *cobra.Command, cfg types.PipelineConfig, sink research.EventSink) (*research.Engine, error) {
	gen, err := ai.NewGenerator(cfg.AI, nil)
	if err != nil {
		return nil, err
	}

	var provider search.Provider
	if cfg.Search.Provider != "model" {
		provider, err = search.NewProvider(cfg.Search, nil)
		if err != nil {
			return nil, err
		}
	}

	engine := research.NewEngine(cfg, gen, provider, sink)

	// Gene-classified queries search the biomedical databases regardless of
	// the configured general provider.
	geneCfg := cfg.Search
	geneCfg.Provider = "biomed"
	geneCfg.APIKey = secretDefault("ncbi-api-key", "")
	if geneProvider, gerr := search.NewProvider(geneCfg, nil); gerr == nil {
		engine.SetGeneProvider(geneProvider)
	}

	if gene, _ := cmd.Flags().GetBool("gene"); gene {
		engine.SetGeneResearch(true)
	}

	return engine, nil
}

// progressSink returns an event sink that narrates stage progress on stderr
// and streams report text to w.
func progressSink(w *os.File, showMessages bool) research.EventSink {
	return func(ev research.Event) {
		switch ev.Kind {
		case research.EventProgress:
			p := ev.Progress
			if p.Name != "" {
				fmt.Fprintf(os.Stderr, "%s %s: %s\n", p.Step, p.Status, p.Name)
			} else {
				fmt.Fprintf(os.Stderr, "%s %s\n", p.Step, p.Status)
			}
		case research.EventMessage:
			if showMessages {
				fmt.Fprint(w, ev.Text)
			}
		case research.EventError:
			fmt.Fprintf(os.Stderr, "error: %s\n", ev.Text)
		}
	}
}

// ensureOutputDir creates the output directory if needed.
func ensureOutputDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}
