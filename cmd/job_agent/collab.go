package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/fetch"
	"github.com/jonathan/job-assistant/internal/generation"
	"github.com/jonathan/job-assistant/internal/layout"
	"github.com/jonathan/job-assistant/internal/llm"
	"github.com/jonathan/job-assistant/internal/pipeline"
	"github.com/jonathan/job-assistant/internal/rerank"
	"github.com/jonathan/job-assistant/internal/scoring"
	"github.com/jonathan/job-assistant/internal/search"
	"github.com/jonathan/job-assistant/internal/store"
)

// loadConfig reads the config file named by the persistent --config flag and
// applies CLI-level defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	merged := cfg.MergeWithDefaults(config.Config{
		Concurrency: 2,
		MaxJobs:     scoring.MaxJobs,
	})
	if verbose {
		merged.Verbose = true
	}
	return &merged, nil
}

// llmConfig maps the config file's model overrides onto the client tiers.
func llmConfig(cfg *config.Config) *llm.Config {
	models := llm.DefaultConfig()
	if cfg.ModelLite != "" {
		models.Models[llm.TierLite] = cfg.ModelLite
	}
	if cfg.ModelStandard != "" {
		models.Models[llm.TierStandard] = cfg.ModelStandard
	}
	return models
}

// buildCollaborators wires the pipeline from configuration. Search and the
// model client are required; rerank, enrichment and persistence are attached
// only when configured. The returned cleanup closes whatever was opened.
func buildCollaborators(ctx context.Context, cfg *config.Config) (pipeline.Collaborators, func(), error) {
	var collab pipeline.Collaborators
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.GeminiAPIKey == "" {
		return collab, cleanup, fmt.Errorf("GEMINI_API_KEY environment variable or gemini_api_key config field is required")
	}
	if cfg.SearchAPIKey == "" || cfg.SearchEngineID == "" {
		return collab, cleanup, fmt.Errorf("GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_CX are required for job search")
	}

	client, err := llm.NewGeminiClient(ctx, llmConfig(cfg), cfg.GeminiAPIKey)
	if err != nil {
		return collab, cleanup, fmt.Errorf("failed to create model client: %w", err)
	}
	closers = append(closers, func() { _ = client.Close() })

	provider, err := search.NewGoogleProvider(ctx, cfg.SearchAPIKey, cfg.SearchEngineID)
	if err != nil {
		cleanup()
		return collab, func() {}, fmt.Errorf("failed to create search provider: %w", err)
	}

	collab.Search = search.NewAggregator(provider)
	collab.Scorer = scoring.NewLLMScorer(client)
	collab.Generator = generation.New(client)
	collab.Layout = layout.NewEngine()
	collab.Fetcher = fetch.New(fetch.Options{
		UseBrowser: cfg.UseBrowser,
		Verbose:    cfg.Verbose,
	})

	if cfg.RerankEndpoint != "" {
		rerankProvider, err := rerank.NewHTTPProvider(cfg.RerankEndpoint, cfg.RerankAPIKey, cfg.RerankModel)
		if err != nil {
			cleanup()
			return collab, func() {}, fmt.Errorf("failed to create rerank provider: %w", err)
		}
		collab.Reranker = rerank.New(rerankProvider)
	}

	if cfg.DatabaseURL != "" {
		st, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			// Persistence is optional; warn and continue without it.
			fmt.Fprintf(os.Stderr, "Warning: failed to connect to database: %v\n", err)
		} else if err := st.EnsureSchema(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to ensure schema: %v\n", err)
			st.Close()
		} else {
			collab.Store = st
			closers = append(closers, st.Close)
		}
	}

	return collab, cleanup, nil
}
