package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/observability"
	"github.com/jonathan/job-assistant/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search job boards without scoring",
	Long: `Runs the multi-source job search and prints the aggregated listings. No
model calls are made, so only the search credentials are required.`,
	RunE: runSearch,
}

var (
	searchQuery      string
	searchLocation   string
	searchOutputPath string
)

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Job search query")
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "Location filter (overrides config)")
	searchCmd.Flags().StringVarP(&searchOutputPath, "output", "o", "", "Write hits as JSON to this file")

	_ = searchCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("location") {
		searchLocation = cfg.Location
	}
	if cfg.SearchAPIKey == "" || cfg.SearchEngineID == "" {
		return fmt.Errorf("GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_CX are required for job search")
	}

	provider, err := search.NewGoogleProvider(ctx, cfg.SearchAPIKey, cfg.SearchEngineID)
	if err != nil {
		return fmt.Errorf("failed to create search provider: %w", err)
	}

	hits, err := search.NewAggregator(provider).Search(ctx, searchQuery, searchLocation)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintSearchHits(hits)

	if searchOutputPath != "" {
		data, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode hits: %w", err)
		}
		if err := os.WriteFile(searchOutputPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Wrote %d hits to %s\n", len(hits), searchOutputPath)
	}

	return nil
}
