package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/observability"
	"github.com/jonathan/job-assistant/internal/pipeline"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Search job boards and score postings against a resume",
	Long: `Searches the configured job boards for the query, optionally reranks and
enriches the hits, then scores each posting against the resume. Results print
to stdout; --output writes the scored jobs as JSON for the generate command.`,
	RunE: runScore,
}

var (
	scoreQuery      string
	scoreLocation   string
	scoreResumePath string
	scoreOutputPath string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreQuery, "query", "q", "", "Job search query, e.g. \"senior go developer\"")
	scoreCmd.Flags().StringVarP(&scoreLocation, "location", "l", "", "Location filter (overrides config)")
	scoreCmd.Flags().StringVarP(&scoreResumePath, "resume", "r", "", "Path to resume text file")
	scoreCmd.Flags().StringVarP(&scoreOutputPath, "output", "o", "", "Write scored jobs as JSON to this file")

	_ = scoreCmd.MarkFlagRequired("query")
	_ = scoreCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("location") {
		scoreLocation = cfg.Location
	}

	resumeText, err := os.ReadFile(scoreResumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}

	collab, cleanup, err := buildCollaborators(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := pipeline.Run(ctx, collab, pipeline.RunOptions{
		Query:       scoreQuery,
		Location:    scoreLocation,
		ResumeText:  string(resumeText),
		MaxJobs:     cfg.MaxJobs,
		Concurrency: cfg.Concurrency,
		Verbose:     cfg.Verbose,
	})
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	for _, job := range result.Jobs {
		printer.PrintMatchedJob(job)
	}

	if scoreOutputPath != "" {
		data, err := json.MarshalIndent(result.Jobs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode jobs: %w", err)
		}
		if err := os.WriteFile(scoreOutputPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Wrote %d scored jobs to %s\n", len(result.Jobs), scoreOutputPath)
	}

	return nil
}
