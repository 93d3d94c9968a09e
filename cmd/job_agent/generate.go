package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/observability"
	"github.com/jonathan/job-assistant/internal/pipeline"
	"github.com/jonathan/job-assistant/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate application documents for a scored job",
	Long: `Generates a tailored CV, cover letter and interview Q&A for one job from a
scored-jobs JSON file produced by "score --output". Documents are written as
text files alongside a summary of the laid-out page counts.`,
	RunE: runGenerate,
}

var (
	generateJobsPath   string
	generateJobIndex   int
	generateResumePath string
	generateOutDir     string
)

func init() {
	generateCmd.Flags().StringVarP(&generateJobsPath, "jobs", "j", "", "Path to scored jobs JSON file (from score --output)")
	generateCmd.Flags().IntVarP(&generateJobIndex, "index", "i", 0, "Index of the job to generate documents for (0 = best match)")
	generateCmd.Flags().StringVarP(&generateResumePath, "resume", "r", "", "Path to resume text file")
	generateCmd.Flags().StringVarP(&generateOutDir, "out-dir", "d", ".", "Directory to write generated documents into")

	_ = generateCmd.MarkFlagRequired("jobs")
	_ = generateCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jobsData, err := os.ReadFile(generateJobsPath)
	if err != nil {
		return fmt.Errorf("failed to read jobs file: %w", err)
	}
	var jobs []types.MatchedJob
	if err := json.Unmarshal(jobsData, &jobs); err != nil {
		return fmt.Errorf("failed to parse jobs file: %w", err)
	}
	if generateJobIndex < 0 || generateJobIndex >= len(jobs) {
		return fmt.Errorf("job index %d out of range (file has %d jobs)", generateJobIndex, len(jobs))
	}
	job := jobs[generateJobIndex]

	resumeText, err := os.ReadFile(generateResumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}

	collab, cleanup, err := buildCollaborators(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("Generating documents for: %s at %s (%d%% match)\n", job.Title, job.Company, job.MatchPercent)

	docs, err := pipeline.GenerateDocuments(ctx, collab, uuid.Nil, job, string(resumeText), pipeline.RunOptions{Verbose: cfg.Verbose})
	if err != nil {
		return err
	}

	if err := writeDocuments(generateOutDir, docs); err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintDocuments(docs.Generated)
	if docs.CV != nil {
		fmt.Printf("CV: %d page(s)\n", docs.CV.PageCount())
	}
	if docs.Letter != nil {
		fmt.Printf("Cover letter: %d page(s)\n", docs.Letter.PageCount())
	}
	if docs.QA != nil {
		fmt.Printf("Interview Q&A: %d page(s)\n", docs.QA.PageCount())
	}

	return nil
}

// writeDocuments saves the generated text documents into dir.
func writeDocuments(dir string, docs *pipeline.Documents) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := map[string]string{
		"custom_cv.txt":    docs.Generated.CustomCV,
		"cover_letter.txt": docs.Generated.CoverLetter,
	}
	if len(docs.Generated.InterviewQA) > 0 {
		files["interview_qa.txt"] = docs.Generated.InterviewQAText()
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}
