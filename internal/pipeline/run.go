// Package pipeline provides the high-level orchestration for a search-and-
// score run and for per-job document generation.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/batch"
	"github.com/jonathan/job-assistant/internal/fetch"
	"github.com/jonathan/job-assistant/internal/generation"
	"github.com/jonathan/job-assistant/internal/layout"
	"github.com/jonathan/job-assistant/internal/observability"
	"github.com/jonathan/job-assistant/internal/rerank"
	"github.com/jonathan/job-assistant/internal/scoring"
	"github.com/jonathan/job-assistant/internal/search"
	"github.com/jonathan/job-assistant/internal/store"
	"github.com/jonathan/job-assistant/internal/types"
)

// Step names emitted in progress events.
const (
	StepSearch    = "search"
	StepRerank    = "rerank"
	StepEnrich    = "enrich"
	StepScore     = "score"
	StepGenerate  = "generate"
	StepRender    = "render"
	StepCompleted = "completed"
)

// ProgressEvent represents a progress update during pipeline execution.
type ProgressEvent struct {
	Step     string          `json:"step"`
	Message  string          `json:"message"`
	RunID    string          `json:"run_id,omitempty"`
	Progress *batch.Progress `json:"progress,omitempty"`
	Content  any             `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs.
type ProgressCallback func(event ProgressEvent)

// Collaborators holds the injected external-service adapters. Search is
// required; Reranker, Fetcher and Store are optional enhancements.
type Collaborators struct {
	Search    *search.Aggregator
	Reranker  *rerank.Adapter
	Fetcher   *fetch.Fetcher
	Scorer    scoring.Scorer
	Generator *generation.Generator
	Layout    *layout.Engine
	Store     *store.Store
}

// RunOptions holds configuration for one search-and-score run.
type RunOptions struct {
	Query      string
	Location   string
	ResumeText string
	// MaxJobs lowers the scoring cap below scoring.MaxJobs when > 0.
	MaxJobs int
	// Concurrency overrides the scoring fan-out width when > 0.
	Concurrency int
	Verbose     bool
	OnProgress  ProgressCallback
	// Stop is polled between scoring items; once true no further items
	// start.
	Stop func() bool
}

// RunResult is the outcome of one run.
type RunResult struct {
	RunID uuid.UUID          `json:"run_id,omitempty"`
	Hits  []types.SearchHit  `json:"hits"`
	Jobs  []types.MatchedJob `json:"jobs"`
}

func emit(opts *RunOptions, event ProgressEvent) {
	if opts.OnProgress != nil {
		opts.OnProgress(event)
	}
}

// Run executes search, rerank, enrichment and scoring. Partial failures
// degrade: a failed rerank keeps the search order, a failed enrichment keeps
// the snippet, a failed score yields a degraded entry. Only a fully failed
// search is fatal.
func Run(ctx context.Context, collab Collaborators, opts RunOptions) (*RunResult, error) {
	printer := observability.NewPrinter(os.Stdout)

	var runID uuid.UUID
	if collab.Store != nil {
		var err error
		runID, err = collab.Store.CreateRun(ctx, opts.Query, opts.Location)
		if err != nil {
			fmt.Printf("Warning: failed to record run: %v\n", err)
			fmt.Printf("Continuing without persistence...\n")
			runID = uuid.Nil
		}
	}

	emit(&opts, ProgressEvent{Step: StepSearch, Message: "searching job boards", RunID: runIDString(runID)})
	hits, err := collab.Search.Search(ctx, opts.Query, opts.Location)
	if err != nil {
		failRun(ctx, collab.Store, runID)
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintSearchHits(hits)
	}

	if collab.Reranker != nil {
		emit(&opts, ProgressEvent{Step: StepRerank, Message: "reranking results"})
		hits = collab.Reranker.Rerank(ctx, opts.Query, hits)
	}

	maxJobs := scoring.MaxJobs
	if opts.MaxJobs > 0 && opts.MaxJobs < maxJobs {
		maxJobs = opts.MaxJobs
	}
	candidates := hits
	if len(candidates) > maxJobs {
		candidates = candidates[:maxJobs]
	}

	if collab.Fetcher != nil {
		emit(&opts, ProgressEvent{Step: StepEnrich, Message: "fetching posting descriptions"})
		candidates = enrichHits(ctx, collab.Fetcher, candidates)
	}

	emit(&opts, ProgressEvent{Step: StepScore, Message: fmt.Sprintf("scoring %d postings", len(candidates))})
	orchestrator := scoring.NewOrchestrator(collab.Scorer)
	jobs := orchestrator.ScoreJobs(ctx, opts.ResumeText, candidates, scoring.Options{
		MaxJobs:     opts.MaxJobs,
		Concurrency: opts.Concurrency,
		OnProgress: func(p batch.Progress) {
			progress := p
			emit(&opts, ProgressEvent{Step: StepScore, Message: "scored posting", Progress: &progress})
			if opts.Verbose {
				printer.PrintProgress(StepScore, p)
			}
		},
		Stop: opts.Stop,
	})
	scoring.SortByMatch(jobs)

	if opts.Verbose {
		for _, job := range jobs {
			printer.PrintMatchedJob(job)
		}
	}

	if collab.Store != nil && runID != uuid.Nil {
		if err := collab.Store.SaveMatchedJobs(ctx, runID, jobs); err != nil {
			fmt.Printf("Warning: failed to persist matched jobs: %v\n", err)
		}
		if err := collab.Store.CompleteRun(ctx, runID, "completed"); err != nil {
			fmt.Printf("Warning: failed to complete run: %v\n", err)
		}
	}

	emit(&opts, ProgressEvent{Step: StepCompleted, Message: "run complete", RunID: runIDString(runID), Content: len(jobs)})
	return &RunResult{RunID: runID, Hits: hits, Jobs: jobs}, nil
}

// enrichHits replaces search snippets with fetched posting bodies where the
// fetch succeeds. Fetch failures keep the snippet, so a throttled board is
// not worth retrying here.
func enrichHits(ctx context.Context, fetcher *fetch.Fetcher, hits []types.SearchHit) []types.SearchHit {
	results := batch.RunLenient(ctx, hits, func(ctx context.Context, hit types.SearchHit, _ int) (string, error) {
		return fetcher.Posting(ctx, hit.URL)
	}, batch.Options{Retries: batch.NoRetries})

	enriched := make([]types.SearchHit, len(hits))
	copy(enriched, hits)
	for i, r := range results {
		if r.OK && r.Value != "" {
			enriched[i].Description = r.Value
		}
	}
	return enriched
}

// Documents holds the generated documents for one job together with their
// laid-out renderings.
type Documents struct {
	Generated *types.GeneratedDocuments
	CV        *layout.Document
	Letter    *layout.Document
	QA        *layout.Document
}

// GenerateDocuments produces tailored documents for one scored job and lays
// each out as a paginated document. The interview Q&A is rendered in forced
// Q&A mode. A non-nil runID links the persisted documents to their run.
func GenerateDocuments(ctx context.Context, collab Collaborators, runID uuid.UUID, job types.MatchedJob, resumeText string, opts RunOptions) (*Documents, error) {
	emit(&opts, ProgressEvent{Step: StepGenerate, Message: fmt.Sprintf("generating documents for %s at %s", job.Title, job.Company)})

	docs, err := collab.Generator.Generate(ctx, generation.JobContext(job), resumeText)
	if err != nil {
		return nil, err
	}

	emit(&opts, ProgressEvent{Step: StepRender, Message: "laying out documents"})
	engine := collab.Layout
	if engine == nil {
		engine = layout.NewEngine()
	}

	out := &Documents{
		Generated: docs,
		CV:        engine.Render("Custom CV", docs.CustomCV, layout.ModeProse),
		Letter:    engine.Render("Cover Letter", docs.CoverLetter, layout.ModeProse),
	}
	if len(docs.InterviewQA) > 0 {
		out.QA = engine.Render("Interview Preparation", docs.InterviewQAText(), layout.ModeQA)
	}

	if collab.Store != nil && runID != uuid.Nil {
		if err := collab.Store.SaveDocuments(ctx, runID, job.ID, docs); err != nil {
			fmt.Printf("Warning: failed to persist documents: %v\n", err)
		}
	}
	return out, nil
}

func runIDString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func failRun(ctx context.Context, s *store.Store, runID uuid.UUID) {
	if s != nil && runID != uuid.Nil {
		if err := s.CompleteRun(ctx, runID, "failed"); err != nil {
			fmt.Printf("Warning: failed to mark run failed: %v\n", err)
		}
	}
}
