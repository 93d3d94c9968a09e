package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-assistant/internal/generation"
	"github.com/jonathan/job-assistant/internal/layout"
	"github.com/jonathan/job-assistant/internal/llm"
	"github.com/jonathan/job-assistant/internal/rerank"
	"github.com/jonathan/job-assistant/internal/scoring"
	"github.com/jonathan/job-assistant/internal/search"
	"github.com/jonathan/job-assistant/internal/types"
)

// fakeSearchProvider returns listing-shaped hits for any strict query.
type fakeSearchProvider struct {
	hits []search.RawHit
	err  error
}

func (f *fakeSearchProvider) Search(_ context.Context, _ string, _ int64) ([]search.RawHit, error) {
	return f.hits, f.err
}

// fakeScorer scores by URL.
type fakeScorer struct {
	mu      sync.Mutex
	byURL   map[string]float64
	err     error
	resumes []string
}

func (f *fakeScorer) Score(_ context.Context, hit types.SearchHit, resumeText string) (*scoring.ScoreResult, error) {
	f.mu.Lock()
	f.resumes = append(f.resumes, resumeText)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &scoring.ScoreResult{MatchPercentage: f.byURL[hit.URL]}, nil
}

type fakeRerankProvider struct {
	scores []rerank.Score
}

func (f *fakeRerankProvider) Rerank(_ context.Context, _ string, _ []string, _ int) ([]rerank.Score, error) {
	return f.scores, nil
}

func listingHits(n int) []search.RawHit {
	hits := make([]search.RawHit, n)
	for i := range hits {
		hits[i] = search.RawHit{
			Title:   "Go Developer - Acme",
			Link:    "https://www.linkedin.com/jobs/view/" + string(rune('a'+i)),
			Snippet: "Go role",
		}
	}
	return hits
}

func searchCollab(provider search.Provider, scorer scoring.Scorer) Collaborators {
	return Collaborators{
		Search: search.NewAggregator(provider),
		Scorer: scorer,
	}
}

func TestRun_SearchAndScore(t *testing.T) {
	provider := &fakeSearchProvider{hits: listingHits(3)}
	scorer := &fakeScorer{byURL: map[string]float64{
		"https://www.linkedin.com/jobs/view/a": 40,
		"https://www.linkedin.com/jobs/view/b": 90,
		"https://www.linkedin.com/jobs/view/c": 70,
	}}

	result, err := Run(context.Background(), searchCollab(provider, scorer), RunOptions{
		Query:      "go developer",
		ResumeText: "my resume",
	})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 3)

	// Sorted descending by match percent.
	assert.Equal(t, 90, result.Jobs[0].MatchPercent)
	assert.Equal(t, 70, result.Jobs[1].MatchPercent)
	assert.Equal(t, 40, result.Jobs[2].MatchPercent)

	// The scorer saw the resume text for every hit.
	assert.Contains(t, scorer.resumes, "my resume")
}

func TestRun_SearchFailureIsFatal(t *testing.T) {
	provider := &fakeSearchProvider{err: errors.New("quota exhausted")}

	_, err := Run(context.Background(), searchCollab(provider, &fakeScorer{}), RunOptions{Query: "go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestRun_ScoringFailureDegrades(t *testing.T) {
	provider := &fakeSearchProvider{hits: listingHits(2)}
	scorer := &fakeScorer{err: errors.New("model offline")}

	result, err := Run(context.Background(), searchCollab(provider, scorer), RunOptions{Query: "go"})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 2)
	for _, job := range result.Jobs {
		assert.Equal(t, 0, job.MatchPercent)
		assert.Contains(t, job.Analysis, "model offline")
	}
}

func TestRun_CapsScoredCandidates(t *testing.T) {
	provider := &fakeSearchProvider{hits: listingHits(9)}

	result, err := Run(context.Background(), searchCollab(provider, &fakeScorer{}), RunOptions{Query: "go"})
	require.NoError(t, err)
	assert.Len(t, result.Jobs, scoring.MaxJobs)
	assert.Len(t, result.Hits, 9)
}

func TestRun_ConfiguredMaxJobsLowersCap(t *testing.T) {
	provider := &fakeSearchProvider{hits: listingHits(9)}

	result, err := Run(context.Background(), searchCollab(provider, &fakeScorer{}), RunOptions{
		Query:   "go",
		MaxJobs: 2,
	})
	require.NoError(t, err)
	assert.Len(t, result.Jobs, 2)
	assert.Len(t, result.Hits, 9)
}

func TestRun_RerankReordersBeforeScoring(t *testing.T) {
	provider := &fakeSearchProvider{hits: listingHits(3)}
	collab := searchCollab(provider, &fakeScorer{})
	// Last hit scored most relevant.
	collab.Reranker = rerank.New(&fakeRerankProvider{scores: []rerank.Score{
		{Index: 2, Relevance: 0.9},
		{Index: 0, Relevance: 0.4},
		{Index: 1, Relevance: 0.1},
	}})

	result, err := Run(context.Background(), collab, RunOptions{Query: "go"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 3)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/c", result.Hits[0].URL)
}

func TestRun_EmitsProgressEvents(t *testing.T) {
	provider := &fakeSearchProvider{hits: listingHits(2)}

	var mu sync.Mutex
	var steps []string
	_, err := Run(context.Background(), searchCollab(provider, &fakeScorer{}), RunOptions{
		Query: "go",
		OnProgress: func(e ProgressEvent) {
			mu.Lock()
			steps = append(steps, e.Step)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StepSearch, steps[0])
	assert.Contains(t, steps, StepScore)
	assert.Equal(t, StepCompleted, steps[len(steps)-1])
}

func TestRun_StopSkipsRemainingItems(t *testing.T) {
	provider := &fakeSearchProvider{hits: listingHits(4)}

	result, err := Run(context.Background(), searchCollab(provider, &fakeScorer{}), RunOptions{
		Query: "go",
		Stop:  func() bool { return true },
	})
	require.NoError(t, err)
	for _, job := range result.Jobs {
		assert.Equal(t, 0, job.MatchPercent)
		assert.Contains(t, job.Analysis, "not started")
	}
}

type fakeLLM struct {
	out string
	err error
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return f.out, f.err
}

func (f *fakeLLM) GenerateText(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return f.out, f.err
}

func (f *fakeLLM) Close() error { return nil }

func generationFor(client llm.Client) *generation.Generator {
	return generation.New(client)
}

func TestGenerateDocuments_RendersAllThree(t *testing.T) {
	client := &fakeLLM{out: `{
		"custom_cv": "Summary\nGo engineer.\n\nSkills\n- Go",
		"cover_letter": "Dear team, I am a fit.",
		"interview_qa": [{"question": "Why us?", "answer": "Mission."}]
	}`}

	collab := Collaborators{Layout: layout.NewEngine()}
	collab.Generator = generationFor(client)

	job := types.MatchedJob{SearchHit: types.SearchHit{Title: "Go Dev", Company: "Acme"}}
	docs, err := GenerateDocuments(context.Background(), collab, uuid.Nil, job, "resume", RunOptions{})
	require.NoError(t, err)

	assert.NotNil(t, docs.CV)
	assert.NotNil(t, docs.Letter)
	require.NotNil(t, docs.QA)
	assert.GreaterOrEqual(t, docs.CV.PageCount(), 1)
}

func TestGenerateDocuments_NoQADocWithoutPairs(t *testing.T) {
	client := &fakeLLM{out: `{"custom_cv": "cv text", "cover_letter": "letter text"}`}

	collab := Collaborators{}
	collab.Generator = generationFor(client)

	docs, err := GenerateDocuments(context.Background(), collab, uuid.Nil, types.MatchedJob{}, "resume", RunOptions{})
	require.NoError(t, err)
	assert.Nil(t, docs.QA)
}

func TestGenerateDocuments_PropagatesError(t *testing.T) {
	collab := Collaborators{}
	collab.Generator = generationFor(&fakeLLM{err: errors.New("model offline")})

	_, err := GenerateDocuments(context.Background(), collab, uuid.Nil, types.MatchedJob{}, "resume", RunOptions{})
	require.Error(t, err)
}
