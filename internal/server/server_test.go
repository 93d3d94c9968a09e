package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-assistant/internal/pipeline"
	"github.com/jonathan/job-assistant/internal/scoring"
	"github.com/jonathan/job-assistant/internal/search"
	"github.com/jonathan/job-assistant/internal/types"
)

type stubSearchProvider struct {
	hits []search.RawHit
}

func (s *stubSearchProvider) Search(_ context.Context, _ string, _ int64) ([]search.RawHit, error) {
	return s.hits, nil
}

type stubScorer struct{}

func (stubScorer) Score(_ context.Context, _ types.SearchHit, _ string) (*scoring.ScoreResult, error) {
	return &scoring.ScoreResult{MatchPercentage: 75, Analysis: "fine"}, nil
}

func testServer() *Server {
	provider := &stubSearchProvider{hits: []search.RawHit{
		{Title: "Go Developer - Acme", Link: "https://www.linkedin.com/jobs/view/1", Snippet: "Go"},
	}}
	return New(Config{Port: 0}, pipeline.Collaborators{
		Search: search.NewAggregator(provider),
		Scorer: stubScorer{},
	})
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestScore_ReturnsJobs(t *testing.T) {
	rec := postJSON(t, testServer().Handler(), "/score",
		`{"query": "go developer", "resume_text": "my resume"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result pipeline.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Jobs, 1)
	assert.Equal(t, 75, result.Jobs[0].MatchPercent)
}

func TestScore_HonorsConfiguredMaxJobs(t *testing.T) {
	provider := &stubSearchProvider{hits: []search.RawHit{
		{Title: "Go Developer - Acme", Link: "https://www.linkedin.com/jobs/view/1", Snippet: "Go"},
		{Title: "Go Developer - Beta", Link: "https://www.linkedin.com/jobs/view/2", Snippet: "Go"},
		{Title: "Go Developer - Gamma", Link: "https://www.linkedin.com/jobs/view/3", Snippet: "Go"},
	}}
	srv := New(Config{Port: 0, MaxJobs: 1}, pipeline.Collaborators{
		Search: search.NewAggregator(provider),
		Scorer: stubScorer{},
	})

	rec := postJSON(t, srv.Handler(), "/score",
		`{"query": "go developer", "resume_text": "my resume"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result pipeline.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Jobs, 1)
	assert.Len(t, result.Hits, 3)
}

func TestScore_RejectsMissingFields(t *testing.T) {
	handler := testServer().Handler()

	rec := postJSON(t, handler, "/score", `{"resume_text": "r"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "query is required")

	rec = postJSON(t, handler, "/score", `{"query": "go"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "resume_text is required")

	rec = postJSON(t, handler, "/score", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreStream_EmitsEvents(t *testing.T) {
	rec := postJSON(t, testServer().Handler(), "/score/stream",
		`{"query": "go developer", "resume_text": "my resume"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: "+pipeline.StepSearch)
	assert.Contains(t, body, "event: "+pipeline.StepScore)
	assert.Contains(t, body, "event: result")
	assert.Contains(t, body, "event: complete")

	// Events are framed as event/data pairs separated by blank lines.
	for _, frame := range strings.Split(strings.TrimSpace(body), "\n\n") {
		assert.True(t, strings.HasPrefix(frame, "event: "), frame)
		assert.Contains(t, frame, "\ndata: ")
	}
}

func TestListRuns_WithoutStore(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), "persistence is not configured")
}

func TestDocuments_RejectsIncompleteRequest(t *testing.T) {
	handler := testServer().Handler()

	rec := postJSON(t, handler, "/documents", `{"job": {"title": "Go Dev"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, handler, "/documents", `{"resume_text": "r", "job": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
