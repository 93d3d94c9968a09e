//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-assistant/internal/types"
)

func getTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	s, err := Connect(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestIntegration_RunLifecycle(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	runID, err := s.CreateRun(ctx, "go developer", "Berlin")
	require.NoError(t, err)

	run, err := s.GetRun(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "running", run.Status)
	assert.Nil(t, run.CompletedAt)

	jobs := []types.MatchedJob{{
		ID:           "job-1",
		SearchHit:    types.SearchHit{Title: "Go Dev", URL: "https://example.com/1"},
		MatchPercent: 80,
	}}
	require.NoError(t, s.SaveMatchedJobs(ctx, runID, jobs))

	loaded, err := s.GetMatchedJobs(ctx, runID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 80, loaded[0].MatchPercent)

	docs := &types.GeneratedDocuments{CustomCV: "cv", CoverLetter: "letter"}
	require.NoError(t, s.SaveDocuments(ctx, runID, "job-1", docs))

	gotDocs, err := s.GetDocuments(ctx, runID, "job-1")
	require.NoError(t, err)
	require.NotNil(t, gotDocs)
	assert.Equal(t, "cv", gotDocs.CustomCV)

	require.NoError(t, s.CompleteRun(ctx, runID, "completed"))
	run, err = s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "completed", run.Status)
	assert.NotNil(t, run.CompletedAt)
}

func TestIntegration_MissingRowsReturnNil(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	runID, err := s.CreateRun(ctx, "q", "")
	require.NoError(t, err)

	jobs, err := s.GetMatchedJobs(ctx, runID)
	require.NoError(t, err)
	assert.Nil(t, jobs)

	docs, err := s.GetDocuments(ctx, runID, "nope")
	require.NoError(t, err)
	assert.Nil(t, docs)
}
