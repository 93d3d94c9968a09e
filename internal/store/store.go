// Package store provides PostgreSQL persistence for search runs, scored
// jobs, and generated documents. Persistence is optional: the CLI and server
// run fully in memory when no database URL is configured.
package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/job-assistant/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Run is one recorded search-and-score run.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Query       string     `json:"query"`
	Location    string     `json:"location"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CreateRun records the start of a run and returns its ID.
func (s *Store) CreateRun(ctx context.Context, query, location string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO runs (query, location, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id`,
		query, location,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run finished with the given status.
func (s *Store) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves one run, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, query, location, status, created_at, completed_at
		 FROM runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Query, &run.Location, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves the most recent runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, query, location, status, created_at, completed_at
		 FROM runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Query, &run.Location, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// SaveMatchedJobs replaces the scored job list recorded for a run.
func (s *Store) SaveMatchedJobs(ctx context.Context, runID uuid.UUID, jobs []types.MatchedJob) error {
	payload, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("failed to marshal matched jobs: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO run_jobs (run_id, jobs)
		 VALUES ($1, $2)
		 ON CONFLICT (run_id) DO UPDATE SET jobs = $2, updated_at = NOW()`,
		runID, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save matched jobs: %w", err)
	}
	return nil
}

// GetMatchedJobs retrieves the scored job list for a run; nil when none was
// recorded.
func (s *Store) GetMatchedJobs(ctx context.Context, runID uuid.UUID) ([]types.MatchedJob, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT jobs FROM run_jobs WHERE run_id = $1`,
		runID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get matched jobs: %w", err)
	}

	var jobs []types.MatchedJob
	if err := json.Unmarshal(payload, &jobs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal matched jobs: %w", err)
	}
	return jobs, nil
}

// SaveDocuments stores the generated documents for one job of a run.
func (s *Store) SaveDocuments(ctx context.Context, runID uuid.UUID, jobID string, docs *types.GeneratedDocuments) error {
	payload, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to marshal documents: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO run_documents (run_id, job_id, documents)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, job_id) DO UPDATE SET documents = $3, created_at = NOW()`,
		runID, jobID, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save documents for job %s: %w", jobID, err)
	}
	return nil
}

// GetDocuments retrieves the generated documents for one job of a run; nil
// when none were recorded.
func (s *Store) GetDocuments(ctx context.Context, runID uuid.UUID, jobID string) (*types.GeneratedDocuments, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT documents FROM run_documents WHERE run_id = $1 AND job_id = $2`,
		runID, jobID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get documents for job %s: %w", jobID, err)
	}

	var docs types.GeneratedDocuments
	if err := json.Unmarshal(payload, &docs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal documents: %w", err)
	}
	return &docs, nil
}
