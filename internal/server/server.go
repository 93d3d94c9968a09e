// Package server provides the HTTP API for the job assistant: synchronous
// search-and-score, an SSE streaming variant, document generation, and run
// history when persistence is configured.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/pipeline"
	"github.com/jonathan/job-assistant/internal/types"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	collab     pipeline.Collaborators
	cfg        Config
}

// Config holds server configuration. MaxJobs and Concurrency are passed
// through to every run; zero keeps the pipeline defaults.
type Config struct {
	Port        int
	MaxJobs     int
	Concurrency int
	Verbose     bool
}

// New creates a server over the injected collaborators.
func New(cfg Config, collab pipeline.Collaborators) *Server {
	s := &Server{collab: collab, cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /score", s.handleScore)
	mux.HandleFunc("POST /score/stream", s.handleScoreStream)
	mux.HandleFunc("POST /documents", s.handleDocuments)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ScoreRequest is the body for /score and /score/stream.
type ScoreRequest struct {
	Query      string `json:"query"`
	Location   string `json:"location,omitempty"`
	ResumeText string `json:"resume_text"`
}

func (r *ScoreRequest) validate() error {
	if r.Query == "" {
		return fmt.Errorf("query is required")
	}
	if r.ResumeText == "" {
		return fmt.Errorf("resume_text is required")
	}
	return nil
}

func (s *Server) runOptions(req ScoreRequest) pipeline.RunOptions {
	return pipeline.RunOptions{
		Query:       req.Query,
		Location:    req.Location,
		ResumeText:  req.ResumeText,
		MaxJobs:     s.cfg.MaxJobs,
		Concurrency: s.cfg.Concurrency,
		Verbose:     s.cfg.Verbose,
	}
}

// handleScore runs a full search-and-score synchronously.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := pipeline.Run(r.Context(), s.collab, s.runOptions(req))
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleScoreStream runs search-and-score while streaming progress events.
// Closing the connection stops further scoring between items.
func (s *Server) handleScoreStream(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var stopped atomic.Bool
	go func() {
		<-r.Context().Done()
		stopped.Store(true)
	}()

	runOpts := s.runOptions(req)
	runOpts.OnProgress = sse.WriteProgress
	runOpts.Stop = stopped.Load
	result, err := pipeline.Run(r.Context(), s.collab, runOpts)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	sse.WriteEvent("result", result) //nolint:errcheck
	sse.WriteComplete(result.RunID.String(), "completed")
}

// DocumentsRequest is the body for /documents.
type DocumentsRequest struct {
	Job        types.MatchedJob `json:"job"`
	ResumeText string           `json:"resume_text"`
}

// DocumentsResponse returns the generated documents plus page counts of the
// laid-out renderings.
type DocumentsResponse struct {
	Documents   *types.GeneratedDocuments `json:"documents"`
	CVPages     int                       `json:"cv_pages"`
	LetterPages int                       `json:"letter_pages"`
	QAPages     int                       `json:"qa_pages"`
}

// handleDocuments generates application documents for one scored job.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	var req DocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ResumeText == "" {
		s.errorResponse(w, http.StatusBadRequest, "resume_text is required")
		return
	}
	if req.Job.Title == "" {
		s.errorResponse(w, http.StatusBadRequest, "job is required")
		return
	}

	docs, err := pipeline.GenerateDocuments(r.Context(), s.collab, uuid.Nil, req.Job, req.ResumeText, pipeline.RunOptions{Verbose: s.cfg.Verbose})
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := DocumentsResponse{Documents: docs.Generated}
	if docs.CV != nil {
		resp.CVPages = docs.CV.PageCount()
	}
	if docs.Letter != nil {
		resp.LetterPages = docs.Letter.PageCount()
	}
	if docs.QA != nil {
		resp.QAPages = docs.QA.PageCount()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListRuns returns recent runs when persistence is configured.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.collab.Store == nil {
		s.errorResponse(w, http.StatusNotImplemented, "persistence is not configured")
		return
	}

	runs, err := s.collab.Store.ListRuns(r.Context(), 50)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
