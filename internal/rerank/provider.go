package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/job-assistant/internal/batch"
)

// defaultTimeout is the HTTP request timeout for rerank calls.
const defaultTimeout = 30 * time.Second

// HTTPProvider implements Provider against a rerank REST endpoint
// (query + documents + top_n in, index/score pairs out).
type HTTPProvider struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewHTTPProvider constructs the provider. Credentials are validated once
// here; a missing endpoint or key is a configuration error.
func NewHTTPProvider(endpoint, apiKey, model string) (*HTTPProvider, error) {
	if endpoint == "" || apiKey == "" {
		return nil, fmt.Errorf("rerank provider credentials are required (endpoint and API key)")
	}
	return &HTTPProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: defaultTimeout},
	}, nil
}

type rerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []Score `json:"results"`
}

// Rerank issues one scoring request and decodes the index/score pairs.
func (p *HTTPProvider) Rerank(ctx context.Context, query string, documents []string, topN int) ([]Score, error) {
	body, err := json.Marshal(rerankRequest{
		Model:     p.model,
		Query:     query,
		Documents: documents,
		TopN:      topN,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &batch.StatusError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("rerank provider returned %d: %s", resp.StatusCode, payload),
		}
	}

	var decoded rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}
	return decoded.Results, nil
}
