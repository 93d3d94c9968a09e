// Package rerank reorders aggregated job hits by semantic relevance to the
// candidate. Ranking is an enhancement, never a hard dependency: every
// failure path returns the input ordering unchanged.
package rerank

import (
	"context"
	"sort"

	"github.com/jonathan/job-assistant/internal/llm"
	"github.com/jonathan/job-assistant/internal/types"
)

// maxDocLength bounds the text built per hit before it is sent to the
// provider.
const maxDocLength = 512

// maxTopN is the most results ever requested from the provider.
const maxTopN = 20

// unscoredRelevance sinks hits the provider did not score to the end while
// keeping their relative input order (stable sort).
const unscoredRelevance = -1

// Score is one provider result, referencing a document by input position.
type Score struct {
	Index     int     `json:"index"`
	Relevance float64 `json:"relevance_score"`
}

// Provider is the external reranking collaborator contract.
type Provider interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]Score, error)
}

// Adapter wraps a Provider with the fail-open reordering policy.
type Adapter struct {
	provider Provider
}

// New builds an adapter. A nil provider yields a no-op adapter, which
// callers use when reranking is not configured.
func New(provider Provider) *Adapter {
	return &Adapter{provider: provider}
}

// Rerank returns hits ordered by descending provider relevance. Fewer than
// two hits need no reordering. On provider failure, empty response, or
// missing configuration the input slice is returned as-is.
func (a *Adapter) Rerank(ctx context.Context, query string, hits []types.SearchHit) []types.SearchHit {
	if a == nil || a.provider == nil || len(hits) < 2 {
		return hits
	}

	documents := make([]string, len(hits))
	for i, hit := range hits {
		documents[i] = buildDocument(hit)
	}

	topN := len(hits)
	if topN > maxTopN {
		topN = maxTopN
	}

	scores, err := a.provider.Rerank(ctx, query, documents, topN)
	if err != nil || len(scores) == 0 {
		return hits
	}

	relevance := make([]float64, len(hits))
	for i := range relevance {
		relevance[i] = unscoredRelevance
	}
	for _, s := range scores {
		if s.Index >= 0 && s.Index < len(hits) {
			relevance[s.Index] = s.Relevance
		}
	}

	order := make([]int, len(hits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return relevance[order[i]] > relevance[order[j]]
	})

	reordered := make([]types.SearchHit, len(hits))
	for i, idx := range order {
		reordered[i] = hits[idx]
	}
	return reordered
}

// buildDocument flattens one hit into the text the provider scores.
func buildDocument(hit types.SearchHit) string {
	doc := hit.Title
	if hit.Company != "" {
		doc += " at " + hit.Company
	}
	if hit.Location != "" {
		doc += " (" + hit.Location + ")"
	}
	if hit.Description != "" {
		doc += ". " + hit.Description
	}
	return llm.Truncate(doc, maxDocLength)
}
