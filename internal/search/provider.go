// Package search finds job postings across multiple job boards through a
// single search provider, filtering results down to genuine listings.
package search

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// RawHit is one result returned by the search provider, before any
// listing-quality filtering.
type RawHit struct {
	Title   string
	Link    string
	Snippet string
}

// Provider is the external search collaborator contract. Implementations
// must surface rate limiting as an HTTP 429 error so callers can classify
// it.
type Provider interface {
	Search(ctx context.Context, query string, num int64) ([]RawHit, error)
}

// GoogleProvider implements Provider on Google Custom Search.
type GoogleProvider struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleProvider constructs the provider. Credentials are validated
// here, once, before any request is made; a missing credential is a fatal
// configuration error.
func NewGoogleProvider(ctx context.Context, apiKey, cx string) (*GoogleProvider, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("search provider credentials are required (API key and search engine ID)")
	}

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}

	return &GoogleProvider{svc: svc, cx: cx}, nil
}

// Search issues one query and returns the raw hits.
func (p *GoogleProvider) Search(ctx context.Context, query string, num int64) ([]RawHit, error) {
	resp, err := p.svc.Cse.List().Cx(p.cx).Q(query).Num(num).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]RawHit, 0, len(resp.Items))
	for _, item := range resp.Items {
		hits = append(hits, RawHit{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return hits, nil
}
