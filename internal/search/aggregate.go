package search

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-assistant/internal/types"
)

// MaxResults caps the aggregator's combined output.
const MaxResults = 40

// perRuleLimit is how many raw hits each per-rule query requests.
const perRuleLimit = 10

// Aggregator fans a role query out across all source rules, filters hits
// down to genuine listings, and merges them deduplicated by link.
type Aggregator struct {
	provider Provider
	rules    []SourceRule
}

// NewAggregator builds an aggregator over the given provider. With no
// rules, DefaultRules is used.
func NewAggregator(provider Provider, rules ...SourceRule) *Aggregator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Aggregator{provider: provider, rules: rules}
}

// Search runs the strict pass across all rules and, if it yields nothing,
// one loose fallback pass per rule. A single source's failure is skipped
// so the remaining sources still produce results; the error is returned
// only when every request of both passes failed.
func (a *Aggregator) Search(ctx context.Context, query, location string) ([]types.SearchHit, error) {
	perRule, succeeded, lastErr := a.queryAll(ctx, func(r SourceRule) string {
		return r.StrictQuery(query, location)
	})

	seen := make(map[string]bool)
	var hits []types.SearchHit
	for i, rule := range a.rules {
		for _, raw := range perRule[i] {
			if !rule.Matches(raw.Link) || seen[raw.Link] {
				continue
			}
			seen[raw.Link] = true
			hits = append(hits, toSearchHit(raw, rule, location))
			if len(hits) >= MaxResults {
				return hits, nil
			}
		}
	}

	if len(hits) > 0 {
		return hits, nil
	}

	// Fallback pass: looser query, accept everything the provider returns.
	perRule, fallbackSucceeded, fallbackErr := a.queryAll(ctx, func(r SourceRule) string {
		return r.LooseQuery(query, location)
	})
	succeeded += fallbackSucceeded
	if fallbackErr != nil {
		lastErr = fallbackErr
	}

	for i, rule := range a.rules {
		for _, raw := range perRule[i] {
			if raw.Link == "" || seen[raw.Link] {
				continue
			}
			seen[raw.Link] = true
			hits = append(hits, toSearchHit(raw, rule, location))
			if len(hits) >= MaxResults {
				return hits, nil
			}
		}
	}

	if len(hits) == 0 && succeeded == 0 && lastErr != nil {
		return nil, fmt.Errorf("all search sources failed: %w", lastErr)
	}
	return hits, nil
}

// queryAll issues one query per rule concurrently, preserving rule order in
// the returned slices so downstream merging stays deterministic.
func (a *Aggregator) queryAll(ctx context.Context, buildQuery func(SourceRule) string) ([][]RawHit, int, error) {
	perRule := make([][]RawHit, len(a.rules))
	errs := make([]error, len(a.rules))

	g, gCtx := errgroup.WithContext(ctx)
	for i, rule := range a.rules {
		g.Go(func() error {
			raw, err := a.provider.Search(gCtx, buildQuery(rule), perRuleLimit)
			if err != nil {
				errs[i] = err
				return nil // a failed source is skipped, not fatal
			}
			perRule[i] = raw
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	var lastErr error
	for i := range a.rules {
		if errs[i] != nil {
			fmt.Printf("Warning: search source %s failed: %v\n", a.rules[i].Host, errs[i])
			lastErr = errs[i]
			continue
		}
		succeeded++
	}
	return perRule, succeeded, lastErr
}

// toSearchHit converts a raw provider hit into a SearchHit, splitting a
// "Title - Company" style result title when possible.
func toSearchHit(raw RawHit, rule SourceRule, location string) types.SearchHit {
	title, company := splitTitle(raw.Title)
	if company == "" {
		company = boardLabel(rule.Host)
	}
	return types.SearchHit{
		Title:       title,
		Company:     company,
		Location:    location,
		Description: raw.Snippet,
		URL:         raw.Link,
	}
}

// splitTitle separates "Role - Company" or "Role | Company" result titles.
func splitTitle(title string) (role, company string) {
	for _, sep := range []string{" - ", " | ", " – "} {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+len(sep):])
		}
	}
	return strings.TrimSpace(title), ""
}

// boardLabel turns a rule host into a readable source label.
func boardLabel(host string) string {
	host = strings.TrimPrefix(host, "boards.")
	host = strings.TrimPrefix(host, "jobs.")
	if idx := strings.Index(host, "."); idx > 0 {
		host = host[:idx]
	}
	if host == "" {
		return host
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
