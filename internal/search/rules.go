package search

import (
	"fmt"
	"net/url"
	"strings"
)

// SourceRule describes one job board: which host to scope queries to, which
// URL path tokens mark a genuine listing page, and which mark pages to
// reject (search hubs, company profiles, salary guides).
type SourceRule struct {
	// Host is the board's bare domain (no scheme, no www).
	Host string
	// PathTokens: a link must contain at least one to count as a listing.
	PathTokens []string
	// ExcludeTokens: a link containing any of these is rejected.
	ExcludeTokens []string
}

// DefaultRules covers the boards the aggregator queries, in a fixed order
// so merged output is deterministic.
func DefaultRules() []SourceRule {
	return []SourceRule{
		{
			Host:          "linkedin.com",
			PathTokens:    []string{"/jobs/view"},
			ExcludeTokens: []string{"/jobs/search", "/company/", "/pulse/"},
		},
		{
			Host:          "indeed.com",
			PathTokens:    []string{"/viewjob", "/job/"},
			ExcludeTokens: []string{"/cmp/", "/career-advice/", "/salaries"},
		},
		{
			Host:          "glassdoor.com",
			PathTokens:    []string{"/job-listing/"},
			ExcludeTokens: []string{"/Overview/", "/Reviews/", "/Salaries/"},
		},
		{
			Host:          "boards.greenhouse.io",
			PathTokens:    []string{"/jobs/"},
			ExcludeTokens: []string{"/embed/"},
		},
		{
			Host:          "jobs.lever.co",
			PathTokens:    []string{"/"},
			ExcludeTokens: []string{"/apply"},
		},
	}
}

// negativeTopics are query-level exclusions applied to every strict query,
// filtering advice articles and salary guides that still live under
// listing-like paths.
var negativeTopics = []string{`-intitle:"salary"`, `-inurl:blog`}

// StrictQuery builds the scoped query for this rule: role text, a region
// hint, a positive path-token disjunction and the exclusions.
func (r SourceRule) StrictQuery(query, location string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "site:%s %q", r.Host, query)

	if location != "" {
		fmt.Fprintf(&sb, " %q", location)
	}

	if len(r.PathTokens) > 0 {
		parts := make([]string, 0, len(r.PathTokens))
		for _, token := range r.PathTokens {
			parts = append(parts, "inurl:"+strings.Trim(token, "/"))
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(parts, " OR "))
	}

	for _, token := range r.ExcludeTokens {
		fmt.Fprintf(&sb, " -inurl:%s", strings.Trim(token, "/"))
	}
	for _, topic := range negativeTopics {
		sb.WriteString(" ")
		sb.WriteString(topic)
	}

	return sb.String()
}

// LooseQuery builds the fallback query: role text, region hint and a
// generic job token, with no path scoping.
func (r SourceRule) LooseQuery(query, location string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "site:%s %s", r.Host, query)
	if location != "" {
		sb.WriteString(" ")
		sb.WriteString(location)
	}
	sb.WriteString(" job")
	return sb.String()
}

// Matches reports whether link belongs to this rule's host (accepting www
// and subdomain variants) and looks like a genuine listing page.
func (r SourceRule) Matches(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return false
	}

	host := strings.ToLower(parsed.Host)
	if host != r.Host && !strings.HasSuffix(host, "."+r.Host) {
		return false
	}

	path := parsed.Path
	for _, token := range r.ExcludeTokens {
		if strings.Contains(path, token) {
			return false
		}
	}
	for _, token := range r.PathTokens {
		if strings.Contains(path, token) {
			return true
		}
	}
	return false
}
