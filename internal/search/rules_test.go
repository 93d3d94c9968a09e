package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceRule_Matches(t *testing.T) {
	rule := SourceRule{
		Host:          "linkedin.com",
		PathTokens:    []string{"/jobs/view"},
		ExcludeTokens: []string{"/jobs/search", "/company/"},
	}

	cases := []struct {
		link string
		want bool
	}{
		{"https://www.linkedin.com/jobs/view/1234", true},
		{"https://linkedin.com/jobs/view/1234", true},
		{"https://de.linkedin.com/jobs/view/1234", true},
		{"https://www.linkedin.com/jobs/search?keywords=go", false},
		{"https://www.linkedin.com/company/acme", false},
		{"https://evil-linkedin.com/jobs/view/1", false},
		{"https://example.com/jobs/view/1", false},
		{"not a url", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, rule.Matches(tc.link), "link: %s", tc.link)
	}
}

func TestSourceRule_MatchesRejectsExcludedEvenWithListingToken(t *testing.T) {
	rule := SourceRule{
		Host:          "indeed.com",
		PathTokens:    []string{"/job/"},
		ExcludeTokens: []string{"/cmp/"},
	}
	assert.False(t, rule.Matches("https://www.indeed.com/cmp/acme/job/123"))
}

func TestSourceRule_StrictQuery(t *testing.T) {
	rule := SourceRule{
		Host:          "linkedin.com",
		PathTokens:    []string{"/jobs/view"},
		ExcludeTokens: []string{"/company/"},
	}

	q := rule.StrictQuery("software engineer", "Berlin")
	assert.Contains(t, q, "site:linkedin.com")
	assert.Contains(t, q, `"software engineer"`)
	assert.Contains(t, q, `"Berlin"`)
	assert.Contains(t, q, "inurl:jobs/view")
	assert.Contains(t, q, "-inurl:company")
	assert.Contains(t, q, `-intitle:"salary"`)
}

func TestSourceRule_StrictQueryWithoutLocation(t *testing.T) {
	rule := SourceRule{Host: "indeed.com", PathTokens: []string{"/viewjob"}}
	q := rule.StrictQuery("data analyst", "")
	assert.Contains(t, q, `"data analyst"`)
	assert.NotContains(t, q, `""`)
}

func TestSourceRule_LooseQuery(t *testing.T) {
	rule := SourceRule{Host: "glassdoor.com"}
	q := rule.LooseQuery("software engineer", "Berlin")
	assert.Equal(t, "site:glassdoor.com software engineer Berlin job", q)
}

func TestDefaultRules_FixedOrder(t *testing.T) {
	rules := DefaultRules()
	assert.Len(t, rules, 5)
	assert.Equal(t, "linkedin.com", rules[0].Host)
	for _, r := range rules {
		assert.NotEmpty(t, r.PathTokens, "rule %s must mark listing paths", r.Host)
	}
}
