// Package types defines the shared data structures passed between the
// search, scoring, generation and layout stages.
package types

import "strings"

// SearchHit represents a single job posting found by the search aggregator.
// The URL is the canonical deduplication key across sources. A hit is never
// mutated after creation.
type SearchHit struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Date        string `json:"date,omitempty"`
}

// SeniorityFit describes how well a posting's seniority level matches the
// candidate.
type SeniorityFit string

const (
	SeniorityPerfect SeniorityFit = "perfect"
	SeniorityGood    SeniorityFit = "good"
	SeniorityAverage SeniorityFit = "average"
	SeniorityPoor    SeniorityFit = "poor"
)

// NormalizeSeniorityFit maps free-form provider output onto the known
// values, defaulting to "average" for anything unrecognized.
func NormalizeSeniorityFit(s string) SeniorityFit {
	switch SeniorityFit(strings.ToLower(strings.TrimSpace(s))) {
	case SeniorityPerfect:
		return SeniorityPerfect
	case SeniorityGood:
		return SeniorityGood
	case SeniorityPoor:
		return SeniorityPoor
	default:
		return SeniorityAverage
	}
}

// MatchedJob is a SearchHit augmented with match-scoring results.
// ID is a stable generated identifier used as the merge key so that a
// user's Selected flag survives re-scoring and re-sorting; it is assigned
// once by the scoring orchestrator and never changes afterwards.
type MatchedJob struct {
	ID string `json:"id"`
	SearchHit
	MatchPercent        int          `json:"match_percent"`
	MatchingSkills      []string     `json:"matching_skills"`
	MissingSkills       []string     `json:"missing_skills"`
	Strengths           []string     `json:"strengths"`
	Gaps                []string     `json:"gaps"`
	Analysis            string       `json:"analysis"`
	RecommendedKeywords []string     `json:"recommended_keywords"`
	SalaryRange         string       `json:"salary_range"`
	SeniorityFit        SeniorityFit `json:"seniority_fit"`

	// Selected is owned by the presentation layer. The scoring
	// orchestrator preserves it across merges but never sets it.
	Selected bool `json:"selected"`
}

// ClampMatchPercent forces a raw provider score into the [0,100] integer
// range the rest of the system relies on.
func ClampMatchPercent(raw float64) int {
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return int(raw + 0.5)
}

// QAItem is one interview question/answer pair produced by the document
// generator.
type QAItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GeneratedDocuments holds the tailored application documents produced for
// a single selected job.
type GeneratedDocuments struct {
	CustomCV    string   `json:"custom_cv"`
	CoverLetter string   `json:"cover_letter"`
	InterviewQA []QAItem `json:"interview_qa"`
}

// InterviewQAText flattens the Q&A pairs into the Q:/A: line format the
// layout engine's Q&A mode consumes.
func (g *GeneratedDocuments) InterviewQAText() string {
	var sb strings.Builder
	for i, qa := range g.InterviewQA {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Q: ")
		sb.WriteString(strings.TrimSpace(qa.Question))
		sb.WriteString("\nA: ")
		sb.WriteString(strings.TrimSpace(qa.Answer))
		sb.WriteString("\n")
	}
	return sb.String()
}
