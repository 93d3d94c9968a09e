// Package scoring evaluates candidate-to-job fit, one posting at a time,
// and maintains the merged, re-sortable result list shown to the user.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/job-assistant/internal/batch"
	"github.com/jonathan/job-assistant/internal/llm"
	"github.com/jonathan/job-assistant/internal/prompts"
	"github.com/jonathan/job-assistant/internal/schemas"
	"github.com/jonathan/job-assistant/internal/types"
)

// ScoreResult is the strict, validated form of one provider scoring
// response. Defaulting happens at parse time; downstream code never sees
// raw provider JSON.
type ScoreResult struct {
	MatchPercentage     float64  `json:"match_percentage"`
	MatchingSkills      []string `json:"matching_skills"`
	MissingSkills       []string `json:"missing_skills"`
	Strengths           []string `json:"strengths"`
	Gaps                []string `json:"gaps"`
	Analysis            string   `json:"analysis"`
	RecommendedKeywords []string `json:"recommended_keywords"`
	SalaryRange         string   `json:"salary_range"`
	SeniorityFit        string   `json:"seniority_fit"`
}

// Scorer scores one posting against a resume.
type Scorer interface {
	Score(ctx context.Context, hit types.SearchHit, resumeText string) (*ScoreResult, error)
}

// LLMScorer implements Scorer as an explicit two-step policy: one
// structured attempt (JSON response mode, schema-validated), and if that
// attempt fails for a non-throttling reason, one plain-prompt fallback with
// reduced validation. Rate-limit failures are returned unchanged so the
// batch runner's retry budget handles them instead of the fallback.
type LLMScorer struct {
	client llm.Client
}

// NewLLMScorer builds a scorer over an injected model client.
func NewLLMScorer(client llm.Client) *LLMScorer {
	return &LLMScorer{client: client}
}

// Score runs the two-step policy for one posting.
func (s *LLMScorer) Score(ctx context.Context, hit types.SearchHit, resumeText string) (*ScoreResult, error) {
	data := map[string]string{
		"JobContext": buildJobContext(hit),
		"ResumeText": resumeText,
	}

	// Step 1: structured attempt.
	prompt := prompts.Format(prompts.MustGet("scoring.json", "match-score"), data)
	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err == nil {
		result, parseErr := parseScore(raw, true)
		if parseErr == nil {
			return result, nil
		}
		err = parseErr
	}
	if batch.IsRetryable(err) {
		return nil, err
	}

	// Step 2: plain fallback, no schema validation.
	prompt = prompts.Format(prompts.MustGet("scoring.json", "match-score-plain"), data)
	raw, fallbackErr := s.client.GenerateText(ctx, prompt, llm.TierLite)
	if fallbackErr != nil {
		return nil, fmt.Errorf("scoring failed (structured: %v): %w", err, fallbackErr)
	}

	result, parseErr := parseScore(llm.CleanJSONBlock(raw), false)
	if parseErr != nil {
		return nil, fmt.Errorf("scoring failed (structured: %v): %w", err, parseErr)
	}
	return result, nil
}

// parseScore parses a provider response into a ScoreResult. In strict mode
// the JSON is first validated against the match-score schema.
func parseScore(raw string, strict bool) (*ScoreResult, error) {
	if strict {
		if err := schemas.ValidateJSONString(schemas.MustSchema("match_score.schema.json"), raw); err != nil {
			return nil, fmt.Errorf("score response rejected by schema: %w", err)
		}
	}

	var result ScoreResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to parse score response: %w", err)
	}
	return &result, nil
}

// buildJobContext concatenates the posting fields under clear labels.
func buildJobContext(hit types.SearchHit) string {
	return fmt.Sprintf("Title: %s\nCompany: %s\nLocation: %s\nURL: %s\nDescription: %s",
		hit.Title, hit.Company, hit.Location, hit.URL, hit.Description)
}
