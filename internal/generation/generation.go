// Package generation produces the tailored application documents (custom
// CV, cover letter, interview Q&A) for a single selected job.
package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/job-assistant/internal/llm"
	"github.com/jonathan/job-assistant/internal/prompts"
	"github.com/jonathan/job-assistant/internal/schemas"
	"github.com/jonathan/job-assistant/internal/types"
)

// Generator produces application documents from a model client.
type Generator struct {
	client llm.Client
}

// New builds a generator over an injected model client.
func New(client llm.Client) *Generator {
	return &Generator{client: client}
}

// Generate asks the model for all three documents in one structured call
// and validates the response before handing it downstream. Document
// generation uses the standard model tier; it is the quality-sensitive step.
func (g *Generator) Generate(ctx context.Context, jobContext, resumeText string) (*types.GeneratedDocuments, error) {
	prompt := prompts.Format(prompts.MustGet("generation.json", "application-documents"), map[string]string{
		"JobContext": jobContext,
		"ResumeText": resumeText,
	})

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("document generation failed: %w", err)
	}

	if err := schemas.ValidateJSONString(schemas.MustSchema("application_documents.schema.json"), raw); err != nil {
		return nil, fmt.Errorf("generated documents rejected by schema: %w", err)
	}

	var docs types.GeneratedDocuments
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, fmt.Errorf("failed to parse generated documents: %w", err)
	}
	return &docs, nil
}

// JobContext flattens a matched job into the context block the generation
// prompt consumes, including the scoring findings so the documents lean on
// the identified strengths.
func JobContext(job types.MatchedJob) string {
	return fmt.Sprintf(
		"Title: %s\nCompany: %s\nLocation: %s\nURL: %s\nDescription: %s\nMatch: %d%%\nMatching skills: %s\nGaps: %s\nAnalysis: %s",
		job.Title, job.Company, job.Location, job.URL, job.Description,
		job.MatchPercent, joinList(job.MatchingSkills), joinList(job.Gaps), job.Analysis)
}

func joinList(values []string) string {
	if len(values) == 0 {
		return "none identified"
	}
	out := values[0]
	for _, v := range values[1:] {
		out += ", " + v
	}
	return out
}
