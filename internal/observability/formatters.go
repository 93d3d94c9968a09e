// Package observability provides formatted output utilities for verbose CLI
// mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-assistant/internal/batch"
	"github.com/jonathan/job-assistant/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSearchHits outputs a summary of aggregated search results.
func (p *Printer) PrintSearchHits(hits []types.SearchHit) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d listings\n\n", len(hits)))

	count := min(len(hits), maxItemsToShow)
	for i := 0; i < count; i++ {
		hit := hits[i]
		sb.WriteString(fmt.Sprintf("  • %s", hit.Title))
		if hit.Company != "" {
			sb.WriteString(fmt.Sprintf(" @ %s", hit.Company))
		}
		sb.WriteString("\n")
	}
	if len(hits) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(hits)-maxItemsToShow))
	}

	p.printBox("Search Results", strings.TrimRight(sb.String(), "\n"))
}

// PrintMatchedJob outputs a human-readable summary of one scored job.
func (p *Printer) PrintMatchedJob(job types.MatchedJob) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	sb.WriteString(fmt.Sprintf("Match:    %d%% (%s seniority fit)\n", job.MatchPercent, job.SeniorityFit))

	if len(job.MatchingSkills) > 0 {
		sb.WriteString("\nMatching skills:\n")
		count := min(len(job.MatchingSkills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", job.MatchingSkills[i]))
		}
		if len(job.MatchingSkills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(job.MatchingSkills)-maxItemsToShow))
		}
	}
	if len(job.Gaps) > 0 {
		sb.WriteString("\nGaps:\n")
		count := min(len(job.Gaps), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", job.Gaps[i]))
		}
	}

	p.printBox(job.Title, strings.TrimRight(sb.String(), "\n"))
}

// PrintProgress writes a one-line progress update.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(step string, progress batch.Progress) {
	fmt.Fprintf(p.out, "  [%s] %d/%d\n", step, progress.Done, progress.Total)
}

// PrintDocuments outputs a summary of generated documents.
func (p *Printer) PrintDocuments(docs *types.GeneratedDocuments) {
	if docs == nil {
		return
	}
	content := fmt.Sprintf("Custom CV:     %d chars\nCover letter:  %d chars\nInterview Q&A: %d pairs",
		len(docs.CustomCV), len(docs.CoverLetter), len(docs.InterviewQA))
	p.printBox("Generated Documents", content)
}
