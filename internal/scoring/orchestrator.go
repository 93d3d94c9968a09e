package scoring

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/batch"
	"github.com/jonathan/job-assistant/internal/types"
)

// MaxJobs caps how many hits one scoring run processes.
const MaxJobs = 5

// scoreConcurrency bounds parallel scoring calls within a run.
const scoreConcurrency = 2

// Options tunes one scoring run.
type Options struct {
	// MaxJobs lowers the per-run hit cap below MaxJobs. Zero keeps the
	// default; values above MaxJobs are clamped to it.
	MaxJobs int
	// Concurrency overrides the default parallel scoring width when > 0.
	Concurrency int
	// OnProgress receives a strictly increasing done count.
	OnProgress func(batch.Progress)
	// Stop is polled between items; once it returns true no further hits
	// are scored.
	Stop func() bool
}

// jobLimit resolves the effective hit cap for one run.
func (o Options) jobLimit() int {
	if o.MaxJobs > 0 && o.MaxJobs < MaxJobs {
		return o.MaxJobs
	}
	return MaxJobs
}

// Orchestrator drives concurrent per-hit scoring and maintains the merged
// result list.
type Orchestrator struct {
	scorer Scorer
}

// NewOrchestrator builds an orchestrator over an injected scorer.
func NewOrchestrator(scorer Scorer) *Orchestrator {
	return &Orchestrator{scorer: scorer}
}

// ScoreJobs scores up to MaxJobs hits against the resume. Failures never
// abort the run: a hit whose scoring fails (after retries) yields a degraded
// zero-score entry carrying the failure reason, so the result slice always
// lines up with the input hits.
func (o *Orchestrator) ScoreJobs(ctx context.Context, resumeText string, hits []types.SearchHit, opts Options) []types.MatchedJob {
	if limit := opts.jobLimit(); len(hits) > limit {
		hits = hits[:limit]
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = scoreConcurrency
	}

	results := batch.RunLenient(ctx, hits, func(ctx context.Context, hit types.SearchHit, _ int) (types.MatchedJob, error) {
		score, err := o.scorer.Score(ctx, hit, resumeText)
		if err != nil {
			return types.MatchedJob{}, err
		}
		return buildMatchedJob(hit, score), nil
	}, batch.Options{
		Concurrency: concurrency,
		OnProgress:  opts.OnProgress,
		Stop:        opts.Stop,
	})

	jobs := make([]types.MatchedJob, len(results))
	for i, r := range results {
		if r.OK {
			jobs[i] = r.Value
		} else {
			jobs[i] = degradedJob(hits[i], r.Err)
		}
	}
	return jobs
}

// Merge folds freshly scored jobs into the existing displayed list. Updates
// replace entries with the same ID but keep the existing selection state;
// unknown IDs are appended. The merged list is re-sorted by descending match
// percentage, ties keeping arrival order.
func Merge(existing, updates []types.MatchedJob) []types.MatchedJob {
	merged := make([]types.MatchedJob, len(existing))
	copy(merged, existing)

	position := make(map[string]int, len(merged))
	for i, job := range merged {
		position[job.ID] = i
	}

	for _, update := range updates {
		if i, ok := position[update.ID]; ok {
			update.Selected = merged[i].Selected
			merged[i] = update
		} else {
			position[update.ID] = len(merged)
			merged = append(merged, update)
		}
	}

	SortByMatch(merged)
	return merged
}

// SortByMatch orders jobs by descending match percentage. The sort is
// stable so equal scores keep their current order.
func SortByMatch(jobs []types.MatchedJob) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].MatchPercent > jobs[j].MatchPercent
	})
}

// jobID derives a stable identifier from the posting URL, so re-scoring the
// same posting produces the same ID and Merge can match it.
func jobID(hit types.SearchHit) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(hit.URL)).String()
}

func buildMatchedJob(hit types.SearchHit, score *ScoreResult) types.MatchedJob {
	return types.MatchedJob{
		ID:                  jobID(hit),
		SearchHit:           hit,
		MatchPercent:        types.ClampMatchPercent(score.MatchPercentage),
		MatchingSkills:      orEmpty(score.MatchingSkills),
		MissingSkills:       orEmpty(score.MissingSkills),
		Strengths:           orEmpty(score.Strengths),
		Gaps:                orEmpty(score.Gaps),
		Analysis:            score.Analysis,
		RecommendedKeywords: orEmpty(score.RecommendedKeywords),
		SalaryRange:         score.SalaryRange,
		SeniorityFit:        types.NormalizeSeniorityFit(score.SeniorityFit),
	}
}

// degradedJob keeps a failed hit visible in the result list instead of
// dropping it. The reason arrives already truncated by the batch runner.
func degradedJob(hit types.SearchHit, reason string) types.MatchedJob {
	if reason == "" {
		reason = "scoring unavailable"
	}
	return types.MatchedJob{
		ID:                  jobID(hit),
		SearchHit:           hit,
		MatchPercent:        0,
		MatchingSkills:      []string{},
		MissingSkills:       []string{},
		Strengths:           []string{},
		Gaps:                []string{},
		Analysis:            reason,
		RecommendedKeywords: []string{},
		SeniorityFit:        types.NormalizeSeniorityFit(""),
	}
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
