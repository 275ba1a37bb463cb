package pipeline

import (
	"fmt"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

// State is the orchestrator's batch-level state.
type State string

const (
	StateStarted    State = "started"
	StateIngested   State = "ingested"
	StateFiltered   State = "filtered"
	StateEmptyBatch State = "empty_batch" // no job survived filtering
	StateCollected  State = "collected"   // per-lead loop finished, nothing written yet
	StateExported   State = "exported"
)

// Rejection records why a lead was not exported.
type Rejection struct {
	Company string
	Title   string
	Reason  string
}

// Report describes one pipeline run.
type Report struct {
	RunID     string
	State     State
	StartedAt time.Time

	Fetched        int
	Excluded       int
	BelowThreshold int
	Retained       int // jobs that survived filtering
	Qualified      int
	Rejected       int
	Rejections     []Rejection

	EnrichmentFailures int
	SummaryFallbacks   int
	BudgetExhausted    bool
	Skipped            int // retained jobs never processed because the budget ran out

	AvgPainScore float64
	HighPain     int
	HighPainMin  int
	Sources      map[string]int

	OutputPath string
}

// tally fills the score and source statistics from the exported leads.
func (r *Report) tally(leads []*model.Lead) {
	r.Qualified = len(leads)
	r.Sources = make(map[string]int)
	r.AvgPainScore = 0
	r.HighPain = 0
	if len(leads) == 0 {
		return
	}
	total := 0
	for _, l := range leads {
		total += l.Job.PainScore
		if l.Job.PainScore >= r.HighPainMin {
			r.HighPain++
		}
		r.Sources[l.Job.Source]++
	}
	r.AvgPainScore = float64(total) / float64(len(leads))
}

// Summary converts the report into the notifier payload.
func (r *Report) Summary() model.RunSummary {
	return model.RunSummary{
		RunID:        r.RunID,
		Leads:        r.Qualified,
		AvgPainScore: r.AvgPainScore,
		HighPain:     r.HighPain,
		HighPainMin:  r.HighPainMin,
		Sources:      r.Sources,
		OutputPath:   r.OutputPath,
	}
}

// String renders a short multi-line summary for terminal output.
func (r *Report) String() string {
	s := fmt.Sprintf("Run %s: %s\n", r.RunID, r.State)
	s += fmt.Sprintf("  jobs fetched: %d, excluded: %d, below threshold: %d, retained: %d\n",
		r.Fetched, r.Excluded, r.BelowThreshold, r.Retained)
	s += fmt.Sprintf("  leads qualified: %d, rejected: %d\n", r.Qualified, r.Rejected)
	if r.Qualified > 0 {
		s += fmt.Sprintf("  average pain score: %.1f\n", r.AvgPainScore)
		s += fmt.Sprintf("  high-pain leads (%d+): %d\n", r.HighPainMin, r.HighPain)
		s += fmt.Sprintf("  sources: %v\n", r.Sources)
	}
	if r.BudgetExhausted {
		s += fmt.Sprintf("  enrichment budget exhausted, %d jobs skipped\n", r.Skipped)
	}
	if r.OutputPath != "" {
		s += fmt.Sprintf("  output: %s\n", r.OutputPath)
	}
	return s
}
