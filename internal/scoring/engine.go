// Package scoring implements the rule-based pain score and the exclusion
// predicate applied to every job before it is scored.
package scoring

import (
	"strings"

	"github.com/amishk599/leadradar/internal/model"
)

// Contribution is one rule that fired while scoring a job.
type Contribution struct {
	Rule   string
	Weight int
}

// Breakdown is the itemized result of scoring a job.
type Breakdown struct {
	Base          int
	Contributions []Contribution
	Total         int // floored at 0
}

// Engine scores and excludes jobs. It holds a private copy of its rules and
// is safe to share.
type Engine struct {
	rules Rules
}

// NewEngine returns an engine over a copy of rules with all keywords
// lower-cased.
func NewEngine(rules Rules) *Engine {
	r := Rules{
		Base:               rules.Base,
		AgeBands:           append([]AgeBand(nil), rules.AgeBands...),
		ApplicationsOver:   rules.ApplicationsOver,
		ApplicationsWeight: rules.ApplicationsWeight,
	}
	for _, s := range rules.Signals {
		s.Keywords = lowerAll(s.Keywords)
		r.Signals = append(r.Signals, s)
	}
	for _, x := range rules.Exclusions {
		x.Keywords = lowerAll(x.Keywords)
		r.Exclusions = append(r.Exclusions, x)
	}
	return &Engine{rules: r}
}

// Score returns the pain score for job. It is deterministic and has no side
// effects.
func (e *Engine) Score(job model.JobRecord) int {
	return e.Explain(job).Total
}

// Explain scores job and reports which rules contributed.
func (e *Engine) Explain(job model.JobRecord) Breakdown {
	b := Breakdown{Base: e.rules.Base}
	total := e.rules.Base

	for _, band := range e.rules.AgeBands {
		if job.DaysOpen > band.OverDays {
			b.Contributions = append(b.Contributions, Contribution{Rule: "days_open", Weight: band.Weight})
			total += band.Weight
			break
		}
	}

	title := strings.ToLower(job.Title)
	desc := strings.ToLower(job.Description)
	for _, s := range e.rules.Signals {
		if containsAny(fieldText(s.Field, title, desc), s.Keywords) {
			b.Contributions = append(b.Contributions, Contribution{Rule: s.Name, Weight: s.Weight})
			total += s.Weight
		}
	}

	if e.rules.ApplicationsWeight != 0 && job.TotalApplications != nil && *job.TotalApplications > e.rules.ApplicationsOver {
		b.Contributions = append(b.Contributions, Contribution{Rule: "applications", Weight: e.rules.ApplicationsWeight})
		total += e.rules.ApplicationsWeight
	}

	b.Total = max(total, 0)
	return b
}

// ShouldExclude reports whether job must be dropped before scoring.
func (e *Engine) ShouldExclude(job model.JobRecord) bool {
	_, excluded := e.ExclusionReason(job)
	return excluded
}

// ExclusionReason returns the name of the first exclusion rule that matches job.
func (e *Engine) ExclusionReason(job model.JobRecord) (string, bool) {
	title := strings.ToLower(job.Title)
	desc := strings.ToLower(job.Description)
	for _, x := range e.rules.Exclusions {
		if containsAny(fieldText(x.Field, title, desc), x.Keywords) {
			return x.Name, true
		}
	}
	return "", false
}

func fieldText(f Field, title, desc string) string {
	if f == FieldTitle {
		return title
	}
	return desc
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
