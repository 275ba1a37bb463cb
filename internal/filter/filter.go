package filter

import (
	"log/slog"

	"github.com/amishk599/leadradar/internal/model"
	"github.com/amishk599/leadradar/internal/scoring"
)

// Outcome counts what happened to a batch during filtering.
type Outcome struct {
	Input          int
	Excluded       int
	BelowThreshold int
	Retained       int
}

// QualificationFilter drops excluded jobs, scores the rest, and keeps those
// whose pain score reaches the threshold.
type QualificationFilter struct {
	engine       *scoring.Engine
	minPainScore int
	logger       *slog.Logger
}

// NewQualificationFilter returns a filter that retains jobs scoring at least
// minPainScore.
func NewQualificationFilter(engine *scoring.Engine, minPainScore int, logger *slog.Logger) *QualificationFilter {
	return &QualificationFilter{
		engine:       engine,
		minPainScore: minPainScore,
		logger:       logger,
	}
}

// FilterAndScore runs a single pass over jobs. Excluded jobs are never scored.
// Retained jobs carry their PainScore and keep their original relative order.
func (f *QualificationFilter) FilterAndScore(jobs []model.JobRecord) ([]model.JobRecord, Outcome) {
	out := Outcome{Input: len(jobs)}
	retained := make([]model.JobRecord, 0, len(jobs))

	for _, job := range jobs {
		if reason, excluded := f.engine.ExclusionReason(job); excluded {
			out.Excluded++
			f.logger.Debug("excluded", "title", job.Title, "company", job.CompanyName, "rule", reason)
			continue
		}

		job.PainScore = f.engine.Score(job)
		if job.PainScore < f.minPainScore {
			out.BelowThreshold++
			f.logger.Debug("below threshold", "title", job.Title, "company", job.CompanyName, "score", job.PainScore)
			continue
		}

		retained = append(retained, job)
		f.logger.Info("qualified job", "title", job.Title, "company", job.CompanyName, "score", job.PainScore)
	}

	out.Retained = len(retained)
	f.logger.Info("filtered jobs", "input", out.Input, "retained", out.Retained,
		"excluded", out.Excluded, "below_threshold", out.BelowThreshold)
	return retained, out
}
