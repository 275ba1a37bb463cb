package notifier

import (
	"log/slog"

	"github.com/amishk599/leadradar/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes the run summary to the given logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs run summaries via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the summary and one line per source. Returns nil (stdout
// logging does not fail).
func (n *LogNotifier) Notify(s model.RunSummary) error {
	args := []any{"run_id", s.RunID, "leads", s.Leads, "output", s.OutputPath}
	if s.Leads > 0 {
		args = append(args, "avg_pain_score", s.AvgPainScore, "high_pain", s.HighPain, "high_pain_min", s.HighPainMin)
	}
	n.logger.Info("run complete", args...)
	for _, src := range sortedSources(s.Sources) {
		n.logger.Info("leads by source", "source", src.name, "count", src.count)
	}
	return nil
}
