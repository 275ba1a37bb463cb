package ai

import (
	"context"
	"fmt"

	"github.com/amishk599/leadradar/internal/model"
)

// TemplateSummary is the deterministic summary used when no LLM is
// configured or the LLM call fails.
func TemplateSummary(job model.JobRecord) string {
	return fmt.Sprintf(`**Must-Have Skills:**
- See full job description
- %d+ days open position
- %s location

**Key Requirements:**
%s position at %s. Review full posting for detailed requirements.

**Special Features:**
Manual review recommended for this vacancy.`, job.DaysOpen, job.Location, job.Title, job.CompanyName)
}

// TemplateSummarizer is the summarizer used when ai.enabled is false.
// It makes no external calls.
type TemplateSummarizer struct{}

// NewTemplateSummarizer returns a TemplateSummarizer.
func NewTemplateSummarizer() *TemplateSummarizer {
	return &TemplateSummarizer{}
}

// Summarize returns TemplateSummary(job).
func (TemplateSummarizer) Summarize(_ context.Context, job model.JobRecord) (string, error) {
	return TemplateSummary(job), nil
}
