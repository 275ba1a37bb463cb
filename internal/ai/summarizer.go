package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/amishk599/leadradar/internal/model"
)

// ErrEmptySummary is returned when the model replies with nothing usable.
var ErrEmptySummary = errors.New("empty summary")

// RequiredSections are the headings every summary must contain.
var RequiredSections = []string{"Must-Have Skills", "Key Requirements", "Special Features"}

// MissingSectionsError reports a reply that lacks required headings.
type MissingSectionsError struct {
	Missing []string
}

func (e *MissingSectionsError) Error() string {
	return "summary missing sections: " + strings.Join(e.Missing, ", ")
}

// LLMSummarizer renders the job summary prompt and asks an LLM for a
// call-ready summary. Replies are checked for the required sections.
type LLMSummarizer struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewLLMSummarizer creates a summarizer backed by provider.
func NewLLMSummarizer(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *LLMSummarizer {
	return &LLMSummarizer{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// Summarize returns the model's summary of job, or an error if the call
// fails or the reply does not have the expected shape.
func (s *LLMSummarizer) Summarize(ctx context.Context, job model.JobRecord) (string, error) {
	var promptBuf bytes.Buffer
	if err := s.tmpl.Execute(&promptBuf, promptData{
		Title:       job.Title,
		Company:     job.CompanyName,
		Location:    job.Location,
		DaysOpen:    job.DaysOpen,
		Description: truncateRunes(job.Description, maxDescriptionRunes),
	}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	raw, err := s.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}

	summary := strings.TrimSpace(raw)
	if err := validateSummary(summary); err != nil {
		return "", err
	}

	s.logger.Debug("summary generated", "title", job.Title, "company", job.CompanyName, "chars", len(summary))
	return summary, nil
}

func validateSummary(summary string) error {
	if summary == "" {
		return ErrEmptySummary
	}
	lower := strings.ToLower(summary)
	var missing []string
	for _, section := range RequiredSections {
		if !strings.Contains(lower, strings.ToLower(section)) {
			missing = append(missing, section)
		}
	}
	if len(missing) > 0 {
		return &MissingSectionsError{Missing: missing}
	}
	return nil
}
