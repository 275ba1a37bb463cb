package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/leadradar/internal/ai"
	"github.com/amishk599/leadradar/internal/model"
)

// EnrichmentGateway turns enricher calls into EnrichmentResult values. A
// failed call yields a result with zero contacts and the error attached.
type EnrichmentGateway struct {
	enricher model.Enricher
	timeout  time.Duration
	logger   *slog.Logger
}

func NewEnrichmentGateway(enricher model.Enricher, timeout time.Duration, logger *slog.Logger) *EnrichmentGateway {
	return &EnrichmentGateway{enricher: enricher, timeout: timeout, logger: logger}
}

// Enrich looks up contacts for domain within the per-call timeout.
func (g *EnrichmentGateway) Enrich(ctx context.Context, domain string, maxContacts int) model.EnrichmentResult {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	contacts, err := g.enricher.Enrich(ctx, domain, maxContacts)
	if err != nil {
		return model.EnrichmentResult{Err: err}
	}
	return model.EnrichmentResult{Contacts: contacts}
}

// SummaryGateway turns summarizer calls into SummaryResult values. The
// result text is never empty: failures fall back to ai.TemplateSummary.
type SummaryGateway struct {
	summarizer model.Summarizer
	timeout    time.Duration
	logger     *slog.Logger
}

func NewSummaryGateway(summarizer model.Summarizer, timeout time.Duration, logger *slog.Logger) *SummaryGateway {
	return &SummaryGateway{summarizer: summarizer, timeout: timeout, logger: logger}
}

var errBlankSummary = errors.New("summarizer returned blank text")

// Summarize produces the summary for job within the per-call timeout.
func (g *SummaryGateway) Summarize(ctx context.Context, job model.JobRecord) model.SummaryResult {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.summarizer.Summarize(ctx, job)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errBlankSummary
	}
	if err != nil {
		return model.SummaryResult{Text: ai.TemplateSummary(job), Fallback: true, Err: err}
	}
	return model.SummaryResult{Text: text}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
