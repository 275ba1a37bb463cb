package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/leadradar/internal/enrich"
	"github.com/amishk599/leadradar/internal/filter"
	"github.com/amishk599/leadradar/internal/model"
)

// Settings are the run thresholds.
type Settings struct {
	Criteria      model.Criteria
	MaxContacts   int // contacts requested per company
	HighPainScore int
}

// Batch is the outcome of the per-lead loop, before export.
type Batch struct {
	Report    *Report
	Qualified []*model.Lead
	Rejected  []*model.Lead
}

// Orchestrator runs one batch through ingest, filter, per-lead enrichment
// and summarization, qualification and export. Processing is sequential;
// one company's failure never aborts the batch.
type Orchestrator struct {
	source    model.JobSource
	filter    *filter.QualificationFilter
	enricher  *EnrichmentGateway
	summaries *SummaryGateway
	exporter  model.Exporter
	notifier  model.Notifier
	settings  Settings
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithRunID overrides the run id generator.
func WithRunID(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// WithNotifier sends the run summary after a successful export.
func WithNotifier(n model.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// NewOrchestrator wires an orchestrator. exporter may be nil when only
// Collect is used.
func NewOrchestrator(
	source model.JobSource,
	qf *filter.QualificationFilter,
	enricher *EnrichmentGateway,
	summaries *SummaryGateway,
	exporter model.Exporter,
	settings Settings,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		source:    source,
		filter:    qf,
		enricher:  enricher,
		summaries: summaries,
		exporter:  exporter,
		settings:  settings,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the full pipeline and writes the export. A batch with no
// qualified leads still writes a header-only table and is not an error.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	batch, err := o.Collect(ctx)
	if err != nil {
		if batch != nil {
			return batch.Report, err
		}
		return nil, err
	}
	if err := o.Export(batch); err != nil {
		return batch.Report, err
	}
	return batch.Report, nil
}

// Collect runs every stage except export.
func (o *Orchestrator) Collect(ctx context.Context) (*Batch, error) {
	report := &Report{
		RunID:       o.newID(),
		State:       StateStarted,
		StartedAt:   o.now(),
		HighPainMin: o.settings.HighPainScore,
		Sources:     map[string]int{},
	}
	logger := o.logger.With("run_id", report.RunID)
	batch := &Batch{Report: report}

	raw, err := o.source.FetchJobs(ctx)
	if err != nil {
		return batch, fmt.Errorf("fetch jobs: %w", err)
	}
	jobs := make([]model.JobRecord, 0, len(raw))
	for _, r := range raw {
		jobs = append(jobs, model.NewJobRecord(r, report.StartedAt))
	}
	report.Fetched = len(jobs)
	report.State = StateIngested
	logger.Info("jobs ingested", "count", len(jobs))

	retained, outcome := o.filter.FilterAndScore(jobs)
	report.Excluded = outcome.Excluded
	report.BelowThreshold = outcome.BelowThreshold
	report.Retained = outcome.Retained
	report.State = StateFiltered
	logger.Info("jobs filtered",
		"retained", outcome.Retained,
		"excluded", outcome.Excluded,
		"below_threshold", outcome.BelowThreshold,
	)

	if len(retained) == 0 {
		report.State = StateEmptyBatch
		report.tally(nil)
		logger.Warn("no qualified jobs found")
		return batch, nil
	}

	for i, job := range retained {
		if err := ctx.Err(); err != nil {
			return batch, fmt.Errorf("run cancelled: %w", err)
		}

		lead, stop := o.processLead(ctx, logger, report, job)
		if stop {
			report.BudgetExhausted = true
			report.Skipped = len(retained) - i
			logger.Warn("enrichment budget exhausted, stopping",
				"processed", i,
				"skipped", report.Skipped,
			)
			break
		}

		if lead.Qualified(o.settings.Criteria) {
			lead.State = model.LeadQualified
			batch.Qualified = append(batch.Qualified, lead)
			logger.Info("qualified lead", "company", job.CompanyName, "contacts", lead.ContactCount(), "score", job.PainScore)
		} else {
			lead.State = model.LeadRejected
			batch.Rejected = append(batch.Rejected, lead)
			reason := lead.Shortfall(o.settings.Criteria)
			report.Rejections = append(report.Rejections, Rejection{Company: job.CompanyName, Title: job.Title, Reason: reason})
			logger.Info("lead not qualified", "company", job.CompanyName, "reason", reason)
		}
	}

	report.Rejected = len(batch.Rejected)
	report.tally(batch.Qualified)
	report.State = StateCollected
	return batch, nil
}

// processLead builds, enriches and summarizes one lead. stop is true when
// the enrichment budget ran out before this lead could be enriched.
func (o *Orchestrator) processLead(ctx context.Context, logger *slog.Logger, report *Report, job model.JobRecord) (*model.Lead, bool) {
	lead := model.NewLead(job)

	if lead.Domain == "" {
		logger.Warn("no company domain, skipping enrichment", "company", job.CompanyName, "website", job.CompanyWebsite)
	} else {
		res := o.enricher.Enrich(ctx, lead.Domain, o.settings.MaxContacts)
		if errors.Is(res.Err, enrich.ErrBudgetExhausted) {
			return nil, true
		}
		if res.Err != nil {
			report.EnrichmentFailures++
			logger.Warn("enrichment failed", "company", job.CompanyName, "domain", lead.Domain, "error", res.Err)
		}
		kept := 0
		for _, c := range res.Contacts {
			if lead.AddContact(c) {
				kept++
			}
		}
		logger.Info("contacts found", "company", job.CompanyName, "kept", kept, "discarded", len(res.Contacts)-kept)
	}
	lead.State = model.LeadEnriched

	sum := o.summaries.Summarize(ctx, job)
	if sum.Fallback {
		report.SummaryFallbacks++
		logger.Warn("summary generation failed, using template", "title", job.Title, "error", sum.Err)
	}
	lead.Summary = sum.Text
	lead.SummaryFallback = sum.Fallback
	lead.State = model.LeadSummarized

	return lead, false
}

// Export writes the batch's qualified leads and notifies. Notification
// failures are logged, not returned.
func (o *Orchestrator) Export(batch *Batch) error {
	report := batch.Report
	logger := o.logger.With("run_id", report.RunID)

	if o.exporter == nil {
		return fmt.Errorf("export: no exporter configured")
	}
	path, err := o.exporter.Export(batch.Qualified, report.StartedAt)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	report.OutputPath = path
	if report.State != StateEmptyBatch {
		report.State = StateExported
	}

	if len(batch.Qualified) == 0 {
		logger.Warn("no leads to export, wrote header-only table", "path", path)
	} else {
		logger.Info("pipeline complete", "leads", len(batch.Qualified), "path", path)
	}

	if o.notifier != nil {
		if err := o.notifier.Notify(report.Summary()); err != nil {
			logger.Warn("notification failed", "error", err)
		}
	}
	return nil
}
