package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/leadradar/internal/enrich"
	"github.com/amishk599/leadradar/internal/filter"
	"github.com/amishk599/leadradar/internal/jobsource"
	"github.com/amishk599/leadradar/internal/model"
	"github.com/amishk599/leadradar/internal/scoring"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	jobs []model.RawJob
	err  error
}

func (f *fakeSource) FetchJobs(ctx context.Context) ([]model.RawJob, error) {
	return f.jobs, f.err
}

type fakeEnricher struct {
	contacts map[string][]model.Contact
	errs     map[string]error
	calls    []string
}

func (f *fakeEnricher) Enrich(ctx context.Context, domain string, maxContacts int) ([]model.Contact, error) {
	f.calls = append(f.calls, domain)
	if err := f.errs[domain]; err != nil {
		return nil, err
	}
	return f.contacts[domain], nil
}

type fakeSummarizer struct {
	err   error
	calls int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, job model.JobRecord) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "summary of " + job.Title, nil
}

type fakeExporter struct {
	leads []*model.Lead
	calls int
	err   error
}

func (f *fakeExporter) Export(leads []*model.Lead, runAt time.Time) (string, error) {
	f.calls++
	f.leads = leads
	if f.err != nil {
		return "", f.err
	}
	return "outputs/leads_export_" + runAt.Format("20060102_1504") + ".csv", nil
}

type fakeNotifier struct {
	summaries []model.RunSummary
	err       error
}

func (f *fakeNotifier) Notify(s model.RunSummary) error {
	f.summaries = append(f.summaries, s)
	return f.err
}

func contacts(n int) []model.Contact {
	out := make([]model.Contact, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Contact{
			FirstName: fmt.Sprintf("First%d", i),
			LastName:  fmt.Sprintf("Last%d", i),
			Email:     fmt.Sprintf("p%d@example.com", i),
			Title:     "VP Sales",
			Seniority: model.SeniorityVP,
		})
	}
	return out
}

// strongJob scores well above 60 with the default rules.
func strongJob(title, company, website string) model.RawJob {
	return model.RawJob{
		Title:          title,
		CompanyName:    company,
		CompanyWebsite: website,
		PostedDate:     fixedNow.AddDate(0, 0, -45).Format(model.PostedDateLayout),
		Description:    "SaaS/Cloud, enterprise architecture, consultative b2b sales",
		Source:         "Test",
	}
}

type harness struct {
	enricher   *fakeEnricher
	summarizer *fakeSummarizer
	exporter   *fakeExporter
	notifier   *fakeNotifier
}

func newOrchestrator(src model.JobSource, e model.Enricher, settings Settings) (*Orchestrator, *harness) {
	h := &harness{
		summarizer: &fakeSummarizer{},
		exporter:   &fakeExporter{},
		notifier:   &fakeNotifier{},
	}
	if fe, ok := e.(*fakeEnricher); ok {
		h.enricher = fe
	}
	qf := filter.NewQualificationFilter(scoring.NewEngine(scoring.DefaultRules()), settings.Criteria.MinPainScore, discardLogger())
	o := NewOrchestrator(
		src,
		qf,
		NewEnrichmentGateway(e, time.Second, discardLogger()),
		NewSummaryGateway(h.summarizer, time.Second, discardLogger()),
		h.exporter,
		settings,
		discardLogger(),
		WithClock(func() time.Time { return fixedNow }),
		WithRunID(func() string { return "run-1" }),
		WithNotifier(h.notifier),
	)
	return o, h
}

func defaultSettings() Settings {
	return Settings{
		Criteria:      model.Criteria{MinContacts: 3, MinPainScore: 60},
		MaxContacts:   5,
		HighPainScore: 80,
	}
}

func TestRun_MockBatchAllQualified(t *testing.T) {
	src := jobsource.NewMockSource(func() time.Time { return fixedNow }, discardLogger())
	o, h := newOrchestrator(src, enrich.NewMockEnricher(), defaultSettings())

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Fetched != 3 || report.Retained != 3 {
		t.Errorf("fetched=%d retained=%d, want 3/3", report.Fetched, report.Retained)
	}
	if report.Qualified != 3 {
		t.Errorf("qualified = %d, want 3 (rejections: %+v)", report.Qualified, report.Rejections)
	}
	if report.State != StateExported {
		t.Errorf("state = %s, want %s", report.State, StateExported)
	}
	if len(h.exporter.leads) != 3 {
		t.Fatalf("exported %d leads, want 3", len(h.exporter.leads))
	}
	wantDays := []int{45, 32, 67}
	for i, l := range h.exporter.leads {
		if l.Job.DaysOpen != wantDays[i] {
			t.Errorf("lead %d days_open = %d, want %d", i, l.Job.DaysOpen, wantDays[i])
		}
		if l.Job.PainScore < 60 {
			t.Errorf("lead %d pain_score = %d, want >= 60", i, l.Job.PainScore)
		}
		if l.State != model.LeadQualified {
			t.Errorf("lead %d state = %s", i, l.State)
		}
		for _, c := range l.Contacts() {
			if !c.IsComplete() {
				t.Errorf("lead %d has incomplete contact %+v", i, c)
			}
		}
	}
	if report.OutputPath != "outputs/leads_export_20250310_1200.csv" {
		t.Errorf("output path = %q", report.OutputPath)
	}
	if len(h.notifier.summaries) != 1 || h.notifier.summaries[0].Leads != 3 {
		t.Errorf("notifier got %+v", h.notifier.summaries)
	}
}

func TestRun_ExcludedJobNeverEnriched(t *testing.T) {
	src := &fakeSource{jobs: []model.RawJob{
		strongJob("Junior Sales Engineer", "Acme", "https://acme.com"),
		strongJob("Senior Sales Engineer", "Beta", "https://beta.io"),
	}}
	fe := &fakeEnricher{contacts: map[string][]model.Contact{"beta.io": contacts(3), "acme.com": contacts(3)}}
	o, h := newOrchestrator(src, fe, defaultSettings())

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Excluded != 1 {
		t.Errorf("excluded = %d, want 1", report.Excluded)
	}
	if len(fe.calls) != 1 || fe.calls[0] != "beta.io" {
		t.Errorf("enricher calls = %v, want [beta.io]", fe.calls)
	}
	if len(h.exporter.leads) != 1 || h.exporter.leads[0].Job.CompanyName != "Beta" {
		t.Errorf("unexpected exported leads")
	}
}

func TestRun_EnrichmentFailureDegrades(t *testing.T) {
	src := &fakeSource{jobs: []model.RawJob{
		strongJob("Senior Sales Engineer", "Down", "https://down.com"),
		strongJob("Senior Sales Engineer", "Up", "https://up.com"),
	}}
	fe := &fakeEnricher{
		contacts: map[string][]model.Contact{"up.com": contacts(4)},
		errs:     map[string]error{"down.com": &model.HTTPError{Provider: "apollo", StatusCode: 500}},
	}
	o, h := newOrchestrator(src, fe, defaultSettings())

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.EnrichmentFailures != 1 {
		t.Errorf("enrichment failures = %d, want 1", report.EnrichmentFailures)
	}
	if report.Qualified != 1 || report.Rejected != 1 {
		t.Errorf("qualified=%d rejected=%d, want 1/1", report.Qualified, report.Rejected)
	}
	if len(report.Rejections) != 1 || !strings.Contains(report.Rejections[0].Reason, "insufficient contacts (0 < 3)") {
		t.Errorf("rejections = %+v", report.Rejections)
	}
	if len(h.exporter.leads) != 1 || h.exporter.leads[0].ContactCount() != 4 {
		t.Errorf("unexpected exported leads")
	}
}

func TestRun_SummaryFallback(t *testing.T) {
	src := &fakeSource{jobs: []model.RawJob{strongJob("Senior Sales Engineer", "Acme", "https://acme.com")}}
	fe := &fakeEnricher{contacts: map[string][]model.Contact{"acme.com": contacts(3)}}
	o, h := newOrchestrator(src, fe, defaultSettings())
	h.summarizer.err = errors.New("model unavailable")

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SummaryFallbacks != 1 {
		t.Errorf("summary fallbacks = %d, want 1", report.SummaryFallbacks)
	}
	lead := h.exporter.leads[0]
	if !lead.SummaryFallback || lead.Summary == "" {
		t.Errorf("summary = %q fallback=%v", lead.Summary, lead.SummaryFallback)
	}
	if !strings.Contains(lead.Summary, "Senior Sales Engineer") {
		t.Errorf("fallback summary should mention the title, got %q", lead.Summary)
	}
}

func TestRun_TwoContactsRejected(t *testing.T) {
	src := &fakeSource{jobs: []model.RawJob{strongJob("Senior Sales Engineer", "Small", "https://small.de")}}
	fe := &fakeEnricher{contacts: map[string][]model.Contact{"small.de": contacts(2)}}
	o, h := newOrchestrator(src, fe, defaultSettings())

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Qualified != 0 || report.Rejected != 1 {
		t.Errorf("qualified=%d rejected=%d, want 0/1", report.Qualified, report.Rejected)
	}
	if h.exporter.calls != 1 || len(h.exporter.leads) != 0 {
		t.Errorf("expected a header-only export, got calls=%d leads=%d", h.exporter.calls, len(h.exporter.leads))
	}
	if report.Rejections[0].Reason != "insufficient contacts (2 < 3)" {
		t.Errorf("reason = %q", report.Rejections[0].Reason)
	}
}

func TestRun_IncompleteContactsDiscarded(t *testing.T) {
	cs := contacts(3)
	cs = append(cs, model.Contact{FirstName: "No", LastName: "Reach"})
	src := &fakeSource{jobs: []model.RawJob{strongJob("Senior Sales Engineer", "Acme", "https://acme.com")}}
	fe := &fakeEnricher{contacts: map[string][]model.Contact{"acme.com": cs}}
	o, h := newOrchestrator(src, fe, defaultSettings())

	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.exporter.leads[0].ContactCount(); got != 3 {
		t.Errorf("contact count = %d, want 3", got)
	}
}

func TestRun_NoDomainSkipsEnrichment(t *testing.T) {
	src := &fakeSource{jobs: []model.RawJob{strongJob("Senior Sales Engineer", "Nowhere", "")}}
	fe := &fakeEnricher{}
	o, h := newOrchestrator(src, fe, defaultSettings())

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fe.calls) != 0 {
		t.Errorf("enricher should not be called, got %v", fe.calls)
	}
	if h.summarizer.calls != 1 {
		t.Errorf("summarizer calls = %d, want 1", h.summarizer.calls)
	}
	if report.Rejected != 1 {
		t.Errorf("rejected = %d, want 1", report.Rejected)
	}
}

func TestRun_BudgetExhaustedStopsLoop(t *testing.T) {
	src := &fakeSource{jobs: []model.RawJob{
		strongJob("Senior Sales Engineer", "One", "https://one.com"),
		strongJob("Senior Sales Engineer", "Two", "https://two.com"),
		strongJob("Senior Sales Engineer", "Three", "https://three.com"),
	}}
	fe := &fakeEnricher{contacts: map[string][]model.Contact{
		"one.com": contacts(3), "two.com": contacts(3), "three.com": contacts(3),
	}}
	budget := enrich.NewBudgetEnricher(fe, 2, discardLogger())
	o, h := newOrchestrator(src, budget, defaultSettings())

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.BudgetExhausted || report.Skipped != 1 {
		t.Errorf("budget exhausted=%v skipped=%d, want true/1", report.BudgetExhausted, report.Skipped)
	}
	if len(h.exporter.leads) != 2 {
		t.Errorf("exported %d leads, want 2", len(h.exporter.leads))
	}
	if budget.Used() != 2 {
		t.Errorf("budget used = %d, want 2", budget.Used())
	}
}

func TestRun_EmptyBatchWritesHeaderOnly(t *testing.T) {
	src := &fakeSource{jobs: []model.RawJob{
		{Title: "Sales Intern", CompanyName: "Acme", Description: "saas cloud enterprise"},
	}}
	o, h := newOrchestrator(src, &fakeEnricher{}, defaultSettings())

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.State != StateEmptyBatch {
		t.Errorf("state = %s, want %s", report.State, StateEmptyBatch)
	}
	if h.exporter.calls != 1 || len(h.exporter.leads) != 0 {
		t.Errorf("expected one empty export, got calls=%d leads=%d", h.exporter.calls, len(h.exporter.leads))
	}
	if h.summarizer.calls != 0 {
		t.Errorf("summarizer should not run for an empty batch")
	}
}

func TestRun_SourceErrorIsFatal(t *testing.T) {
	src := &fakeSource{err: errors.New("feed unreadable")}
	o, h := newOrchestrator(src, &fakeEnricher{}, defaultSettings())

	if _, err := o.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if h.exporter.calls != 0 {
		t.Errorf("exporter should not run after a source failure")
	}
}

func TestRun_ExportErrorReturned(t *testing.T) {
	src := &fakeSource{jobs: []model.RawJob{strongJob("Senior Sales Engineer", "Acme", "https://acme.com")}}
	fe := &fakeEnricher{contacts: map[string][]model.Contact{"acme.com": contacts(3)}}
	o, h := newOrchestrator(src, fe, defaultSettings())
	h.exporter.err = errors.New("disk full")

	_, err := o.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v, want disk full", err)
	}
	if len(h.notifier.summaries) != 0 {
		t.Errorf("notifier should not run after a failed export")
	}
}

func TestRun_NotifierFailureIgnored(t *testing.T) {
	src := &fakeSource{jobs: []model.RawJob{strongJob("Senior Sales Engineer", "Acme", "https://acme.com")}}
	fe := &fakeEnricher{contacts: map[string][]model.Contact{"acme.com": contacts(3)}}
	o, h := newOrchestrator(src, fe, defaultSettings())
	h.notifier.err = errors.New("slack down")

	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCollect_CancelledContext(t *testing.T) {
	src := &fakeSource{jobs: []model.RawJob{strongJob("Senior Sales Engineer", "Acme", "https://acme.com")}}
	o, _ := newOrchestrator(src, &fakeEnricher{}, defaultSettings())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := o.Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestReport_Summary(t *testing.T) {
	r := &Report{RunID: "abc", HighPainMin: 80}
	leads := []*model.Lead{
		model.NewLead(model.JobRecord{PainScore: 100, Source: "A"}),
		model.NewLead(model.JobRecord{PainScore: 70, Source: "A"}),
		model.NewLead(model.JobRecord{PainScore: 85, Source: "B"}),
	}
	r.tally(leads)

	s := r.Summary()
	if s.Leads != 3 || s.HighPain != 2 {
		t.Errorf("leads=%d high=%d, want 3/2", s.Leads, s.HighPain)
	}
	if s.AvgPainScore != 85 {
		t.Errorf("avg = %v, want 85", s.AvgPainScore)
	}
	if s.Sources["A"] != 2 || s.Sources["B"] != 1 {
		t.Errorf("sources = %v", s.Sources)
	}
	if !strings.Contains(r.String(), "high-pain leads (80+): 2") {
		t.Errorf("String() = %q", r.String())
	}
}
