package model

import (
	"context"
	"time"
)

// JobSource produces the raw job batch for one pipeline run.
type JobSource interface {
	FetchJobs(ctx context.Context) ([]RawJob, error)
}

// Enricher looks up decision-maker contacts for a company domain, returning
// at most maxContacts records.
type Enricher interface {
	Enrich(ctx context.Context, domain string, maxContacts int) ([]Contact, error)
}

// Summarizer renders a call-ready text summary of a job.
type Summarizer interface {
	Summarize(ctx context.Context, job JobRecord) (string, error)
}

// ContactCache stores enrichment responses keyed by "domain:maxContacts".
// Implementations are not required to be safe for concurrent use.
type ContactCache interface {
	Get(key string) ([]Contact, bool, error)
	Put(key string, contacts []Contact) error
}

// Exporter writes the qualified leads of one run as a single table and
// returns the path it wrote.
type Exporter interface {
	Export(leads []*Lead, runAt time.Time) (string, error)
}

// RunSummary is what notifiers report after a run.
type RunSummary struct {
	RunID        string
	Leads        int
	AvgPainScore float64
	HighPain     int // leads with score >= high-pain threshold
	HighPainMin  int
	Sources      map[string]int
	OutputPath   string
}

// Notifier delivers a run summary.
type Notifier interface {
	Notify(summary RunSummary) error
}

// EnrichmentResult is the gateway view of one enrichment call: either
// contacts or the error that degraded the call to zero contacts.
type EnrichmentResult struct {
	Contacts []Contact
	Err      error
}

// SummaryResult is the gateway view of one summarization call. Text is never
// empty; Fallback is set when the local template replaced a failed call.
type SummaryResult struct {
	Text     string
	Fallback bool
	Err      error
}
