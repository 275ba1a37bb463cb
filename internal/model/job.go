package model

import (
	"strings"
	"time"
)

// PostedDateLayout is the ISO date format job sources use for posted_date.
const PostedDateLayout = "2006-01-02"

// RawJob is a job posting as produced by a job source, before normalization.
// Every field is optional; missing values degrade to safe defaults.
type RawJob struct {
	Title             string     `json:"title"`
	CompanyName       string     `json:"company_name"`
	CompanyWebsite    string     `json:"company_website"`
	Location          string     `json:"location"`
	PostedDate        string     `json:"posted_date"`         // "YYYY-MM-DD" (RFC 3339 also accepted)
	PostedAt          *time.Time `json:"-"`                   // native date, wins over PostedDate
	JobURL            string     `json:"job_url"`
	Description       string     `json:"description"`
	Source            string     `json:"source"`
	TotalApplications *int       `json:"total_applications,omitempty"`
}

// JobRecord is the normalized representation of one job posting.
type JobRecord struct {
	Title             string
	CompanyName       string
	CompanyWebsite    string     // empty when unknown
	Location          string
	PostedAt          *time.Time // nil when absent or unparseable
	URL               string
	Description       string
	Source            string // provenance tag, e.g. "Mock (StepStone)"
	TotalApplications *int   // nil when the source does not report it

	// DaysOpen is whole calendar days between PostedAt and ingestion time. Never negative.
	DaysOpen int
	// PainScore is zero until the scoring engine assigns it.
	PainScore int
}

// DefaultJobSource is the provenance tag used when a raw job carries none.
const DefaultJobSource = "Mock"

// NewJobRecord normalizes raw into a JobRecord, deriving DaysOpen relative to now.
func NewJobRecord(raw RawJob, now time.Time) JobRecord {
	source := strings.TrimSpace(raw.Source)
	if source == "" {
		source = DefaultJobSource
	}

	job := JobRecord{
		Title:             strings.TrimSpace(raw.Title),
		CompanyName:       strings.TrimSpace(raw.CompanyName),
		CompanyWebsite:    strings.TrimSpace(raw.CompanyWebsite),
		Location:          strings.TrimSpace(raw.Location),
		URL:               strings.TrimSpace(raw.JobURL),
		Description:       raw.Description,
		Source:            source,
		TotalApplications: raw.TotalApplications,
	}

	job.PostedAt = raw.PostedAt
	if job.PostedAt == nil {
		job.PostedAt = parsePostedDate(raw.PostedDate)
	}
	job.DaysOpen = DaysOpen(job.PostedAt, now)
	return job
}

// parsePostedDate accepts an ISO date or an RFC 3339 timestamp. Returns nil
// for empty or unparseable input.
func parsePostedDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(PostedDateLayout, s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}

// DaysOpen returns the number of whole calendar days from posted to now.
// A nil or future posted date yields 0.
func DaysOpen(posted *time.Time, now time.Time) int {
	if posted == nil {
		return 0
	}
	p := time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(n.Sub(p).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
