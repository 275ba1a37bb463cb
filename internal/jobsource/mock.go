package jobsource

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

// MockSource serves a fixed batch of three postings whose posted dates are
// computed from the injected clock, so their days-open values are stable
// (45, 32 and 67 days).
type MockSource struct {
	now    func() time.Time
	logger *slog.Logger
}

// NewMockSource creates a mock source. A nil now uses time.Now.
func NewMockSource(now func() time.Time, logger *slog.Logger) *MockSource {
	if now == nil {
		now = time.Now
	}
	return &MockSource{now: now, logger: logger}
}

type mockPosting struct {
	daysAgo int
	job     model.RawJob
}

var mockPostings = []mockPosting{
	{
		daysAgo: 45,
		job: model.RawJob{
			Title:          "Senior Sales Engineer (IT)",
			CompanyName:    "Salesforce",
			CompanyWebsite: "https://salesforce.com",
			Location:       "Munich, Germany",
			JobURL:         "https://salesforce.com/careers/job123",
			Description: `We are seeking an experienced Senior Sales Engineer to join our growing team.

Requirements:
- 5+ years in technical sales, preferably SaaS/Cloud
- Deep understanding of API integrations and enterprise architecture
- Experience with Fortune 500 clients
- Fluent in German and English
- Strong presentation and communication skills

Responsibilities:
- Lead technical pre-sales discussions
- Create POCs and demos for enterprise clients
- Work closely with product and sales teams
- Support complex deals with technical expertise`,
			Source: "Mock (StepStone)",
		},
	},
	{
		daysAgo: 32,
		job: model.RawJob{
			Title:          "Cyber Security Sales Consultant",
			CompanyName:    "Palo Alto Networks",
			CompanyWebsite: "https://paloaltonetworks.com",
			Location:       "Frankfurt, Germany",
			JobURL:         "https://paloaltonetworks.com/careers/job456",
			Description: `Join our cybersecurity team as a Sales Consultant.

Requirements:
- 3+ years in cybersecurity sales
- Understanding of network security, firewalls, threat detection
- Experience selling to enterprise clients
- German language required

We offer competitive compensation and professional development.`,
			Source: "Mock (LinkedIn)",
		},
	},
	{
		daysAgo: 67,
		job: model.RawJob{
			Title:          "SAP Sales Consultant",
			CompanyName:    "SAP",
			CompanyWebsite: "https://sap.com",
			Location:       "Berlin, Germany",
			JobURL:         "https://sap.com/careers/job789",
			Description: `Looking for an experienced SAP Sales Consultant.

Requirements:
- Deep SAP product knowledge (S/4HANA, ERP, Cloud)
- 5+ years enterprise software sales
- Experience with large deals (€1M+)
- Consultative selling approach
- Fluent German and English

This role requires travel across DACH region.`,
			Source: "Mock (StepStone)",
		},
	},
}

// FetchJobs returns the mock batch.
func (s *MockSource) FetchJobs(ctx context.Context) ([]model.RawJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	today := s.now().UTC()
	jobs := make([]model.RawJob, 0, len(mockPostings))
	for _, p := range mockPostings {
		job := p.job
		job.PostedDate = today.AddDate(0, 0, -p.daysAgo).Format(model.PostedDateLayout)
		jobs = append(jobs, job)
	}

	s.logger.Info("generated mock jobs", "count", len(jobs))
	return jobs, nil
}
