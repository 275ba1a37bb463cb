package model

import (
	"fmt"
	"regexp"
)

// domainPattern matches an optional scheme and "www." prefix followed by the
// first "label.tld" token.
var domainPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?([a-zA-Z0-9-]+\.[a-zA-Z]{2,})`)

// ExtractDomain returns the company domain from a website URL, or "" when
// none can be found. It never fails on malformed input.
func ExtractDomain(website string) string {
	if website == "" {
		return ""
	}
	m := domainPattern.FindStringSubmatch(website)
	if m == nil {
		return ""
	}
	return m[1]
}

// LeadState tracks how far a lead has progressed through the pipeline.
type LeadState string

const (
	LeadCreated    LeadState = "created"
	LeadEnriched   LeadState = "enriched"
	LeadSummarized LeadState = "summarized"
	LeadQualified  LeadState = "qualified"
	LeadRejected   LeadState = "rejected"
)

// Criteria are the thresholds a lead must meet to be exported.
type Criteria struct {
	MinContacts  int
	MinPainScore int
}

// Lead binds one job to the contacts found for its company and a generated
// summary. The lead exclusively owns its job.
type Lead struct {
	Job     JobRecord
	Domain  string // "" when no domain could be extracted
	Summary string
	// SummaryFallback is true when Summary came from the local template.
	SummaryFallback bool
	State           LeadState

	contacts []Contact
}

// NewLead creates a lead for job and derives its company domain.
func NewLead(job JobRecord) *Lead {
	return &Lead{
		Job:    job,
		Domain: ExtractDomain(job.CompanyWebsite),
		State:  LeadCreated,
	}
}

// AddContact appends c if it is complete and reports whether it was kept.
// Incomplete contacts are silently discarded.
func (l *Lead) AddContact(c Contact) bool {
	if !c.IsComplete() {
		return false
	}
	l.contacts = append(l.contacts, c)
	return true
}

// Contacts returns the attached contacts in enrichment order.
func (l *Lead) Contacts() []Contact {
	out := make([]Contact, len(l.contacts))
	copy(out, l.contacts)
	return out
}

// ContactCount returns the number of attached contacts.
func (l *Lead) ContactCount() int {
	return len(l.contacts)
}

// Qualified reports whether the lead currently meets c. It is evaluated on
// every call and never cached.
func (l *Lead) Qualified(c Criteria) bool {
	return len(l.contacts) >= c.MinContacts && l.Job.PainScore >= c.MinPainScore
}

// Shortfall explains why the lead does not meet c. Returns "" for a
// qualified lead.
func (l *Lead) Shortfall(c Criteria) string {
	var reason string
	if len(l.contacts) < c.MinContacts {
		reason = fmt.Sprintf("insufficient contacts (%d < %d)", len(l.contacts), c.MinContacts)
	}
	if l.Job.PainScore < c.MinPainScore {
		scoreReason := fmt.Sprintf("insufficient pain score (%d < %d)", l.Job.PainScore, c.MinPainScore)
		if reason != "" {
			return reason + ", " + scoreReason
		}
		return scoreReason
	}
	return reason
}
