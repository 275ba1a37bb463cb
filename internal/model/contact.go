package model

import "strings"

// Seniority is the coarse organizational rank of a contact.
type Seniority string

const (
	SeniorityCLevel   Seniority = "C-Level"
	SeniorityVP       Seniority = "VP"
	SeniorityDirector Seniority = "Head/Director"
	SeniorityManager  Seniority = "Manager"
	SeniorityOther    Seniority = "Other"
)

// Tiers are checked in order; the first tier with a matching keyword wins.
// "vice president" sits ahead of C-Level so that it is not caught by "president".
var seniorityTiers = []struct {
	tier     Seniority
	keywords []string
}{
	{SeniorityVP, []string{"vice president", "vizepräsident"}},
	{SeniorityCLevel, []string{"ceo", "chief", "president", "founder", "geschäftsführer", "geschaeftsfuehrer"}},
	{SeniorityVP, []string{"vp", "evp", "svp"}},
	{SeniorityDirector, []string{"head", "director", "leiter", "leiterin"}},
	{SeniorityManager, []string{"manager", "lead"}},
}

// ClassifySeniority derives a seniority tier from a job title.
func ClassifySeniority(title string) Seniority {
	t := strings.ToLower(title)
	for _, st := range seniorityTiers {
		for _, kw := range st.keywords {
			if strings.Contains(t, kw) {
				return st.tier
			}
		}
	}
	return SeniorityOther
}

// ParseSeniority maps a provider-supplied label onto the fixed enumeration.
// Unknown labels become SeniorityOther.
func ParseSeniority(s string) Seniority {
	switch Seniority(strings.TrimSpace(s)) {
	case SeniorityCLevel:
		return SeniorityCLevel
	case SeniorityVP:
		return SeniorityVP
	case SeniorityDirector:
		return SeniorityDirector
	case SeniorityManager:
		return SeniorityManager
	default:
		return SeniorityOther
	}
}

// Contact is one decision-maker at a company. Contacts are never mutated
// after construction.
type Contact struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Title       string    `json:"title"`
	Seniority   Seniority `json:"seniority"`
	LinkedInURL string    `json:"linkedin_url,omitempty"`
	Source      string    `json:"source"` // provenance tag, e.g. "apollo.io"
}

// IsComplete reports whether the contact has a full name and at least one
// way to reach them.
func (c Contact) IsComplete() bool {
	hasName := strings.TrimSpace(c.FirstName) != "" && strings.TrimSpace(c.LastName) != ""
	reachable := strings.TrimSpace(c.Email) != "" || strings.TrimSpace(c.Phone) != ""
	return hasName && reachable
}

// FullName returns "First Last".
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
