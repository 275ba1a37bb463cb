package export

import (
	"fmt"
	"strconv"

	"github.com/amishk599/leadradar/internal/model"
)

var jobColumns = []string{
	"job_title",
	"company_name",
	"company_website",
	"location",
	"job_url",
	"source",
	"days_open",
	"pain_score",
	"company_domain",
	"job_summary",
}

var contactFields = []string{"first_name", "last_name", "email", "phone", "title", "seniority", "linkedin_url"}

// Header returns the column names for a table with maxContacts contact
// groups. The header does not depend on the data, so every export from the
// same configuration has the same shape.
func Header(maxContacts int) []string {
	header := make([]string, 0, len(jobColumns)+maxContacts*len(contactFields))
	header = append(header, jobColumns...)
	for i := 1; i <= maxContacts; i++ {
		for _, f := range contactFields {
			header = append(header, fmt.Sprintf("contact_%d_%s", i, f))
		}
	}
	return header
}

// Row flattens a lead into one row matching Header(maxContacts). Contacts
// beyond maxContacts are dropped; missing groups are empty strings.
func Row(lead *model.Lead, maxContacts int) []string {
	job := lead.Job
	row := make([]string, 0, len(jobColumns)+maxContacts*len(contactFields))
	row = append(row,
		job.Title,
		job.CompanyName,
		job.CompanyWebsite,
		job.Location,
		job.URL,
		job.Source,
		strconv.Itoa(job.DaysOpen),
		strconv.Itoa(job.PainScore),
		lead.Domain,
		lead.Summary,
	)

	contacts := lead.Contacts()
	for i := 0; i < maxContacts; i++ {
		if i >= len(contacts) {
			for range contactFields {
				row = append(row, "")
			}
			continue
		}
		c := contacts[i]
		row = append(row, c.FirstName, c.LastName, c.Email, c.Phone, c.Title, string(c.Seniority), c.LinkedInURL)
	}
	return row
}
