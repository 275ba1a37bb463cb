package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/job_summary.md
var jobSummaryPromptRaw string

// JobSummaryTemplate is the parsed prompt template for job summaries.
// Parsed once at package init; reused on every Summarize call.
var JobSummaryTemplate = template.Must(template.New("job_summary").Parse(jobSummaryPromptRaw))

// maxDescriptionRunes caps how much of the description is sent to the model.
const maxDescriptionRunes = 2000

// promptData is the data passed to JobSummaryTemplate.
type promptData struct {
	Title       string
	Company     string
	Location    string
	DaysOpen    int
	Description string
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
