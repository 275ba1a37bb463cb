package jobsource

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// extractText converts an HTML or HTML-encoded description to plain text.
// Entities are unescaped first (feeds often double-encode), tags are
// stripped, then whitespace within each line is collapsed. Line breaks are
// kept so bullet lists stay readable in the summary prompt.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	for _, tag := range []string{"<br>", "<br/>", "<br />", "</p>", "</li>", "</div>"} {
		unescaped = strings.ReplaceAll(unescaped, tag, tag+"\n")
	}
	plain := html.UnescapeString(stripPolicy.Sanitize(unescaped))

	lines := strings.Split(plain, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
