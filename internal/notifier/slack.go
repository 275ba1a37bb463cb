package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts the run summary to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts run summaries to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends one Block Kit message for the run. A 429 is retried once
// after the Retry-After delay.
func (s *SlackNotifier) Notify(summary model.RunSummary) error {
	body, err := json.Marshal(buildPayload(summary))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack message sent", "run_id", summary.RunID, "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "run_id", summary.RunID)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a sample run summary to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	return n.Notify(model.RunSummary{
		RunID:        "test-001",
		Leads:        3,
		AvgPainScore: 91.7,
		HighPain:     3,
		HighPainMin:  80,
		Sources:      map[string]int{"test": 3},
		OutputPath:   "outputs/leads_export_test.csv",
	})
}

type sourceCount struct {
	name  string
	count int
}

// sortedSources orders sources by count, then name.
func sortedSources(m map[string]int) []sourceCount {
	out := make([]sourceCount, 0, len(m))
	for name, count := range m {
		out = append(out, sourceCount{name: name, count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func buildPayload(s model.RunSummary) slackPayload {
	title := fmt.Sprintf("📈 LeadRadar: %d qualified leads", s.Leads)
	if s.Leads == 1 {
		title = "📈 LeadRadar: 1 qualified lead"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Avg pain score:*\n%.1f", s.AvgPainScore)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*High-pain (%d+):*\n%d", s.HighPainMin, s.HighPain)},
			},
		},
	}

	if len(s.Sources) > 0 {
		lines := make([]string, 0, len(s.Sources))
		for _, src := range sortedSources(s.Sources) {
			lines = append(lines, fmt.Sprintf("• %s: %d", src.name, src.count))
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Sources:*\n" + strings.Join(lines, "\n")},
		})
	}

	blocks = append(blocks,
		slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Export:* `" + s.OutputPath + "`\n*Run:* " + s.RunID},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Blocks: blocks}
}
