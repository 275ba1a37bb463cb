package jobsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

type greenhouseJob struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	Location       greenhouseLocation `json:"location"`
	AbsoluteURL    string             `json:"absolute_url"`
	Content        string             `json:"content"`
	FirstPublished string             `json:"first_published"`
	UpdatedAt      string             `json:"updated_at"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseBoard fetches postings from one Greenhouse public job board.
type GreenhouseBoard struct {
	board   Board
	client  *http.Client
	baseURL string
}

// NewGreenhouseBoard creates a source for a Greenhouse board.
func NewGreenhouseBoard(board Board, client *http.Client) *GreenhouseBoard {
	return &GreenhouseBoard{board: board, client: client, baseURL: greenhouseBaseURL}
}

func (g *GreenhouseBoard) Name() string { return "greenhouse/" + g.board.Token }

// FetchJobs retrieves every posting on the board with its description.
func (g *GreenhouseBoard) FetchJobs(ctx context.Context) ([]model.RawJob, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", g.baseURL, g.board.Token)

	var resp greenhouseResponse
	if err := getJSON(ctx, g.client, "greenhouse", url, &resp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", g.board.Token, err)
	}

	jobs := make([]model.RawJob, 0, len(resp.Jobs))
	for _, gj := range resp.Jobs {
		job := model.RawJob{
			Title:          gj.Title,
			CompanyName:    g.board.Company,
			CompanyWebsite: g.board.Website,
			Location:       gj.Location.Name,
			JobURL:         gj.AbsoluteURL,
			Description:    extractText(gj.Content),
			Source:         "Greenhouse",
		}
		published := gj.FirstPublished
		if published == "" {
			published = gj.UpdatedAt
		}
		if t, err := time.Parse(time.RFC3339, published); err == nil {
			job.PostedAt = &t
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// getJSON issues a GET and decodes a 200 response body into v. Other
// statuses become *model.HTTPError so retry.Do can classify them.
func getJSON(ctx context.Context, client *http.Client, provider, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseRetryAfter reads a Retry-After header in seconds form. Returns zero
// when absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
