package jobsource

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

type leverCategories struct {
	Location     string   `json:"location"`
	AllLocations []string `json:"allLocations"`
}

type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	Description      string          `json:"description"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Categories       leverCategories `json:"categories"`
	CreatedAt        int64           `json:"createdAt"` // unix millis
	HostedURL        string          `json:"hostedUrl"`
}

// LeverBoard fetches postings from one Lever company page.
type LeverBoard struct {
	board   Board
	client  *http.Client
	baseURL string
}

// NewLeverBoard creates a source for a Lever company slug.
func NewLeverBoard(board Board, client *http.Client) *LeverBoard {
	return &LeverBoard{board: board, client: client, baseURL: leverBaseURL}
}

func (l *LeverBoard) Name() string { return "lever/" + l.board.Token }

// FetchJobs retrieves every published posting for the company.
func (l *LeverBoard) FetchJobs(ctx context.Context) ([]model.RawJob, error) {
	url := fmt.Sprintf("%s/%s?mode=json", l.baseURL, l.board.Token)

	var postings []leverJob
	if err := getJSON(ctx, l.client, "lever", url, &postings); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", l.board.Token, err)
	}

	jobs := make([]model.RawJob, 0, len(postings))
	for _, lj := range postings {
		location := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			location = strings.Join(lj.Categories.AllLocations, ", ")
		}

		description := lj.DescriptionPlain
		if strings.TrimSpace(description) == "" {
			description = extractText(lj.Description)
		}

		job := model.RawJob{
			Title:          lj.Text,
			CompanyName:    l.board.Company,
			CompanyWebsite: l.board.Website,
			Location:       location,
			JobURL:         lj.HostedURL,
			Description:    description,
			Source:         "Lever",
		}
		if lj.CreatedAt > 0 {
			t := time.UnixMilli(lj.CreatedAt).UTC()
			job.PostedAt = &t
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
