package jobsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/leadradar/internal/model"
)

const greenhousePayload = `{"jobs":[{
	"id": 42,
	"title": "Sales Engineer DACH",
	"location": {"name": "Berlin"},
	"absolute_url": "https://boards.greenhouse.io/acme/jobs/42",
	"content": "&lt;p&gt;Cloud sales&lt;/p&gt;&lt;p&gt;Enterprise clients&lt;/p&gt;",
	"first_published": "2026-01-20T08:00:00Z",
	"updated_at": "2026-02-01T08:00:00Z"
}]}`

const leverPayload = `[{
	"id": "abc",
	"text": "Solutions Engineer",
	"description": "<p>ignored</p>",
	"descriptionPlain": "Consultative B2B sales",
	"categories": {"location": "Munich", "allLocations": ["Munich", "Remote"]},
	"createdAt": 1767225600000,
	"hostedUrl": "https://jobs.lever.co/beta/abc"
}]`

func TestGreenhouseBoard_FetchJobs(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(greenhousePayload))
	}))
	defer srv.Close()

	b := NewGreenhouseBoard(Board{ATS: "greenhouse", Token: "acme", Company: "Acme GmbH", Website: "https://acme.de"}, srv.Client())
	b.baseURL = srv.URL

	jobs, err := b.FetchJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.Equal(t, "/acme/jobs", gotPath)
	assert.Equal(t, "content=true", gotQuery)

	job := jobs[0]
	assert.Equal(t, "Sales Engineer DACH", job.Title)
	assert.Equal(t, "Acme GmbH", job.CompanyName)
	assert.Equal(t, "https://acme.de", job.CompanyWebsite)
	assert.Equal(t, "Berlin", job.Location)
	assert.Equal(t, "Greenhouse", job.Source)
	assert.Equal(t, "Cloud sales\nEnterprise clients", job.Description)
	require.NotNil(t, job.PostedAt)
	assert.Equal(t, time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC), job.PostedAt.UTC())
}

func TestGreenhouseBoard_FallsBackToUpdatedAt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobs":[{"id":1,"title":"AE","updated_at":"2026-02-01T08:00:00Z"}]}`))
	}))
	defer srv.Close()

	b := NewGreenhouseBoard(Board{Token: "acme", Company: "Acme"}, srv.Client())
	b.baseURL = srv.URL

	jobs, err := b.FetchJobs(context.Background())
	require.NoError(t, err)
	require.NotNil(t, jobs[0].PostedAt)
	assert.Equal(t, 1, jobs[0].PostedAt.Day())
}

func TestGreenhouseBoard_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b := NewGreenhouseBoard(Board{Token: "acme", Company: "Acme"}, srv.Client())
	b.baseURL = srv.URL

	_, err := b.FetchJobs(context.Background())
	var httpErr *model.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "greenhouse", httpErr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, 7*time.Second, httpErr.RetryAfter)
}

func TestLeverBoard_FetchJobs(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(leverPayload))
	}))
	defer srv.Close()

	b := NewLeverBoard(Board{ATS: "lever", Token: "beta", Company: "Beta AG"}, srv.Client())
	b.baseURL = srv.URL

	jobs, err := b.FetchJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.Equal(t, "/beta", gotPath)
	assert.Equal(t, "mode=json", gotQuery)

	job := jobs[0]
	assert.Equal(t, "Solutions Engineer", job.Title)
	assert.Equal(t, "Beta AG", job.CompanyName)
	assert.Empty(t, job.CompanyWebsite)
	assert.Equal(t, "Munich, Remote", job.Location)
	assert.Equal(t, "Consultative B2B sales", job.Description)
	assert.Equal(t, "Lever", job.Source)
	require.NotNil(t, job.PostedAt)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *job.PostedAt)
}

func TestLeverBoard_PlainDescriptionFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"text":"AE","description":"<p>Enterprise &amp; SaaS</p>","categories":{"location":"Hamburg"}}]`))
	}))
	defer srv.Close()

	b := NewLeverBoard(Board{Token: "beta", Company: "Beta"}, srv.Client())
	b.baseURL = srv.URL

	jobs, err := b.FetchJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Enterprise & SaaS", jobs[0].Description)
	assert.Equal(t, "Hamburg", jobs[0].Location)
	assert.Nil(t, jobs[0].PostedAt)
}

// pointBoardsAt redirects every board in s to srv and shortens backoff.
func pointBoardsAt(s *BoardsSource, url string) {
	s.policy.BaseDelay = time.Millisecond
	for _, b := range s.boards {
		switch b := b.(type) {
		case *GreenhouseBoard:
			b.baseURL = url + "/gh"
		case *LeverBoard:
			b.baseURL = url + "/lever"
		}
	}
}

func TestBoardsSource_CombinesBoards(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gh/acme/jobs", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(greenhousePayload))
	})
	mux.HandleFunc("/lever/beta", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(leverPayload))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src, err := NewBoardsSource([]Board{
		{ATS: "greenhouse", Token: "acme", Company: "Acme GmbH"},
		{ATS: "lever", Token: "beta", Company: "Beta AG"},
	}, srv.Client(), 0, 0, discardLogger())
	require.NoError(t, err)
	pointBoardsAt(src, srv.URL)

	jobs, err := src.FetchJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Acme GmbH", jobs[0].CompanyName)
	assert.Equal(t, "Beta AG", jobs[1].CompanyName)
}

func TestBoardsSource_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(leverPayload))
	}))
	defer srv.Close()

	src, err := NewBoardsSource([]Board{{ATS: "lever", Token: "beta", Company: "Beta AG"}},
		srv.Client(), 0, 2, discardLogger())
	require.NoError(t, err)
	pointBoardsAt(src, srv.URL)

	jobs, err := src.FetchJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBoardsSource_SkipsFailedBoard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gh/gone/jobs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/lever/beta", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(leverPayload))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src, err := NewBoardsSource([]Board{
		{ATS: "greenhouse", Token: "gone", Company: "Gone Inc"},
		{ATS: "lever", Token: "beta", Company: "Beta AG"},
	}, srv.Client(), 0, 2, discardLogger())
	require.NoError(t, err)
	pointBoardsAt(src, srv.URL)

	jobs, err := src.FetchJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Beta AG", jobs[0].CompanyName)
}

func TestBoardsSource_AllBoardsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src, err := NewBoardsSource([]Board{{ATS: "greenhouse", Token: "gone", Company: "Gone Inc"}},
		srv.Client(), 0, 0, discardLogger())
	require.NoError(t, err)
	pointBoardsAt(src, srv.URL)

	_, err = src.FetchJobs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 1 boards failed")
}

func TestNewBoardsSource_Invalid(t *testing.T) {
	_, err := NewBoardsSource(nil, http.DefaultClient, 0, 0, discardLogger())
	assert.Error(t, err)

	_, err = NewBoardsSource([]Board{{ATS: "workday", Token: "x", Company: "X"}}, http.DefaultClient, 0, 0, discardLogger())
	assert.ErrorContains(t, err, "unsupported ats")
}
