package jobsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/leadradar/internal/model"
	"github.com/amishk599/leadradar/internal/ratelimit"
	"github.com/amishk599/leadradar/internal/retry"
)

// Board identifies one public ATS job board and the company behind it.
type Board struct {
	ATS     string // "greenhouse" or "lever"
	Token   string // board token or company slug
	Company string
	Website string
}

type board interface {
	model.JobSource
	Name() string
}

// BoardsSource fetches every configured board in turn and concatenates the
// postings. Requests to the same ATS are spaced by the shared limiter and
// transient failures are retried. A board that still fails is logged and
// skipped; the fetch only fails when every board does.
type BoardsSource struct {
	boards  []board
	limiter *ratelimit.ProviderLimiter
	policy  retry.Policy
	logger  *slog.Logger
}

// NewBoardsSource builds a source over boards. Unknown ATS names are an error.
func NewBoardsSource(boards []Board, client *http.Client, minDelay time.Duration, retries int, logger *slog.Logger) (*BoardsSource, error) {
	if len(boards) == 0 {
		return nil, errors.New("no boards configured")
	}
	s := &BoardsSource{
		limiter: ratelimit.NewProviderLimiter(minDelay),
		policy:  retry.Policy{MaxRetries: retries, BaseDelay: 2 * time.Second},
		logger:  logger,
	}
	for _, b := range boards {
		switch b.ATS {
		case "greenhouse":
			s.boards = append(s.boards, NewGreenhouseBoard(b, client))
		case "lever":
			s.boards = append(s.boards, NewLeverBoard(b, client))
		default:
			return nil, fmt.Errorf("unsupported ats %q for %s", b.ATS, b.Company)
		}
	}
	return s, nil
}

func (s *BoardsSource) FetchJobs(ctx context.Context) ([]model.RawJob, error) {
	var (
		all      []model.RawJob
		failures int
		lastErr  error
	)
	for _, b := range s.boards {
		name := b.Name()
		jobs, err := retry.Do(ctx, s.policy, s.logger.With("board", name), "fetch board",
			func(ctx context.Context) ([]model.RawJob, error) {
				if err := s.limiter.Wait(ctx, providerOf(b)); err != nil {
					return nil, retry.Permanent(err)
				}
				return b.FetchJobs(ctx)
			})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			lastErr = err
			s.logger.Warn("board fetch failed, skipping", "board", name, "error", err)
			continue
		}
		s.logger.Info("fetched board", "board", name, "jobs", len(jobs))
		all = append(all, jobs...)
	}

	if failures == len(s.boards) {
		return nil, fmt.Errorf("all %d boards failed: %w", failures, lastErr)
	}
	return all, nil
}

func providerOf(b board) string {
	switch b.(type) {
	case *GreenhouseBoard:
		return "greenhouse"
	case *LeverBoard:
		return "lever"
	default:
		return b.Name()
	}
}
