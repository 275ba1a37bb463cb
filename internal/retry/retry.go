package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

// Policy controls how a failed call is retried.
// MaxRetries is the number of additional attempts after the first failure.
// BaseDelay is the delay before the first retry, doubled on each subsequent retry.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Do runs fn, retrying transient failures with exponential backoff and
// jitter. op names the call in log lines.
func Do[T any](ctx context.Context, p Policy, logger *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	result, err := fn(ctx)
	if err == nil {
		return result, nil
	}
	if !isRetryable(err) {
		return zero, err
	}

	lastErr := err
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		delay := p.backoffDelay(attempt, lastErr)

		logger.Warn("retrying after transient error",
			"op", op,
			"attempt", attempt,
			"max_retries", p.MaxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
		if !isRetryable(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (p Policy) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation: never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return false
	}

	// Non-HTTP errors (network, DNS, etc.) are retryable.
	return true
}

// PermanentError marks a non-HTTP failure that retrying cannot fix, such as
// an unparseable response body.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so Do returns it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Enricher is a decorator that retries transient enrichment failures.
type Enricher struct {
	inner  model.Enricher
	policy Policy
	logger *slog.Logger
}

// NewEnricher wraps an Enricher with retry logic.
func NewEnricher(inner model.Enricher, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Enricher {
	return &Enricher{
		inner:  inner,
		policy: Policy{MaxRetries: maxRetries, BaseDelay: baseDelay},
		logger: logger,
	}
}

func (e *Enricher) Enrich(ctx context.Context, domain string, maxContacts int) ([]model.Contact, error) {
	return Do(ctx, e.policy, e.logger.With("domain", domain), "enrich", func(ctx context.Context) ([]model.Contact, error) {
		return e.inner.Enrich(ctx, domain, maxContacts)
	})
}

// Completer is the LLM call surface retried by Provider.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider is a decorator that retries transient LLM failures.
type Provider struct {
	inner  Completer
	policy Policy
	logger *slog.Logger
}

// NewProvider wraps an LLM provider with retry logic.
func NewProvider(inner Completer, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Provider {
	return &Provider{
		inner:  inner,
		policy: Policy{MaxRetries: maxRetries, BaseDelay: baseDelay},
		logger: logger,
	}
}

func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	return Do(ctx, p.policy, p.logger, "complete", func(ctx context.Context) (string, error) {
		return p.inner.Complete(ctx, prompt)
	})
}
