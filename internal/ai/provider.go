package ai

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

// LLMProvider sends a prompt to an LLM and returns the raw text response.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options holds the generation settings shared by every provider.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// httpError builds the error returned for a non-2xx provider response.
func httpError(provider string, status int, header http.Header, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if truncated := truncateRunes(msg, 300); truncated != msg {
		msg = truncated + "..."
	}
	var retryAfter time.Duration
	if secs, err := strconv.Atoi(header.Get("Retry-After")); err == nil && secs > 0 {
		retryAfter = time.Duration(secs) * time.Second
	}
	return &model.HTTPError{
		Provider:   provider,
		StatusCode: status,
		RetryAfter: retryAfter,
		Err:        errors.New(msg),
	}
}
