package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/leadradar/internal/model"
)

// ProviderLimiter enforces a minimum delay between requests to the same
// external provider. Each provider key gets its own token bucket with a
// burst of one, so the first call proceeds immediately.
type ProviderLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter // key: provider name
	minDelay time.Duration
}

// NewProviderLimiter creates a limiter that spaces consecutive requests to
// the same provider at least minDelay apart. A zero minDelay never blocks.
func NewProviderLimiter(minDelay time.Duration) *ProviderLimiter {
	return &ProviderLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

func (l *ProviderLimiter) limiterFor(provider string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[provider]; ok {
		return lim
	}
	limit := rate.Inf
	if l.minDelay > 0 {
		limit = rate.Every(l.minDelay)
	}
	lim := rate.NewLimiter(limit, 1)
	l.limiters[provider] = lim
	return lim
}

// Wait blocks until the provider may be called again. Returns an error if
// the context is cancelled (or its deadline would pass) while waiting.
func (l *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	if err := l.limiterFor(provider).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", provider, err)
	}
	return nil
}

// Enricher is a decorator that enforces provider-level rate limiting before
// delegating to the wrapped Enricher.
type Enricher struct {
	inner    model.Enricher
	limiter  *ProviderLimiter
	provider string
}

// NewEnricher wraps an Enricher with rate limiting. Decorators targeting
// the same provider should share one limiter.
func NewEnricher(inner model.Enricher, limiter *ProviderLimiter, provider string) *Enricher {
	return &Enricher{inner: inner, limiter: limiter, provider: provider}
}

func (e *Enricher) Enrich(ctx context.Context, domain string, maxContacts int) ([]model.Contact, error) {
	if err := e.limiter.Wait(ctx, e.provider); err != nil {
		return nil, err
	}
	return e.inner.Enrich(ctx, domain, maxContacts)
}

// Completer is the LLM call surface limited by Provider.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider is a decorator that rate limits LLM calls.
type Provider struct {
	inner    Completer
	limiter  *ProviderLimiter
	provider string
}

func NewProvider(inner Completer, limiter *ProviderLimiter, provider string) *Provider {
	return &Provider{inner: inner, limiter: limiter, provider: provider}
}

func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx, p.provider); err != nil {
		return "", err
	}
	return p.inner.Complete(ctx, prompt)
}
