package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/leadradar/internal/model"
)

// CacheStats counts cache effectiveness for one run.
type CacheStats struct {
	Hits   int
	Misses int // each miss is one call to the wrapped enricher
}

// CachedEnricher is a decorator that serves repeat lookups for the same
// "domain:max" key from a ContactCache instead of spending credits.
// Failed lookups are not cached. Not safe for concurrent use.
type CachedEnricher struct {
	inner  model.Enricher
	cache  model.ContactCache
	logger *slog.Logger
	stats  CacheStats
}

func NewCachedEnricher(inner model.Enricher, cache model.ContactCache, logger *slog.Logger) *CachedEnricher {
	return &CachedEnricher{inner: inner, cache: cache, logger: logger}
}

// CacheKey returns the cache key for a lookup.
func CacheKey(domain string, maxContacts int) string {
	return fmt.Sprintf("%s:%d", domain, maxContacts)
}

func (e *CachedEnricher) Enrich(ctx context.Context, domain string, maxContacts int) ([]model.Contact, error) {
	key := CacheKey(domain, maxContacts)

	contacts, ok, err := e.cache.Get(key)
	if err != nil {
		e.logger.Warn("contact cache read failed", "key", key, "error", err)
	}
	if ok {
		e.stats.Hits++
		e.logger.Info("contact cache hit", "domain", domain, "contacts", len(contacts))
		return contacts, nil
	}
	e.stats.Misses++

	contacts, err = e.inner.Enrich(ctx, domain, maxContacts)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Put(key, contacts); err != nil {
		e.logger.Warn("contact cache write failed", "key", key, "error", err)
	}
	return contacts, nil
}

// Stats returns a snapshot of hit/miss counters.
func (e *CachedEnricher) Stats() CacheStats {
	return e.stats
}
