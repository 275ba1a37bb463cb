package enrich

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amishk599/leadradar/internal/model"
)

// ErrBudgetExhausted is returned once the call budget is spent. The
// pipeline stops enriching when it sees it.
var ErrBudgetExhausted = errors.New("enrichment budget exhausted")

// BudgetEnricher caps the number of upstream calls in one run, mirroring a
// provider's free-tier credit allowance. Every attempt counts, successful
// or not. A max of zero means unlimited.
type BudgetEnricher struct {
	inner  model.Enricher
	max    int
	used   int
	logger *slog.Logger
}

func NewBudgetEnricher(inner model.Enricher, max int, logger *slog.Logger) *BudgetEnricher {
	return &BudgetEnricher{inner: inner, max: max, logger: logger}
}

func (e *BudgetEnricher) Enrich(ctx context.Context, domain string, maxContacts int) ([]model.Contact, error) {
	if e.max > 0 && e.used >= e.max {
		return nil, ErrBudgetExhausted
	}
	e.used++
	if e.max > 0 && e.used == e.max {
		e.logger.Warn("enrichment budget reached", "used", e.used, "max", e.max)
	}
	return e.inner.Enrich(ctx, domain, maxContacts)
}

// Used returns the number of calls spent so far.
func (e *BudgetEnricher) Used() int { return e.used }
