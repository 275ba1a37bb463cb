package store

import (
	"slices"

	"github.com/amishk599/leadradar/internal/model"
)

// MemoryCache is a process-local contact cache. It is not safe for
// concurrent use; the pipeline calls it from a single goroutine.
type MemoryCache struct {
	entries map[string][]model.Contact
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]model.Contact)}
}

func (c *MemoryCache) Get(key string) ([]model.Contact, bool, error) {
	contacts, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(contacts), true, nil
}

func (c *MemoryCache) Put(key string, contacts []model.Contact) error {
	c.entries[key] = slices.Clone(contacts)
	return nil
}

func (c *MemoryCache) Len() int { return len(c.entries) }
