package store

import "github.com/amishk599/leadradar/internal/model"

// NopCache never stores anything, so every lookup is a miss. Used when
// caching is disabled.
type NopCache struct{}

func NewNopCache() *NopCache { return &NopCache{} }

func (NopCache) Get(string) ([]model.Contact, bool, error) { return nil, false, nil }
func (NopCache) Put(string, []model.Contact) error         { return nil }
