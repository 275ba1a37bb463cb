package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/leadradar/internal/model"
)

// SQLiteCache persists enrichment results keyed by "domain:max" so repeated
// runs do not spend provider credits on companies already looked up.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteCache opens (or creates) a SQLite database at dbPath and ensures the
// contact_cache table exists. Entries older than ttl are treated as misses;
// a zero ttl keeps entries forever. ":memory:" gives a per-process cache.
func NewSQLiteCache(dbPath string, ttl time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// each connection to ":memory:" would be a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS contact_cache (
		cache_key  TEXT PRIMARY KEY,
		contacts   TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating contact_cache table: %w", err)
	}

	return &SQLiteCache{db: db, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached contacts for key. The boolean is false on a miss or
// when the entry has expired.
func (c *SQLiteCache) Get(key string) ([]model.Contact, bool, error) {
	var (
		payload   string
		fetchedAt time.Time
	)
	err := c.db.QueryRow("SELECT contacts, fetched_at FROM contact_cache WHERE cache_key = ?", key).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	if c.ttl > 0 && c.now().Sub(fetchedAt) > c.ttl {
		return nil, false, nil
	}

	var contacts []model.Contact
	if err := json.Unmarshal([]byte(payload), &contacts); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	return contacts, true, nil
}

// Put stores contacts under key, replacing any previous entry.
func (c *SQLiteCache) Put(key string, contacts []model.Contact) error {
	if contacts == nil {
		contacts = []model.Contact{}
	}
	payload, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}
	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO contact_cache (cache_key, contacts, fetched_at) VALUES (?, ?, ?)",
		key, string(payload), c.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Prune deletes entries fetched more than olderThan ago.
func (c *SQLiteCache) Prune(olderThan time.Duration) (int64, error) {
	cutoff := c.now().UTC().Add(-olderThan)
	res, err := c.db.Exec("DELETE FROM contact_cache WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache entries older than %v: %w", olderThan, err)
	}
	return res.RowsAffected()
}

// Len returns the number of stored entries, expired or not.
func (c *SQLiteCache) Len() (int, error) {
	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM contact_cache").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
