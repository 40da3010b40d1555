package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache is a persistent cache backed by a SQLite database file.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteCache opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway database. If ttl is 0 or negative, entries never
// expire.
func NewSQLiteCache(path string, ttl time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if ttl < 0 {
		ttl = 0
	}
	c := &SQLiteCache{db: db, ttl: ttl, now: time.Now}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	_, err := c.db.Exec(`
	CREATE TABLE IF NOT EXISTS reply_cache (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reply_cache_created ON reply_cache(created_at);
	`)
	return err
}

func (c *SQLiteCache) cutoff() int64 {
	if c.ttl == 0 {
		return 0
	}
	return c.now().Add(-c.ttl).UnixNano()
}

// Get retrieves a value. Expired entries and errors are reported as misses.
func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM reply_cache WHERE key = ? AND created_at >= ?`,
		key, c.cutoff()).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// Set stores a value, replacing any previous entry.
func (c *SQLiteCache) Set(ctx context.Context, key string, value string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reply_cache (key, value, created_at) VALUES (?, ?, ?)`,
		key, value, c.now().UnixNano())
	return err
}

// Entries returns every unexpired entry.
func (c *SQLiteCache) Entries(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT key, value FROM reply_cache WHERE created_at >= ?`, c.cutoff())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, rows.Err()
}

// Prune deletes expired entries and returns how many were removed.
func (c *SQLiteCache) Prune(ctx context.Context) (int64, error) {
	if c.ttl == 0 {
		return 0, nil
	}
	res, err := c.db.ExecContext(ctx, `DELETE FROM reply_cache WHERE created_at < ?`, c.cutoff())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Len returns the number of stored rows, expired or not.
func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reply_cache`).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

var _ Enumerable = (*SQLiteCache)(nil)
