// Package tilecache stores downloaded raster tiles in a sqlite database
// so repeated profiles over the same area do not refetch them.
package tilecache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// schema.sql creates the tiles table keyed by zoom, x and y.
//
//go:embed schema.sql
var schemaSQL string

// Cache is a sqlite backed tile store. It is safe for concurrent use.
type Cache struct {
	db *sql.DB
}

// Open opens, or creates, the cache database at path.
// Use ":memory:" for a cache that lives as long as the process.
func Open(ctx context.Context, path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("tilecache: open %s: %w", path, err)
	}

	// a single connection so in memory databases are shared and writes serialize
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("tilecache: create schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get returns the tile data, the bool is false on a cache miss.
func (c *Cache) Get(ctx context.Context, z, x, y uint64) ([]byte, bool, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT data FROM tiles WHERE zoom = ? AND x = ? AND y = ?`,
		int64(z), int64(x), int64(y),
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("tilecache: get %d/%d/%d: %w", z, x, y, err)
	}

	return data, true, nil
}

// Put stores the tile data, replacing any previous version.
func (c *Cache) Put(ctx context.Context, z, x, y uint64, data []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tiles (zoom, x, y, data, fetched_at) VALUES (?, ?, ?, ?, UNIXEPOCH('subsec'))`,
		int64(z), int64(x), int64(y), data,
	)
	if err != nil {
		return fmt.Errorf("tilecache: put %d/%d/%d: %w", z, x, y, err)
	}

	return nil
}

// Len returns the number of cached tiles.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("tilecache: count: %w", err)
	}

	return n, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
