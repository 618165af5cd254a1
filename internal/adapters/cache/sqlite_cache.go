package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

var sqliteCacheSchema = []string{
	`CREATE TABLE IF NOT EXISTS intel_cache (
		domain     TEXT PRIMARY KEY,
		intel      TEXT NOT NULL,
		last_seen  INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_intel_expires_at ON intel_cache(expires_at)`,
}

// SQLiteCache persists intel entries in a SQLite file. Rows carry the intel
// record as JSON next to unix-second timestamps.
type SQLiteCache struct {
	db      *sql.DB
	logger  *zap.Logger
	sweeper *sweeper
}

// NewSQLiteCache opens (or creates) the cache database at dbPath
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache %s: %w", dbPath, err)
	}
	for _, stmt := range sqliteCacheSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("prepare sqlite cache schema: %w", err)
		}
	}

	c := &SQLiteCache{db: db, logger: logger}
	c.sweeper = startSweeper(cleanupFreq, logger, c.Cleanup)
	return c, nil
}

func (c *SQLiteCache) Get(ctx context.Context, domain string) (*core.CacheEntry, error) {
	key := cacheKey(domain)
	row := c.db.QueryRowContext(ctx,
		`SELECT intel, last_seen, expires_at FROM intel_cache WHERE domain = ? AND expires_at > ?`,
		key, time.Now().Unix())

	var (
		payload             string
		lastSeen, expiresAt int64
	)
	switch err := row.Scan(&payload, &lastSeen, &expiresAt); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("read intel for %s: %w", key, err)
	}

	entry := &core.CacheEntry{
		Domain:    key,
		LastSeen:  time.Unix(lastSeen, 0),
		ExpiresAt: time.Unix(expiresAt, 0),
	}
	if err := json.Unmarshal([]byte(payload), &entry.Intel); err != nil {
		return nil, fmt.Errorf("decode intel for %s: %w", key, err)
	}
	return entry, nil
}

// Set upserts the entry keyed on its normalized domain
func (c *SQLiteCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	payload, err := json.Marshal(entry.Intel)
	if err != nil {
		return fmt.Errorf("encode intel: %w", err)
	}
	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO intel_cache (domain, intel, last_seen, expires_at) VALUES (?, ?, ?, ?)`,
		cacheKey(entry.Domain), string(payload), entry.LastSeen.Unix(), entry.ExpiresAt.Unix(),
	); err != nil {
		return fmt.Errorf("write intel for %s: %w", entry.Domain, err)
	}
	return nil
}

func (c *SQLiteCache) Delete(ctx context.Context, domain string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM intel_cache WHERE domain = ?`, cacheKey(domain)); err != nil {
		return fmt.Errorf("delete intel for %s: %w", domain, err)
	}
	return nil
}

// Cleanup deletes rows whose expiry has passed
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM intel_cache WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("sweep intel cache: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		c.logger.Debug("Dropped expired intel entries", zap.Int64("count", n))
	}
	return nil
}

// Stop ends the background cleanup and closes the database
func (c *SQLiteCache) Stop() {
	if !c.sweeper.halt() {
		return
	}
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close SQLite cache", zap.Error(err))
	}
}
