package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// MemoryCache keeps intel entries in a process-local map
type MemoryCache struct {
	mu      sync.RWMutex
	byKey   map[string]core.CacheEntry
	logger  *zap.Logger
	sweeper *sweeper
}

// NewMemoryCache creates a new in-memory cache. A cleanupFreq of zero disables
// the background cleanup.
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	c := &MemoryCache{
		byKey:  make(map[string]core.CacheEntry),
		logger: logger,
	}
	c.sweeper = startSweeper(cleanupFreq, logger, c.Cleanup)
	return c
}

// cloneEntry copies e so callers never share the IP slice with the map
func cloneEntry(e core.CacheEntry) core.CacheEntry {
	e.Intel.IPAddresses = append([]string(nil), e.Intel.IPAddresses...)
	return e
}

// Get returns ErrNotFound for unknown domains and ErrExpired for entries
// past their expiry that have not been swept yet
func (c *MemoryCache) Get(_ context.Context, domain string) (*core.CacheEntry, error) {
	c.mu.RLock()
	e, ok := c.byKey[cacheKey(domain)]
	c.mu.RUnlock()

	switch {
	case !ok:
		return nil, ErrNotFound
	case !e.ExpiresAt.After(time.Now()):
		return nil, ErrExpired
	}
	out := cloneEntry(e)
	return &out, nil
}

func (c *MemoryCache) Set(_ context.Context, entry *core.CacheEntry) error {
	e := cloneEntry(*entry)
	e.Domain = cacheKey(e.Domain)

	c.mu.Lock()
	c.byKey[e.Domain] = e
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, domain string) error {
	c.mu.Lock()
	delete(c.byKey, cacheKey(domain))
	c.mu.Unlock()
	return nil
}

// Cleanup drops every expired entry
func (c *MemoryCache) Cleanup(_ context.Context) error {
	now := time.Now()
	var dropped int

	c.mu.Lock()
	for k, e := range c.byKey {
		if !e.ExpiresAt.After(now) {
			delete(c.byKey, k)
			dropped++
		}
	}
	c.mu.Unlock()

	if dropped > 0 {
		c.logger.Debug("Dropped expired intel entries", zap.Int("count", dropped))
	}
	return nil
}

// Stop ends the background cleanup
func (c *MemoryCache) Stop() {
	c.sweeper.halt()
}
