// Package cache holds the threat intel cache backends.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned for a domain with no live entry
	ErrNotFound = errors.New("cache entry not found")
	// ErrExpired is returned by backends that still hold a stale entry
	ErrExpired = errors.New("cache entry expired")
)

func cacheKey(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

// sweeper periodically calls a cleanup func until halted
type sweeper struct {
	done chan struct{}
	once sync.Once
}

// startSweeper runs sweep every interval. A non-positive interval starts
// nothing, halt is still safe to call.
func startSweeper(interval time.Duration, logger *zap.Logger, sweep func(context.Context) error) *sweeper {
	sw := &sweeper{done: make(chan struct{})}
	if interval <= 0 {
		return sw
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-sw.done:
				return
			case <-ticker.C:
			}
			if err := sweep(context.Background()); err != nil {
				logger.Error("Failed to clean up cache", zap.Error(err))
			}
		}
	}()
	return sw
}

// halt stops the loop and reports whether this call was the one that did
func (sw *sweeper) halt() bool {
	first := false
	sw.once.Do(func() {
		close(sw.done)
		first = true
	})
	return first
}
