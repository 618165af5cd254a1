package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

type intelCache interface {
	core.IntelCache
	Stop()
}

func sampleEntry(domain string, ttl time.Duration) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		Domain: domain,
		Intel: core.ThreatIntelligence{
			Domain:         domain,
			MaliciousScore: 72.5,
			Detections:     11,
			LastSeen:       "2024-01-02",
			IPAddresses:    []string{"203.0.113.7"},
		},
		LastSeen:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func testCacheContract(t *testing.T, c intelCache) {
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing.example"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := c.Set(ctx, sampleEntry("Evil.Example", time.Hour)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "evil.example")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Intel.MaliciousScore != 72.5 || got.Intel.Detections != 11 {
		t.Errorf("Get returned %+v", got.Intel)
	}
	if len(got.Intel.IPAddresses) != 1 || got.Intel.IPAddresses[0] != "203.0.113.7" {
		t.Errorf("IP addresses = %v", got.Intel.IPAddresses)
	}

	if err := c.Delete(ctx, "evil.example"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "evil.example"); err == nil {
		t.Error("expected miss after Delete")
	}

	if err := c.Set(ctx, sampleEntry("old.example", -time.Minute)); err != nil {
		t.Fatalf("Set expired: %v", err)
	}
	if _, err := c.Get(ctx, "old.example"); err == nil {
		t.Error("expected expired entry to miss")
	}
	if err := c.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()
	testCacheContract(t, c)

	if _, err := c.Get(context.Background(), "old.example"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired entry should be gone after Cleanup, got %v", err)
	}
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()
	ctx := context.Background()

	if err := c.Set(ctx, sampleEntry("copy.example", time.Hour)); err != nil {
		t.Fatal(err)
	}
	got, _ := c.Get(ctx, "copy.example")
	got.Intel.IPAddresses[0] = "changed"

	again, _ := c.Get(ctx, "copy.example")
	if again.Intel.IPAddresses[0] != "203.0.113.7" {
		t.Error("cached entry was mutated through a returned copy")
	}
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	defer c.Stop()
	testCacheContract(t, c)
}
