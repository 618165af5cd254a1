package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/adapters/cache"
	"github.com/rasi23/pingpeek-phishguard/internal/config"
	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// CacheFactory creates the threat intel cache selected by cache.type
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{cfg: cfg, logger: logger}
}

// CreateIntelCache opens the configured cache backend
func (f *CacheFactory) CreateIntelCache(ctx context.Context) (core.IntelCache, error) {
	cc := f.cfg.GetCache()
	f.logger.Info("Opening intel cache", zap.String("type", cc.Type), zap.Duration("ttl", cc.TTL))

	switch cc.Type {
	case "memory":
		return cache.NewMemoryCache(f.logger, cc.CleanupFrequency), nil
	case "sqlite":
		if err := ensureParentDir(cc.SQLitePath); err != nil {
			return nil, err
		}
		c, err := cache.NewSQLiteCache(cc.SQLitePath, f.logger, cc.CleanupFrequency)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "redis":
		c, err := cache.NewRedisCache(ctx, cc.RedisAddr, cc.RedisPassword, cc.RedisDB, f.logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unsupported cache type: %s", cc.Type)
}

func (f *CacheFactory) GetCacheTTL() time.Duration {
	return f.cfg.GetCache().TTL
}

func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetCache().Enabled
}

// ensureParentDir creates the directory a database file lives in
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
