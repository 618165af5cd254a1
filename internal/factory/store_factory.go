package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/adapters/store"
	"github.com/rasi23/pingpeek-phishguard/internal/config"
	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// StoreFactory creates the email repository selected by store.type
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{cfg: cfg, logger: logger}
}

// CreateEmailRepository opens the configured email store
func (f *StoreFactory) CreateEmailRepository(ctx context.Context) (core.EmailRepository, error) {
	sc := f.cfg.GetStore()
	f.logger.Info("Opening email store", zap.String("type", sc.Type))

	var (
		repo core.EmailRepository
		err  error
	)
	switch sc.Type {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		if err := ensureParentDir(sc.SQLitePath); err != nil {
			return nil, err
		}
		var s *store.SQLStore
		if s, err = store.NewSQLiteStore(sc.SQLitePath, f.logger); err == nil {
			repo = s
		}
	case "mysql":
		var s *store.SQLStore
		if s, err = store.NewMySQLStore(sc.MySQLDSN, f.logger); err == nil {
			repo = s
		}
	case "postgres":
		var s *store.PostgresStore
		if s, err = store.NewPostgresStore(ctx, sc.PostgresDSN, f.logger); err == nil {
			repo = s
		}
	default:
		return nil, fmt.Errorf("unsupported store type: %s", sc.Type)
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}
