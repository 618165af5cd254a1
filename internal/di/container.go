package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/api"
	"github.com/rasi23/pingpeek-phishguard/internal/classifier"
	"github.com/rasi23/pingpeek-phishguard/internal/config"
	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/factory"
	"github.com/rasi23/pingpeek-phishguard/internal/ingest"
	"github.com/rasi23/pingpeek-phishguard/internal/logging"
	"github.com/rasi23/pingpeek-phishguard/internal/ports"
	"github.com/rasi23/pingpeek-phishguard/internal/service"
	"github.com/rasi23/pingpeek-phishguard/internal/utils"
	"github.com/rasi23/pingpeek-phishguard/internal/whitelist"
)

// BuildContainer creates and configures the dependency injection container of the daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	for _, constructor := range []interface{}{
		factory.NewLLMFactory,
		factory.NewCacheFactory,
		factory.NewStoreFactory,
		factory.NewIntelFactory,
		factory.NewSourceFactory,
		factory.NewFilterFactory,
	} {
		if err := container.Provide(constructor); err != nil {
			return nil, err
		}
	}

	if err := provideAnalysis(container); err != nil {
		return nil, err
	}

	// Register intel cache, nil when caching is disabled
	if err := container.Provide(func(f *factory.CacheFactory) (core.IntelCache, error) {
		if !f.IsCacheEnabled() {
			return nil, nil
		}
		return f.CreateIntelCache(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register email store
	if err := container.Provide(func(f *factory.StoreFactory) (core.EmailRepository, error) {
		return f.CreateEmailRepository(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register service options
	if err := container.Provide(func(cfg *config.Config, cf *factory.CacheFactory) service.Options {
		return service.Options{
			IntelTimeout:     cfg.GetIntel().Timeout,
			CacheEnabled:     cf.IsCacheEnabled(),
			CacheTTL:         cf.GetCacheTTL(),
			MaxBodySize:      cfg.GetClassifier().MaxBodySize,
			ReviewSuspicious: cfg.GetLLM().ReviewSuspicious,
		}
	}); err != nil {
		return nil, err
	}

	// Register phishing service
	if err := container.Provide(service.NewPhishingService); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	// Register dashboard API
	if err := container.Provide(func(svc *service.PhishingService, cfg *config.Config, logger *zap.Logger) *api.Server {
		return api.NewServer(svc, cfg.GetAPI().ListenAddress, logger)
	}); err != nil {
		return nil, err
	}

	// Register ingest scheduler
	if err := container.Provide(func(
		svc *service.PhishingService,
		f *factory.SourceFactory,
		cfg *config.Config,
		logger *zap.Logger,
	) (*ingest.Scheduler, error) {
		return ingest.NewScheduler(svc, f.CreateSources(), cfg.GetIngest().Schedule, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideAnalysis registers what both the daemon and the CLI analyse with
func provideAnalysis(container *dig.Container) error {
	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register classifier
	if err := container.Provide(func(cfg *config.Config) (*classifier.Classifier, error) {
		return classifier.New(classifier.Mode(cfg.GetClassifier().Mode))
	}); err != nil {
		return err
	}

	// Register whitelist
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		return whitelist.NewChecker(cfg.GetWhitelistedDomains(), logger)
	}); err != nil {
		return err
	}

	// Register threat intel provider, nil when disabled
	if err := container.Provide(func(f *factory.IntelFactory) (core.ThreatIntelProvider, error) {
		return f.CreateProvider()
	}); err != nil {
		return err
	}

	// Register LLM reviewer, nil when disabled
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMReviewer, error) {
		return f.CreateReviewer(context.Background())
	}); err != nil {
		return err
	}

	return nil
}
