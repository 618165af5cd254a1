package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/adapters/intel"
	"github.com/rasi23/pingpeek-phishguard/internal/config"
	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// IntelFactory creates threat intel providers
type IntelFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewIntelFactory creates a new intel factory
func NewIntelFactory(cfg *config.Config, logger *zap.Logger) *IntelFactory {
	return &IntelFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateProvider creates the configured provider. "none" disables lookups and
// every non-legitimate verdict keeps the placeholder record.
func (f *IntelFactory) CreateProvider() (core.ThreatIntelProvider, error) {
	intelCfg := f.cfg.GetIntel()

	switch intelCfg.Provider {
	case "none":
		return nil, nil
	case "static":
		return intel.NewStaticProvider(nil), nil
	case "http":
		if intelCfg.BaseURL == "" {
			return nil, fmt.Errorf("intel base URL is required for the http provider")
		}
		return intel.NewHTTPProvider(intelCfg.BaseURL, intelCfg.APIKey, intelCfg.Timeout, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported intel provider: %s", intelCfg.Provider)
	}
}
