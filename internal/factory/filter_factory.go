package factory

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/adapters/filter"
	"github.com/rasi23/pingpeek-phishguard/internal/config"
	"github.com/rasi23/pingpeek-phishguard/internal/ports"
	"github.com/rasi23/pingpeek-phishguard/internal/service"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *service.PhishingService
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, svc *service.PhishingService) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: svc,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	serverCfg := f.cfg.GetServer()

	switch serverCfg.FilterType {
	case "postfix":
		return filter.NewPostfixFilter(f.service, f.logger, filter.PostfixOptions{
			ListenAddr:    serverCfg.ListenAddress,
			BlockPhishing: serverCfg.BlockPhishing,
			Headers: filter.HeaderNames{
				Verdict:    serverCfg.VerdictHeader,
				Confidence: serverCfg.ConfidenceHeader,
				Rules:      serverCfg.RulesHeader,
			},
			PostfixAddr:     serverCfg.PostfixAddress,
			PostfixPort:     serverCfg.PostfixPort,
			PostfixEnabled:  serverCfg.PostfixEnabled,
			SubjectPrefix:   serverCfg.SubjectPrefix,
			ModifySubject:   serverCfg.ModifySubject,
			AnalysisTimeout: serverCfg.AnalysisTimeout,
		}), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.logger,
			os.Stdout,
			f.cfg.GetBool("cli.verbose"),
			f.cfg.GetBool("cli.json"),
		), nil
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", serverCfg.FilterType)
	}
}
