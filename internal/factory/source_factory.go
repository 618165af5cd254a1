package factory

import (
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/adapters/source"
	"github.com/rasi23/pingpeek-phishguard/internal/config"
	"github.com/rasi23/pingpeek-phishguard/internal/ports"
)

// SourceFactory creates the configured ingest sources
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSources returns every enabled source, possibly none
func (f *SourceFactory) CreateSources() []ports.EmailSource {
	ingestCfg := f.cfg.GetIngest()

	var sources []ports.EmailSource
	if ingestCfg.EMLDir != "" {
		sources = append(sources, source.NewEMLDirSource(ingestCfg.EMLDir, f.logger))
	}
	if imapCfg := ingestCfg.IMAP; imapCfg.Enabled && imapCfg.Server != "" {
		sources = append(sources, source.NewIMAPSource(source.IMAPConfig{
			Server:      imapCfg.Server,
			Port:        imapCfg.Port,
			Username:    imapCfg.Username,
			Password:    imapCfg.Password,
			Folders:     imapCfg.Folders,
			MaxMessages: imapCfg.MaxMessages,
			TLS:         imapCfg.TLS,
			Timeout:     imapCfg.Timeout,
		}, f.logger))
	}
	return sources
}
