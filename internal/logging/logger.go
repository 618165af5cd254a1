// Package logging builds the zap loggers used by both binaries.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rasi23/pingpeek-phishguard/internal/config"
)

// InitLogger builds the daemon logger from logging.level and logging.format
func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	return newLogger(parseLevel(cfg.GetString("logging.level")), cfg.GetString("logging.format"))
}

// InitConsoleLogger builds the CLI logger. Reports own stdout, so logging
// stays on stderr and only shows warnings unless verbose.
func InitConsoleLogger(verbose bool, jsonFormat bool) (*zap.Logger, error) {
	level, format := zapcore.WarnLevel, "console"
	if verbose {
		level = zapcore.DebugLevel
	}
	if jsonFormat {
		format = "json"
	}
	return newLogger(level, format)
}

// parseLevel falls back to info for anything zap does not recognise
func parseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func newLogger(level zapcore.Level, format string) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if format == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build %s logger: %w", format, err)
	}
	return logger, nil
}
