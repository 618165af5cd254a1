// Command phishguard runs the phishing filter daemon: the Postfix content
// filter, the dashboard API and the scheduled mailbox ingest.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/api"
	"github.com/rasi23/pingpeek-phishguard/internal/config"
	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/di"
	"github.com/rasi23/pingpeek-phishguard/internal/ingest"
	"github.com/rasi23/pingpeek-phishguard/internal/ports"
)

const shutdownTimeout = 15 * time.Second

func main() {
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// shutdownStep is one thing to stop, in reverse start order
type shutdownStep struct {
	name string
	stop func(context.Context) error
}

func run(
	cfg *config.Config,
	logger *zap.Logger,
	emailFilter ports.EmailFilter,
	apiServer *api.Server,
	scheduler *ingest.Scheduler,
	reviewer core.LLMReviewer,
	intelCache core.IntelCache,
	repo core.EmailRepository,
) error {
	defer logger.Sync()

	var steps []shutdownStep
	if cfg.GetServer().Enabled {
		if err := emailFilter.Start(); err != nil {
			return fmt.Errorf("start filter: %w", err)
		}
		steps = append(steps, shutdownStep{"filter", func(context.Context) error { return emailFilter.Stop() }})
	}
	if cfg.GetAPI().Enabled {
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("start API server: %w", err)
		}
		steps = append(steps, shutdownStep{"API server", apiServer.Stop})
	}
	scheduler.Start()
	steps = append(steps, shutdownStep{"scheduler", func(context.Context) error { scheduler.Stop(); return nil }})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].stop(ctx); err != nil {
			logger.Error("Failed to stop "+steps[i].name, zap.Error(err))
		}
	}
	closeResources(logger, reviewer, intelCache, repo)

	logger.Info("Shutdown complete")
	return nil
}

// closeResources releases whichever collaborators hold connections
func closeResources(logger *zap.Logger, resources ...interface{}) {
	for _, r := range resources {
		switch c := r.(type) {
		case interface{ Close() error }:
			if err := c.Close(); err != nil {
				logger.Error("Failed to close resource", zap.String("type", fmt.Sprintf("%T", r)), zap.Error(err))
			}
		case interface{ Stop() }:
			c.Stop()
		}
	}
}
