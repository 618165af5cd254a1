// Package ingest polls the configured email sources on a cron schedule.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/ports"
	"github.com/rasi23/pingpeek-phishguard/internal/service"
)

// Ingester analyses the messages of one source
type Ingester interface {
	Ingest(ctx context.Context, src ports.EmailSource) (*service.IngestResult, error)
}

// Scheduler runs an ingest pass over every source on a cron schedule.
// Standard 5-field expressions and descriptors such as "@every 5m" are accepted.
type Scheduler struct {
	ingester Ingester
	sources  []ports.EmailSource
	schedule string
	logger   *zap.Logger
	cron     *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewScheduler validates the schedule and creates a scheduler. An empty
// schedule or no sources leaves the scheduler disabled.
func NewScheduler(ingester Ingester, sources []ports.EmailSource, schedule string, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schedule = strings.TrimSpace(schedule)
	s := &Scheduler{
		ingester: ingester,
		sources:  sources,
		schedule: schedule,
		logger:   logger,
	}
	if !s.Enabled() {
		return s, nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid ingest schedule %q: %w", schedule, err)
	}

	cl := cronLogger{logger.Sugar()}
	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("failed to schedule ingest: %w", err)
	}
	return s, nil
}

// Enabled reports whether there is anything to schedule
func (s *Scheduler) Enabled() bool {
	return s.schedule != "" && len(s.sources) > 0
}

// Start begins running scheduled ingests in the background
func (s *Scheduler) Start() {
	if !s.Enabled() {
		s.logger.Info("Ingest disabled", zap.Int("sources", len(s.sources)))
		return
	}

	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name())
	}
	s.logger.Info("Ingest scheduled",
		zap.String("schedule", s.schedule),
		zap.Strings("sources", names))
	s.cron.Start()
}

// Stop cancels a running ingest and waits for it to return
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	s.RunOnce(ctx)
}

// RunOnce ingests from every source in turn. A failing source is logged and
// does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) []*service.IngestResult {
	results := make([]*service.IngestResult, 0, len(s.sources))
	for _, src := range s.sources {
		if ctx.Err() != nil {
			break
		}
		result, err := s.ingester.Ingest(ctx, src)
		if err != nil {
			s.logger.Error("Ingest failed", zap.String("source", src.Name()), zap.Error(err))
			continue
		}
		s.logger.Info("Ingest complete",
			zap.String("source", result.Source),
			zap.Int("fetched", result.Fetched),
			zap.Int("analyzed", result.Analyzed),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed))
		results = append(results, result)
	}
	return results
}

// cronLogger routes cron's own logging through zap
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
