package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/ports"
	"github.com/rasi23/pingpeek-phishguard/internal/service"
)

type namedSource string

func (n namedSource) Name() string { return string(n) }

func (n namedSource) Fetch(ctx context.Context) ([]ports.RawMessage, error) {
	return nil, nil
}

type fakeIngester struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeIngester) Ingest(ctx context.Context, src ports.EmailSource) (*service.IngestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, src.Name())
	if f.fail[src.Name()] {
		return nil, errors.New("mailbox unreachable")
	}
	return &service.IngestResult{Source: src.Name(), Fetched: 1, Analyzed: 1}, nil
}

func (f *fakeIngester) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNewSchedulerValidatesSchedule(t *testing.T) {
	sources := []ports.EmailSource{namedSource("eml")}
	tests := []struct {
		schedule string
		wantErr  bool
	}{
		{"*/5 * * * *", false},
		{"@every 30s", false},
		{"@hourly", false},
		{"", false},
		{"every five minutes", true},
		{"* * * * * *", true},
	}
	for _, tt := range tests {
		_, err := NewScheduler(&fakeIngester{}, sources, tt.schedule, zap.NewNop())
		if (err != nil) != tt.wantErr {
			t.Errorf("NewScheduler(%q) err = %v, wantErr %v", tt.schedule, err, tt.wantErr)
		}
	}
}

func TestDisabledScheduler(t *testing.T) {
	s, err := NewScheduler(&fakeIngester{}, nil, "@every 1s", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if s.Enabled() {
		t.Error("scheduler without sources should be disabled")
	}
	s.Start()
	s.Stop()
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	ing := &fakeIngester{fail: map[string]bool{"imap:down": true}}
	sources := []ports.EmailSource{namedSource("imap:down"), namedSource("eml:/var/mail")}
	s, err := NewScheduler(ing, sources, "@every 1h", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	results := s.RunOnce(context.Background())
	if len(results) != 1 || results[0].Source != "eml:/var/mail" {
		t.Errorf("results = %+v", results)
	}
	if ing.count() != 2 {
		t.Errorf("ingest calls = %d, want 2", ing.count())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := s.RunOnce(ctx); len(got) != 0 {
		t.Errorf("cancelled run = %+v", got)
	}
}

func TestSchedulerRunsOnSchedule(t *testing.T) {
	ing := &fakeIngester{}
	s, err := NewScheduler(ing, []ports.EmailSource{namedSource("eml")}, "@every 1s", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for ing.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if ing.count() == 0 {
		t.Error("scheduled ingest never ran")
	}
}
