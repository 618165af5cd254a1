package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/metrics"
	"github.com/rasi23/pingpeek-phishguard/internal/ports"
)

// Sort orders accepted by ListEmails
const (
	SortDate     = "date"
	SortSeverity = "severity"
)

// ErrNoStore is returned by the email operations when no repository is configured
var ErrNoStore = errors.New("no email store configured")

// Filter narrows ListEmails
type Filter struct {
	// Status keeps only emails with this verdict when set
	Status core.Verdict
	// Query is a case-insensitive substring of sender, subject or content
	Query string
	// Sort is SortDate (default, newest first) or SortSeverity
	Sort string
}

// ListEmails returns the stored emails matching f
func (s *PhishingService) ListEmails(ctx context.Context, f Filter) ([]core.Email, error) {
	if s.repo == nil {
		return nil, ErrNoStore
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	emails := make([]core.Email, 0, len(all))
	for _, e := range all {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if query != "" && !matchesQuery(e, query) {
			continue
		}
		emails = append(emails, e)
	}

	sort.SliceStable(emails, func(i, j int) bool {
		if f.Sort == SortSeverity {
			si, sj := emails[i].Status.Severity(), emails[j].Status.Severity()
			if si != sj {
				return si > sj
			}
		}
		return emails[i].Date.After(emails[j].Date)
	})
	return emails, nil
}

func matchesQuery(e core.Email, query string) bool {
	return strings.Contains(strings.ToLower(e.From), query) ||
		strings.Contains(strings.ToLower(e.Subject), query) ||
		strings.Contains(strings.ToLower(e.Content), query)
}

// GetEmail returns one stored email or core.ErrNotFound
func (s *PhishingService) GetEmail(ctx context.Context, id string) (*core.Email, error) {
	if s.repo == nil {
		return nil, ErrNoStore
	}
	return s.repo.Get(ctx, id)
}

// Quarantine marks a stored email as quarantined
func (s *PhishingService) Quarantine(ctx context.Context, id string) (*core.Email, error) {
	if s.repo == nil {
		return nil, ErrNoStore
	}
	if err := s.repo.Quarantine(ctx, id); err != nil {
		return nil, err
	}
	metrics.IncrementQuarantined()
	s.logger.Info("Email quarantined", zap.String("id", id))
	return s.repo.Get(ctx, id)
}

// IngestResult summarises one Ingest run
type IngestResult struct {
	Source   string `json:"source"`
	Fetched  int    `json:"fetched"`
	Analyzed int    `json:"analyzed"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// Ingest fetches messages from src and analyzes those not stored yet
func (s *PhishingService) Ingest(ctx context.Context, src ports.EmailSource) (*IngestResult, error) {
	messages, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", src.Name(), err)
	}

	res := &IngestResult{Source: src.Name(), Fetched: len(messages)}
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if s.repo != nil && msg.ID != "" {
			if _, err := s.repo.Get(ctx, msg.ID); err == nil {
				res.Skipped++
				metrics.IncrementIngested(res.Source, "skipped")
				continue
			}
		}
		if _, err := s.AnalyzeWithID(ctx, msg.ID, string(msg.Raw)); err != nil {
			s.logger.Warn("Failed to analyze ingested message",
				zap.String("source", res.Source),
				zap.String("id", msg.ID),
				zap.Error(err))
			res.Failed++
			metrics.IncrementIngested(res.Source, "failed")
			continue
		}
		res.Analyzed++
		metrics.IncrementIngested(res.Source, "analyzed")
	}

	s.logger.Info("Ingest finished",
		zap.String("source", res.Source),
		zap.Int("fetched", res.Fetched),
		zap.Int("analyzed", res.Analyzed),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed))
	return res, nil
}
