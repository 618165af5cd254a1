// Package service orchestrates a phishing analysis: parsing, classification,
// threat intel enrichment, optional LLM review and persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/classifier"
	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/metrics"
	"github.com/rasi23/pingpeek-phishguard/internal/utils"
	"github.com/rasi23/pingpeek-phishguard/internal/whitelist"
)

// Options are the tunables of a PhishingService
type Options struct {
	// IntelTimeout bounds a single provider lookup
	IntelTimeout time.Duration
	CacheEnabled bool
	CacheTTL     time.Duration
	// MaxBodySize caps the text handed to the classifier, 0 disables truncation
	MaxBodySize int
	// ReviewSuspicious asks the LLM reviewer about suspicious verdicts
	ReviewSuspicious bool
}

// PhishingService is the core service for phishing detection
type PhishingService struct {
	classifier    *classifier.Classifier
	provider      core.ThreatIntelProvider
	cache         core.IntelCache
	repo          core.EmailRepository
	reviewer      core.LLMReviewer
	whitelist     *whitelist.Checker
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	opts          Options
	now           func() time.Time
}

// NewPhishingService creates a new phishing service. provider, cache, repo
// and reviewer may be nil, in which case that step is skipped.
func NewPhishingService(
	c *classifier.Classifier,
	provider core.ThreatIntelProvider,
	cache core.IntelCache,
	repo core.EmailRepository,
	reviewer core.LLMReviewer,
	wl *whitelist.Checker,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	opts Options,
) *PhishingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if textProcessor == nil {
		textProcessor = utils.NewTextProcessor(logger)
	}
	if opts.IntelTimeout <= 0 {
		opts.IntelTimeout = 5 * time.Second
	}
	return &PhishingService{
		classifier:    c,
		provider:      provider,
		cache:         cache,
		repo:          repo,
		reviewer:      reviewer,
		whitelist:     wl,
		textProcessor: textProcessor,
		logger:        logger,
		opts:          opts,
		now:           time.Now,
	}
}

// Analyze classifies a raw email and stores it under a fresh id
func (s *PhishingService) Analyze(ctx context.Context, raw string) (*core.Report, error) {
	return s.AnalyzeWithID(ctx, "", raw)
}

// AnalyzeWithID classifies a raw email and stores it under id. An empty id
// falls back to the Message-ID header, then to a random uuid.
func (s *PhishingService) AnalyzeWithID(ctx context.Context, id, raw string) (*core.Report, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, core.ErrInvalidInput
	}
	start := time.Now()

	parsed, err := utils.ParseEmail([]byte(raw))
	if err != nil || !utils.HasEnvelope(parsed) {
		s.logger.Debug("Treating message as plain text", zap.Error(err))
		parsed = &core.ParsedEmail{Body: raw}
	}
	text := s.textProcessor.ProcessText(utils.ClassificationText(raw, parsed), s.opts.MaxBodySize)

	report := &core.Report{AnalyzedAt: s.now()}

	if s.whitelist.IsWhitelisted(parsed.From) {
		s.logger.Info("Skipping phishing check for whitelisted domain",
			zap.String("sender", parsed.From),
			zap.String("action", "whitelist_bypass"))
		report.Whitelisted = true
		report.Result = core.AnalysisResult{
			Verdict:        core.VerdictLegitimate,
			Confidence:     100,
			TriggeredRules: []core.TriggeredRule{classifier.VerifiedSenderRule()},
		}
	} else {
		result, signals := s.classifier.Classify(text)
		report.Result = result
		if result.Verdict != core.VerdictLegitimate {
			intel, source := s.enrich(ctx, result.Verdict, s.lookupDomain(signals, parsed, text))
			report.Result.ThreatIntelligence = intel
			report.IntelSource = source
		}
		if result.Verdict == core.VerdictSuspicious && s.opts.ReviewSuspicious && s.reviewer != nil {
			report.Review = s.review(ctx, parsed, text)
		}
	}

	email := s.buildEmail(id, parsed, raw, report)
	report.EmailID = email.ID
	if s.repo != nil {
		if err := s.repo.Save(ctx, email); err != nil {
			s.logger.Error("Failed to store email", zap.String("id", email.ID), zap.Error(err))
			return nil, fmt.Errorf("failed to store email: %w", err)
		}
	}

	metrics.RecordAnalysis(string(report.Result.Verdict), time.Since(start))
	s.logger.Info("Email analyzed",
		zap.String("id", email.ID),
		zap.String("from", email.From),
		zap.String("verdict", string(report.Result.Verdict)),
		zap.Float64("confidence", report.Result.Confidence),
		zap.Strings("rules", report.Result.RuleIDs()),
		zap.String("intel_source", report.IntelSource))

	return report, nil
}

// lookupDomain picks the domain threat intel is keyed on: a known suspicious
// domain, then the first linked host, then the sender's domain
func (s *PhishingService) lookupDomain(signals classifier.Signals, parsed *core.ParsedEmail, text string) string {
	if d := signals.IntelDomain(); d != "" {
		return d
	}
	if hosts := utils.ExtractURLHosts(text); len(hosts) > 0 {
		return hosts[0]
	}
	return whitelist.ExtractDomain(parsed.From)
}

// enrich resolves threat intel through cache and provider. Any failure
// degrades to the placeholder record and never fails the analysis.
func (s *PhishingService) enrich(ctx context.Context, verdict core.Verdict, domain string) (*core.ThreatIntelligence, string) {
	placeholder := classifier.PlaceholderIntel(verdict, domain)
	if s.provider == nil || domain == "" {
		metrics.IncrementIntelLookup(core.IntelSourcePlaceholder)
		return placeholder, core.IntelSourcePlaceholder
	}

	if s.opts.CacheEnabled && s.cache != nil {
		if entry, err := s.cache.Get(ctx, domain); err == nil {
			s.logger.Debug("Cache hit for domain", zap.String("domain", domain))
			intel := entry.Intel
			metrics.IncrementIntelLookup(core.IntelSourceCache)
			return &intel, core.IntelSourceCache
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.opts.IntelTimeout)
	defer cancel()
	intel, err := s.provider.Lookup(lookupCtx, domain)
	if err != nil {
		level := s.logger.Warn
		if errors.Is(err, core.ErrIntelNotFound) {
			level = s.logger.Debug
		}
		level("Threat intel lookup failed, using placeholder",
			zap.String("domain", domain),
			zap.Error(err))
		metrics.IncrementIntelLookup(core.IntelSourcePlaceholder)
		return placeholder, core.IntelSourcePlaceholder
	}
	if intel.Domain == "" {
		intel.Domain = domain
	}

	if s.opts.CacheEnabled && s.cache != nil {
		now := s.now()
		entry := &core.CacheEntry{
			Domain:    domain,
			Intel:     *intel,
			LastSeen:  now,
			ExpiresAt: now.Add(s.opts.CacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	metrics.IncrementIntelLookup(core.IntelSourceProvider)
	return intel, core.IntelSourceProvider
}

func (s *PhishingService) review(ctx context.Context, parsed *core.ParsedEmail, text string) *core.Opinion {
	email := *parsed
	email.Body = text
	opinion, err := s.reviewer.Review(ctx, &email)
	if err != nil {
		s.logger.Warn("LLM review failed", zap.Error(err))
		return nil
	}
	return opinion
}

func (s *PhishingService) buildEmail(id string, parsed *core.ParsedEmail, raw string, report *core.Report) *core.Email {
	if id == "" {
		id = parsed.MessageID
	}
	if id == "" {
		id = uuid.NewString()
	}
	date := parsed.Date
	if date.IsZero() {
		date = report.AnalyzedAt
	}
	content := parsed.Body
	if strings.TrimSpace(content) == "" {
		content = raw
	}

	email := &core.Email{
		ID:         id,
		From:       parsed.From,
		Subject:    parsed.Subject,
		Date:       date,
		Status:     report.Result.Verdict,
		Content:    content,
		Confidence: report.Result.Confidence,
		Rules:      report.Result.RuleIDs(),
	}
	if intel := report.Result.ThreatIntelligence; intel != nil {
		email.IntelDomain = intel.Domain
		email.MaliciousScore = intel.MaliciousScore
	}
	return email
}
