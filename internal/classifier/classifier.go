// Package classifier implements the deterministic heuristic phishing classifier.
//
// Classification is a pure function of the raw email text: signals are
// extracted with static pattern tables, weighted into a legitimate and a
// phishing score, thresholded into a verdict, and explained with the rules
// of that verdict's group. Nothing here performs I/O, so a Classifier is safe
// for concurrent use.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// Mode selects the scoring table
type Mode string

const (
	// ModeWeighted is the multi-signal weighted table
	ModeWeighted Mode = "weighted"
	// ModeLegacy is the single-weight variant kept as a degraded mode
	ModeLegacy Mode = "legacy"
)

// Placeholder threat intel values used until a provider answers
const (
	PlaceholderDomain   = "suspicious-domain.com"
	PlaceholderLastSeen = "2023-05-10"
)

var placeholderIPs = []string{"192.168.1.1", "10.0.0.1"}

// Classifier classifies raw email text
type Classifier struct {
	mode Mode
}

// New creates a classifier for the given mode
func New(mode Mode) (*Classifier, error) {
	switch mode {
	case ModeWeighted, ModeLegacy:
		return &Classifier{mode: mode}, nil
	case "":
		return &Classifier{mode: ModeWeighted}, nil
	default:
		return nil, fmt.Errorf("unsupported classifier mode: %s", mode)
	}
}

// Mode returns the configured mode
func (c *Classifier) Mode() Mode {
	return c.mode
}

// Classify runs the configured scoring table and returns the result together
// with the signals it was derived from
func (c *Classifier) Classify(raw string) (core.AnalysisResult, Signals) {
	if c.mode == ModeLegacy {
		return ClassifyLegacy(raw), Extract(raw)
	}
	s := Extract(raw)
	return classifySignals(s), s
}

// Classify runs the weighted classifier. Blank input yields the zero-signal
// legitimate result.
func Classify(raw string) core.AnalysisResult {
	return classifySignals(Extract(raw))
}

// ClassifyStrict is Classify but rejects blank input with core.ErrInvalidInput
func ClassifyStrict(raw string) (core.AnalysisResult, error) {
	if strings.TrimSpace(raw) == "" {
		return core.AnalysisResult{}, core.ErrInvalidInput
	}
	return Classify(raw), nil
}

func classifySignals(s Signals) core.AnalysisResult {
	verdict, confidence := Decide(Score(s))
	result := core.AnalysisResult{
		Verdict:        verdict,
		Confidence:     clampConfidence(confidence),
		TriggeredRules: RulesFor(verdict, s),
	}
	if verdict != core.VerdictLegitimate {
		result.ThreatIntelligence = PlaceholderIntel(verdict, s.IntelDomain())
	}
	return result
}

// PlaceholderIntel is the stand-in record attached before, or instead of, a
// real provider lookup
func PlaceholderIntel(v core.Verdict, domain string) *core.ThreatIntelligence {
	if domain == "" {
		domain = PlaceholderDomain
	}
	intel := &core.ThreatIntelligence{
		Domain:      domain,
		LastSeen:    PlaceholderLastSeen,
		IPAddresses: append([]string(nil), placeholderIPs...),
	}
	if v == core.VerdictPhishing {
		intel.MaliciousScore = 85
		intel.Detections = 16
	} else {
		intel.MaliciousScore = 60
		intel.Detections = 8
	}
	return intel
}

var (
	legacyPhishingWords   = regexp.MustCompile(`password|verify|urgent|account|click|link|suspended|unusual`)
	legacySuspiciousWords = regexp.MustCompile(`confirm|security|update|login|access|important`)
	legacyLink            = regexp.MustCompile(`http|www|\.com|\.net`)
)

// ClassifyLegacy is the simple single-weight variant: phishing words plus a
// link is phishing, either suspicious words or a link alone is suspicious.
// It shares rule definitions with the weighted table but none of its scores.
func ClassifyLegacy(raw string) core.AnalysisResult {
	text := Normalize(raw)
	phishingWords := legacyPhishingWords.MatchString(text)
	suspiciousWords := legacySuspiciousWords.MatchString(text)
	link := legacyLink.MatchString(text)

	rules := []core.TriggeredRule{}
	var result core.AnalysisResult
	switch {
	case phishingWords && link:
		rules = append(rules, ruleSuspiciousLanguage, ruleSuspiciousLink)
		result = core.AnalysisResult{Verdict: core.VerdictPhishing, Confidence: 85}
	case suspiciousWords || link:
		if suspiciousWords {
			rules = append(rules, ruleMisleadingContent)
		}
		if link {
			rules = append(rules, ruleUnmarkedLinks)
		}
		result = core.AnalysisResult{Verdict: core.VerdictSuspicious, Confidence: 50}
	default:
		result = core.AnalysisResult{Verdict: core.VerdictLegitimate, Confidence: 70}
	}
	result.TriggeredRules = rules

	if result.Verdict != core.VerdictLegitimate {
		domain := ""
		for _, d := range SuspiciousDomains {
			if strings.Contains(text, d) {
				domain = d
				break
			}
		}
		result.ThreatIntelligence = PlaceholderIntel(result.Verdict, domain)
	}
	return result
}
