package core

import (
	"errors"
	"time"
)

var (
	// ErrInvalidInput is returned when the raw email is empty or whitespace only
	ErrInvalidInput = errors.New("raw email is empty")
	// ErrNotFound is returned when an email is not present in the store
	ErrNotFound = errors.New("email not found")
	// ErrIntelNotFound is returned by a threat intel provider that knows nothing about a domain
	ErrIntelNotFound = errors.New("no threat intelligence for domain")
)

// Verdict is the final classification label of an email
type Verdict string

const (
	VerdictPhishing   Verdict = "phishing"
	VerdictSuspicious Verdict = "suspicious"
	VerdictLegitimate Verdict = "legitimate"
)

// Severity orders verdicts for sorting: phishing > suspicious > legitimate
func (v Verdict) Severity() int {
	switch v {
	case VerdictPhishing:
		return 2
	case VerdictSuspicious:
		return 1
	default:
		return 0
	}
}

// Valid reports whether v is one of the known verdicts
func (v Verdict) Valid() bool {
	switch v {
	case VerdictPhishing, VerdictSuspicious, VerdictLegitimate:
		return true
	}
	return false
}

// RuleSeverity is the fixed severity attached to a detection rule
type RuleSeverity string

const (
	SeverityHigh   RuleSeverity = "high"
	SeverityMedium RuleSeverity = "medium"
	SeverityLow    RuleSeverity = "low"
)

// TriggeredRule explains why a verdict was reached
type TriggeredRule struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Severity    RuleSeverity `json:"severity"`
}

// ThreatIntelligence is enrichment data about a domain tied to a non-legitimate email
type ThreatIntelligence struct {
	Domain         string   `json:"domain"`
	MaliciousScore float64  `json:"maliciousScore"`
	Detections     int      `json:"detections"`
	LastSeen       string   `json:"lastSeen"`
	IPAddresses    []string `json:"ipAddresses"`
}

// AnalysisResult is the outcome of classifying one raw email
type AnalysisResult struct {
	Verdict            Verdict             `json:"verdict"`
	Confidence         float64             `json:"confidence"`
	TriggeredRules     []TriggeredRule     `json:"triggeredRules"`
	ThreatIntelligence *ThreatIntelligence `json:"threatIntelligence,omitempty"`
}

// RuleIDs returns the ids of the triggered rules in order
func (r *AnalysisResult) RuleIDs() []string {
	ids := make([]string, 0, len(r.TriggeredRules))
	for _, rule := range r.TriggeredRules {
		ids = append(ids, rule.ID)
	}
	return ids
}

// Email is a stored message as shown on the dashboard
type Email struct {
	ID          string    `json:"id"`
	From        string    `json:"from"`
	Subject     string    `json:"subject"`
	Date        time.Time `json:"date"`
	Status      Verdict   `json:"status"`
	Content     string    `json:"content,omitempty"`
	Quarantined bool      `json:"quarantined"`
	Confidence  float64   `json:"confidence"`
	// Rules and IntelDomain describe the last analysis and feed the statistics
	Rules          []string `json:"rules,omitempty"`
	IntelDomain    string   `json:"intelDomain,omitempty"`
	MaliciousScore float64  `json:"maliciousScore,omitempty"`
}

// Opinion is an advisory second opinion from an LLM reviewer
type Opinion struct {
	Model       string  `json:"model"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// Intel sources reported on a Report
const (
	IntelSourceProvider    = "provider"
	IntelSourceCache       = "cache"
	IntelSourcePlaceholder = "placeholder"
)

// Report wraps an AnalysisResult with what the service did around it
type Report struct {
	EmailID     string         `json:"emailId"`
	Result      AnalysisResult `json:"result"`
	Whitelisted bool           `json:"whitelisted"`
	IntelSource string         `json:"intelSource,omitempty"`
	Review      *Opinion       `json:"review,omitempty"`
	AnalyzedAt  time.Time      `json:"analyzedAt"`
}

// CacheEntry is a cached threat intel lookup
type CacheEntry struct {
	Domain    string
	Intel     ThreatIntelligence
	LastSeen  time.Time
	ExpiresAt time.Time
}

// ParsedEmail is the part of a MIME message the classifier looks at
type ParsedEmail struct {
	MessageID string
	From      string
	ReplyTo   string
	Subject   string
	Date      time.Time
	Body      string
	Headers   map[string][]string
}
