package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// CliFilter analyses one message and prints the report
type CliFilter struct {
	analyzer Analyzer
	logger   *zap.Logger
	out      io.Writer
	verbose  bool
	jsonOut  bool
}

// NewCliFilter creates a new CLI filter writing to out
func NewCliFilter(analyzer Analyzer, logger *zap.Logger, out io.Writer, verbose, jsonOut bool) *CliFilter {
	return &CliFilter{
		analyzer: analyzer,
		logger:   logger,
		out:      out,
		verbose:  verbose,
		jsonOut:  jsonOut,
	}
}

// ProcessEmail analyses a raw email and prints the report
func (f *CliFilter) ProcessEmail(ctx context.Context, raw []byte) (*core.Report, error) {
	f.logger.Debug("Processing email", zap.Int("size", len(raw)))

	startTime := time.Now()
	report, err := f.analyzer.Analyze(ctx, string(raw))
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		return nil, err
	}
	duration := time.Since(startTime)

	if f.jsonOut {
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		return report, enc.Encode(report)
	}

	if f.verbose {
		preview := string(raw)
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Fprintf(f.out, "=== Email ===\n%s\n\n", preview)
	}

	result := report.Result
	fmt.Fprintf(f.out, "=== Results ===\n")
	fmt.Fprintf(f.out, "Verdict: %s\n", result.Verdict)
	fmt.Fprintf(f.out, "Confidence: %.0f\n", result.Confidence)
	if report.Whitelisted {
		fmt.Fprintf(f.out, "Sender is whitelisted\n")
	}
	if len(result.TriggeredRules) > 0 {
		fmt.Fprintf(f.out, "Triggered rules:\n")
		for _, rule := range result.TriggeredRules {
			fmt.Fprintf(f.out, "  %s [%s] %s: %s\n", rule.ID, rule.Severity, rule.Name, rule.Description)
		}
	}
	if intel := result.ThreatIntelligence; intel != nil {
		fmt.Fprintf(f.out, "Threat intelligence (%s):\n", report.IntelSource)
		fmt.Fprintf(f.out, "  Domain: %s\n", intel.Domain)
		fmt.Fprintf(f.out, "  Malicious score: %.0f\n", intel.MaliciousScore)
		fmt.Fprintf(f.out, "  Detections: %d\n", intel.Detections)
		fmt.Fprintf(f.out, "  Last seen: %s\n", intel.LastSeen)
		fmt.Fprintf(f.out, "  IP addresses: %s\n", strings.Join(intel.IPAddresses, ", "))
	}
	if review := report.Review; review != nil {
		fmt.Fprintf(f.out, "LLM review (%s): %.2f %s\n", review.Model, review.Score, review.Explanation)
	}
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return report, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
