// Package metrics holds the Prometheus collectors of the phishing service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysisCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phishguard_analyses_total",
			Help: "Total number of analysed emails by verdict",
		},
		[]string{"verdict"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "phishguard_analysis_duration_seconds",
			Help:    "Time spent analysing one email, including intel and review",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
	)

	IntelLookupCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phishguard_intel_lookups_total",
			Help: "Threat intel lookups by the source that answered",
		},
		[]string{"source"}, // provider, cache, placeholder
	)

	IngestedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phishguard_ingested_total",
			Help: "Messages ingested per source and outcome",
		},
		[]string{"source", "status"}, // status: analyzed, skipped, failed
	)

	QuarantineCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phishguard_quarantined_total",
			Help: "Total number of quarantined emails",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phishguard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordAnalysis records one finished analysis
func RecordAnalysis(verdict string, duration time.Duration) {
	AnalysisCount.WithLabelValues(verdict).Inc()
	AnalysisDuration.Observe(duration.Seconds())
}

// IncrementIntelLookup counts an intel answer by source
func IncrementIntelLookup(source string) {
	IntelLookupCount.WithLabelValues(source).Inc()
}

// IncrementIngested counts an ingested message
func IncrementIngested(source, status string) {
	IngestedCount.WithLabelValues(source, status).Inc()
}

// IncrementQuarantined counts a quarantine action
func IncrementQuarantined() {
	QuarantineCount.Inc()
}

// RecordHTTPRequestDuration records an API request
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
