package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// domainReport is the lookup service response
type domainReport struct {
	Malicious int      `json:"malicious"`
	Total     int      `json:"total"`
	LastSeen  string   `json:"last_seen"`
	IPs       []string `json:"ips"`
}

// HTTPProvider queries a VirusTotal-style JSON lookup service at
// GET {baseURL}/domains/{domain}
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPProvider creates an HTTP provider. The client timeout is a backstop,
// callers bound each lookup through the context.
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Lookup fetches the report of domain
func (p *HTTPProvider) Lookup(ctx context.Context, domain string) (*core.ThreatIntelligence, error) {
	endpoint := p.baseURL + "/domains/" + url.PathEscape(domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build intel request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("x-apikey", p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("intel request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, core.ErrIntelNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("intel service error: %d", resp.StatusCode)
	}

	var report domainReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode intel response: %w", err)
	}

	p.logger.Debug("Intel lookup answered",
		zap.String("domain", domain),
		zap.Int("malicious", report.Malicious),
		zap.Int("total", report.Total))

	return report.toIntel(domain), nil
}

func (r domainReport) toIntel(domain string) *core.ThreatIntelligence {
	intel := &core.ThreatIntelligence{
		Domain:      domain,
		Detections:  r.Malicious,
		LastSeen:    r.LastSeen,
		IPAddresses: r.IPs,
	}
	if intel.IPAddresses == nil {
		intel.IPAddresses = []string{}
	}
	if r.Total > 0 {
		score := float64(r.Malicious) / float64(r.Total) * 100
		if score > 100 {
			score = 100
		}
		intel.MaliciousScore = score
	}
	return intel
}
