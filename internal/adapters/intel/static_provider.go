// Package intel holds threat intelligence providers.
package intel

import (
	"context"
	"strings"

	"github.com/rasi23/pingpeek-phishguard/internal/classifier"
	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// StaticProvider answers from a fixed table. Without configured entries it
// knows the classifier's suspicious domains with phishing-grade placeholder values.
type StaticProvider struct {
	entries map[string]core.ThreatIntelligence
}

// NewStaticProvider creates a provider from a list of records
func NewStaticProvider(records []core.ThreatIntelligence) *StaticProvider {
	p := &StaticProvider{entries: make(map[string]core.ThreatIntelligence)}
	if len(records) == 0 {
		for _, domain := range classifier.SuspiciousDomains {
			records = append(records, *classifier.PlaceholderIntel(core.VerdictPhishing, domain))
		}
	}
	for _, r := range records {
		domain := strings.ToLower(strings.TrimSpace(r.Domain))
		if domain == "" {
			continue
		}
		r.Domain = domain
		p.entries[domain] = r
	}
	return p
}

// Lookup returns the record of domain or core.ErrIntelNotFound
func (p *StaticProvider) Lookup(ctx context.Context, domain string) (*core.ThreatIntelligence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, ok := p.entries[strings.ToLower(strings.TrimSpace(domain))]
	if !ok {
		return nil, core.ErrIntelNotFound
	}
	r.IPAddresses = append([]string(nil), r.IPAddresses...)
	return &r, nil
}
