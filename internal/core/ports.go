package core

import (
	"context"
)

// ThreatIntelProvider resolves enrichment data for a domain
type ThreatIntelProvider interface {
	// Lookup returns intel for a domain or ErrIntelNotFound
	Lookup(ctx context.Context, domain string) (*ThreatIntelligence, error)
}

// IntelCache caches threat intel lookups by domain
type IntelCache interface {
	// Get retrieves a cached entry for a domain
	Get(ctx context.Context, domain string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, domain string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// EmailRepository stores analysed emails for the dashboard
type EmailRepository interface {
	// List returns every stored email, newest first
	List(ctx context.Context) ([]Email, error)

	// Get returns one email or ErrNotFound
	Get(ctx context.Context, id string) (*Email, error)

	// Save inserts or replaces an email
	Save(ctx context.Context, email *Email) error

	// Quarantine flags an email as quarantined or returns ErrNotFound
	Quarantine(ctx context.Context, id string) error
}

// LLMReviewer gives an advisory opinion on an email
type LLMReviewer interface {
	// Review scores the email between 0 and 1, higher meaning more likely phishing
	Review(ctx context.Context, email *ParsedEmail) (*Opinion, error)
}
