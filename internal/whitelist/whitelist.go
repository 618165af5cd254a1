// Package whitelist decides which senders bypass phishing analysis.
package whitelist

import (
	"strings"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
)

// Checker matches sender domains against a fixed set
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker normalizes domains and drops blanks. A nil logger is allowed.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			set[d] = struct{}{}
		}
	}
	if len(set) > 0 {
		logger.Info("Sender whitelist loaded", zap.Int("domains", len(set)))
	}
	return &Checker{domains: set, logger: logger}
}

// ExtractDomain returns the lower-cased domain of "Name <user@domain>" or
// "user@domain", or "" when there is none
func ExtractDomain(from string) string {
	addr := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	} else if open := strings.LastIndexByte(addr, '<'); open >= 0 {
		addr = addr[open+1:]
		if end := strings.IndexByte(addr, '>'); end >= 0 {
			addr = addr[:end]
		}
	}
	at := strings.LastIndexByte(addr, '@')
	if at < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(addr[at+1:]))
}

// IsWhitelisted reports whether the sender's domain is listed. Safe on a nil
// Checker.
func (c *Checker) IsWhitelisted(from string) bool {
	if c == nil || len(c.domains) == 0 {
		return false
	}
	domain := ExtractDomain(from)
	if domain == "" {
		return false
	}
	if _, ok := c.domains[domain]; !ok {
		return false
	}
	c.logger.Debug("Sender domain is whitelisted", zap.String("domain", domain))
	return true
}
