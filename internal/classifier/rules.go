package classifier

import (
	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// RuleDefinition is a rule and the signal condition that triggers it.
// A Fallback rule fires only when no earlier rule of its group fired.
type RuleDefinition struct {
	Rule     core.TriggeredRule
	When     func(Signals) bool
	Fallback bool
}

var (
	ruleSuspiciousLanguage = core.TriggeredRule{
		ID:          "RULE001",
		Name:        "Suspicious Language Patterns",
		Description: "Email contains language commonly used in phishing attempts",
		Severity:    core.SeverityHigh,
	}
	ruleSuspiciousLink = core.TriggeredRule{
		ID:          "RULE002",
		Name:        "Suspicious Link/Domain Pattern",
		Description: "Email contains URLs or domains with suspicious patterns",
		Severity:    core.SeverityHigh,
	}
	ruleUrgency = core.TriggeredRule{
		ID:          "RULE003",
		Name:        "Urgency or Fear Tactics",
		Description: "Email creates a sense of urgency or fear to pressure user action",
		Severity:    core.SeverityMedium,
	}
	ruleSensitiveInfo = core.TriggeredRule{
		ID:          "RULE004",
		Name:        "Requests Sensitive Information",
		Description: "Email asks for personal or sensitive information",
		Severity:    core.SeverityHigh,
	}
	ruleMisleadingContent = core.TriggeredRule{
		ID:          "RULE005",
		Name:        "Potentially Misleading Content",
		Description: "Email contains words that could indicate misleading intent",
		Severity:    core.SeverityMedium,
	}
	ruleUnmarkedLinks = core.TriggeredRule{
		ID:          "RULE006",
		Name:        "Unmarked External Links",
		Description: "Email contains links without proper context or identification",
		Severity:    core.SeverityLow,
	}
	ruleBrandImpersonation = core.TriggeredRule{
		ID:          "RULE007",
		Name:        "Brand Impersonation",
		Description: "Email claims to be from a well-known company but uses an inconsistent domain",
		Severity:    core.SeverityHigh,
	}
	ruleProperStructure = core.TriggeredRule{
		ID:          "RULE008",
		Name:        "Proper Email Structure",
		Description: "Email contains proper unsubscribe links and privacy notices",
		Severity:    core.SeverityLow,
	}
	ruleVerifiedSender = core.TriggeredRule{
		ID:          "RULE009",
		Name:        "Verified Sender Domain",
		Description: "Email is from a known legitimate domain",
		Severity:    core.SeverityLow,
	}
	ruleWeakIndicators = core.TriggeredRule{
		ID:          "RULE010",
		Name:        "Weak Phishing Indicators",
		Description: "Email carries phishing indicators that are outweighed by legitimate ones",
		Severity:    core.SeverityLow,
	}
)

// ruleGroups holds the ordered rules each verdict may report
var ruleGroups = map[core.Verdict][]RuleDefinition{
	core.VerdictPhishing: {
		{Rule: ruleSuspiciousLanguage, When: has(SignalPhishingLanguage)},
		{Rule: ruleSuspiciousLink, When: anyOf(SignalSuspiciousLink, SignalSuspiciousDomain)},
		{Rule: ruleUrgency, When: has(SignalFear)},
		{Rule: ruleSensitiveInfo, When: has(SignalPersonalInfo)},
		{Rule: ruleBrandImpersonation, When: has(SignalBrandImpersonation)},
	},
	core.VerdictSuspicious: {
		{Rule: ruleMisleadingContent, When: has(SignalSuspiciousWords)},
		{Rule: ruleUnmarkedLinks, When: func(s Signals) bool {
			return s.Has(SignalContainsLink) && !s.Has(SignalUnsubscribe)
		}},
		{Rule: ruleWeakIndicators, Fallback: true},
	},
	core.VerdictLegitimate: {
		{Rule: ruleProperStructure, When: allOf(SignalUnsubscribe, SignalPrivacyPolicy)},
		{Rule: ruleVerifiedSender, When: has(SignalLegitSender)},
	},
}

// RuleGroup returns the rule definitions of a verdict in declaration order
func RuleGroup(v core.Verdict) []RuleDefinition {
	group := ruleGroups[v]
	out := make([]RuleDefinition, len(group))
	copy(out, group)
	return out
}

// RulesFor returns the rules of the verdict's group that the signals trigger
func RulesFor(v core.Verdict, s Signals) []core.TriggeredRule {
	rules := []core.TriggeredRule{}
	for _, def := range ruleGroups[v] {
		if def.Fallback {
			if len(rules) == 0 {
				rules = append(rules, def.Rule)
			}
			continue
		}
		if def.When(s) {
			rules = append(rules, def.Rule)
		}
	}
	return rules
}

// VerifiedSenderRule is reported for whitelisted senders
func VerifiedSenderRule() core.TriggeredRule {
	return ruleVerifiedSender
}

// RuleByID looks up a rule definition by its id
func RuleByID(id string) (core.TriggeredRule, bool) {
	for _, group := range ruleGroups {
		for _, def := range group {
			if def.Rule.ID == id {
				return def.Rule, true
			}
		}
	}
	return core.TriggeredRule{}, false
}
