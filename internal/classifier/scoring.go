package classifier

import (
	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// Side is the score a weight contributes to
type Side int

const (
	SideLegitimate Side = iota
	SidePhishing
)

// Weight adds Points to one side when its condition holds
type Weight struct {
	Name   string
	Side   Side
	Points int
	When   func(Signals) bool
}

func has(sig Signal) func(Signals) bool {
	return func(s Signals) bool { return s.Has(sig) }
}

func anyOf(sigs ...Signal) func(Signals) bool {
	return func(s Signals) bool {
		for _, sig := range sigs {
			if s.Has(sig) {
				return true
			}
		}
		return false
	}
}

func allOf(sigs ...Signal) func(Signals) bool {
	return func(s Signals) bool {
		for _, sig := range sigs {
			if !s.Has(sig) {
				return false
			}
		}
		return true
	}
}

// Weights is the scoring policy. Points reflect how reliable a signal is on its own.
var Weights = []Weight{
	{Name: "unsubscribe", Side: SideLegitimate, Points: 3, When: has(SignalUnsubscribe)},
	{Name: "privacy_policy", Side: SideLegitimate, Points: 3, When: has(SignalPrivacyPolicy)},
	{Name: "newsletter", Side: SideLegitimate, Points: 2, When: has(SignalNewsletter)},
	{Name: "signature", Side: SideLegitimate, Points: 2, When: has(SignalSignature)},
	{Name: "legit_sender", Side: SideLegitimate, Points: 4, When: has(SignalLegitSender)},

	{Name: "phishing_language", Side: SidePhishing, Points: 3, When: has(SignalPhishingLanguage)},
	{Name: "suspicious_link", Side: SidePhishing, Points: 4, When: anyOf(SignalSuspiciousLink, SignalSuspiciousDomain)},
	{Name: "fear", Side: SidePhishing, Points: 3, When: has(SignalFear)},
	{Name: "personal_info", Side: SidePhishing, Points: 5, When: has(SignalPersonalInfo)},
	{Name: "linked_suspicious_words", Side: SidePhishing, Points: 2, When: allOf(SignalSuspiciousWords, SignalContainsLink)},
	{Name: "brand_impersonation", Side: SidePhishing, Points: 5, When: has(SignalBrandImpersonation)},
}

// Scores are the two independent accumulated scores
type Scores struct {
	Legitimate int
	Phishing   int
}

// Score sums the weights whose conditions hold
func Score(s Signals) Scores {
	var sc Scores
	for _, w := range Weights {
		if !w.When(s) {
			continue
		}
		if w.Side == SidePhishing {
			sc.Phishing += w.Points
		} else {
			sc.Legitimate += w.Points
		}
	}
	return sc
}

// PhishingFloor is the phishing score at which an email becomes a phishing candidate
const PhishingFloor = 3

// Decide maps the scores to a verdict and a confidence in [50,95]
func Decide(sc Scores) (core.Verdict, float64) {
	p, l := sc.Phishing, sc.Legitimate
	switch {
	case p >= PhishingFloor:
		if p > l {
			return core.VerdictPhishing, float64(70 + min((p-l)*3, 25))
		}
		return core.VerdictSuspicious, float64(50 + min(p*3, 40))
	case p > 0:
		if l > p*2 {
			return core.VerdictLegitimate, float64(70 + min(l*2, 25))
		}
		return core.VerdictSuspicious, 60
	default:
		return core.VerdictLegitimate, float64(70 + min(l*3, 25))
	}
}

// clampConfidence keeps a confidence inside [0,100]
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
