package classifier

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Signal is a single boolean feature extracted from email text
type Signal int

const (
	SignalUnsubscribe Signal = iota
	SignalPrivacyPolicy
	SignalNewsletter
	SignalSignature
	SignalLegitSender
	SignalPhishingLanguage
	SignalSuspiciousLink
	SignalSuspiciousDomain
	SignalFear
	SignalPersonalInfo
	SignalBrandImpersonation
	SignalSuspiciousWords
	SignalContainsLink
	signalCount
)

var signalNames = [signalCount]string{
	"unsubscribe",
	"privacy_policy",
	"newsletter",
	"signature",
	"legit_sender",
	"phishing_language",
	"suspicious_link",
	"suspicious_domain",
	"fear",
	"personal_info",
	"brand_impersonation",
	"suspicious_words",
	"contains_link",
}

func (s Signal) String() string {
	if s < 0 || s >= signalCount {
		return "unknown"
	}
	return signalNames[s]
}

// SuspiciousDomains is the maintained list of known-bad domains, in lookup order
var SuspiciousDomains = []string{
	"suspicious-domain.com",
	"secure-paypal.co",
	"apple-verify.com",
	"secure-login.net",
	"account-verify.info",
}

// LegitimateDomains are first-party domains whose sender reference counts as a legitimacy signal
var LegitimateDomains = []string{
	"amazon.com",
	"apple.com",
	"microsoft.com",
	"google.com",
	"spotify.com",
}

// keywordSignals are plain pattern matches evaluated against the lower-cased text
var keywordSignals = []struct {
	signal  Signal
	pattern *regexp.Regexp
}{
	{SignalUnsubscribe, regexp.MustCompile(`unsubscribe|opt.?out|manage preferences`)},
	{SignalPrivacyPolicy, regexp.MustCompile(`privacy policy|terms|conditions`)},
	{SignalNewsletter, regexp.MustCompile(`newsletter|weekly|monthly|update|digest`)},
	{SignalSignature, regexp.MustCompile(`regards|sincerely|team|thanks|thank you`)},
	{SignalPhishingLanguage, regexp.MustCompile(`password|verify|urgent|security alert|account suspended|unusual activity|click here immediately|update your information|account access|limited access|blocked|unauthorized|update details|confirm identity|verify account|unusual login|immediately|urgent action|security issue|compromise|unusual sign-in|sign-in attempt`)},
	{SignalSuspiciousLink, regexp.MustCompile(`bit\.ly|goo\.gl|tinyurl|click here to|login now at|hxxp|verify-|secure-|account-verify|\.info/|\.co/verify|\.net/secure`)},
	{SignalFear, regexp.MustCompile(`suspended|disabled|unauthorized|illegal|fraud|limited access|blocked|violation|compromised|unusual|notification|immediate action|risk|suspicious|locked|deactivated|restricted access`)},
	{SignalPersonalInfo, regexp.MustCompile(`ssn|social security|credit card|update your account|confirm your details|verify your identity|password|username|login credentials|payment information|billing details|security question|birth date|mother's maiden name|pin code`)},
	{SignalSuspiciousWords, regexp.MustCompile(`confirm|security|update|login|access|important`)},
	{SignalContainsLink, regexp.MustCompile(`http|www|\.com|\.net|\.org`)},
}

// brandChecks flag a brand mention that is not backed by the brand's own sender domain
var brandChecks = []struct {
	brand      string
	mention    *regexp.Regexp
	firstParty *regexp.Regexp
}{
	{"apple", regexp.MustCompile(`apple|icloud|itunes`), senderPattern(`apple\.com`)},
	{"microsoft", regexp.MustCompile(`microsoft|office365|outlook|azure|onedrive`), senderPattern(`microsoft\.com`)},
	{"paypal", regexp.MustCompile(`paypal|payment|transaction`), senderPattern(`paypal\.com`)},
	{"bank", regexp.MustCompile(`bank|banking|account|transfer|statement`), senderPattern(`[a-z]+bank\.com`)},
}

// legitSenderPattern only looks at sender header lines, so a body that
// merely quotes a trusted address earns no legitimacy
var legitSenderPattern = regexp.MustCompile(`(?m)^(?:from|reply-to|sender):[^\n]*` +
	senderPattern(`(?:amazon|apple|microsoft|google|spotify)\.com`).String())

// senderPattern matches an address at exactly the given domain, so
// "@apple.com.evil.net" does not count as an apple.com sender
func senderPattern(domain string) *regexp.Regexp {
	return regexp.MustCompile(`@` + domain + `(?:$|[^a-z0-9.\-]|\.(?:$|[^a-z0-9]))`)
}

// Signals is the set of signals found in one email
type Signals struct {
	mask             uint32
	suspiciousDomain string
	brands           []string
}

// Has reports whether the signal matched
func (s Signals) Has(sig Signal) bool {
	return s.mask&(1<<uint(sig)) != 0
}

func (s *Signals) set(sig Signal) {
	s.mask |= 1 << uint(sig)
}

// List returns the matched signals in declaration order
func (s Signals) List() []Signal {
	var out []Signal
	for sig := Signal(0); sig < signalCount; sig++ {
		if s.Has(sig) {
			out = append(out, sig)
		}
	}
	return out
}

// IntelDomain is the first known-suspicious domain found in the text, or ""
func (s Signals) IntelDomain() string {
	return s.suspiciousDomain
}

// Brands lists the impersonated brands
func (s Signals) Brands() []string {
	return s.brands
}

// Normalize folds compatibility characters and case so every matcher sees the same text
func Normalize(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}

// Extract evaluates every signal against the raw email text
func Extract(raw string) Signals {
	text := Normalize(raw)

	var s Signals
	for _, k := range keywordSignals {
		if k.pattern.MatchString(text) {
			s.set(k.signal)
		}
	}

	for _, domain := range SuspiciousDomains {
		if strings.Contains(text, domain) {
			s.set(SignalSuspiciousDomain)
			s.suspiciousDomain = domain
			break
		}
	}

	if legitSenderPattern.MatchString(text) && !s.Has(SignalSuspiciousDomain) {
		s.set(SignalLegitSender)
	}

	for _, b := range brandChecks {
		if b.mention.MatchString(text) && !b.firstParty.MatchString(text) {
			s.brands = append(s.brands, b.brand)
		}
	}
	if len(s.brands) > 0 {
		s.set(SignalBrandImpersonation)
	}

	return s
}
