package classifier

import (
	"testing"
)

func TestExtractSignals(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		signal Signal
		want   bool
	}{
		{"unsubscribe", "Click to Unsubscribe", SignalUnsubscribe, true},
		{"opt out", "you may opt-out at any time", SignalUnsubscribe, true},
		{"privacy", "see our Privacy Policy", SignalPrivacyPolicy, true},
		{"newsletter", "the monthly digest", SignalNewsletter, true},
		{"signature", "Sincerely, Bob", SignalSignature, true},
		{"phishing language", "SECURITY ALERT for you", SignalPhishingLanguage, true},
		{"short link", "go to goo.gl/abc", SignalSuspiciousLink, true},
		{"defanged link", "hxxp://evil", SignalSuspiciousLink, true},
		{"known bad domain", "visit secure-login.net", SignalSuspiciousDomain, true},
		{"fear", "your card is locked", SignalFear, true},
		{"personal info", "enter your mother's maiden name", SignalPersonalInfo, true},
		{"suspicious words", "please login", SignalSuspiciousWords, true},
		{"link", "www.example", SignalContainsLink, true},
		{"legit sender", "From: news@spotify.com", SignalLegitSender, true},
		{"legit reply-to", "Reply-To: help@google.com", SignalLegitSender, true},
		{"indented from line", "hi\n  From: x@amazon.com", SignalLegitSender, false},
		{"address quoted in body", "write to help@google.com now", SignalLegitSender, false},
		{"no link", "plain words only", SignalContainsLink, false},
		{"no fear", "see you at lunch", SignalFear, false},
		{"unknown sender", "From: news@spotify.co", SignalLegitSender, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.text).Has(tt.signal); got != tt.want {
				t.Errorf("Extract(%q).Has(%s) = %v, want %v", tt.text, tt.signal, got, tt.want)
			}
		})
	}
}

func TestExtractNormalizesCompatibilityCharacters(t *testing.T) {
	// fullwidth letters fold to ASCII under NFKC
	if !Extract("ＰＡＳＳＷＯＲＤ").Has(SignalPhishingLanguage) {
		t.Error("expected fullwidth PASSWORD to match phishing language")
	}
}

func TestBrandImpersonation(t *testing.T) {
	tests := []struct {
		text   string
		brands []string
	}{
		{"Your iCloud is full", []string{"apple"}},
		{"From: support@apple.com\nYour iCloud is full", nil},
		{"Sign in to OneDrive", []string{"microsoft"}},
		{"From: x@microsoft.com\nSign in to OneDrive", nil},
		{"Wire transfer from your bank", []string{"bank"}},
		{"From: alerts@chasebank.com\nWire transfer", nil},
		{"lunch?", nil},
	}
	for _, tt := range tests {
		got := Extract(tt.text).Brands()
		if len(got) != len(tt.brands) {
			t.Errorf("Extract(%q).Brands() = %v, want %v", tt.text, got, tt.brands)
			continue
		}
		for i := range got {
			if got[i] != tt.brands[i] {
				t.Errorf("Extract(%q).Brands() = %v, want %v", tt.text, got, tt.brands)
			}
		}
	}
}

func TestSignalsListIsOrdered(t *testing.T) {
	list := Extract(scenarioA).List()
	for i := 1; i < len(list); i++ {
		if list[i] <= list[i-1] {
			t.Fatalf("signals not in declaration order: %v", list)
		}
	}
	if Signal(99).String() != "unknown" {
		t.Error("out of range signal should stringify as unknown")
	}
}

func TestEachWeightInIsolation(t *testing.T) {
	tests := []struct {
		weight string
		text   string
		want   Scores
	}{
		{"unsubscribe", "unsubscribe", Scores{Legitimate: 3}},
		{"privacy_policy", "privacy policy", Scores{Legitimate: 3}},
		{"newsletter", "digest", Scores{Legitimate: 2}},
		{"signature", "sincerely", Scores{Legitimate: 2}},
		{"phishing_language", "urgent", Scores{Phishing: 3}},
		{"suspicious_link", "tinyurl", Scores{Phishing: 4}},
		{"fear", "deactivated", Scores{Phishing: 3}},
		{"personal_info", "pin code", Scores{Phishing: 5}},
		{"brand_impersonation", "itunes", Scores{Phishing: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.weight, func(t *testing.T) {
			if got := Score(Extract(tt.text)); got != tt.want {
				t.Errorf("Score(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}
