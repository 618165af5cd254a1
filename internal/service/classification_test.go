package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/rasi23/pingpeek-phishguard/internal/classifier"
)

// pastedEmails are submitted the way the dashboard sends them: raw text,
// often without any real header block
var pastedEmails = []struct {
	name string
	raw  string
}{
	{"credential lure with header block", "From: alerts@account-services.example\n" +
		"Subject: Action needed\n\n" +
		"Please verify your identity at http://bit.ly/3xYz or your account will be suspended."},
	{"brand mention only", "Your PayPal transaction of $750 is pending review."},
	{"newsletter with subject only", "Subject: Our spring newsletter\n\n" +
		"Here are this season's highlights from our design community.\n\n" +
		"To unsubscribe, visit the preferences page. Read our privacy policy for details.\n\n" +
		"Regards,\nThe Team"},
	{"profile update link", "Please update your profile at http://example.org/profile"},
	{"key value first line phishing", "Security: verify your password at http://bit.ly/x\n\nthanks"},
	{"key value first line newsletter", "Team: weekly update\nUnsubscribe: here\nPrivacy policy: link\n\nhello"},
	{"weak indicators", "URGENT reminder.\n\nUnsubscribe anytime. Privacy policy applies.\nRegards, the team"},
}

func TestAnalyzeMatchesClassifierOnPastedText(t *testing.T) {
	f := newFixture(t, classifier.ModeWeighted, defaultOptions())

	for _, tt := range pastedEmails {
		t.Run(tt.name, func(t *testing.T) {
			want := classifier.Classify(tt.raw)

			report, err := f.svc.Analyze(context.Background(), tt.raw)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			got := report.Result
			if got.Verdict != want.Verdict || got.Confidence != want.Confidence {
				t.Errorf("Analyze = %s/%v, Classify = %s/%v", got.Verdict, got.Confidence, want.Verdict, want.Confidence)
			}
			if !reflect.DeepEqual(got.RuleIDs(), want.RuleIDs()) {
				t.Errorf("rules = %v, want %v", got.RuleIDs(), want.RuleIDs())
			}
		})
	}
}
