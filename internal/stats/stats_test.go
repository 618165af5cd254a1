package stats

import (
	"testing"
	"time"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

var now = time.Date(2025, 5, 14, 15, 0, 0, 0, time.UTC)

func corpus() []core.Email {
	day := func(d int) time.Time { return time.Date(2025, 5, d, 10, 0, 0, 0, time.UTC) }
	return []core.Email{
		{ID: "1", Date: day(14), Status: core.VerdictPhishing, Rules: []string{"RULE001", "RULE002"}, IntelDomain: "secure-paypal.co", MaliciousScore: 85, Quarantined: true},
		{ID: "2", Date: day(14), Status: core.VerdictPhishing, Rules: []string{"RULE001", "RULE007"}, IntelDomain: "secure-paypal.co", MaliciousScore: 90},
		{ID: "3", Date: day(13), Status: core.VerdictSuspicious, Rules: []string{"RULE005"}, IntelDomain: "apple-verify.com", MaliciousScore: 60},
		{ID: "4", Date: day(12), Status: core.VerdictLegitimate, Rules: []string{"RULE008"}},
		{ID: "5", Date: day(1), Status: core.VerdictLegitimate, Rules: []string{}},
		{ID: "6", Date: day(13), Status: core.VerdictSuspicious, Rules: []string{"RULE999"}, IntelDomain: "zz.example", MaliciousScore: 60},
	}
}

func TestTimeSeries(t *testing.T) {
	series := TimeSeries(corpus(), 3, now)
	want := []DayCount{
		{Date: "2025-05-12", Legitimate: 1},
		{Date: "2025-05-13", Suspicious: 2},
		{Date: "2025-05-14", Phishing: 2},
	}
	if len(series) != len(want) {
		t.Fatalf("TimeSeries = %+v", series)
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("day %d = %+v, want %+v", i, series[i], want[i])
		}
	}

	if got := TimeSeries(corpus(), 0, now); len(got) != 0 {
		t.Errorf("zero days = %+v", got)
	}
}

func TestAttackPatterns(t *testing.T) {
	got := AttackPatterns(corpus())
	want := []PatternCount{
		{Name: "Suspicious Language Patterns", Count: 2},
		{Name: "Brand Impersonation", Count: 1},
		{Name: "Potentially Misleading Content", Count: 1},
		{Name: "RULE999", Count: 1},
		{Name: "Suspicious Link/Domain Pattern", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("AttackPatterns = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pattern %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDomainAnalysis(t *testing.T) {
	got := DomainAnalysis(corpus())
	want := []DomainStat{
		{Domain: "secure-paypal.co", Count: 2, ThreatLevel: 88},
		{Domain: "apple-verify.com", Count: 1, ThreatLevel: 60},
		{Domain: "zz.example", Count: 1, ThreatLevel: 60},
	}
	if len(got) != len(want) {
		t.Fatalf("DomainAnalysis = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("domain %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(corpus())
	want := Summary{Total: 6, Phishing: 2, Suspicious: 2, Legitimate: 2, Quarantined: 1}
	if got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
}
