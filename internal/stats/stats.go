// Package stats aggregates stored emails for the dashboard endpoints.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/rasi23/pingpeek-phishguard/internal/classifier"
	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

const dateLayout = "2006-01-02"

// DayCount is the number of emails of each verdict received on one day
type DayCount struct {
	Date       string `json:"date"`
	Phishing   int    `json:"phishing"`
	Suspicious int    `json:"suspicious"`
	Legitimate int    `json:"legitimate"`
}

// PatternCount is how often a rule fired on non-legitimate emails
type PatternCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DomainStat summarises the emails tied to one threat intel domain
type DomainStat struct {
	Domain      string `json:"domain"`
	Count       int    `json:"count"`
	ThreatLevel int    `json:"threatLevel"`
}

// Summary holds the dashboard totals
type Summary struct {
	Total       int `json:"total"`
	Phishing    int `json:"phishing"`
	Suspicious  int `json:"suspicious"`
	Legitimate  int `json:"legitimate"`
	Quarantined int `json:"quarantined"`
}

// TimeSeries counts emails per verdict for each of the last days days up to
// and including now's date, oldest first. Days without mail are present with zeros.
func TimeSeries(emails []core.Email, days int, now time.Time) []DayCount {
	if days <= 0 {
		return []DayCount{}
	}
	today := now.UTC().Truncate(24 * time.Hour)
	series := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i-days+1).Format(dateLayout)
		series[i].Date = date
		index[date] = i
	}

	for _, e := range emails {
		i, ok := index[e.Date.UTC().Format(dateLayout)]
		if !ok {
			continue
		}
		switch e.Status {
		case core.VerdictPhishing:
			series[i].Phishing++
		case core.VerdictSuspicious:
			series[i].Suspicious++
		case core.VerdictLegitimate:
			series[i].Legitimate++
		}
	}
	return series
}

// AttackPatterns counts triggered rules across non-legitimate emails, most frequent first
func AttackPatterns(emails []core.Email) []PatternCount {
	counts := make(map[string]int)
	for _, e := range emails {
		if e.Status == core.VerdictLegitimate {
			continue
		}
		for _, id := range e.Rules {
			name := id
			if rule, ok := classifier.RuleByID(id); ok {
				name = rule.Name
			}
			counts[name]++
		}
	}

	patterns := make([]PatternCount, 0, len(counts))
	for name, count := range counts {
		patterns = append(patterns, PatternCount{Name: name, Count: count})
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].Name < patterns[j].Name
	})
	return patterns
}

// DomainAnalysis groups emails by threat intel domain. ThreatLevel is the
// rounded mean malicious score.
func DomainAnalysis(emails []core.Email) []DomainStat {
	type acc struct {
		count int
		score float64
	}
	byDomain := make(map[string]*acc)
	for _, e := range emails {
		if e.IntelDomain == "" {
			continue
		}
		a, ok := byDomain[e.IntelDomain]
		if !ok {
			a = &acc{}
			byDomain[e.IntelDomain] = a
		}
		a.count++
		a.score += e.MaliciousScore
	}

	out := make([]DomainStat, 0, len(byDomain))
	for domain, a := range byDomain {
		out = append(out, DomainStat{
			Domain:      domain,
			Count:       a.count,
			ThreatLevel: int(math.Round(a.score / float64(a.count))),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].ThreatLevel != out[j].ThreatLevel {
			return out[i].ThreatLevel > out[j].ThreatLevel
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

// Summarize totals emails per verdict
func Summarize(emails []core.Email) Summary {
	s := Summary{Total: len(emails)}
	for _, e := range emails {
		switch e.Status {
		case core.VerdictPhishing:
			s.Phishing++
		case core.VerdictSuspicious:
			s.Suspicious++
		case core.VerdictLegitimate:
			s.Legitimate++
		}
		if e.Quarantined {
			s.Quarantined++
		}
	}
	return s
}
