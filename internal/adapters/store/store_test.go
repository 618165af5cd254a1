package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

type repository interface {
	core.EmailRepository
	Close() error
}

func testRepository(t *testing.T, repo repository) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	emails := []core.Email{
		{ID: "a", From: "alice@example.com", Subject: "Lunch", Date: base, Status: core.VerdictLegitimate, Content: "see you", Confidence: 76, Rules: []string{}},
		{ID: "b", From: "x@secure-paypal.co", Subject: "Verify", Date: base.Add(time.Hour), Status: core.VerdictPhishing, Content: "verify now", Confidence: 95, Rules: []string{"RULE001", "RULE002"}, IntelDomain: "secure-paypal.co", MaliciousScore: 85},
		{ID: "c", From: "promo@shop.example", Subject: "Deal", Date: base.Add(-time.Hour), Status: core.VerdictSuspicious, Content: "offer", Confidence: 60, Rules: []string{"RULE010"}},
	}
	for i := range emails {
		if err := repo.Save(ctx, &emails[i]); err != nil {
			t.Fatalf("Save(%s): %v", emails[i].ID, err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[0].ID != "b" || list[1].ID != "a" || list[2].ID != "c" {
		t.Fatalf("List order = %v, want newest first", ids(list))
	}

	got, err := repo.Get(ctx, "b")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != core.VerdictPhishing || got.IntelDomain != "secure-paypal.co" || got.MaliciousScore != 85 {
		t.Errorf("Get(b) = %+v", got)
	}
	if len(got.Rules) != 2 || got.Rules[1] != "RULE002" {
		t.Errorf("Rules = %v", got.Rules)
	}
	if !got.Date.Equal(emails[1].Date) {
		t.Errorf("Date = %v, want %v", got.Date, emails[1].Date)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := repo.Quarantine(ctx, "b"); err != nil {
		t.Fatalf("Quarantine: %v", err)
	}
	if err := repo.Quarantine(ctx, "b"); err != nil {
		t.Fatalf("second Quarantine: %v", err)
	}
	if err := repo.Quarantine(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Quarantine(missing) error = %v, want ErrNotFound", err)
	}

	// re-saving an analysed email keeps it quarantined
	again := emails[1]
	again.Quarantined = false
	if err := repo.Save(ctx, &again); err != nil {
		t.Fatalf("re-Save: %v", err)
	}
	got, _ = repo.Get(ctx, "b")
	if !got.Quarantined {
		t.Error("quarantine flag lost on re-save")
	}
}

func ids(emails []core.Email) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		out = append(out, e.ID)
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	repo := NewMemoryStore()
	defer repo.Close()
	testRepository(t, repo)
}

func TestSQLiteStore(t *testing.T) {
	repo, err := NewSQLiteStore(filepath.Join(t.TempDir(), "emails.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer repo.Close()
	testRepository(t, repo)
}

// The server-backed stores need a dedicated empty database
func TestMySQLStore(t *testing.T) {
	dsn := os.Getenv("PHISHGUARD_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("PHISHGUARD_TEST_MYSQL_DSN not set")
	}
	repo, err := NewMySQLStore(dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("NewMySQLStore: %v", err)
	}
	defer repo.Close()
	testRepository(t, repo)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("PHISHGUARD_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PHISHGUARD_TEST_POSTGRES_DSN not set")
	}
	repo, err := NewPostgresStore(context.Background(), dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	defer repo.Close()
	testRepository(t, repo)
}

func TestRulesRoundTrip(t *testing.T) {
	if got := splitRules(""); got == nil || len(got) != 0 {
		t.Errorf("splitRules(\"\") = %#v, want empty non-nil", got)
	}
	if got := splitRules(joinRules([]string{"RULE005", "RULE006"})); len(got) != 2 || got[0] != "RULE005" {
		t.Errorf("round trip = %v", got)
	}
}
