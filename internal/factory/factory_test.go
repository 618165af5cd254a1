package factory

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/adapters/cache"
	"github.com/rasi23/pingpeek-phishguard/internal/adapters/store"
	"github.com/rasi23/pingpeek-phishguard/internal/config"
)

func testConfig(settings map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range settings {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestCreateIntelCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{"memory", map[string]any{"cache.type": "memory"}, false},
		{"sqlite", map[string]any{"cache.type": "sqlite", "cache.sqlite_path": filepath.Join(dir, "c", "intel.db")}, false},
		{"unknown", map[string]any{"cache.type": "memcached"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCacheFactory(testConfig(tt.settings), zap.NewNop()).CreateIntelCache(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateIntelCache err = %v, wantErr %v", err, tt.wantErr)
			}
			switch c := c.(type) {
			case *cache.MemoryCache:
				c.Stop()
			case *cache.SQLiteCache:
				c.Stop()
			}
		})
	}
}

func TestCreateEmailRepository(t *testing.T) {
	ctx := context.Background()

	repo, err := NewStoreFactory(testConfig(nil), zap.NewNop()).CreateEmailRepository(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.(*store.MemoryStore); !ok {
		t.Errorf("default store = %T, want *store.MemoryStore", repo)
	}

	path := filepath.Join(t.TempDir(), "db", "emails.db")
	repo, err = NewStoreFactory(testConfig(map[string]any{"store.type": "sqlite", "store.sqlite_path": path}), zap.NewNop()).CreateEmailRepository(ctx)
	if err != nil {
		t.Fatal(err)
	}
	repo.(*store.SQLStore).Close()

	if _, err := NewStoreFactory(testConfig(map[string]any{"store.type": "mongo"}), zap.NewNop()).CreateEmailRepository(ctx); err == nil {
		t.Error("expected an error for an unknown store type")
	}
}

func TestCreateProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantNil  bool
		wantErr  bool
	}{
		{"static", false, false},
		{"http", false, false},
		{"none", true, false},
		{"whois", true, true},
	}
	for _, tt := range tests {
		p, err := NewIntelFactory(testConfig(map[string]any{"intel.provider": tt.provider}), zap.NewNop()).CreateProvider()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v", tt.provider, err)
		}
		if (p == nil) != tt.wantNil {
			t.Errorf("%s: provider = %v", tt.provider, p)
		}
	}
}

func TestCreateReviewer(t *testing.T) {
	ctx := context.Background()

	r, err := NewLLMFactory(testConfig(nil), zap.NewNop(), nil).CreateReviewer(ctx)
	if err != nil || r != nil {
		t.Errorf("disabled reviewer = %v, %v", r, err)
	}

	_, err = NewLLMFactory(testConfig(map[string]any{"llm.enabled": true, "llm.provider": "openai"}), zap.NewNop(), nil).CreateReviewer(ctx)
	if err == nil {
		t.Error("expected an error without an OpenAI key")
	}

	r, err = NewLLMFactory(testConfig(map[string]any{
		"llm.enabled":    true,
		"llm.provider":   "openai",
		"openai.api_key": "sk-test",
	}), zap.NewNop(), nil).CreateReviewer(ctx)
	if err != nil || r == nil {
		t.Errorf("openai reviewer = %v, %v", r, err)
	}

	if _, err := NewLLMFactory(testConfig(map[string]any{"llm.enabled": true, "llm.provider": "llama"}), zap.NewNop(), nil).CreateReviewer(ctx); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}

func TestCreateSources(t *testing.T) {
	if got := NewSourceFactory(testConfig(nil), zap.NewNop()).CreateSources(); len(got) != 0 {
		t.Errorf("default sources = %v, want none", got)
	}

	got := NewSourceFactory(testConfig(map[string]any{
		"ingest.eml_dir":      t.TempDir(),
		"ingest.imap.enabled": true,
		"ingest.imap.server":  "imap.example.com",
	}), zap.NewNop()).CreateSources()
	if len(got) != 2 {
		t.Fatalf("sources = %v, want 2", got)
	}
	if got[1].Name() != "imap:imap.example.com" {
		t.Errorf("imap source name = %q", got[1].Name())
	}
}
