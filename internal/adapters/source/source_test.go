package source

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emersion/go-imap/backend/memory"
	"github.com/emersion/go-imap/server"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/ports"
)

func TestEMLDirSource(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.eml":     "Message-ID: <one@example.org>\r\nSubject: first\r\n\r\nhello\r\n",
		"a.EML":     "Subject: no id\r\n\r\nhi\r\n",
		"notes.txt": "ignored",
		"c.eml.bak": "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.eml"), 0o700); err != nil {
		t.Fatal(err)
	}

	msgs, err := NewEMLDirSource(dir, zap.NewNop()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Fetch returned %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != "eml-a" {
		t.Errorf("first id = %q, want eml-a", msgs[0].ID)
	}
	if msgs[1].ID != "one@example.org" {
		t.Errorf("second id = %q, want the Message-ID", msgs[1].ID)
	}
	if !strings.Contains(string(msgs[1].Raw), "hello") {
		t.Errorf("raw = %q", msgs[1].Raw)
	}
}

func TestEMLDirSourceMissingDir(t *testing.T) {
	if _, err := NewEMLDirSource(filepath.Join(t.TempDir(), "nope"), zap.NewNop()).Fetch(context.Background()); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func startIMAPServer(t *testing.T) (host string, port int) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := server.New(memory.New())
	s.AllowInsecureAuth = true
	go s.Serve(l)
	t.Cleanup(func() { s.Close() })

	addr := l.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestIMAPSourceFetch(t *testing.T) {
	host, port := startIMAPServer(t)
	src := NewIMAPSource(IMAPConfig{
		Server:   host,
		Port:     port,
		Username: "username",
		Password: "password",
		Folders:  []string{"INBOX", "Missing"},
	}, zap.NewNop())

	msgs, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Fetch returned %d messages, want 1", len(msgs))
	}
	if msgs[0].ID == "" || strings.ContainsAny(msgs[0].ID, "<>") {
		t.Errorf("id = %q", msgs[0].ID)
	}
	if !strings.Contains(string(msgs[0].Raw), "Hi there") {
		t.Errorf("raw = %q", msgs[0].Raw)
	}
	if !strings.HasPrefix(src.Name(), "imap:") {
		t.Errorf("Name = %q", src.Name())
	}
}

func TestIMAPSourceKeepsPartialFolder(t *testing.T) {
	src := NewIMAPSource(IMAPConfig{Folders: []string{"INBOX", "Archive", "Spam"}}, zap.NewNop())

	fetched := map[string][]ports.RawMessage{
		"INBOX":   {{ID: "a"}},
		"Archive": {{ID: "b"}, {ID: "c"}},
	}
	msgs, err := src.collect(context.Background(), src.cfg.Folders, func(folder string) ([]ports.RawMessage, error) {
		switch folder {
		case "Archive":
			return fetched[folder], errors.New("connection reset mid-fetch")
		case "Spam":
			return nil, errors.New("no such folder")
		}
		return fetched[folder], nil
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	var ids []string
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	if strings.Join(ids, ",") != "a,b,c" {
		t.Errorf("ids = %v, want a,b,c", ids)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.collect(ctx, src.cfg.Folders, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("collect on cancelled ctx error = %v", err)
	}
}

func TestIMAPSourceBadLogin(t *testing.T) {
	host, port := startIMAPServer(t)
	src := NewIMAPSource(IMAPConfig{Server: host, Port: port, Username: "username", Password: "wrong"}, zap.NewNop())
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("expected login failure")
	}
}
