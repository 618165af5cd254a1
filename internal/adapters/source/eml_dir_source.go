package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/ports"
)

// EMLDirSource reads *.eml files from a directory
type EMLDirSource struct {
	dir    string
	logger *zap.Logger
}

// NewEMLDirSource creates a directory source
func NewEMLDirSource(dir string, logger *zap.Logger) *EMLDirSource {
	return &EMLDirSource{dir: dir, logger: logger}
}

// Name identifies the source in logs and metrics
func (s *EMLDirSource) Name() string {
	return "eml:" + s.dir
}

// Fetch returns every .eml file of the directory in name order
func (s *EMLDirSource) Fetch(ctx context.Context) ([]ports.RawMessage, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []ports.RawMessage
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".eml") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.logger.Warn("Failed to read message file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		out = append(out, ports.RawMessage{
			ID:  fileMessageID(raw, entry.Name()),
			Raw: raw,
		})
	}
	return out, nil
}

// fileMessageID uses the Message-ID header, falling back to the file name
func fileMessageID(raw []byte, name string) string {
	if mr, err := mail.CreateReader(bytes.NewReader(raw)); err == nil {
		defer mr.Close()
		if id, err := mr.Header.MessageID(); err == nil && id != "" {
			return id
		}
	}
	return "eml-" + strings.TrimSuffix(name, filepath.Ext(name))
}
