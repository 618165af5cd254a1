// Package utils holds text and MIME helpers shared by the classifier path
// and the LLM reviewers.
package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// TruncationMarker is appended to text cut by TruncateText
const TruncationMarker = "\n[... Content truncated due to size limits ...]"

var urlHostPattern = regexp.MustCompile(`(?i)\bhttps?://([a-z0-9][a-z0-9.\-]*[a-z0-9])`)

// TextProcessor bounds and cleans message text before it is scored or sent
// to a model
type TextProcessor struct {
	logger *zap.Logger
}

func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProcessor{logger: logger}
}

// TruncateText cuts text to at most maxSize bytes on a rune boundary and
// appends TruncationMarker. maxSize <= 0 means no limit.
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}
	cut := maxSize
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	tp.logger.Debug("Truncated message text",
		zap.Int("from_bytes", len(text)),
		zap.Int("to_bytes", cut))
	return text[:cut] + TruncationMarker
}

// SanitizeUTF8 drops invalid UTF-8 sequences
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	clean := strings.ToValidUTF8(text, "")
	tp.logger.Debug("Dropped invalid UTF-8", zap.Int("bytes_removed", len(text)-len(clean)))
	return clean
}

// ProcessText truncates then sanitizes
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.SanitizeUTF8(tp.TruncateText(text, maxSize))
}

// ExtractURLHosts returns the lower-cased hosts of http(s) links, first
// occurrence order, without duplicates
func ExtractURLHosts(text string) []string {
	matches := urlHostPattern.FindAllStringSubmatch(text, -1)
	hosts := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		host := strings.ToLower(m[1])
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		hosts = append(hosts, host)
	}
	return hosts
}
