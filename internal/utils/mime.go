package utils

import (
	"bytes"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// ParseEmail parses a raw MIME message. HTML-only bodies are converted to text.
func ParseEmail(raw []byte) (*core.ParsedEmail, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIME message: %w", err)
	}

	parsed := &core.ParsedEmail{
		MessageID: strings.Trim(env.GetHeader("Message-ID"), "<> "),
		From:      env.GetHeader("From"),
		ReplyTo:   env.GetHeader("Reply-To"),
		Subject:   env.GetHeader("Subject"),
		Body:      env.Text,
		Headers:   make(map[string][]string),
	}
	if parsed.Body == "" {
		parsed.Body = env.HTML
	}
	for _, key := range env.GetHeaderKeys() {
		parsed.Headers[key] = env.GetHeaderValues(key)
	}
	if date := env.GetHeader("Date"); date != "" {
		if t, err := mail.ParseDate(date); err == nil {
			parsed.Date = t
		}
	}

	return parsed, nil
}

// HasEnvelope reports whether the parse found at least one of the headers a
// real message carries. Pasted text whose first line looks like "Key: value"
// parses without error but has none of them.
func HasEnvelope(parsed *core.ParsedEmail) bool {
	if parsed == nil {
		return false
	}
	if parsed.From != "" || parsed.Subject != "" || parsed.MessageID != "" || !parsed.Date.IsZero() {
		return true
	}
	return headerValue(parsed, "To") != ""
}

// ClassificationText is the text the classifier scores. Plain messages and
// pasted text are scored as-is. When the body is encoded (base64,
// quoted-printable, HTML or multipart) the original header block is kept and
// the body is replaced by its decoded text.
func ClassificationText(raw string, parsed *core.ParsedEmail) string {
	if !HasEnvelope(parsed) || strings.TrimSpace(parsed.Body) == "" || !encodedBody(parsed) {
		return raw
	}
	return headerBlock(raw) + "\n\n" + parsed.Body
}

func encodedBody(parsed *core.ParsedEmail) bool {
	ct := strings.ToLower(headerValue(parsed, "Content-Type"))
	if strings.HasPrefix(ct, "multipart/") || strings.HasPrefix(ct, "text/html") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(headerValue(parsed, "Content-Transfer-Encoding"))) {
	case "base64", "quoted-printable":
		return true
	}
	return false
}

// headerBlock returns raw up to the first blank line
func headerBlock(raw string) string {
	end := len(raw)
	for _, sep := range []string{"\r\n\r\n", "\n\n"} {
		if i := strings.Index(raw, sep); i >= 0 && i < end {
			end = i
		}
	}
	return raw[:end]
}

func headerValue(parsed *core.ParsedEmail, name string) string {
	for key, values := range parsed.Headers {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
