package filter

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// HeaderNames are the headers written onto filtered mail
type HeaderNames struct {
	Verdict    string
	Confidence string
	Rules      string
}

// DefaultHeaderNames are used when none are configured
var DefaultHeaderNames = HeaderNames{
	Verdict:    "X-Phish-Verdict",
	Confidence: "X-Phish-Confidence",
	Rules:      "X-Phish-Rules",
}

const analysisErrorHeader = "X-Phish-Analysis-Error"

// annotate returns raw with the report headers prepended. Headers of the same
// names already present are dropped so a sender cannot pre-set them. When
// subjectPrefix is non-empty the Subject is prefixed once.
func annotate(raw []byte, report *core.Report, names HeaderNames, analysisErr error, subjectPrefix string) []byte {
	header, body, sep := splitMessage(raw)

	var out bytes.Buffer
	if report != nil {
		fmt.Fprintf(&out, "%s: %s\r\n", names.Verdict, report.Result.Verdict)
		fmt.Fprintf(&out, "%s: %.0f\r\n", names.Confidence, report.Result.Confidence)
		fmt.Fprintf(&out, "%s: %s\r\n", names.Rules, strings.Join(report.Result.RuleIDs(), ","))
	}
	if analysisErr != nil {
		fmt.Fprintf(&out, "%s: %s\r\n", analysisErrorHeader, sanitizeHeaderValue(analysisErr.Error()))
	}

	drop := map[string]bool{
		strings.ToLower(names.Verdict):       true,
		strings.ToLower(names.Confidence):    true,
		strings.ToLower(names.Rules):         true,
		strings.ToLower(analysisErrorHeader): true,
	}
	subjectSeen := false
	for _, field := range splitFields(header) {
		name := strings.ToLower(strings.TrimSpace(fieldName(field)))
		if drop[name] {
			continue
		}
		if name == "subject" && subjectPrefix != "" && !subjectSeen {
			subjectSeen = true
			field = prefixSubject(field, subjectPrefix)
		}
		out.WriteString(field)
	}
	if subjectPrefix != "" && !subjectSeen {
		fmt.Fprintf(&out, "Subject: %s\r\n", encodeHeaderValue(strings.TrimSpace(subjectPrefix)))
	}

	out.WriteString(sep)
	out.Write(body)
	return out.Bytes()
}

// splitMessage splits a message into its header block (with the trailing
// line ending of the last field), the blank-line separator and the body
func splitMessage(raw []byte) (header string, body []byte, sep string) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i != -1 {
		return string(raw[:i+2]), raw[i+4:], "\r\n"
	}
	if i := bytes.Index(raw, []byte("\n\n")); i != -1 {
		return string(raw[:i+1]), raw[i+2:], "\n"
	}
	// no body separator, treat everything as header
	h := string(raw)
	if h != "" && !strings.HasSuffix(h, "\n") {
		h += "\r\n"
	}
	return h, nil, "\r\n"
}

// splitFields splits a header block into fields, keeping folded continuation lines with their field
func splitFields(header string) []string {
	var fields []string
	for _, line := range strings.SplitAfter(header, "\n") {
		if line == "" {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && len(fields) > 0 {
			fields[len(fields)-1] += line
			continue
		}
		fields = append(fields, line)
	}
	return fields
}

func fieldName(field string) string {
	if i := strings.IndexByte(field, ':'); i != -1 {
		return field[:i]
	}
	return ""
}

func prefixSubject(field, prefix string) string {
	i := strings.IndexByte(field, ':')
	value := strings.TrimSpace(unfold(field[i+1:]))
	decoded, err := new(mime.WordDecoder).DecodeHeader(value)
	if err != nil {
		decoded = value
	}
	if strings.HasPrefix(decoded, prefix) {
		return field
	}
	return field[:i] + ": " + encodeHeaderValue(prefix+decoded) + "\r\n"
}

func unfold(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "")
	return strings.ReplaceAll(value, "\n", "")
}

func encodeHeaderValue(value string) string {
	for _, r := range value {
		if r > 127 {
			return mime.QEncoding.Encode("utf-8", value)
		}
	}
	return value
}

func sanitizeHeaderValue(value string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
}
