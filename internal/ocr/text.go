package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^[ \t]*[_\-=]{3,}[ \t]*$`)
)

// Normalize folds compatibility characters (NFKC), collapses noisy
// whitespace and drops ruler lines. Line breaks are kept; runs of blank lines
// collapse into one.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var failureSentinels = []string{
	"ocr processing failed",
	"decompression bomb",
	"exceeds limit",
}

// IsFailureText reports whether the service put an error message where the
// document text should be.
func IsFailureText(text string) bool {
	lower := strings.ToLower(text)
	for _, s := range failureSentinels {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// NormalizeBase64 strips a data-URL prefix and all whitespace.
func NormalizeBase64(input string) string {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "data:") {
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:]
		} else {
			raw = ""
		}
	}
	return strings.Join(strings.Fields(raw), "")
}
