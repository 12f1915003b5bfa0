package textutil

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

// MaxNameLength is the default limit applied by SafeName.
const MaxNameLength = 100

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9 _\-]+`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// SafeName converts s into a filesystem-safe name containing only
// [A-Za-z0-9 _-]. Slashes become dashes, other unsafe characters are
// stripped, whitespace collapses to single spaces, and leading/trailing
// separators are trimmed. An empty result becomes "untitled". Names longer
// than MaxNameLength are truncated and suffixed with a short hash of the
// full sanitized name so truncation stays collision-free.
func SafeName(s string) string {
	return SafeNameMax(s, MaxNameLength)
}

// SafeNameMax is SafeName with an explicit length limit.
func SafeNameMax(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", "-")
	s = unsafeChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	s = strings.Trim(s, " -_")
	if s == "" {
		s = "untitled"
	}
	if len(s) > maxLen {
		prefix := strings.TrimRight(s[:maxLen-8], " ")
		s = prefix + "-" + ShortHash(s)
	}
	return s
}

// ShortHash returns the first six hex characters of the SHA-1 of s.
func ShortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:6]
}
