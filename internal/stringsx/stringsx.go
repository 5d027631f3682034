package stringsx

import (
	"strings"
	"unicode/utf8"
)

// Clip returns at most max runes of s.
// If max <= 0, an empty string is returned.
func Clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// Preview clips s to max runes and marks the cut with "...".
func Preview(s string, max int) string {
	clipped := Clip(s, max)
	if clipped == s {
		return s
	}
	return clipped + "..."
}

// IsEmpty reports whether s is empty after trimming spaces.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}
