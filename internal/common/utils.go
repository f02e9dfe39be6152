package common

import "strings"

// NormalizeLocation returns the cache key for a location name:
// trimmed, lower-cased, with inner whitespace collapsed to single spaces.
func NormalizeLocation(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// MaskSecret keeps the last four characters of s and masks the rest.
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
