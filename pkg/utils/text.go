// Package utils provides shared utilities for text, math, and logging.
package utils

import "strings"

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateAtSentence truncates s to at most maxLen characters, backing off to
// the last sentence boundary (".") when that boundary lies past minFraction
// of the available space. Otherwise the raw truncated slice is returned.
func TruncateAtSentence(s string, maxLen int, minFraction float64) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, "."); idx >= int(float64(maxLen)*minFraction) {
		return cut[:idx+1]
	}
	return cut
}
