// Package utils provides shared utilities for text, math, and logging.
package utils

import "strings"

// Truncate returns s truncated to maxLen bytes, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Preview returns a display excerpt for a search hit: the document excerpt if
// set, otherwise the content collapsed to single spaces and truncated.
func Preview(excerpt, content string, maxLen int) string {
	if excerpt != "" {
		return Truncate(excerpt, maxLen)
	}
	return Truncate(strings.Join(strings.Fields(content), " "), maxLen)
}
