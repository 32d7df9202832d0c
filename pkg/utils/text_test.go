package utils

import "testing"

func TestTruncate(t *testing.T) {
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("anything", 0); got != "anything" {
		t.Errorf("Truncate with maxLen 0 = %q", got)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("an excerpt", "full content", 100); got != "an excerpt" {
		t.Errorf("Preview = %q, want excerpt", got)
	}
	if got := Preview("", "line one\n\n  line   two", 100); got != "line one line two" {
		t.Errorf("Preview = %q", got)
	}
}
