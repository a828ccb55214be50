package tools

import (
	"strings"
	"testing"
)

func TestTruncateToolOutput_NoTruncation(t *testing.T) {
	s := "short output"
	if got := TruncateToolOutput(s, 0); got != s {
		t.Errorf("maxRunes=0 should not truncate, got %q", got)
	}
	if got := TruncateToolOutput(s, -1); got != s {
		t.Errorf("maxRunes<0 should not truncate, got %q", got)
	}
	if got := TruncateToolOutput(s, 100); got != s {
		t.Errorf("under cap should not truncate, got %q", got)
	}
}

func TestTruncateToolOutput_Truncates(t *testing.T) {
	long := strings.Repeat("x", 500)
	maxRunes := 200

	got := TruncateToolOutput(long, maxRunes)
	if len([]rune(got)) > maxRunes {
		t.Errorf("truncated output %d runes, want <= %d", len([]rune(got)), maxRunes)
	}
	if !strings.Contains(got, "output truncated") {
		t.Errorf("missing truncation suffix: %q", got)
	}
	if !strings.Contains(got, "500 runes") {
		t.Errorf("suffix should report total rune count: %q", got)
	}
}

func TestTruncateToolOutput_Unicode(t *testing.T) {
	s := strings.Repeat("é", 200)
	got := TruncateToolOutput(s, 50)
	if len([]rune(got)) > 50 {
		t.Errorf("got %d runes, want <= 50", len([]rune(got)))
	}
}
