package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPromptRuntimeBlock(t *testing.T) {
	now := time.Date(2026, 8, 28, 18, 45, 0, 0, time.UTC)
	got := BuildSystemPrompt("Be helpful.", now, time.UTC, "")

	assert.Contains(t, got, "Be helpful.")
	assert.Contains(t, got, "== RUNTIME ==")
	assert.Contains(t, got, "Friday, 28 August 2026")
	assert.Contains(t, got, "18:45")
	assert.Contains(t, got, "UTC")
}

func TestBuildSystemPromptLocalizesTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 23:30 UTC on the 27th is already the 28th in BST.
	now := time.Date(2026, 8, 27, 23, 30, 0, 0, time.UTC)
	got := BuildSystemPrompt("p", now, loc, "")
	assert.Contains(t, got, "Friday, 28 August 2026")
	assert.Contains(t, got, "00:30")
}

func TestBuildSystemPromptNilLocationDefaultsUTC(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	got := BuildSystemPrompt("p", now, nil, "")
	assert.Contains(t, got, "UTC")
}

func TestBuildSystemPromptAppendsKnowledge(t *testing.T) {
	got := BuildSystemPrompt("p", time.Now(), time.UTC, "REFERENCE INFORMATION:\n## Hours\n6-10")
	assert.Contains(t, got, "REFERENCE INFORMATION")
	assert.Contains(t, got, "## Hours")
}
