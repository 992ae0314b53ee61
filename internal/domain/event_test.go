package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidEventTag(t *testing.T) {
	for _, tag := range EventTags {
		assert.True(t, ValidEventTag(tag), tag)
	}
	assert.False(t, ValidEventTag("music"))
	assert.False(t, ValidEventTag("Education"))
	assert.False(t, ValidEventTag(""))
}

func TestValidEventMode(t *testing.T) {
	assert.True(t, ValidEventMode(ModeOnline))
	assert.True(t, ValidEventMode(ModeOffline))
	assert.False(t, ValidEventMode("hybrid"))
	assert.False(t, ValidEventMode(""))
}

func TestEvent_VerificationCodeNeverSerialized(t *testing.T) {
	event := Event{
		EventID:          "KAT-20260830-001",
		Title:            "Campus Workshop",
		Mode:             ModeOffline,
		Deadline:         time.Now(),
		VerificationCode: "SECRET123",
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	assert.NotContains(t, string(payload), "SECRET123")
	assert.Contains(t, string(payload), "KAT-20260830-001")
}
