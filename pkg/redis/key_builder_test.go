package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeyBuilder_Prefix(t *testing.T) {
	tests := []struct {
		environment string
		prefix      string
	}{
		{"production", "prod"},
		{"development", "staging"},
		{"staging", "staging"},
		{"test", "staging"},
		{"", "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			kb := NewKeyBuilder(tt.environment)
			assert.Equal(t, tt.prefix, kb.GetPrefix())
		})
	}
}

func TestKeyBuilder_Keys(t *testing.T) {
	kb := NewKeyBuilder("production")

	assert.Equal(t, "prod:events:all", kb.KeyEventsAll())
	assert.Equal(t, "prod:events:KAT-20260830-001", kb.KeyEventByID("KAT-20260830-001"))
	assert.Equal(t, "prod:events:KAT-20260830-001:stats", kb.KeyEventStats("KAT-20260830-001"))
	assert.Equal(t, "prod:leads:analytics:all:-:-", kb.KeyLeadAnalytics("all:-:-"))
	assert.Equal(t, "prod:admin:dashboard", kb.KeyDashboard())
	assert.Equal(t, "prod:custom:42", kb.KeyCustom("custom:%d", 42))
}
