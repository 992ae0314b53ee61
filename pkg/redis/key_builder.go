package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Event key builders
func (kb *KeyBuilder) KeyEventsAll() string {
	return kb.BuildKey(KeyEventsAll)
}

func (kb *KeyBuilder) KeyEventByID(eventID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyEventByID, eventID))
}

func (kb *KeyBuilder) KeyEventStats(eventID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyEventStats, eventID))
}

// Lead analytics key builders
func (kb *KeyBuilder) KeyLeadAnalytics(fingerprint string) string {
	return kb.BuildKey(fmt.Sprintf(KeyLeadAnalytics, fingerprint))
}

func (kb *KeyBuilder) KeyDashboard() string {
	return kb.BuildKey(KeyDashboard)
}

// KeyCustom builds an arbitrary prefixed key
func (kb *KeyBuilder) KeyCustom(format string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(format, args...))
}
