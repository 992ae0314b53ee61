package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	AuthJWTSecret  string
	Environment    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		AuthJWTSecret:  getEnv("AUTH_JWT_SECRET", ""),
		Environment:    getEnv("ENVIRONMENT", "production"),
	}, nil
}

// IsDevelopment reports whether the app runs in a development context.
// Error detail is only surfaced to clients when this is true.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
