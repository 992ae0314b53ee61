package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"katalyst-be/pkg/database"
	"katalyst-be/pkg/redis"

	"go.uber.org/zap"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db     *database.PostgresDB
	redis  *redis.Client
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Version      string            `json:"version"`
	Service      string            `json:"service"`
	Dependencies map[string]string `json:"dependencies"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := "healthy"
	deps := map[string]string{}

	if err := h.db.Health(ctx); err != nil {
		h.logger.Error("database health check failed", zap.Error(err))
		deps["postgres"] = "unhealthy"
		status = "degraded"
	} else {
		deps["postgres"] = "healthy"
	}

	if h.redis == nil {
		deps["redis"] = "disabled"
	} else if err := h.redis.Health(ctx); err != nil {
		h.logger.Warn("redis health check failed", zap.Error(err))
		deps["redis"] = "unhealthy"
		status = "degraded"
	} else {
		deps["redis"] = "healthy"
	}

	response := HealthResponse{
		Status:       status,
		Timestamp:    time.Now().UTC(),
		Version:      "1.0.0",
		Service:      "katalyst-be",
		Dependencies: deps,
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode health check response", zap.Error(err))
	}
}
