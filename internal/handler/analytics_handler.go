package handler

import (
	"net/http"

	"katalyst-be/internal/domain"
	"katalyst-be/internal/service"

	"go.uber.org/zap"
)

// AnalyticsHandler serves the funnel analytics and dashboard endpoints
type AnalyticsHandler struct {
	responder
	analytics service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics service.AnalyticsService, logger *zap.Logger, development bool) *AnalyticsHandler {
	return &AnalyticsHandler{
		responder: newResponder(logger, development),
		analytics: analytics,
	}
}

// GetAnalytics handles GET /api/admin/leads/analytics
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	filter, err := h.queryFilter(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	analytics, err := h.analytics.GetAnalytics(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Analytics retrieved successfully", analytics)
}

// GetDashboard handles GET /api/admin/dashboard
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.analytics.GetDashboard(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

func (h *AnalyticsHandler) queryFilter(r *http.Request) (domain.AnalyticsFilter, error) {
	filter := domain.AnalyticsFilter{
		EventID: r.URL.Query().Get("eventId"),
	}

	start, err := queryDate(r, "startDate")
	if err != nil {
		return filter, err
	}
	end, err := queryDate(r, "endDate")
	if err != nil {
		return filter, err
	}
	filter.StartDate = start
	filter.EndDate = end

	return filter, nil
}
