package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"katalyst-be/internal/domain"
	apperrors "katalyst-be/pkg/errors"

	"go.uber.org/zap"
)

// Code shapes for the public identifiers in URL paths
var (
	eventCodePattern = regexp.MustCompile(`^KAT-\d{8}-\d{3}$`)
	leadCodePattern  = regexp.MustCompile(`^LEAD-\d{4}-\d{2}-\d{2}-\d{3}$`)
)

// successResponse is the envelope every successful JSON endpoint returns
type successResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// errorResponse is the envelope for failures. Error detail is only filled in
// development.
type errorResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Error   string                 `json:"error,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// responder renders the shared response envelopes. Handlers embed it.
type responder struct {
	logger      *zap.Logger
	development bool
}

func newResponder(logger *zap.Logger, development bool) responder {
	return responder{logger: logger, development: development}
}

func (rs responder) respondJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(successResponse{
		Success: true,
		Message: message,
		Data:    data,
	}); err != nil {
		rs.logger.Error("failed to encode response", zap.Error(err))
	}
}

// respondError maps any error onto the failure envelope via its AppError
func (rs responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.AsAppError(err)

	if appErr.StatusCode >= http.StatusInternalServerError {
		rs.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err))
	}

	resp := errorResponse{
		Success: false,
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if rs.development && appErr.Internal != nil {
		resp.Error = appErr.Internal.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		rs.logger.Error("failed to encode error response", zap.Error(err))
	}
}

func (rs responder) respondValidation(w http.ResponseWriter, r *http.Request, message string) {
	rs.respondError(w, r, apperrors.NewValidationError(message, nil))
}

// queryInt parses an integer query parameter, zero when absent or malformed
func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

// queryDate parses a date query parameter as YYYY-MM-DD or RFC 3339
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.NewValidationError(name+" must be a date (YYYY-MM-DD)", nil)
	}
	return &t, nil
}

// sortFields is the public sort vocabulary; the repository maps it onto columns
var sortFields = map[string]bool{
	"createdAt":    true,
	"lastActivity": true,
	"status":       true,
	"studentName":  true,
}

// querySort parses sortBy/sortOrder, falling back to newest first
func querySort(r *http.Request) (domain.LeadSort, error) {
	sort := domain.DefaultLeadSort()

	if field := r.URL.Query().Get("sortBy"); field != "" {
		if !sortFields[field] {
			return sort, apperrors.NewValidationError("sortBy must be one of createdAt, lastActivity, status, studentName", nil)
		}
		sort.Field = field
	}
	switch order := r.URL.Query().Get("sortOrder"); order {
	case "", "desc":
		sort.Desc = true
	case "asc":
		sort.Desc = false
	default:
		return sort, apperrors.NewValidationError("sortOrder must be asc or desc", nil)
	}
	return sort, nil
}

// queryLeadFilter parses the shared lead filter parameters
func queryLeadFilter(r *http.Request) (domain.LeadFilter, error) {
	q := r.URL.Query()

	filter := domain.LeadFilter{
		EventID:      q.Get("eventId"),
		College:      q.Get("college"),
		Year:         q.Get("year"),
		FieldOfStudy: q.Get("fieldOfStudy"),
		Search:       q.Get("search"),
	}

	if status := q.Get("status"); status != "" {
		s := domain.LeadStatus(status)
		if !s.Valid() {
			return filter, apperrors.NewValidationError("status must be one of registered, started, completed, dropped", nil)
		}
		filter.Status = s
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
