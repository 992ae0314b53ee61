package handler

import (
	"encoding/json"
	"net/http"

	"katalyst-be/internal/domain"
	"katalyst-be/internal/middleware"
	"katalyst-be/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EventHandler serves the event registry endpoints
type EventHandler struct {
	responder
	events service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(events service.EventService, logger *zap.Logger, development bool) *EventHandler {
	return &EventHandler{
		responder: newResponder(logger, development),
		events:    events,
	}
}

// List handles GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Events retrieved successfully", events)
}

// Get handles GET /api/events/{eventId}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	event, err := h.events.Get(r.Context(), eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Event retrieved successfully", event)
}

// Create handles POST /api/admin/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondValidation(w, r, "Invalid request body")
		return
	}

	event, err := h.events.Create(r.Context(), &req, middleware.ActorID(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, "Event created successfully", event)
}

// Update handles PUT /api/admin/events/{eventId}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondValidation(w, r, "Invalid request body")
		return
	}

	event, err := h.events.Update(r.Context(), eventID, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Event updated successfully", event)
}

// Delete handles DELETE /api/admin/events/{eventId}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	if err := h.events.Delete(r.Context(), eventID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Event deleted successfully", nil)
}

// MarkInterested handles POST /api/events/{eventId}/interested
func (h *EventHandler) MarkInterested(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	event, err := h.events.MarkInterested(r.Context(), eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Interest recorded", event)
}

// MarkCompleted handles POST /api/events/{eventId}/complete
func (h *EventHandler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondValidation(w, r, "Invalid request body")
		return
	}

	event, err := h.events.MarkCompleted(r.Context(), eventID, req.Code)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Event completion recorded", event)
}

// Stats handles GET /api/admin/events/{eventId}/stats
func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	stats, err := h.events.Stats(r.Context(), eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Event stats retrieved successfully", stats)
}

// eventID extracts and validates the event code path parameter
func (h *EventHandler) eventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := chi.URLParam(r, "eventId")
	if !eventCodePattern.MatchString(eventID) {
		h.respondValidation(w, r, "Invalid event ID format")
		return "", false
	}
	return eventID, true
}
