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

// LeadHandler serves the funnel endpoints
type LeadHandler struct {
	responder
	leads service.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leads service.LeadService, logger *zap.Logger, development bool) *LeadHandler {
	return &LeadHandler{
		responder: newResponder(logger, development),
		leads:     leads,
	}
}

// Register handles POST /api/events/{eventId}/register
func (h *LeadHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !eventCodePattern.MatchString(eventID) {
		h.respondValidation(w, r, "Invalid event ID format")
		return
	}

	var req domain.RegisterLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondValidation(w, r, "Invalid request body")
		return
	}

	lead, err := h.leads.Register(r.Context(), eventID, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, "Lead registered successfully", lead)
}

// List handles GET /api/admin/leads
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := queryLeadFilter(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	sort, err := querySort(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	page, err := h.leads.List(r.Context(), filter, sort, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Leads retrieved successfully", page)
}

// ListForEvent handles GET /api/admin/events/{eventId}/leads
func (h *LeadHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !eventCodePattern.MatchString(eventID) {
		h.respondValidation(w, r, "Invalid event ID format")
		return
	}

	filter, err := queryLeadFilter(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	sort, err := querySort(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	page, err := h.leads.ListForEvent(r.Context(), eventID, filter, sort, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Event leads retrieved successfully", page)
}

// Get handles GET /api/admin/leads/{leadId}
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	leadID, ok := h.leadID(w, r)
	if !ok {
		return
	}

	lead, err := h.leads.Get(r.Context(), leadID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Lead retrieved successfully", lead)
}

// UpdateStatus handles PATCH /api/admin/leads/{leadId}/status
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	leadID, ok := h.leadID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondValidation(w, r, "Invalid request body")
		return
	}

	lead, err := h.leads.UpdateStatus(r.Context(), leadID, req.Status, middleware.ActorID(r.Context()), req.Notes)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, "Lead status updated successfully", lead)
}

// AddNote handles POST /api/admin/leads/{leadId}/notes
func (h *LeadHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	leadID, ok := h.leadID(w, r)
	if !ok {
		return
	}

	var req domain.AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondValidation(w, r, "Invalid request body")
		return
	}

	lead, err := h.leads.AddNote(r.Context(), leadID, req.Note, middleware.ActorID(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, "Note added successfully", lead)
}

// leadID extracts and validates the lead code path parameter
func (h *LeadHandler) leadID(w http.ResponseWriter, r *http.Request) (string, bool) {
	leadID := chi.URLParam(r, "leadId")
	if !leadCodePattern.MatchString(leadID) {
		h.respondValidation(w, r, "Invalid lead ID format")
		return "", false
	}
	return leadID, true
}
