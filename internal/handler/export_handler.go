package handler

import (
	"net/http"
	"strconv"

	"katalyst-be/internal/domain"
	"katalyst-be/internal/service"

	"go.uber.org/zap"
)

// ExportHandler serves the CSV export endpoint
type ExportHandler struct {
	responder
	export service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(export service.ExportService, logger *zap.Logger, development bool) *ExportHandler {
	return &ExportHandler{
		responder: newResponder(logger, development),
		export:    export,
	}
}

// ExportLeads handles GET /api/admin/leads/export. The export filter is the
// narrow one: event, status and creation window.
func (h *ExportHandler) ExportLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.LeadFilter{
		EventID: q.Get("eventId"),
	}
	if status := q.Get("status"); status != "" {
		s := domain.LeadStatus(status)
		if !s.Valid() {
			h.respondValidation(w, r, "status must be one of registered, started, completed, dropped")
			return
		}
		filter.Status = s
	}

	start, err := queryDate(r, "startDate")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	end, err := queryDate(r, "endDate")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	filter.StartDate = start
	filter.EndDate = end

	result, err := h.export.ExportLeads(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.logger.Error("failed to write export response", zap.Error(err))
	}
}
