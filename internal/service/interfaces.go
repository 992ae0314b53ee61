package service

import (
	"context"

	"katalyst-be/internal/domain"
)

// EventService defines event registry operations
type EventService interface {
	// List returns all events, newest first
	List(ctx context.Context) ([]*domain.Event, error)

	// Get returns one event by code
	Get(ctx context.Context, eventID string) (*domain.Event, error)

	// Create validates and persists a new event under a fresh code
	Create(ctx context.Context, req *domain.CreateEventRequest, actorID string) (*domain.Event, error)

	// Update applies a partial update to an event
	Update(ctx context.Context, eventID string, req *domain.UpdateEventRequest) (*domain.Event, error)

	// Delete removes an event; blocked while leads reference it
	Delete(ctx context.Context, eventID string) error

	// MarkInterested bumps the interested counter
	MarkInterested(ctx context.Context, eventID string) (*domain.Event, error)

	// MarkCompleted bumps the completed counter when the verification code matches
	MarkCompleted(ctx context.Context, eventID, code string) (*domain.Event, error)

	// Stats returns the event plus its lead status breakdown
	Stats(ctx context.Context, eventID string) (*domain.EventStats, error)
}

// LeadService defines the funnel controller operations
type LeadService interface {
	// Register creates a lead for an event when a student expresses
	// interest, and bumps the event's registered counter.
	Register(ctx context.Context, eventID string, req *domain.RegisterLeadRequest) (*domain.Lead, error)

	// List returns a filtered, sorted page of leads
	List(ctx context.Context, filter domain.LeadFilter, sort domain.LeadSort, page, limit int) (*domain.LeadPage, error)

	// ListForEvent scopes the listing to one event and adds its status breakdown
	ListForEvent(ctx context.Context, eventID string, filter domain.LeadFilter, sort domain.LeadSort, page, limit int) (*domain.EventLeadPage, error)

	// Get returns one lead with full history and notes
	Get(ctx context.Context, leadID string) (*domain.Lead, error)

	// UpdateStatus is the only sanctioned path to move a lead through the funnel
	UpdateStatus(ctx context.Context, leadID string, status domain.LeadStatus, actorID, notes string) (*domain.Lead, error)

	// AddNote attaches an admin note to a lead
	AddNote(ctx context.Context, leadID, note, actorID string) (*domain.Lead, error)
}

// AnalyticsService computes funnel analytics and the admin dashboard
type AnalyticsService interface {
	// GetAnalytics aggregates the conversion funnel over matching leads
	GetAnalytics(ctx context.Context, filter domain.AnalyticsFilter) (*domain.LeadAnalytics, error)

	// GetDashboard returns the admin overview with recent activity
	GetDashboard(ctx context.Context) (*domain.Dashboard, error)
}

// ExportResult is a rendered CSV download
type ExportResult struct {
	Filename string
	Data     []byte
}

// ExportService renders matching leads as a CSV download
type ExportService interface {
	// ExportLeads flattens matching leads joined with their events.
	// Fails with not_found when nothing matches; an empty file is never
	// produced.
	ExportLeads(ctx context.Context, filter domain.LeadFilter) (*ExportResult, error)
}

// Services aggregates all service interfaces
type Services struct {
	Event     EventService
	Lead      LeadService
	Analytics AnalyticsService
	Export    ExportService
}
