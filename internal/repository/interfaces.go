package repository

import (
	"context"

	"katalyst-be/internal/domain"
)

// EventRepository defines the interface for event data operations
type EventRepository interface {
	// Create persists a new event, assigning the next free KAT code for
	// today. Counters start at zero.
	Create(ctx context.Context, event *domain.Event) error

	// GetByEventID retrieves an event by its code. Returns nil, nil when
	// no event matches.
	GetByEventID(ctx context.Context, eventID string) (*domain.Event, error)

	// List retrieves all events, newest first
	List(ctx context.Context) ([]*domain.Event, error)

	// ListRecent retrieves the most recently created events
	ListRecent(ctx context.Context, limit int) ([]*domain.Event, error)

	// Update applies a partial update. Returns nil, nil when no event matches.
	Update(ctx context.Context, eventID string, req *domain.UpdateEventRequest) (*domain.Event, error)

	// Delete removes an event by code. Returns false when no event matched.
	Delete(ctx context.Context, eventID string) (bool, error)

	// IncrementInterested atomically bumps the interested counter
	IncrementInterested(ctx context.Context, eventID string) (*domain.Event, error)

	// IncrementRegistered atomically bumps the registered counter
	IncrementRegistered(ctx context.Context, eventID string) (*domain.Event, error)

	// IncrementCompletedWithCode bumps the completed counter only when the
	// supplied verification code matches; reports whether it incremented.
	IncrementCompletedWithCode(ctx context.Context, eventID, code string) (*domain.Event, bool, error)

	// Count returns the total number of events
	Count(ctx context.Context) (int, error)
}

// LeadRepository defines the interface for lead data operations
type LeadRepository interface {
	// Create persists a new lead together with its initial status-history
	// entry in one transaction, assigning the next free LEAD code for today.
	Create(ctx context.Context, lead *domain.Lead) error

	// GetByLeadID retrieves a lead with full history and notes. Returns
	// nil, nil when no lead matches.
	GetByLeadID(ctx context.Context, leadID string) (*domain.Lead, error)

	// List retrieves one page of leads matching the filter plus the total
	// match count.
	List(ctx context.Context, filter domain.LeadFilter, sort domain.LeadSort, offset, limit int) ([]*domain.Lead, int, error)

	// ListWithEvents retrieves all leads matching the filter joined to
	// their event, for export.
	ListWithEvents(ctx context.Context, filter domain.LeadFilter) ([]*domain.LeadWithEvent, error)

	// ListRecentSummaries retrieves condensed rows for the newest leads
	ListRecentSummaries(ctx context.Context, limit int) ([]domain.LeadSummary, error)

	// UpdateStatus transitions a lead, appending the history entry and
	// applying the started/completed side effects, all inside a
	// transaction that locks the lead row.
	UpdateStatus(ctx context.Context, leadID string, status domain.LeadStatus, changedBy, notes string) (*domain.Lead, error)

	// AddNote appends an admin note. Returns nil, nil when no lead matches.
	AddNote(ctx context.Context, leadID, note, addedBy string) (*domain.Lead, error)

	// CountByEvent returns how many leads reference an event
	CountByEvent(ctx context.Context, eventID string) (int, error)

	// StatusBreakdown groups an event's leads by status
	StatusBreakdown(ctx context.Context, eventID string) (map[string]int, error)
}

// AnalyticsRepository defines the aggregation queries behind funnel analytics
type AnalyticsRepository interface {
	// StatusCounts groups matching leads by status
	StatusCounts(ctx context.Context, filter domain.AnalyticsFilter) (map[string]int, error)

	// DailyTrends counts leads per (creation day, status), date ascending
	DailyTrends(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.DailyTrend, error)

	// CollegeBreakdown returns per-college totals and completed counts,
	// highest volume first, at most limit rows.
	CollegeBreakdown(ctx context.Context, filter domain.AnalyticsFilter, limit int) ([]domain.CollegeBreakdown, error)

	// FieldBreakdown returns per-field lead counts, highest first, at most
	// limit rows.
	FieldBreakdown(ctx context.Context, filter domain.AnalyticsFilter, limit int) ([]domain.FieldBreakdown, error)

	// DashboardCounts returns total leads and completed leads
	DashboardCounts(ctx context.Context) (total int, completed int, err error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Event     EventRepository
	Lead      LeadRepository
	Analytics AnalyticsRepository
}
