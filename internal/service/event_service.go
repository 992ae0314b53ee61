package service

import (
	"context"
	"strings"

	"katalyst-be/internal/domain"
	"katalyst-be/internal/repository"
	apperrors "katalyst-be/pkg/errors"
	"katalyst-be/pkg/redis"

	"go.uber.org/zap"
)

type eventService struct {
	events repository.EventRepository
	leads  repository.LeadRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewEventService creates a new event service
func NewEventService(events repository.EventRepository, leads repository.LeadRepository, cache *CacheService, logger *zap.Logger) EventService {
	return &eventService{
		events: events,
		leads:  leads,
		cache:  cache,
		logger: logger,
	}
}

// List returns all events, newest first
func (s *eventService) List(ctx context.Context) ([]*domain.Event, error) {
	key := s.cache.Keys().KeyEventsAll()

	var cached []*domain.Event
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	events, err := s.events.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve events", err)
	}

	s.cache.SetJSONAsync(key, events, redis.TTLEvents)
	return events, nil
}

// Get returns one event by code
func (s *eventService) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	key := s.cache.Keys().KeyEventByID(eventID)

	var cached domain.Event
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	event, err := s.events.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve event", err)
	}
	if event == nil {
		return nil, apperrors.NewNotFoundError("Event not found")
	}

	s.cache.SetJSONAsync(key, event, redis.TTLEventByID)
	return event, nil
}

// Create validates and persists a new event
func (s *eventService) Create(ctx context.Context, req *domain.CreateEventRequest, actorID string) (*domain.Event, error) {
	if err := validateCreateEvent(req); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:            strings.TrimSpace(req.Title),
		Description:      strings.TrimSpace(req.Description),
		Mode:             req.Mode,
		Location:         strings.TrimSpace(req.Location),
		Duration:         strings.TrimSpace(req.Duration),
		Deadline:         req.Deadline,
		Tags:             req.Tags,
		College:          strings.TrimSpace(req.College),
		City:             strings.TrimSpace(req.City),
		State:            strings.TrimSpace(req.State),
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		VerificationCode: req.VerificationCode,
		CreatedBy:        actorID,
	}
	if event.Location == "" {
		event.Location = "Online"
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}

	if err := s.events.Create(ctx, event); err != nil {
		if err == repository.ErrCodeSpaceExhausted {
			return nil, apperrors.NewConflictError("No event codes left for today")
		}
		return nil, apperrors.NewInternalError("Failed to create event", err)
	}

	s.invalidateEvent(ctx, event.EventID)
	s.logger.Info("event created",
		zap.String("event_id", event.EventID),
		zap.String("created_by", actorID))

	return event, nil
}

// Update applies a partial update to an event
func (s *eventService) Update(ctx context.Context, eventID string, req *domain.UpdateEventRequest) (*domain.Event, error) {
	if req.Mode != nil && !domain.ValidEventMode(*req.Mode) {
		return nil, apperrors.NewValidationError("Mode must be online or offline", nil)
	}
	if req.Tags != nil {
		if err := validateTags(req.Tags); err != nil {
			return nil, err
		}
	}

	event, err := s.events.Update(ctx, eventID, req)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to update event", err)
	}
	if event == nil {
		return nil, apperrors.NewNotFoundError("Event not found")
	}

	s.invalidateEvent(ctx, eventID)
	return event, nil
}

// Delete removes an event unless leads still reference it
func (s *eventService) Delete(ctx context.Context, eventID string) error {
	count, err := s.leads.CountByEvent(ctx, eventID)
	if err != nil {
		return apperrors.NewInternalError("Failed to check event leads", err)
	}
	if count > 0 {
		return apperrors.NewConflictError("Cannot delete event while leads reference it")
	}

	deleted, err := s.events.Delete(ctx, eventID)
	if err != nil {
		return apperrors.NewInternalError("Failed to delete event", err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("Event not found")
	}

	s.invalidateEvent(ctx, eventID)
	return nil
}

// MarkInterested bumps the interested counter
func (s *eventService) MarkInterested(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.events.IncrementInterested(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to mark interest", err)
	}
	if event == nil {
		return nil, apperrors.NewNotFoundError("Event not found")
	}

	s.invalidateEvent(ctx, eventID)
	return event, nil
}

// MarkCompleted bumps the completed counter when the verification code
// matches. A wrong code never mutates.
func (s *eventService) MarkCompleted(ctx context.Context, eventID, code string) (*domain.Event, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.NewValidationError("Verification code is required", nil)
	}

	existing, err := s.events.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve event", err)
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("Event not found")
	}

	event, ok, err := s.events.IncrementCompletedWithCode(ctx, eventID, code)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to mark event completed", err)
	}
	if !ok {
		return nil, apperrors.NewInvalidCodeError("Invalid event code")
	}

	s.invalidateEvent(ctx, eventID)
	return event, nil
}

// Stats returns the event plus a status breakdown of its leads
func (s *eventService) Stats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	key := s.cache.Keys().KeyEventStats(eventID)

	var cached domain.EventStats
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	event, err := s.events.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve event", err)
	}
	if event == nil {
		return nil, apperrors.NewNotFoundError("Event not found")
	}

	breakdown, err := s.leads.StatusBreakdown(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve event stats", err)
	}

	total := 0
	for _, count := range breakdown {
		total += count
	}

	stats := &domain.EventStats{
		Event:        event,
		TotalLeads:   total,
		StatusCounts: breakdown,
	}

	s.cache.SetJSONAsync(key, stats, redis.TTLEventStats)
	return stats, nil
}

func (s *eventService) invalidateEvent(ctx context.Context, eventID string) {
	keys := s.cache.Keys()
	s.cache.Invalidate(ctx,
		keys.KeyEventsAll(),
		keys.KeyEventByID(eventID),
		keys.KeyEventStats(eventID),
	)
}

func validateCreateEvent(req *domain.CreateEventRequest) error {
	details := map[string]interface{}{}

	if strings.TrimSpace(req.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(req.Description) == "" {
		details["description"] = "required"
	}
	if !domain.ValidEventMode(req.Mode) {
		details["mode"] = "must be online or offline"
	}
	if strings.TrimSpace(req.Duration) == "" {
		details["duration"] = "required"
	}
	if req.Deadline.IsZero() {
		details["deadline"] = "required"
	}
	if strings.TrimSpace(req.VerificationCode) == "" {
		details["verificationCode"] = "required"
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("Event validation failed", details)
	}
	return validateTags(req.Tags)
}

func validateTags(tags []string) error {
	for _, tag := range tags {
		if !domain.ValidEventTag(tag) {
			return apperrors.NewValidationError("Unknown event tag: "+tag, nil)
		}
	}
	return nil
}
