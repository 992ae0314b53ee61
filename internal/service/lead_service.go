package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"katalyst-be/internal/domain"
	"katalyst-be/internal/repository"
	apperrors "katalyst-be/pkg/errors"

	"go.uber.org/zap"
)

const (
	defaultPage      = 1
	defaultPageSize  = 20
	maxPageSize      = 100
	maxStatusNoteLen = 200
	maxAdminNoteLen  = 500
)

type leadService struct {
	leads  repository.LeadRepository
	events repository.EventRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(leads repository.LeadRepository, events repository.EventRepository, cache *CacheService, logger *zap.Logger) LeadService {
	return &leadService{
		leads:  leads,
		events: events,
		cache:  cache,
		logger: logger,
	}
}

// Register creates a lead when a student expresses interest in an event
func (s *leadService) Register(ctx context.Context, eventID string, req *domain.RegisterLeadRequest) (*domain.Lead, error) {
	if err := validateStudentInfo(&req.StudentInfo); err != nil {
		return nil, err
	}

	event, err := s.events.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve event", err)
	}
	if event == nil {
		return nil, apperrors.NewNotFoundError("Event not found")
	}

	lead := &domain.Lead{
		EventID:       eventID,
		StudentInfo:   sanitizeStudentInfo(req.StudentInfo),
		Status:        domain.StatusRegistered,
		Communication: normalizeCommunication(req.Communication),
		Source:        req.Source,
		Tags:          req.Tags,
		IsActive:      true,
	}
	if lead.Tags == nil {
		lead.Tags = []string{}
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		if err == repository.ErrCodeSpaceExhausted {
			return nil, apperrors.NewConflictError("No lead codes left for today")
		}
		return nil, apperrors.NewInternalError("Failed to register lead", err)
	}

	if _, err := s.events.IncrementRegistered(ctx, eventID); err != nil {
		// The lead exists either way; the counter drifts and is logged
		s.logger.Error("failed to increment registered counter",
			zap.String("event_id", eventID),
			zap.String("lead_id", lead.LeadID),
			zap.Error(err))
	}

	s.invalidateLeadCaches(ctx, eventID)
	s.logger.Info("lead registered",
		zap.String("lead_id", lead.LeadID),
		zap.String("event_id", eventID))

	return lead, nil
}

// List returns a filtered, sorted page of leads
func (s *leadService) List(ctx context.Context, filter domain.LeadFilter, sort domain.LeadSort, page, limit int) (*domain.LeadPage, error) {
	page, limit = normalizePage(page, limit)

	leads, total, err := s.leads.List(ctx, filter, sort, (page-1)*limit, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve leads", err)
	}
	computeDerived(leads)

	return &domain.LeadPage{
		Leads:      leads,
		Pagination: buildPagination(page, limit, total),
	}, nil
}

// ListForEvent scopes the listing to one event and adds its status breakdown
func (s *leadService) ListForEvent(ctx context.Context, eventID string, filter domain.LeadFilter, sort domain.LeadSort, page, limit int) (*domain.EventLeadPage, error) {
	event, err := s.events.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve event", err)
	}
	if event == nil {
		return nil, apperrors.NewNotFoundError("Event not found")
	}

	filter.EventID = eventID
	page, limit = normalizePage(page, limit)

	leads, total, err := s.leads.List(ctx, filter, sort, (page-1)*limit, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve event leads", err)
	}
	computeDerived(leads)

	breakdown, err := s.leads.StatusBreakdown(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve status breakdown", err)
	}

	return &domain.EventLeadPage{
		Event:           event,
		Leads:           leads,
		Pagination:      buildPagination(page, limit, total),
		StatusBreakdown: breakdown,
	}, nil
}

// Get returns one lead with full history and notes
func (s *leadService) Get(ctx context.Context, leadID string) (*domain.Lead, error) {
	lead, err := s.leads.GetByLeadID(ctx, leadID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve lead", err)
	}
	if lead == nil {
		return nil, apperrors.NewNotFoundError("Lead not found")
	}
	lead.ComputeDerived(time.Now().UTC())
	return lead, nil
}

// UpdateStatus moves a lead through the funnel, recording who moved it
func (s *leadService) UpdateStatus(ctx context.Context, leadID string, status domain.LeadStatus, actorID, notes string) (*domain.Lead, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Status must be one of registered, started, completed, dropped", nil)
	}
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > maxStatusNoteLen {
		return nil, apperrors.NewValidationError("Status notes must be at most 200 characters", nil)
	}
	if actorID == "" {
		actorID = domain.SystemActor
	}

	lead, err := s.leads.UpdateStatus(ctx, leadID, status, actorID, notes)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to update lead status", err)
	}
	if lead == nil {
		return nil, apperrors.NewNotFoundError("Lead not found")
	}

	lead.ComputeDerived(time.Now().UTC())

	s.invalidateLeadCaches(ctx, lead.EventID)
	s.logger.Info("lead status updated",
		zap.String("lead_id", leadID),
		zap.String("status", string(status)),
		zap.String("changed_by", actorID))

	return lead, nil
}

// AddNote attaches an admin note to a lead
func (s *leadService) AddNote(ctx context.Context, leadID, note, actorID string) (*domain.Lead, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperrors.NewValidationError("Note is required", nil)
	}
	if utf8.RuneCountInString(note) > maxAdminNoteLen {
		return nil, apperrors.NewValidationError("Note must be at most 500 characters", nil)
	}
	if actorID == "" {
		actorID = domain.SystemActor
	}

	lead, err := s.leads.AddNote(ctx, leadID, note, actorID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to add note", err)
	}
	if lead == nil {
		return nil, apperrors.NewNotFoundError("Lead not found")
	}
	lead.ComputeDerived(time.Now().UTC())
	return lead, nil
}

// computeDerived fills the derived day counters on every lead in a listing
func computeDerived(leads []*domain.Lead) {
	now := time.Now().UTC()
	for _, lead := range leads {
		lead.ComputeDerived(now)
	}
}

func (s *leadService) invalidateLeadCaches(ctx context.Context, eventID string) {
	keys := s.cache.Keys()
	s.cache.Invalidate(ctx,
		keys.KeyEventsAll(),
		keys.KeyEventByID(eventID),
		keys.KeyEventStats(eventID),
	)
	s.cache.InvalidateAnalytics(ctx)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func buildPagination(page, limit, total int) domain.Pagination {
	totalPages := (total + limit - 1) / limit
	return domain.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalLeads:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

func validateStudentInfo(info *domain.StudentInfo) error {
	details := map[string]interface{}{}

	if strings.TrimSpace(info.Name) == "" {
		details["name"] = "required"
	}
	if strings.TrimSpace(info.Email) == "" {
		details["email"] = "required"
	} else if !strings.Contains(info.Email, "@") {
		details["email"] = "must be a valid email address"
	}
	if strings.TrimSpace(info.Phone) == "" {
		details["phone"] = "required"
	}
	if strings.TrimSpace(info.College) == "" {
		details["college"] = "required"
	}
	if info.Year != "" && !domain.ValidStudyYear(info.Year) {
		details["year"] = "unknown year of study"
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("Student info validation failed", details)
	}
	return nil
}

func sanitizeStudentInfo(info domain.StudentInfo) domain.StudentInfo {
	info.Name = strings.TrimSpace(info.Name)
	info.Email = strings.ToLower(strings.TrimSpace(info.Email))
	info.Phone = strings.TrimSpace(info.Phone)
	info.College = strings.TrimSpace(info.College)
	info.FieldOfStudy = strings.TrimSpace(info.FieldOfStudy)
	return info
}

// normalizeCommunication applies the consent defaults: both channels opt in
// unless the student explicitly opted out, and email is the fallback channel.
func normalizeCommunication(req domain.RegisterCommunication) domain.Communication {
	c := domain.Communication{
		EmailConsent:     true,
		SMSConsent:       true,
		PreferredContact: domain.ContactEmail,
		DigitalSignature: strings.TrimSpace(req.DigitalSignature),
	}
	if req.EmailConsent != nil {
		c.EmailConsent = *req.EmailConsent
	}
	if req.SMSConsent != nil {
		c.SMSConsent = *req.SMSConsent
	}
	switch req.PreferredContact {
	case domain.ContactEmail, domain.ContactSMS, domain.ContactBoth:
		c.PreferredContact = req.PreferredContact
	}
	c.ConsentGiven = c.EmailConsent || c.SMSConsent
	if c.ConsentGiven {
		now := time.Now().UTC()
		c.ConsentDate = &now
	}
	return c
}
