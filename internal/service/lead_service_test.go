package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"katalyst-be/internal/domain"
	apperrors "katalyst-be/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLeadService(leads *mockLeadRepository, events *mockEventRepository) LeadService {
	return NewLeadService(leads, events, noopCache(), zap.NewNop())
}

func validRegisterRequest() *domain.RegisterLeadRequest {
	return &domain.RegisterLeadRequest{
		StudentInfo: domain.StudentInfo{
			Name:         "Asha Verma",
			Email:        "Asha.Verma@Example.com",
			Phone:        "+911234567890",
			College:      "IIT Delhi",
			Year:         "2nd Year",
			FieldOfStudy: "Computer Science",
		},
	}
}

func TestLeadService_Register(t *testing.T) {
	ctx := context.Background()
	event := &domain.Event{EventID: "KAT-20260830-001"}

	t.Run("defaults applied", func(t *testing.T) {
		events := new(mockEventRepository)
		leads := new(mockLeadRepository)
		events.On("GetByEventID", ctx, "KAT-20260830-001").Return(event, nil)
		events.On("IncrementRegistered", ctx, "KAT-20260830-001").Return(event, nil)
		leads.On("Create", ctx, mock.AnythingOfType("*domain.Lead")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Lead).LeadID = "LEAD-2026-08-30-001"
		}).Return(nil)

		lead, err := newLeadService(leads, events).Register(ctx, "KAT-20260830-001", validRegisterRequest())
		require.NoError(t, err)

		assert.Equal(t, "LEAD-2026-08-30-001", lead.LeadID)
		assert.Equal(t, domain.StatusRegistered, lead.Status)
		assert.Equal(t, "asha.verma@example.com", lead.StudentInfo.Email)
		assert.True(t, lead.Communication.EmailConsent)
		assert.True(t, lead.Communication.SMSConsent)
		assert.Equal(t, domain.ContactEmail, lead.Communication.PreferredContact)
		assert.True(t, lead.IsActive)
		events.AssertCalled(t, "IncrementRegistered", ctx, "KAT-20260830-001")
	})

	t.Run("explicit opt-out respected", func(t *testing.T) {
		events := new(mockEventRepository)
		leads := new(mockLeadRepository)
		events.On("GetByEventID", ctx, "KAT-20260830-001").Return(event, nil)
		events.On("IncrementRegistered", ctx, "KAT-20260830-001").Return(event, nil)
		leads.On("Create", ctx, mock.AnythingOfType("*domain.Lead")).Return(nil)

		optOut := false
		req := validRegisterRequest()
		req.Communication = domain.RegisterCommunication{
			SMSConsent:       &optOut,
			PreferredContact: domain.ContactBoth,
		}

		lead, err := newLeadService(leads, events).Register(ctx, "KAT-20260830-001", req)
		require.NoError(t, err)

		assert.True(t, lead.Communication.EmailConsent)
		assert.False(t, lead.Communication.SMSConsent)
		assert.Equal(t, domain.ContactBoth, lead.Communication.PreferredContact)
	})

	t.Run("unknown event", func(t *testing.T) {
		events := new(mockEventRepository)
		events.On("GetByEventID", ctx, "KAT-20260830-999").Return(nil, nil)

		_, err := newLeadService(new(mockLeadRepository), events).Register(ctx, "KAT-20260830-999", validRegisterRequest())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.AsAppError(err).Type)
	})

	t.Run("invalid student info", func(t *testing.T) {
		req := validRegisterRequest()
		req.StudentInfo.Email = "not-an-email"
		req.StudentInfo.Year = "5th Year"

		_, err := newLeadService(new(mockLeadRepository), new(mockEventRepository)).Register(ctx, "KAT-20260830-001", req)
		require.Error(t, err)

		appErr := apperrors.AsAppError(err)
		assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
		assert.Contains(t, appErr.Details, "email")
		assert.Contains(t, appErr.Details, "year")
	})
}

func TestLeadService_List_Pagination(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		page       int
		limit      int
		wantOffset int
		wantLimit  int
	}{
		{"defaults", 0, 0, 0, 20},
		{"explicit page", 3, 10, 20, 10},
		{"limit capped", 1, 500, 0, 100},
		{"negative page", -2, 20, 0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leads := new(mockLeadRepository)
			leads.On("List", ctx, domain.LeadFilter{}, domain.DefaultLeadSort(), tt.wantOffset, tt.wantLimit).
				Return([]*domain.Lead{}, 0, nil)

			_, err := newLeadService(leads, new(mockEventRepository)).
				List(ctx, domain.LeadFilter{}, domain.DefaultLeadSort(), tt.page, tt.limit)
			require.NoError(t, err)
			leads.AssertExpectations(t)
		})
	}
}

func TestLeadService_Get_DerivedFields(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	lead := &domain.Lead{
		LeadID:    "LEAD-2026-08-27-001",
		EventID:   "KAT-20260827-001",
		Status:    domain.StatusStarted,
		CreatedAt: now.Add(-72 * time.Hour),
		StatusHistory: []domain.StatusChange{
			{Status: domain.StatusRegistered, ChangedAt: now.Add(-72 * time.Hour)},
			{Status: domain.StatusStarted, ChangedAt: now.Add(-48 * time.Hour)},
		},
	}
	leads := new(mockLeadRepository)
	leads.On("GetByLeadID", ctx, "LEAD-2026-08-27-001").Return(lead, nil)

	got, err := newLeadService(leads, new(mockEventRepository)).Get(ctx, "LEAD-2026-08-27-001")
	require.NoError(t, err)

	assert.Equal(t, 3, got.AgeInDays)
	assert.Equal(t, 2, got.TimeInCurrentStatus)
}

func TestLeadService_List_DerivedFields(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	lastStatus := now.Add(-36 * time.Hour)

	// Listings carry the newest history timestamp instead of the full history
	lead := &domain.Lead{
		LeadID:       "LEAD-2026-08-26-001",
		CreatedAt:    now.Add(-96 * time.Hour),
		LastStatusAt: &lastStatus,
	}
	leads := new(mockLeadRepository)
	leads.On("List", ctx, domain.LeadFilter{}, domain.DefaultLeadSort(), 0, 20).
		Return([]*domain.Lead{lead}, 1, nil)

	page, err := newLeadService(leads, new(mockEventRepository)).
		List(ctx, domain.LeadFilter{}, domain.DefaultLeadSort(), 1, 20)
	require.NoError(t, err)

	require.Len(t, page.Leads, 1)
	assert.Equal(t, 4, page.Leads[0].AgeInDays)
	assert.Equal(t, 2, page.Leads[0].TimeInCurrentStatus)
}

func TestBuildPagination(t *testing.T) {
	p := buildPagination(2, 20, 45)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 45, p.TotalLeads)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)

	p = buildPagination(1, 20, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)
}

func TestLeadService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid status", func(t *testing.T) {
		_, err := newLeadService(new(mockLeadRepository), new(mockEventRepository)).
			UpdateStatus(ctx, "LEAD-2026-08-30-001", "pending", "admin-1", "")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.AsAppError(err).Type)
	})

	t.Run("notes too long", func(t *testing.T) {
		_, err := newLeadService(new(mockLeadRepository), new(mockEventRepository)).
			UpdateStatus(ctx, "LEAD-2026-08-30-001", domain.StatusStarted, "admin-1", strings.Repeat("x", 201))
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.AsAppError(err).Type)
	})

	t.Run("multibyte notes counted as characters", func(t *testing.T) {
		lead := &domain.Lead{LeadID: "LEAD-2026-08-30-001", Status: domain.StatusStarted}
		notes := strings.Repeat("ü", 150)
		leads := new(mockLeadRepository)
		leads.On("UpdateStatus", ctx, "LEAD-2026-08-30-001", domain.StatusStarted, "admin-1", notes).
			Return(lead, nil)

		_, err := newLeadService(leads, new(mockEventRepository)).
			UpdateStatus(ctx, "LEAD-2026-08-30-001", domain.StatusStarted, "admin-1", notes)
		require.NoError(t, err)
		leads.AssertExpectations(t)
	})

	t.Run("empty actor attributed to system", func(t *testing.T) {
		lead := &domain.Lead{LeadID: "LEAD-2026-08-30-001", EventID: "KAT-20260830-001", Status: domain.StatusStarted}
		leads := new(mockLeadRepository)
		leads.On("UpdateStatus", ctx, "LEAD-2026-08-30-001", domain.StatusStarted, domain.SystemActor, "").
			Return(lead, nil)

		got, err := newLeadService(leads, new(mockEventRepository)).
			UpdateStatus(ctx, "LEAD-2026-08-30-001", domain.StatusStarted, "", "")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusStarted, got.Status)
		leads.AssertExpectations(t)
	})

	t.Run("unknown lead", func(t *testing.T) {
		leads := new(mockLeadRepository)
		leads.On("UpdateStatus", ctx, "LEAD-2026-08-30-999", domain.StatusDropped, "admin-1", "").
			Return(nil, nil)

		_, err := newLeadService(leads, new(mockEventRepository)).
			UpdateStatus(ctx, "LEAD-2026-08-30-999", domain.StatusDropped, "admin-1", "")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.AsAppError(err).Type)
	})
}

func TestLeadService_AddNote(t *testing.T) {
	ctx := context.Background()

	t.Run("empty note", func(t *testing.T) {
		_, err := newLeadService(new(mockLeadRepository), new(mockEventRepository)).
			AddNote(ctx, "LEAD-2026-08-30-001", "   ", "admin-1")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.AsAppError(err).Type)
	})

	t.Run("note too long", func(t *testing.T) {
		_, err := newLeadService(new(mockLeadRepository), new(mockEventRepository)).
			AddNote(ctx, "LEAD-2026-08-30-001", strings.Repeat("x", 501), "admin-1")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.AsAppError(err).Type)
	})

	t.Run("multibyte note within the limit", func(t *testing.T) {
		lead := &domain.Lead{LeadID: "LEAD-2026-08-30-001"}
		note := strings.Repeat("ü", 400)
		leads := new(mockLeadRepository)
		leads.On("AddNote", ctx, "LEAD-2026-08-30-001", note, "admin-1").
			Return(lead, nil)

		_, err := newLeadService(leads, new(mockEventRepository)).
			AddNote(ctx, "LEAD-2026-08-30-001", note, "admin-1")
		require.NoError(t, err)
		leads.AssertExpectations(t)
	})

	t.Run("note trimmed and stored", func(t *testing.T) {
		lead := &domain.Lead{LeadID: "LEAD-2026-08-30-001"}
		leads := new(mockLeadRepository)
		leads.On("AddNote", ctx, "LEAD-2026-08-30-001", "called the student", "admin-1").
			Return(lead, nil)

		_, err := newLeadService(leads, new(mockEventRepository)).
			AddNote(ctx, "LEAD-2026-08-30-001", "  called the student  ", "admin-1")
		require.NoError(t, err)
		leads.AssertExpectations(t)
	})
}
