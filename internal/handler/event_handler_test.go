package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"katalyst-be/internal/domain"
	apperrors "katalyst-be/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockEventService struct {
	mock.Mock
}

func (m *mockEventService) List(ctx context.Context) ([]*domain.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

func (m *mockEventService) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEventService) Create(ctx context.Context, req *domain.CreateEventRequest, actorID string) (*domain.Event, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEventService) Update(ctx context.Context, eventID string, req *domain.UpdateEventRequest) (*domain.Event, error) {
	args := m.Called(ctx, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEventService) Delete(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *mockEventService) MarkInterested(ctx context.Context, eventID string) (*domain.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEventService) MarkCompleted(ctx context.Context, eventID, code string) (*domain.Event, error) {
	args := m.Called(ctx, eventID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEventService) Stats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventStats), args.Error(1)
}

func eventRouter(svc *mockEventService) *chi.Mux {
	h := NewEventHandler(svc, zap.NewNop(), false)
	r := chi.NewRouter()
	r.Get("/api/events/{eventId}", h.Get)
	r.Post("/api/events/{eventId}/complete", h.MarkCompleted)
	return r
}

func decodeEnvelope(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))
	return envelope
}

func TestEventHandler_Get(t *testing.T) {
	t.Run("success envelope", func(t *testing.T) {
		svc := new(mockEventService)
		svc.On("Get", mock.Anything, "KAT-20260830-001").
			Return(&domain.Event{EventID: "KAT-20260830-001", Title: "Campus Workshop"}, nil)

		rec := httptest.NewRecorder()
		eventRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/KAT-20260830-001", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec.Body.String())
		assert.Equal(t, true, envelope["success"])
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, "Campus Workshop", data["title"])
	})

	t.Run("invalid code format", func(t *testing.T) {
		svc := new(mockEventService)
		rec := httptest.NewRecorder()
		eventRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/not-a-code", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		envelope := decodeEnvelope(t, rec.Body.String())
		assert.Equal(t, false, envelope["success"])
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(mockEventService)
		svc.On("Get", mock.Anything, "KAT-20260830-999").
			Return(nil, apperrors.NewNotFoundError("Event not found"))

		rec := httptest.NewRecorder()
		eventRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/KAT-20260830-999", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		envelope := decodeEnvelope(t, rec.Body.String())
		assert.Equal(t, "Event not found", envelope["message"])
	})
}

func TestEventHandler_MarkCompleted(t *testing.T) {
	t.Run("wrong code", func(t *testing.T) {
		svc := new(mockEventService)
		svc.On("MarkCompleted", mock.Anything, "KAT-20260830-001", "WRONG").
			Return(nil, apperrors.NewInvalidCodeError("Invalid event code"))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/events/KAT-20260830-001/complete",
			strings.NewReader(`{"code":"WRONG"}`))
		eventRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		envelope := decodeEnvelope(t, rec.Body.String())
		assert.Equal(t, "Invalid event code", envelope["message"])
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := new(mockEventService)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/events/KAT-20260830-001/complete",
			strings.NewReader(`{not json`))
		eventRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("internal detail hidden outside development", func(t *testing.T) {
		svc := new(mockEventService)
		svc.On("MarkCompleted", mock.Anything, "KAT-20260830-001", "SECRET").
			Return(nil, apperrors.NewInternalError("Failed to mark event completed", assert.AnError))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/events/KAT-20260830-001/complete",
			strings.NewReader(`{"code":"SECRET"}`))
		eventRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		envelope := decodeEnvelope(t, rec.Body.String())
		assert.NotContains(t, envelope, "error")
	})
}
