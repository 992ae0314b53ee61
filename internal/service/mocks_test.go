package service

import (
	"context"

	"katalyst-be/internal/domain"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// mockEventRepository is a testify mock over repository.EventRepository
type mockEventRepository struct {
	mock.Mock
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventRepository) GetByEventID(ctx context.Context, eventID string) (*domain.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

func (m *mockEventRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

func (m *mockEventRepository) Update(ctx context.Context, eventID string, req *domain.UpdateEventRequest) (*domain.Event, error) {
	args := m.Called(ctx, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEventRepository) Delete(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEventRepository) IncrementInterested(ctx context.Context, eventID string) (*domain.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEventRepository) IncrementRegistered(ctx context.Context, eventID string) (*domain.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEventRepository) IncrementCompletedWithCode(ctx context.Context, eventID, code string) (*domain.Event, bool, error) {
	args := m.Called(ctx, eventID, code)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Event), args.Bool(1), args.Error(2)
}

func (m *mockEventRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// mockLeadRepository is a testify mock over repository.LeadRepository
type mockLeadRepository struct {
	mock.Mock
}

func (m *mockLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *mockLeadRepository) GetByLeadID(ctx context.Context, leadID string) (*domain.Lead, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *mockLeadRepository) List(ctx context.Context, filter domain.LeadFilter, sort domain.LeadSort, offset, limit int) ([]*domain.Lead, int, error) {
	args := m.Called(ctx, filter, sort, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Lead), args.Int(1), args.Error(2)
}

func (m *mockLeadRepository) ListWithEvents(ctx context.Context, filter domain.LeadFilter) ([]*domain.LeadWithEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LeadWithEvent), args.Error(1)
}

func (m *mockLeadRepository) ListRecentSummaries(ctx context.Context, limit int) ([]domain.LeadSummary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LeadSummary), args.Error(1)
}

func (m *mockLeadRepository) UpdateStatus(ctx context.Context, leadID string, status domain.LeadStatus, changedBy, notes string) (*domain.Lead, error) {
	args := m.Called(ctx, leadID, status, changedBy, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *mockLeadRepository) AddNote(ctx context.Context, leadID, note, addedBy string) (*domain.Lead, error) {
	args := m.Called(ctx, leadID, note, addedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *mockLeadRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *mockLeadRepository) StatusBreakdown(ctx context.Context, eventID string) (map[string]int, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// mockAnalyticsRepository is a testify mock over repository.AnalyticsRepository
type mockAnalyticsRepository struct {
	mock.Mock
}

func (m *mockAnalyticsRepository) StatusCounts(ctx context.Context, filter domain.AnalyticsFilter) (map[string]int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *mockAnalyticsRepository) DailyTrends(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.DailyTrend, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyTrend), args.Error(1)
}

func (m *mockAnalyticsRepository) CollegeBreakdown(ctx context.Context, filter domain.AnalyticsFilter, limit int) ([]domain.CollegeBreakdown, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CollegeBreakdown), args.Error(1)
}

func (m *mockAnalyticsRepository) FieldBreakdown(ctx context.Context, filter domain.AnalyticsFilter, limit int) ([]domain.FieldBreakdown, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FieldBreakdown), args.Error(1)
}

func (m *mockAnalyticsRepository) DashboardCounts(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

// noopCache is a cache service without Redis, so every lookup misses
func noopCache() *CacheService {
	return NewCacheService(nil, zap.NewNop())
}
