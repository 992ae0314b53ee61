package service

import (
	"context"
	"math"

	"katalyst-be/internal/domain"
	"katalyst-be/internal/repository"
	apperrors "katalyst-be/pkg/errors"
	"katalyst-be/pkg/redis"

	"go.uber.org/zap"
)

const (
	breakdownLimit      = 10
	dashboardEventLimit = 5
	dashboardLeadLimit  = 10
)

type analyticsService struct {
	analytics repository.AnalyticsRepository
	events    repository.EventRepository
	leads     repository.LeadRepository
	cache     *CacheService
	logger    *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(analytics repository.AnalyticsRepository, events repository.EventRepository, leads repository.LeadRepository, cache *CacheService, logger *zap.Logger) AnalyticsService {
	return &analyticsService{
		analytics: analytics,
		events:    events,
		leads:     leads,
		cache:     cache,
		logger:    logger,
	}
}

// GetAnalytics aggregates the conversion funnel over matching leads
func (s *analyticsService) GetAnalytics(ctx context.Context, filter domain.AnalyticsFilter) (*domain.LeadAnalytics, error) {
	key := s.cache.Keys().KeyLeadAnalytics(filter.Fingerprint())

	var cached domain.LeadAnalytics
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	counts, err := s.analytics.StatusCounts(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to aggregate status counts", err)
	}

	trends, err := s.analytics.DailyTrends(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to aggregate daily trends", err)
	}

	colleges, err := s.analytics.CollegeBreakdown(ctx, filter, breakdownLimit)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to aggregate college breakdown", err)
	}

	fields, err := s.analytics.FieldBreakdown(ctx, filter, breakdownLimit)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to aggregate field breakdown", err)
	}

	analytics := &domain.LeadAnalytics{
		OverallStats:     buildOverallStats(counts),
		DailyTrends:      trends,
		CollegeBreakdown: fillCompletionRates(colleges),
		FieldBreakdown:   fields,
	}
	analytics.Summary = buildSummary(analytics.CollegeBreakdown, analytics.FieldBreakdown)

	s.cache.SetJSONAsync(key, analytics, redis.TTLAnalytics)
	return analytics, nil
}

// GetDashboard returns the admin overview with recent activity
func (s *analyticsService) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	key := s.cache.Keys().KeyDashboard()

	var cached domain.Dashboard
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	totalEvents, err := s.events.Count(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to count events", err)
	}

	totalLeads, completedLeads, err := s.analytics.DashboardCounts(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to count leads", err)
	}

	recentEvents, err := s.events.ListRecent(ctx, dashboardEventLimit)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to list recent events", err)
	}

	recentLeads, err := s.leads.ListRecentSummaries(ctx, dashboardLeadLimit)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to list recent leads", err)
	}

	dashboard := &domain.Dashboard{
		Overview: domain.DashboardOverview{
			TotalEvents:    totalEvents,
			TotalLeads:     totalLeads,
			CompletedLeads: completedLeads,
			CompletionRate: rate(completedLeads, totalLeads),
		},
		RecentEvents: recentEvents,
		RecentLeads:  recentLeads,
	}

	s.cache.SetJSONAsync(key, dashboard, redis.TTLDashboard)
	return dashboard, nil
}

// buildOverallStats derives total and per-status conversion rates. The rate
// map always carries the four canonical statuses so clients never see a
// missing key, and a zero total yields all-zero rates.
func buildOverallStats(counts map[string]int) domain.OverallStats {
	total := 0
	for _, count := range counts {
		total += count
	}

	rates := make(map[string]float64, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		rates[string(status)] = rate(counts[string(status)], total)
	}

	return domain.OverallStats{
		TotalLeads:      total,
		StatusCounts:    counts,
		ConversionRates: rates,
	}
}

func fillCompletionRates(colleges []domain.CollegeBreakdown) []domain.CollegeBreakdown {
	for i := range colleges {
		colleges[i].CompletionRate = rate(colleges[i].CompletedLeads, colleges[i].TotalLeads)
	}
	return colleges
}

func buildSummary(colleges []domain.CollegeBreakdown, fields []domain.FieldBreakdown) domain.AnalyticsSummary {
	summary := domain.AnalyticsSummary{}

	if len(colleges) > 0 {
		sum := 0.0
		for _, c := range colleges {
			sum += c.CompletionRate
		}
		summary.AverageCompletionRate = round2(sum / float64(len(colleges)))
		top := colleges[0]
		summary.TopCollege = &top
	}
	if len(fields) > 0 {
		top := fields[0]
		summary.TopField = &top
	}
	return summary
}

// rate is part/whole as a percentage rounded to two decimals, zero when the
// whole is zero
func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
