package domain

import (
	"fmt"
	"time"
)

// AnalyticsFilter scopes funnel analytics to an event and/or creation window
type AnalyticsFilter struct {
	EventID   string
	StartDate *time.Time
	EndDate   *time.Time
}

// Fingerprint renders the filter as a stable cache-key fragment
func (f AnalyticsFilter) Fingerprint() string {
	event := f.EventID
	if event == "" {
		event = "all"
	}
	start, end := "-", "-"
	if f.StartDate != nil {
		start = f.StartDate.UTC().Format("2006-01-02")
	}
	if f.EndDate != nil {
		end = f.EndDate.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("%s:%s:%s", event, start, end)
}

// LeadFilter widens an analytics filter into the listing filter shape
func (f AnalyticsFilter) LeadFilter() LeadFilter {
	return LeadFilter{
		EventID:   f.EventID,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
}

// DailyTrend is the lead count for one (day, status) bucket
type DailyTrend struct {
	Date   string     `json:"date"`
	Status LeadStatus `json:"status"`
	Count  int        `json:"count"`
}

// CollegeBreakdown aggregates leads per college
type CollegeBreakdown struct {
	College        string  `json:"college"`
	TotalLeads     int     `json:"totalLeads"`
	CompletedLeads int     `json:"completedLeads"`
	CompletionRate float64 `json:"completionRate"`
}

// FieldBreakdown aggregates leads per field of study
type FieldBreakdown struct {
	Field string `json:"field"`
	Count int    `json:"count"`
}

// OverallStats holds the status-count map and per-status conversion rates.
// ConversionRates always carries the four canonical statuses; StatusCounts
// only the statuses actually present.
type OverallStats struct {
	TotalLeads      int                `json:"totalLeads"`
	StatusCounts    map[string]int     `json:"statusCounts"`
	ConversionRates map[string]float64 `json:"conversionRates"`
}

// AnalyticsSummary condenses the breakdowns into headline numbers
type AnalyticsSummary struct {
	AverageCompletionRate float64           `json:"averageCompletionRate"`
	TopCollege            *CollegeBreakdown `json:"topCollege"`
	TopField              *FieldBreakdown   `json:"topField"`
}

// LeadAnalytics is the full funnel analytics payload
type LeadAnalytics struct {
	OverallStats     OverallStats       `json:"overallStats"`
	DailyTrends      []DailyTrend       `json:"dailyTrends"`
	CollegeBreakdown []CollegeBreakdown `json:"collegeBreakdown"`
	FieldBreakdown   []FieldBreakdown   `json:"fieldBreakdown"`
	Summary          AnalyticsSummary   `json:"summary"`
}

// DashboardOverview is the admin landing snapshot
type DashboardOverview struct {
	TotalEvents    int     `json:"totalEvents"`
	TotalLeads     int     `json:"totalLeads"`
	CompletedLeads int     `json:"completedLeads"`
	CompletionRate float64 `json:"completionRate"`
}

// LeadSummary is the condensed lead row shown on the dashboard
type LeadSummary struct {
	LeadID      string     `json:"leadId"`
	EventID     string     `json:"eventId"`
	StudentName string     `json:"studentName"`
	Status      LeadStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Dashboard bundles the overview with recent activity
type Dashboard struct {
	Overview     DashboardOverview `json:"overview"`
	RecentEvents []*Event          `json:"recentEvents"`
	RecentLeads  []LeadSummary     `json:"recentLeads"`
}
