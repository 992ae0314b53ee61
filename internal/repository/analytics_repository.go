package repository

import (
	"context"
	"fmt"
	"strings"

	"katalyst-be/internal/domain"
	"katalyst-be/pkg/database"
)

type analyticsRepository struct {
	db *database.PostgresDB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *database.PostgresDB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// buildAnalyticsFilter renders the analytics filter as a WHERE clause
func buildAnalyticsFilter(f domain.AnalyticsFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.EventID != "" {
		args = append(args, f.EventID)
		conds = append(conds, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// StatusCounts groups matching leads by status
func (r *analyticsRepository) StatusCounts(ctx context.Context, filter domain.AnalyticsFilter) (map[string]int, error) {
	where, args := buildAnalyticsFilter(filter)

	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT status, COUNT(*)
		FROM leads
		%s
		GROUP BY status
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count row: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// DailyTrends counts leads per (creation day, status), date ascending
func (r *analyticsRepository) DailyTrends(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.DailyTrend, error) {
	where, args := buildAnalyticsFilter(filter)

	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day, status, COUNT(*)
		FROM leads
		%s
		GROUP BY day, status
		ORDER BY day ASC, status ASC
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily trends: %w", err)
	}
	defer rows.Close()

	var trends []domain.DailyTrend
	for rows.Next() {
		var t domain.DailyTrend
		if err := rows.Scan(&t.Date, &t.Status, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily trend row: %w", err)
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}

// CollegeBreakdown returns per-college totals and completed counts, highest
// volume first. Completion rate is computed by the service so rounding
// lives in one place.
func (r *analyticsRepository) CollegeBreakdown(ctx context.Context, filter domain.AnalyticsFilter, limit int) ([]domain.CollegeBreakdown, error) {
	where, args := buildAnalyticsFilter(filter)
	args = append(args, limit)

	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT student_college,
		       COUNT(*) AS total_leads,
		       COUNT(*) FILTER (WHERE status = 'completed') AS completed_leads
		FROM leads
		%s
		GROUP BY student_college
		ORDER BY total_leads DESC, student_college ASC
		LIMIT $%d
	`, where, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get college breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []domain.CollegeBreakdown
	for rows.Next() {
		var b domain.CollegeBreakdown
		if err := rows.Scan(&b.College, &b.TotalLeads, &b.CompletedLeads); err != nil {
			return nil, fmt.Errorf("failed to scan college breakdown row: %w", err)
		}
		breakdown = append(breakdown, b)
	}
	return breakdown, rows.Err()
}

// FieldBreakdown returns per-field lead counts, highest first
func (r *analyticsRepository) FieldBreakdown(ctx context.Context, filter domain.AnalyticsFilter, limit int) ([]domain.FieldBreakdown, error) {
	where, args := buildAnalyticsFilter(filter)
	args = append(args, limit)

	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT student_field, COUNT(*) AS lead_count
		FROM leads
		%s
		GROUP BY student_field
		ORDER BY lead_count DESC, student_field ASC
		LIMIT $%d
	`, where, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get field breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []domain.FieldBreakdown
	for rows.Next() {
		var b domain.FieldBreakdown
		if err := rows.Scan(&b.Field, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan field breakdown row: %w", err)
		}
		breakdown = append(breakdown, b)
	}
	return breakdown, rows.Err()
}

// DashboardCounts returns total and completed lead counts
func (r *analyticsRepository) DashboardCounts(ctx context.Context) (int, int, error) {
	var total, completed int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed')
		FROM leads
	`).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get dashboard counts: %w", err)
	}
	return total, completed, nil
}
