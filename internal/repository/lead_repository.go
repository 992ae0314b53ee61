package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"katalyst-be/internal/domain"
	"katalyst-be/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const leadColumns = `
	l.id, l.lead_id, l.event_id,
	l.student_name, l.student_email, l.student_phone, l.student_college, l.student_year, l.student_field,
	l.status,
	l.has_started, l.started_at, l.has_completed, l.completed_at, l.application_link, l.form_data,
	l.email_consent, l.sms_consent, l.preferred_contact, l.digital_signature, l.consent_given, l.consent_date,
	l.event_link, l.referrer, l.utm_source, l.utm_medium, l.utm_campaign,
	l.tags, l.is_active, l.last_activity, l.created_at, l.updated_at`

// lastStatusAtExpr carries the newest history timestamp for listings that do
// not load the full history, so derived time-in-status still computes.
const lastStatusAtExpr = `(
	SELECT MAX(h.changed_at) FROM lead_status_history h WHERE h.lead_id = l.lead_id
) AS last_status_at`

type leadRepository struct {
	db *database.PostgresDB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *database.PostgresDB) LeadRepository {
	return &leadRepository{db: db}
}

func scanLead(row pgx.Row, withLastStatus bool) (*domain.Lead, error) {
	var l domain.Lead
	dest := []interface{}{
		&l.ID,
		&l.LeadID,
		&l.EventID,
		&l.StudentInfo.Name,
		&l.StudentInfo.Email,
		&l.StudentInfo.Phone,
		&l.StudentInfo.College,
		&l.StudentInfo.Year,
		&l.StudentInfo.FieldOfStudy,
		&l.Status,
		&l.Application.HasStarted,
		&l.Application.StartedAt,
		&l.Application.HasCompleted,
		&l.Application.CompletedAt,
		&l.Application.ApplicationLink,
		&l.Application.FormData,
		&l.Communication.EmailConsent,
		&l.Communication.SMSConsent,
		&l.Communication.PreferredContact,
		&l.Communication.DigitalSignature,
		&l.Communication.ConsentGiven,
		&l.Communication.ConsentDate,
		&l.Source.EventLink,
		&l.Source.Referrer,
		&l.Source.UTMSource,
		&l.Source.UTMMedium,
		&l.Source.UTMCampaign,
		&l.Tags,
		&l.IsActive,
		&l.LastActivity,
		&l.CreatedAt,
		&l.UpdatedAt,
	}
	if withLastStatus {
		dest = append(dest, &l.LastStatusAt)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &l, nil
}

// buildLeadFilter renders a LeadFilter as a WHERE clause over alias l
func buildLeadFilter(f domain.LeadFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) int {
		args = append(args, v)
		return len(args)
	}

	if f.EventID != "" {
		conds = append(conds, fmt.Sprintf("l.event_id = $%d", arg(f.EventID)))
	}
	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("l.status = $%d", arg(string(f.Status))))
	}
	if f.College != "" {
		conds = append(conds, fmt.Sprintf("l.student_college ILIKE '%%' || $%d || '%%'", arg(f.College)))
	}
	if f.Year != "" {
		conds = append(conds, fmt.Sprintf("l.student_year = $%d", arg(f.Year)))
	}
	if f.FieldOfStudy != "" {
		conds = append(conds, fmt.Sprintf("l.student_field ILIKE '%%' || $%d || '%%'", arg(f.FieldOfStudy)))
	}
	if f.StartDate != nil {
		conds = append(conds, fmt.Sprintf("l.created_at >= $%d", arg(*f.StartDate)))
	}
	if f.EndDate != nil {
		conds = append(conds, fmt.Sprintf("l.created_at <= $%d", arg(*f.EndDate)))
	}
	if f.Search != "" {
		n := arg(f.Search)
		conds = append(conds, fmt.Sprintf(`(
			l.student_name ILIKE '%%' || $%d || '%%' OR
			l.student_email ILIKE '%%' || $%d || '%%' OR
			l.student_phone ILIKE '%%' || $%d || '%%' OR
			l.student_college ILIKE '%%' || $%d || '%%' OR
			l.student_field ILIKE '%%' || $%d || '%%')`, n, n, n, n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// leadSortColumns is the allow-list mapping API sort fields to columns
var leadSortColumns = map[string]string{
	"createdAt":    "l.created_at",
	"lastActivity": "l.last_activity",
	"status":       "l.status",
	"studentName":  "l.student_name",
}

// Create persists a new lead under the next free LEAD-YYYY-MM-DD-NNN code.
// The initial status-history entry is written in the same transaction so a
// lead never exists without its first history row.
func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	prefix := fmt.Sprintf("LEAD-%s", time.Now().UTC().Format("2006-01-02"))

	seq, err := r.nextSequence(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to probe lead code: %w", err)
	}

	for attempt := 0; attempt < codeProbeAttempts; attempt++ {
		if seq > maxCodeSequence {
			return ErrCodeSpaceExhausted
		}
		candidate := fmt.Sprintf("%s-%03d", prefix, seq)

		err := r.insertLead(ctx, lead, candidate)
		if err == nil {
			lead.LeadID = candidate
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			seq++
			continue
		}
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return ErrCodeSpaceExhausted
}

func (r *leadRepository) insertLead(ctx context.Context, lead *domain.Lead, leadID string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO leads (
			lead_id, event_id,
			student_name, student_email, student_phone, student_college, student_year, student_field,
			status,
			application_link, form_data,
			email_consent, sms_consent, preferred_contact, digital_signature, consent_given, consent_date,
			event_link, referrer, utm_source, utm_medium, utm_campaign,
			tags, is_active, last_activity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id, created_at, updated_at
	`

	now := time.Now().UTC()
	err = tx.QueryRow(ctx, query,
		leadID,
		lead.EventID,
		lead.StudentInfo.Name,
		lead.StudentInfo.Email,
		lead.StudentInfo.Phone,
		lead.StudentInfo.College,
		lead.StudentInfo.Year,
		lead.StudentInfo.FieldOfStudy,
		string(lead.Status),
		lead.Application.ApplicationLink,
		lead.Application.FormData,
		lead.Communication.EmailConsent,
		lead.Communication.SMSConsent,
		lead.Communication.PreferredContact,
		lead.Communication.DigitalSignature,
		lead.Communication.ConsentGiven,
		lead.Communication.ConsentDate,
		lead.Source.EventLink,
		lead.Source.Referrer,
		lead.Source.UTMSource,
		lead.Source.UTMMedium,
		lead.Source.UTMCampaign,
		lead.Tags,
		lead.IsActive,
		now,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO lead_status_history (lead_id, status, changed_at, changed_by, notes)
		VALUES ($1, $2, $3, $4, $5)
	`, leadID, string(lead.Status), now, domain.SystemActor, "")
	if err != nil {
		return err
	}

	lead.LastActivity = now
	lead.StatusHistory = []domain.StatusChange{{
		Status:    lead.Status,
		ChangedAt: now,
		ChangedBy: domain.SystemActor,
	}}

	return tx.Commit(ctx)
}

func (r *leadRepository) nextSequence(ctx context.Context, prefix string) (int, error) {
	var max int
	query := `
		SELECT COALESCE(MAX(SUBSTRING(lead_id FROM 17)::int), 0)
		FROM leads
		WHERE lead_id LIKE $1 || '-%'
	`
	if err := r.db.Pool.QueryRow(ctx, query, prefix).Scan(&max); err != nil {
		return 0, err
	}
	return max + 1, nil
}

// GetByLeadID gets a lead with full history and notes
func (r *leadRepository) GetByLeadID(ctx context.Context, leadID string) (*domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads l WHERE l.lead_id = $1`

	lead, err := scanLead(r.db.Pool.QueryRow(ctx, query, leadID), false)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if lead.StatusHistory, err = r.history(ctx, leadID); err != nil {
		return nil, err
	}
	if lead.AdminNotes, err = r.notes(ctx, leadID); err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *leadRepository) history(ctx context.Context, leadID string) ([]domain.StatusChange, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT status, changed_at, changed_by, notes
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY changed_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	defer rows.Close()

	var history []domain.StatusChange
	for rows.Next() {
		var h domain.StatusChange
		if err := rows.Scan(&h.Status, &h.ChangedAt, &h.ChangedBy, &h.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan status history row: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *leadRepository) notes(ctx context.Context, leadID string) ([]domain.AdminNote, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT note, added_by, added_at
		FROM lead_notes
		WHERE lead_id = $1
		ORDER BY added_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.AdminNote
	for rows.Next() {
		var n domain.AdminNote
		if err := rows.Scan(&n.Note, &n.AddedBy, &n.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin note row: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// List gets one page of leads matching the filter plus the total match count
func (r *leadRepository) List(ctx context.Context, filter domain.LeadFilter, sort domain.LeadSort, offset, limit int) ([]*domain.Lead, int, error) {
	where, args := buildLeadFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM leads l ` + where
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	column, ok := leadSortColumns[sort.Field]
	if !ok {
		column = "l.created_at"
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM leads l
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, leadColumns, lastStatusAtExpr, where, column, direction, len(args)-1, len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error reading lead rows: %w", err)
	}

	return leads, total, nil
}

// ListWithEvents gets all leads matching the filter joined to their event
func (r *leadRepository) ListWithEvents(ctx context.Context, filter domain.LeadFilter) ([]*domain.LeadWithEvent, error) {
	where, args := buildLeadFilter(filter)

	query := fmt.Sprintf(`
		SELECT %s, %s,
		       e.event_id, e.title, e.college, e.city, e.state, e.start_date
		FROM leads l
		LEFT JOIN events e ON e.event_id = l.event_id
		%s
		ORDER BY l.created_at DESC
	`, leadColumns, lastStatusAtExpr, where)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads for export: %w", err)
	}
	defer rows.Close()

	var result []*domain.LeadWithEvent
	for rows.Next() {
		var l domain.Lead
		var eventID, title, college, city, state *string
		var startDate *time.Time
		dest := []interface{}{
			&l.ID, &l.LeadID, &l.EventID,
			&l.StudentInfo.Name, &l.StudentInfo.Email, &l.StudentInfo.Phone,
			&l.StudentInfo.College, &l.StudentInfo.Year, &l.StudentInfo.FieldOfStudy,
			&l.Status,
			&l.Application.HasStarted, &l.Application.StartedAt,
			&l.Application.HasCompleted, &l.Application.CompletedAt,
			&l.Application.ApplicationLink, &l.Application.FormData,
			&l.Communication.EmailConsent, &l.Communication.SMSConsent,
			&l.Communication.PreferredContact, &l.Communication.DigitalSignature,
			&l.Communication.ConsentGiven, &l.Communication.ConsentDate,
			&l.Source.EventLink, &l.Source.Referrer,
			&l.Source.UTMSource, &l.Source.UTMMedium, &l.Source.UTMCampaign,
			&l.Tags, &l.IsActive, &l.LastActivity, &l.CreatedAt, &l.UpdatedAt,
			&l.LastStatusAt,
			&eventID, &title, &college, &city, &state, &startDate,
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan lead export row: %w", err)
		}

		entry := &domain.LeadWithEvent{Lead: &l}
		if eventID != nil {
			entry.Event = &domain.Event{
				EventID:   *eventID,
				Title:     deref(title),
				College:   deref(college),
				City:      deref(city),
				State:     deref(state),
				StartDate: startDate,
			}
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading lead export rows: %w", err)
	}

	return result, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListRecentSummaries gets condensed rows for the newest leads
func (r *leadRepository) ListRecentSummaries(ctx context.Context, limit int) ([]domain.LeadSummary, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT lead_id, event_id, student_name, status, created_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent leads: %w", err)
	}
	defer rows.Close()

	var summaries []domain.LeadSummary
	for rows.Next() {
		var s domain.LeadSummary
		if err := rows.Scan(&s.LeadID, &s.EventID, &s.StudentName, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// applyStatusEffects returns the application state after a transition. The
// started/completed markers are stamped exactly once; repeating a transition
// keeps the original timestamps.
func applyStatusEffects(app domain.Application, status domain.LeadStatus, now time.Time) domain.Application {
	if status == domain.StatusStarted && !app.HasStarted {
		app.HasStarted = true
		app.StartedAt = &now
	}
	if status == domain.StatusCompleted && !app.HasCompleted {
		app.HasCompleted = true
		app.CompletedAt = &now
	}
	return app
}

// UpdateStatus transitions a lead inside a transaction that locks the lead
// row, so concurrent transitions serialize instead of last-write-wins. The
// started/completed application side effects are applied exactly once.
func (r *leadRepository) UpdateStatus(ctx context.Context, leadID string, status domain.LeadStatus, changedBy, notes string) (*domain.Lead, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lead, err := scanLead(tx.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads l WHERE l.lead_id = $1 FOR UPDATE`, leadID), false)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock lead: %w", err)
	}

	now := time.Now().UTC()
	app := applyStatusEffects(lead.Application, status, now)

	_, err = tx.Exec(ctx, `
		UPDATE leads
		SET status = $2,
		    has_started = $3, started_at = $4,
		    has_completed = $5, completed_at = $6,
		    last_activity = $7, updated_at = $7
		WHERE lead_id = $1
	`, leadID, string(status), app.HasStarted, app.StartedAt, app.HasCompleted, app.CompletedAt, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO lead_status_history (lead_id, status, changed_at, changed_by, notes)
		VALUES ($1, $2, $3, $4, $5)
	`, leadID, string(status), now, changedBy, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to append status history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	return r.GetByLeadID(ctx, leadID)
}

// AddNote appends an admin note and touches last activity
func (r *leadRepository) AddNote(ctx context.Context, leadID, note, addedBy string) (*domain.Lead, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	result, err := tx.Exec(ctx, `
		UPDATE leads SET last_activity = $2, updated_at = $2 WHERE lead_id = $1
	`, leadID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to touch lead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO lead_notes (lead_id, note, added_by, added_at)
		VALUES ($1, $2, $3, $4)
	`, leadID, note, addedBy, now)
	if err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit note: %w", err)
	}

	return r.GetByLeadID(ctx, leadID)
}

// CountByEvent returns how many leads reference an event
func (r *leadRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads for event: %w", err)
	}
	return count, nil
}

// StatusBreakdown groups an event's leads by status
func (r *leadRepository) StatusBreakdown(ctx context.Context, eventID string) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM leads
		WHERE event_id = $1
		GROUP BY status
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status breakdown row: %w", err)
		}
		breakdown[status] = count
	}
	return breakdown, rows.Err()
}
