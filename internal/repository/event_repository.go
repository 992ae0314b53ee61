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

const (
	// Suffix space per day-prefix is 001..999; running out is surfaced as
	// an explicit error rather than probing forever.
	maxCodeSequence = 999

	// Insert retries when a concurrent create claims the probed code first
	codeProbeAttempts = 5

	uniqueViolation = "23505"
)

// ErrCodeSpaceExhausted is returned when no free sequential code remains for
// today's prefix.
var ErrCodeSpaceExhausted = errors.New("code space exhausted for today")

const eventColumns = `
	id, event_id, title, description, mode, location, duration, deadline, tags,
	college, city, state, start_date, end_date,
	interested_students, registered_students, completed_students,
	verification_code, created_by, created_at, updated_at`

type eventRepository struct {
	db *database.PostgresDB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.PostgresDB) EventRepository {
	return &eventRepository{db: db}
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.EventID,
		&e.Title,
		&e.Description,
		&e.Mode,
		&e.Location,
		&e.Duration,
		&e.Deadline,
		&e.Tags,
		&e.College,
		&e.City,
		&e.State,
		&e.StartDate,
		&e.EndDate,
		&e.InterestedStudents,
		&e.RegisteredStudents,
		&e.CompletedStudents,
		&e.VerificationCode,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create persists a new event under the next free KAT-YYYYMMDD-NNN code.
// The probe is race-safe: a concurrent insert claiming the same code trips
// the unique index and we retry with the next suffix, bounded.
func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	prefix := fmt.Sprintf("KAT-%s", time.Now().UTC().Format("20060102"))

	seq, err := r.nextSequence(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to probe event code: %w", err)
	}

	query := `
		INSERT INTO events (
			event_id, title, description, mode, location, duration, deadline, tags,
			college, city, state, start_date, end_date,
			verification_code, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	for attempt := 0; attempt < codeProbeAttempts; attempt++ {
		if seq > maxCodeSequence {
			return ErrCodeSpaceExhausted
		}
		candidate := fmt.Sprintf("%s-%03d", prefix, seq)

		err := r.db.Pool.QueryRow(ctx, query,
			candidate,
			event.Title,
			event.Description,
			event.Mode,
			event.Location,
			event.Duration,
			event.Deadline,
			event.Tags,
			event.College,
			event.City,
			event.State,
			event.StartDate,
			event.EndDate,
			event.VerificationCode,
			event.CreatedBy,
		).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

		if err == nil {
			event.EventID = candidate
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			seq++
			continue
		}
		return fmt.Errorf("failed to create event: %w", err)
	}

	return ErrCodeSpaceExhausted
}

// nextSequence returns one past the highest suffix already used for prefix
func (r *eventRepository) nextSequence(ctx context.Context, prefix string) (int, error) {
	var max int
	query := `
		SELECT COALESCE(MAX(SUBSTRING(event_id FROM 14)::int), 0)
		FROM events
		WHERE event_id LIKE $1 || '-%'
	`
	if err := r.db.Pool.QueryRow(ctx, query, prefix).Scan(&max); err != nil {
		return 0, err
	}
	return max + 1, nil
}

// GetByEventID gets an event by its code
func (r *eventRepository) GetByEventID(ctx context.Context, eventID string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_id = $1`

	event, err := scanEvent(r.db.Pool.QueryRow(ctx, query, eventID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// List gets all events, newest first
func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	return r.list(ctx, 0)
}

// ListRecent gets the most recently created events
func (r *eventRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Event, error) {
	return r.list(ctx, limit)
}

func (r *eventRepository) list(ctx context.Context, limit int) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading event rows: %w", err)
	}
	return events, nil
}

// Update applies a partial update; the event code and creation metadata
// never change.
func (r *eventRepository) Update(ctx context.Context, eventID string, req *domain.UpdateEventRequest) (*domain.Event, error) {
	set := []string{"updated_at = now()"}
	args := []interface{}{eventID}

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Title != nil {
		add("title", *req.Title)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Mode != nil {
		add("mode", *req.Mode)
	}
	if req.Location != nil {
		add("location", *req.Location)
	}
	if req.Duration != nil {
		add("duration", *req.Duration)
	}
	if req.Deadline != nil {
		add("deadline", *req.Deadline)
	}
	if req.Tags != nil {
		add("tags", req.Tags)
	}
	if req.College != nil {
		add("college", *req.College)
	}
	if req.City != nil {
		add("city", *req.City)
	}
	if req.State != nil {
		add("state", *req.State)
	}
	if req.StartDate != nil {
		add("start_date", *req.StartDate)
	}
	if req.EndDate != nil {
		add("end_date", *req.EndDate)
	}

	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE event_id = $1
		RETURNING %s
	`, strings.Join(set, ", "), eventColumns)

	event, err := scanEvent(r.db.Pool.QueryRow(ctx, query, args...))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// Delete removes an event by code
func (r *eventRepository) Delete(ctx context.Context, eventID string) (bool, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM events WHERE event_id = $1`, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// IncrementInterested atomically bumps the interested counter
func (r *eventRepository) IncrementInterested(ctx context.Context, eventID string) (*domain.Event, error) {
	return r.increment(ctx, eventID, "interested_students")
}

// IncrementRegistered atomically bumps the registered counter
func (r *eventRepository) IncrementRegistered(ctx context.Context, eventID string) (*domain.Event, error) {
	return r.increment(ctx, eventID, "registered_students")
}

func (r *eventRepository) increment(ctx context.Context, eventID, column string) (*domain.Event, error) {
	query := fmt.Sprintf(`
		UPDATE events SET %s = %s + 1, updated_at = now()
		WHERE event_id = $1
		RETURNING %s
	`, column, column, eventColumns)

	event, err := scanEvent(r.db.Pool.QueryRow(ctx, query, eventID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment %s: %w", column, err)
	}
	return event, nil
}

// IncrementCompletedWithCode bumps the completed counter in a single
// statement guarded by the verification code, so a wrong code never mutates.
func (r *eventRepository) IncrementCompletedWithCode(ctx context.Context, eventID, code string) (*domain.Event, bool, error) {
	query := `
		UPDATE events SET completed_students = completed_students + 1, updated_at = now()
		WHERE event_id = $1 AND verification_code = $2
		RETURNING ` + eventColumns

	event, err := scanEvent(r.db.Pool.QueryRow(ctx, query, eventID, code))
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark event completed: %w", err)
	}
	return event, true, nil
}

// Count returns the total number of events
func (r *eventRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
