package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS lead_notes CASCADE`,
		`DROP TABLE IF EXISTS lead_status_history CASCADE`,
		`DROP TABLE IF EXISTS leads CASCADE`,
		`DROP TABLE IF EXISTS events CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}
	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			event_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT 'Online',
			duration TEXT NOT NULL DEFAULT '',
			deadline TIMESTAMPTZ NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			college TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			start_date TIMESTAMPTZ,
			end_date TIMESTAMPTZ,
			interested_students INTEGER NOT NULL DEFAULT 0,
			registered_students INTEGER NOT NULL DEFAULT 0,
			completed_students INTEGER NOT NULL DEFAULT 0,
			verification_code TEXT NOT NULL,
			created_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS leads (
			id BIGSERIAL PRIMARY KEY,
			lead_id TEXT NOT NULL UNIQUE,
			event_id TEXT NOT NULL,
			student_name TEXT NOT NULL,
			student_email TEXT NOT NULL,
			student_phone TEXT NOT NULL DEFAULT '',
			student_college TEXT NOT NULL DEFAULT '',
			student_year TEXT NOT NULL DEFAULT '',
			student_field TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'registered',
			has_started BOOLEAN NOT NULL DEFAULT FALSE,
			started_at TIMESTAMPTZ,
			has_completed BOOLEAN NOT NULL DEFAULT FALSE,
			completed_at TIMESTAMPTZ,
			application_link TEXT NOT NULL DEFAULT '',
			form_data JSONB,
			email_consent BOOLEAN NOT NULL DEFAULT TRUE,
			sms_consent BOOLEAN NOT NULL DEFAULT TRUE,
			preferred_contact TEXT NOT NULL DEFAULT 'email',
			digital_signature TEXT NOT NULL DEFAULT '',
			consent_given BOOLEAN NOT NULL DEFAULT FALSE,
			consent_date TIMESTAMPTZ,
			event_link TEXT NOT NULL DEFAULT '',
			referrer TEXT NOT NULL DEFAULT '',
			utm_source TEXT NOT NULL DEFAULT '',
			utm_medium TEXT NOT NULL DEFAULT '',
			utm_campaign TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			last_activity TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS lead_status_history (
			id BIGSERIAL PRIMARY KEY,
			lead_id TEXT NOT NULL REFERENCES leads(lead_id) ON DELETE CASCADE,
			status TEXT NOT NULL,
			changed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			changed_by TEXT NOT NULL DEFAULT 'system',
			notes TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS lead_notes (
			id BIGSERIAL PRIMARY KEY,
			lead_id TEXT NOT NULL REFERENCES leads(lead_id) ON DELETE CASCADE,
			note TEXT NOT NULL,
			added_by TEXT NOT NULL DEFAULT 'system',
			added_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_event_id ON leads(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_student_college ON leads(student_college)`,
		`CREATE INDEX IF NOT EXISTS idx_lead_status_history_lead_id ON lead_status_history(lead_id, changed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_lead_notes_lead_id ON lead_notes(lead_id, added_at)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	fmt.Println("  Created tables: events, leads, lead_status_history, lead_notes")
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	now := time.Now().UTC()
	datePrefix := now.Format("20060102")

	events := []struct {
		eventID string
		title   string
		mode    string
		college string
		city    string
		state   string
		code    string
	}{
		{"KAT-" + datePrefix + "-001", "Campus Career Workshop", "offline", "IIT Delhi", "New Delhi", "Delhi", "WORKSHOP2026"},
		{"KAT-" + datePrefix + "-002", "Online Finance Bootcamp", "online", "", "", "", "FINANCE2026"},
	}

	for _, e := range events {
		_, err := conn.Exec(ctx, `
			INSERT INTO events (event_id, title, description, mode, location, duration, deadline, tags, college, city, state, verification_code, created_by)
			VALUES ($1, $2, 'Seeded event', $3, 'Online', '2 hours', $4, '{education}', $5, $6, $7, $8, 'seed')
			ON CONFLICT (event_id) DO NOTHING
		`, e.eventID, e.title, e.mode, now.AddDate(0, 1, 0), e.college, e.city, e.state, e.code)
		if err != nil {
			return fmt.Errorf("failed to seed event %s: %w", e.eventID, err)
		}
	}
	fmt.Printf("  Seeded %d events\n", len(events))

	leadPrefix := "LEAD-" + now.Format("2006-01-02")
	leads := []struct {
		leadID  string
		eventID string
		name    string
		email   string
		status  string
	}{
		{leadPrefix + "-001", events[0].eventID, "Asha Verma", "asha.verma@example.com", "registered"},
		{leadPrefix + "-002", events[0].eventID, "Rohan Iyer", "rohan.iyer@example.com", "started"},
		{leadPrefix + "-003", events[1].eventID, "Meera Nair", "meera.nair@example.com", "completed"},
	}

	for _, l := range leads {
		_, err := conn.Exec(ctx, `
			INSERT INTO leads (lead_id, event_id, student_name, student_email, student_phone, student_college, student_year, student_field, status)
			VALUES ($1, $2, $3, $4, '+911234567890', 'Seed College', '2nd Year', 'Computer Science', $5)
			ON CONFLICT (lead_id) DO NOTHING
		`, l.leadID, l.eventID, l.name, l.email, l.status)
		if err != nil {
			return fmt.Errorf("failed to seed lead %s: %w", l.leadID, err)
		}

		_, err = conn.Exec(ctx, `
			INSERT INTO lead_status_history (lead_id, status, changed_by)
			SELECT $1, $2, 'system'
			WHERE NOT EXISTS (SELECT 1 FROM lead_status_history WHERE lead_id = $1)
		`, l.leadID, l.status)
		if err != nil {
			return fmt.Errorf("failed to seed history for %s: %w", l.leadID, err)
		}
	}
	fmt.Printf("  Seeded %d leads\n", len(leads))

	return nil
}
