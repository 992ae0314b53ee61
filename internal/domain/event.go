package domain

import (
	"time"
)

// Event modes
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
)

// EventTags is the fixed tag vocabulary an event may carry
var EventTags = []string{
	"education",
	"finance",
	"co-curriculum",
	"personality",
	"sports",
	"tech",
	"others",
}

// ValidEventTag reports whether tag belongs to the fixed vocabulary
func ValidEventTag(tag string) bool {
	for _, t := range EventTags {
		if t == tag {
			return true
		}
	}
	return false
}

// ValidEventMode reports whether mode is a known delivery mode
func ValidEventMode(mode string) bool {
	return mode == ModeOnline || mode == ModeOffline
}

// Event represents a student event with engagement counters.
// VerificationCode is the per-event secret required to confirm completion
// and is never serialized.
type Event struct {
	ID                 int64      `json:"-"`
	EventID            string     `json:"eventId"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Mode               string     `json:"mode"`
	Location           string     `json:"location"`
	Duration           string     `json:"duration"`
	Deadline           time.Time  `json:"deadline"`
	Tags               []string   `json:"tags"`
	College            string     `json:"college,omitempty"`
	City               string     `json:"city,omitempty"`
	State              string     `json:"state,omitempty"`
	StartDate          *time.Time `json:"startDate,omitempty"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	InterestedStudents int        `json:"interestedStudents"`
	RegisteredStudents int        `json:"registeredStudents"`
	CompletedStudents  int        `json:"completedStudents"`
	VerificationCode   string     `json:"-"`
	CreatedBy          string     `json:"createdBy,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// CreateEventRequest carries the fields an admin supplies when creating an event
type CreateEventRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Mode             string     `json:"mode"`
	Location         string     `json:"location"`
	Duration         string     `json:"duration"`
	Deadline         time.Time  `json:"deadline"`
	Tags             []string   `json:"tags"`
	College          string     `json:"college"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
	VerificationCode string     `json:"verificationCode"`
}

// UpdateEventRequest carries a partial event update. Nil fields are left
// untouched; the event code and creation metadata are immutable.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Mode        *string    `json:"mode"`
	Location    *string    `json:"location"`
	Duration    *string    `json:"duration"`
	Deadline    *time.Time `json:"deadline"`
	Tags        []string   `json:"tags"`
	College     *string    `json:"college"`
	City        *string    `json:"city"`
	State       *string    `json:"state"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// EventStats is an event together with its lead status breakdown
type EventStats struct {
	Event        *Event         `json:"event"`
	TotalLeads   int            `json:"totalLeads"`
	StatusCounts map[string]int `json:"statusCounts"`
}
