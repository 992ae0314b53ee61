package domain

import (
	"time"
)

// LeadStatus is a lead's position in the conversion funnel
type LeadStatus string

const (
	StatusRegistered LeadStatus = "registered"
	StatusStarted    LeadStatus = "started"
	StatusCompleted  LeadStatus = "completed"
	StatusDropped    LeadStatus = "dropped"
)

// AllStatuses lists the funnel statuses in funnel order
var AllStatuses = []LeadStatus{StatusRegistered, StatusStarted, StatusCompleted, StatusDropped}

// Valid reports whether s is one of the four funnel statuses
func (s LeadStatus) Valid() bool {
	switch s {
	case StatusRegistered, StatusStarted, StatusCompleted, StatusDropped:
		return true
	}
	return false
}

// StudyYears is the year-of-study vocabulary
var StudyYears = []string{"1st Year", "2nd Year", "3rd Year", "4th Year", "Final Year", "Other"}

// ValidStudyYear reports whether year belongs to the vocabulary
func ValidStudyYear(year string) bool {
	for _, y := range StudyYears {
		if y == year {
			return true
		}
	}
	return false
}

// Preferred contact channels
const (
	ContactEmail = "email"
	ContactSMS   = "sms"
	ContactBoth  = "both"
)

// SystemActor is the attribution used when no admin actor drove a change
const SystemActor = "system"

// StudentInfo is the student snapshot embedded in a lead
type StudentInfo struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	College      string `json:"college"`
	Year         string `json:"year"`
	FieldOfStudy string `json:"fieldOfStudy"`
}

// StatusChange is one entry in a lead's append-only status history
type StatusChange struct {
	Status    LeadStatus `json:"status"`
	ChangedAt time.Time  `json:"changedAt"`
	ChangedBy string     `json:"changedBy"`
	Notes     string     `json:"notes,omitempty"`
}

// Application tracks the student's application progress for a lead
type Application struct {
	HasStarted      bool                   `json:"hasStarted"`
	StartedAt       *time.Time             `json:"startedAt,omitempty"`
	HasCompleted    bool                   `json:"hasCompleted"`
	CompletedAt     *time.Time             `json:"completedAt,omitempty"`
	ApplicationLink string                 `json:"applicationLink,omitempty"`
	FormData        map[string]interface{} `json:"formData,omitempty"`
}

// Communication holds consent flags and contact preferences
type Communication struct {
	EmailConsent     bool       `json:"emailConsent"`
	SMSConsent       bool       `json:"smsConsent"`
	PreferredContact string     `json:"preferredContact"`
	DigitalSignature string     `json:"digitalSignature,omitempty"`
	ConsentGiven     bool       `json:"consentGiven"`
	ConsentDate      *time.Time `json:"consentDate,omitempty"`
}

// Source holds attribution for where the lead came from
type Source struct {
	EventLink   string `json:"eventLink,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
	UTMSource   string `json:"utmSource,omitempty"`
	UTMMedium   string `json:"utmMedium,omitempty"`
	UTMCampaign string `json:"utmCampaign,omitempty"`
}

// AdminNote is a free-form note attached to a lead by an admin
type AdminNote struct {
	Note    string    `json:"note"`
	AddedBy string    `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}

// Lead is one prospective student's interest record for one event, tracked
// through the conversion funnel. Status is only ever assigned through the
// history-append path; every status the record has held (including the
// initial one) appears in StatusHistory in chronological order.
type Lead struct {
	ID            int64          `json:"-"`
	LeadID        string         `json:"leadId"`
	EventID       string         `json:"eventId"`
	StudentInfo   StudentInfo    `json:"studentInfo"`
	Status        LeadStatus     `json:"status"`
	StatusHistory []StatusChange `json:"statusHistory,omitempty"`
	Application   Application    `json:"application"`
	Communication Communication  `json:"communication"`
	Source        Source         `json:"source"`
	AdminNotes    []AdminNote    `json:"adminNotes,omitempty"`
	Tags          []string       `json:"tags"`
	IsActive      bool           `json:"isActive"`
	LastActivity  time.Time      `json:"lastActivity"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`

	// Derived, computed on read and never stored
	AgeInDays           int `json:"ageInDays"`
	TimeInCurrentStatus int `json:"timeInCurrentStatus"`

	// Timestamp of the latest history entry, carried by listing queries
	// that do not load the full history
	LastStatusAt *time.Time `json:"-"`
}

// LeadWithEvent joins a lead to its event for export. Event is nil when the
// event row no longer resolves.
type LeadWithEvent struct {
	Lead  *Lead
	Event *Event
}

// ComputeDerived fills the derived day counters relative to now
func (l *Lead) ComputeDerived(now time.Time) {
	l.AgeInDays = ceilDays(now.Sub(l.CreatedAt))
	switch {
	case len(l.StatusHistory) > 0:
		last := l.StatusHistory[len(l.StatusHistory)-1]
		l.TimeInCurrentStatus = ceilDays(now.Sub(last.ChangedAt))
	case l.LastStatusAt != nil:
		l.TimeInCurrentStatus = ceilDays(now.Sub(*l.LastStatusAt))
	default:
		l.TimeInCurrentStatus = 0
	}
}

func ceilDays(d time.Duration) int {
	if d < 0 {
		d = -d
	}
	days := d / (24 * time.Hour)
	if d%(24*time.Hour) != 0 {
		days++
	}
	return int(days)
}

// RegisterLeadRequest is submitted when a student expresses interest in an
// event. Consent flags are pointers so an omitted flag defaults to opted in.
type RegisterLeadRequest struct {
	StudentInfo   StudentInfo           `json:"studentInfo"`
	Communication RegisterCommunication `json:"communication"`
	Source        Source                `json:"source"`
	Tags          []string              `json:"tags"`
}

// RegisterCommunication is the consent block of a registration request
type RegisterCommunication struct {
	EmailConsent     *bool  `json:"emailConsent"`
	SMSConsent       *bool  `json:"smsConsent"`
	PreferredContact string `json:"preferredContact"`
	DigitalSignature string `json:"digitalSignature"`
}

// UpdateStatusRequest moves a lead through the funnel
type UpdateStatusRequest struct {
	Status LeadStatus `json:"status"`
	Notes  string     `json:"notes"`
}

// AddNoteRequest attaches an admin note to a lead
type AddNoteRequest struct {
	Note string `json:"note"`
}

// LeadFilter selects leads for listing, analytics and export. String fields
// are exact matches except College/FieldOfStudy (substring, case-insensitive)
// and Search (substring across name/email/phone/college/field).
type LeadFilter struct {
	EventID      string
	Status       LeadStatus
	College      string
	Year         string
	FieldOfStudy string
	Search       string
	StartDate    *time.Time
	EndDate      *time.Time
}

// LeadSort orders a lead listing. Field must come from the allow-list the
// handler enforces.
type LeadSort struct {
	Field string
	Desc  bool
}

// DefaultLeadSort is creation time, newest first
func DefaultLeadSort() LeadSort {
	return LeadSort{Field: "createdAt", Desc: true}
}

// Pagination is the page metadata returned with every listing
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalLeads  int  `json:"totalLeads"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// LeadPage is one page of leads plus pagination metadata
type LeadPage struct {
	Leads      []*Lead    `json:"leads"`
	Pagination Pagination `json:"pagination"`
}

// EventLeadPage additionally carries the per-event status breakdown
type EventLeadPage struct {
	Event           *Event         `json:"event"`
	Leads           []*Lead        `json:"leads"`
	Pagination      Pagination     `json:"pagination"`
	StatusBreakdown map[string]int `json:"statusBreakdown"`
}
