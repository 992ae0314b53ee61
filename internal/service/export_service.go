package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"katalyst-be/internal/domain"
	"katalyst-be/internal/repository"
	apperrors "katalyst-be/pkg/errors"

	"go.uber.org/zap"
)

// exportColumns is the fixed CSV header, one row per lead joined with its event
var exportColumns = []string{
	"Lead ID",
	"Event ID",
	"Event Title",
	"Event College",
	"Event City",
	"Event State",
	"Event Start Date",
	"Student Name",
	"Student Email",
	"Student Phone",
	"Student College",
	"Year of Study",
	"Field of Study",
	"Lead Status",
	"Has Started Application",
	"Has Completed Application",
	"Application Started Date",
	"Application Completed Date",
	"Email Consent",
	"SMS Consent",
	"Digital Signature Given",
	"Lead Created Date",
	"Last Activity",
	"Age in Days",
	"Time in Current Status (Days)",
}

type exportService struct {
	leads  repository.LeadRepository
	logger *zap.Logger
}

// NewExportService creates a new export service
func NewExportService(leads repository.LeadRepository, logger *zap.Logger) ExportService {
	return &exportService{
		leads:  leads,
		logger: logger,
	}
}

// ExportLeads flattens matching leads joined with their events into CSV
func (s *exportService) ExportLeads(ctx context.Context, filter domain.LeadFilter) (*ExportResult, error) {
	rows, err := s.leads.ListWithEvents(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve leads for export", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFoundError("No leads found for export")
	}

	now := time.Now().UTC()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportColumns); err != nil {
		return nil, apperrors.NewInternalError("Failed to write export header", err)
	}
	for _, row := range rows {
		row.Lead.ComputeDerived(now)
		if err := w.Write(exportRow(row)); err != nil {
			return nil, apperrors.NewInternalError("Failed to write export row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.NewInternalError("Failed to render export", err)
	}

	s.logger.Info("leads exported", zap.Int("count", len(rows)))

	return &ExportResult{
		Filename: "leads-export-" + now.Format("2006-01-02") + ".csv",
		Data:     buf.Bytes(),
	}, nil
}

func exportRow(row *domain.LeadWithEvent) []string {
	lead := row.Lead

	eventTitle, eventCollege, eventCity, eventState := "N/A", "N/A", "N/A", "N/A"
	var eventStart *time.Time
	if row.Event != nil {
		eventTitle = orNA(row.Event.Title)
		eventCollege = orNA(row.Event.College)
		eventCity = orNA(row.Event.City)
		eventState = orNA(row.Event.State)
		eventStart = row.Event.StartDate
	}

	return []string{
		lead.LeadID,
		lead.EventID,
		eventTitle,
		eventCollege,
		eventCity,
		eventState,
		exportDatePtr(eventStart),
		lead.StudentInfo.Name,
		lead.StudentInfo.Email,
		lead.StudentInfo.Phone,
		lead.StudentInfo.College,
		lead.StudentInfo.Year,
		lead.StudentInfo.FieldOfStudy,
		string(lead.Status),
		yesNo(lead.Application.HasStarted),
		yesNo(lead.Application.HasCompleted),
		exportDatePtr(lead.Application.StartedAt),
		exportDatePtr(lead.Application.CompletedAt),
		yesNo(lead.Communication.EmailConsent),
		yesNo(lead.Communication.SMSConsent),
		yesNo(lead.Communication.ConsentGiven),
		exportDate(lead.CreatedAt),
		exportDate(lead.LastActivity),
		strconv.Itoa(lead.AgeInDays),
		strconv.Itoa(lead.TimeInCurrentStatus),
	}
}

func exportDate(t time.Time) string {
	return t.Format("1/2/2006")
}

func exportDatePtr(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return exportDate(*t)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
