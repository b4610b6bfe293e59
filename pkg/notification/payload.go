package notification

import (
	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

// ReportPayload is the fully assembled report as the relay renders it. Photo URLs are resolved.
type ReportPayload struct {
	ReportID         string                        `json:"report_id,omitempty"`
	ShiftStage       string                        `json:"shift_stage"`
	ReporterName     string                        `json:"reporter_name"`
	Date             string                        `json:"date"`
	Timestamp        string                        `json:"timestamp"`
	SummaryForBoss   string                        `json:"summary_for_boss"`
	Issues           string                        `json:"issues"`
	BusyLevel        string                        `json:"busy_level,omitempty"`
	Photos           []reportTypes.PhotoEntry      `json:"photos"`
	ChecklistDetails []reportTypes.ChecklistDetail `json:"checklist_details,omitempty"`
}

// PayloadFromReport builds the relay payload of a stored report, including the checklist view.
func PayloadFromReport(r reportTypes.Report) ReportPayload {
	return ReportPayload{
		ReportID:         r.ID.Hex(),
		ShiftStage:       r.ShiftStage.Label(),
		ReporterName:     r.ReporterName,
		Date:             r.Date,
		Timestamp:        r.Timestamp,
		SummaryForBoss:   r.SummaryForBoss,
		Issues:           r.Issues,
		BusyLevel:        string(r.BusyLevel),
		Photos:           r.Photos,
		ChecklistDetails: reportTypes.ChecklistDetails(r.ShiftStage, r.Checklist),
	}
}

// StageLabel accepts either a stage key or a display label and returns the display form.
func (p ReportPayload) StageLabel() string {
	if stage, ok := reportTypes.ParseShiftStage(p.ShiftStage); ok {
		return stage.Label()
	}
	return p.ShiftStage
}

// CheckedCount returns checked and total counts of the checklist details.
func (p ReportPayload) CheckedCount() (checked int, total int) {
	for _, d := range p.ChecklistDetails {
		if d.Checked {
			checked++
		}
	}
	return checked, len(p.ChecklistDetails)
}

func orDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
