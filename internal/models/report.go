package models

import (
	"time"
)

// ReportStatus is the lifecycle state of a report
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusFailed    ReportStatus = "failed"
)

// IsTerminal reports whether no further mutation is allowed.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusCompleted || s == ReportStatusFailed
}

// Report is one generation request and its result.
// Status starts pending and transitions exactly once to completed or failed.
type Report struct {
	ID        string       `json:"id" badgerhold:"key"`      // rpt_<uuid>
	Owner     string       `json:"owner" badgerhold:"index"` // Requesting user ID
	Ticker    string       `json:"ticker"`                   // Ticker as submitted (e.g., "AAL US")
	Status    ReportStatus `json:"status"`
	Content   string       `json:"content"` // Narrative when completed, "Error: ..." when failed
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ReportSummary is the list view of a report without its content
type ReportSummary struct {
	ID        string       `json:"id"`
	Owner     string       `json:"owner"`
	Ticker    string       `json:"ticker"`
	Status    ReportStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// Summary returns the list view of the report
func (r *Report) Summary() ReportSummary {
	return ReportSummary{
		ID:        r.ID,
		Owner:     r.Owner,
		Ticker:    r.Ticker,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}
