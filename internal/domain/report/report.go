package report

import (
	"time"
)

// VisitReport is a committed field-inspection report. It is never updated or
// deleted once the repository has assigned its ID.
type VisitReport struct {
	ID               int64
	SubmitterID      int64 // Telegram ID of the supervisor session
	SupervisorName   string
	VisitDate        time.Time // calendar date, midnight UTC
	SchoolName       string
	MaintenanceNotes string
	ACNotes          string
	CleaningNotes    string
	CreatedAt        time.Time
}

// Note returns the report's note for category c.
func (r VisitReport) Note(c Category) string {
	switch c {
	case CategoryMaintenance:
		return r.MaintenanceNotes
	case CategoryAC:
		return r.ACNotes
	case CategoryCleaning:
		return r.CleaningNotes
	}
	return ""
}
