// internal/domain/collection/state.go
package collection

import (
	"errors"
	"strings"
	"time"

	"school_inspection_bot/internal/domain/report"
)

// ErrDraftNotFound is returned by draft stores when a submitter has no live draft.
var ErrDraftNotFound = errors.New("draft session not found")

// State is a step of the visit-report conversation.
type State int

const (
	StateSupervisorName State = iota
	StateVisitDate
	StateSchoolName
	StateMaintenanceNotes
	StateACNotes
	StateCleaningNotes
	StateReviewAndConfirm
	StateCommitted
	StateCancelled
)

var stateNames = [...]string{
	"SUPERVISOR_NAME",
	"VISIT_DATE",
	"SCHOOL_NAME",
	"MAINTENANCE_NOTES",
	"AC_NOTES",
	"CLEANING_NOTES",
	"REVIEW_AND_CONFIRM",
	"COMMITTED",
	"CANCELLED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Terminal is true for Committed and Cancelled.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateCancelled
}

// Draft is the report being assembled. It is only ever visible to the session
// that owns it.
type Draft struct {
	SupervisorName   string    `json:"supervisor_name,omitempty"`
	VisitDate        time.Time `json:"visit_date,omitempty"`
	SchoolName       string    `json:"school_name,omitempty"`
	MaintenanceNotes string    `json:"maintenance_notes,omitempty"`
	ACNotes          string    `json:"ac_notes,omitempty"`
	CleaningNotes    string    `json:"cleaning_notes,omitempty"`
}

// Complete is true once all six fields have been staged.
func (d Draft) Complete() bool {
	return strings.TrimSpace(d.SupervisorName) != "" &&
		!d.VisitDate.IsZero() &&
		strings.TrimSpace(d.SchoolName) != "" &&
		d.MaintenanceNotes != "" &&
		d.ACNotes != "" &&
		d.CleaningNotes != ""
}

// ToReport converts the staged fields into an uncommitted VisitReport.
func (d Draft) ToReport(submitterID int64) report.VisitReport {
	return report.VisitReport{
		SubmitterID:      submitterID,
		SupervisorName:   d.SupervisorName,
		VisitDate:        d.VisitDate,
		SchoolName:       d.SchoolName,
		MaintenanceNotes: d.MaintenanceNotes,
		ACNotes:          d.ACNotes,
		CleaningNotes:    d.CleaningNotes,
	}
}

// Session is one supervisor's in-progress submission.
type Session struct {
	SubmitterID int64 `json:"submitter_id"`
	State       State `json:"state"`
	Draft       Draft `json:"draft"`
	// ManualEntry marks the free-text sub-step of SupervisorName or VisitDate.
	ManualEntry bool      `json:"manual_entry,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventKind distinguishes how input reached the bot.
type EventKind int

const (
	EventText   EventKind = iota // typed text or a reply-keyboard button
	EventChoice                  // inline button callback data
	EventCancel                  // explicit /cancel command
)

// Event is a single input addressed to a session.
type Event struct {
	Kind    EventKind
	Payload string
}

// Choice is one button offered with a prompt. Data is only meaningful for
// inline buttons; reply-keyboard buttons send their Label back as text.
type Choice struct {
	Label string
	Data  string
}

// Reply is what the transport should show the user after a step.
type Reply struct {
	Text           string
	Choices        [][]Choice
	Inline         bool
	RemoveKeyboard bool
}

// Action is the side effect the caller must perform after a transition.
type Action int

const (
	ActionNone Action = iota
	ActionCommit
	ActionCancel
)
