// internal/app/errors.go
package app

import (
	"errors"
	"fmt"

	"school_inspection_bot/internal/domain/report"
)

// Application-level errors returned by the services.
var (
	ErrNotSupervisor   = errors.New("caller is not an authorized supervisor")
	ErrNotAdmin        = errors.New("caller is not an authorized admin")
	ErrDraftInProgress = errors.New("a draft submission is already in progress")
	ErrNoActiveDraft   = errors.New("no draft submission in progress")
	ErrNoData          = errors.New("no reports for the requested period")
)

// DeliveryError means the data is safe but could not be handed to the group.
// For report artifacts, SavedPath points at the locally kept copy when there is one.
type DeliveryError struct {
	Artifact  *report.Artifact
	SavedPath string
	Err       error
}

func (e *DeliveryError) Error() string {
	if e.SavedPath != "" {
		return fmt.Sprintf("delivery failed, kept at %s: %v", e.SavedPath, e.Err)
	}
	return fmt.Sprintf("delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
