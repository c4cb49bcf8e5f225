package report

import (
	"context"
	"errors"
	"time"
)

// ErrStorage wraps every persistence failure surfaced by a Repository.
var ErrStorage = errors.New("report storage failure")

// Repository is the append-only store of committed visit reports.
type Repository interface {
	// EnsureSchema prepares storage; calling it again is a no-op.
	EnsureSchema(ctx context.Context) error
	// Append assigns ID and CreatedAt on r and persists it.
	Append(ctx context.Context, r *VisitReport) (int64, error)
	// ListByVisitDateRange returns reports with start <= VisitDate <= end,
	// ordered by visit date then supervisor name.
	ListByVisitDateRange(ctx context.Context, start, end time.Time) ([]VisitReport, error)
}
