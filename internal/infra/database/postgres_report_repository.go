// internal/infra/database/postgres_report_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"school_inspection_bot/internal/domain/period"
	"school_inspection_bot/internal/domain/report"
)

const createVisitReportsSQL = `CREATE TABLE IF NOT EXISTS visit_reports (
    id                BIGSERIAL PRIMARY KEY,
    submitter_id      BIGINT      NOT NULL,
    supervisor_name   TEXT        NOT NULL,
    visit_date        DATE        NOT NULL,
    school_name       TEXT        NOT NULL,
    maintenance_notes TEXT        NOT NULL DEFAULT '',
    ac_notes          TEXT        NOT NULL DEFAULT '',
    cleaning_notes    TEXT        NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createVisitDateIndexSQL = `CREATE INDEX IF NOT EXISTS visit_reports_visit_date_idx
    ON visit_reports (visit_date, supervisor_name)`

type PostgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(db *sql.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

// EnsureSchema creates the table and index if they are missing.
func (r *PostgresReportRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createVisitReportsSQL, createVisitDateIndexSQL} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: error creating visit_reports schema: %w", report.ErrStorage, err)
		}
	}
	return nil
}

// Append inserts rep; the id sequence makes concurrent appends safe.
func (r *PostgresReportRepository) Append(ctx context.Context, rep *report.VisitReport) (int64, error) {
	query := `INSERT INTO visit_reports (submitter_id, supervisor_name, visit_date, school_name,
                   maintenance_notes, ac_notes, cleaning_notes)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		rep.SubmitterID,
		rep.SupervisorName,
		rep.VisitDate.Format(period.DateLayout),
		rep.SchoolName,
		rep.MaintenanceNotes,
		rep.ACNotes,
		rep.CleaningNotes,
	).Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("%w: error inserting visit report: %w", report.ErrStorage, err)
	}
	return rep.ID, nil
}

func (r *PostgresReportRepository) ListByVisitDateRange(ctx context.Context, start, end time.Time) ([]report.VisitReport, error) {
	query := `SELECT id, submitter_id, supervisor_name, visit_date, school_name,
                    maintenance_notes, ac_notes, cleaning_notes, created_at
               FROM visit_reports
               WHERE visit_date BETWEEN $1 AND $2
               ORDER BY visit_date, supervisor_name, id`
	rows, err := r.db.QueryContext(ctx, query, start.Format(period.DateLayout), end.Format(period.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("%w: error querying visit reports by date range: %w", report.ErrStorage, err)
	}
	defer rows.Close()

	reports := make([]report.VisitReport, 0)
	for rows.Next() {
		var rep report.VisitReport
		if err := rows.Scan(
			&rep.ID, &rep.SubmitterID, &rep.SupervisorName, &rep.VisitDate, &rep.SchoolName,
			&rep.MaintenanceNotes, &rep.ACNotes, &rep.CleaningNotes, &rep.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: error scanning visit report row: %w", report.ErrStorage, err)
		}
		rep.VisitDate = period.DateOf(rep.VisitDate)
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating visit report rows: %w", report.ErrStorage, err)
	}
	return reports, nil
}
