package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school_inspection_bot/internal/domain/report"
)

var reportColumns = []string{
	"id", "submitter_id", "supervisor_name", "visit_date", "school_name",
	"maintenance_notes", "ac_notes", "cleaning_notes", "created_at",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresReportRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresReportRepository(db)
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	for i := 0; i < 2; i++ {
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS visit_reports`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`CREATE INDEX IF NOT EXISTS visit_reports_visit_date_idx`).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Failure(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))

	err := repo.EnsureSchema(context.Background())
	assert.ErrorIs(t, err, report.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	created := time.Date(2024, 12, 16, 9, 0, 0, 0, time.UTC)
	rep := &report.VisitReport{
		SubmitterID:      7,
		SupervisorName:   "A",
		VisitDate:        time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC),
		SchoolName:       "S1",
		MaintenanceNotes: "",
		ACNotes:          "leak",
		CleaningNotes:    "",
	}

	mock.ExpectQuery(`INSERT INTO visit_reports`).
		WithArgs(int64(7), "A", "2024-12-16", "S1", "", "leak", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), created))

	id, err := repo.Append(context.Background(), rep)

	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Equal(t, int64(11), rep.ID)
	assert.Equal(t, created, rep.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_FailureIsStorageError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO visit_reports`).WillReturnError(sql.ErrConnDone)

	_, err := repo.Append(context.Background(), &report.VisitReport{VisitDate: time.Now()})

	assert.ErrorIs(t, err, report.ErrStorage)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByVisitDateRange_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	start := time.Date(2024, 12, 13, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 19, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 12, 16, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(reportColumns).
		AddRow(int64(1), int64(7), "A", time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC), "S1", "", "leak", "", created).
		AddRow(int64(2), int64(8), "B", time.Date(2024, 12, 17, 0, 0, 0, 0, time.UTC), "S2", "door", "", "dust", created)

	mock.ExpectQuery(`SELECT (.+) FROM visit_reports WHERE visit_date BETWEEN`).
		WithArgs("2024-12-13", "2024-12-19").
		WillReturnRows(rows)

	reports, err := repo.ListByVisitDateRange(context.Background(), start, end)

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "A", reports[0].SupervisorName)
	assert.Equal(t, "leak", reports[0].ACNotes)
	assert.Equal(t, "", reports[0].MaintenanceNotes)
	assert.Equal(t, "B", reports[1].SupervisorName)
	assert.Equal(t, time.Date(2024, 12, 17, 0, 0, 0, 0, time.UTC), reports[1].VisitDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByVisitDateRange_EmptyResult(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WillReturnRows(sqlmock.NewRows(reportColumns))

	reports, err := repo.ListByVisitDateRange(context.Background(), time.Now(), time.Now())

	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Len(t, reports, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByVisitDateRange_QueryError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByVisitDateRange(context.Background(), time.Now(), time.Now())
	assert.ErrorIs(t, err, report.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
