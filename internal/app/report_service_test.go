package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school_inspection_bot/internal/domain/period"
	"school_inspection_bot/internal/domain/report"
)

var admin = Caller{ID: 9, Admin: true}

type reportFixture struct {
	svc      *ReportService
	repo     *flakyRepository
	renderer *fakeRenderer
	client   *fakeClient
	dir      string
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	f := &reportFixture{
		repo:     newFlakyRepository(),
		renderer: &fakeRenderer{},
		client:   &fakeClient{},
		dir:      t.TempDir(),
	}
	f.svc = NewReportService(
		f.repo,
		period.NewResolver(time.Friday),
		f.renderer,
		f.client,
		DeliveryOptions{GroupChatID: groupChatID, ReportsDir: f.dir, Attempts: 3},
		time.UTC,
		quietLogger(),
	)
	// Wednesday
	f.svc.clock = fixedClock(time.Date(2024, 12, 18, 20, 0, 0, 0, time.UTC))
	return f
}

func (f *reportFixture) seed(t *testing.T, reports ...report.VisitReport) {
	t.Helper()
	for _, r := range reports {
		r := r
		_, err := f.repo.Append(context.Background(), &r)
		require.NoError(t, err)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekExample() []report.VisitReport {
	return []report.VisitReport{
		{SupervisorName: "B", VisitDate: day(2024, 12, 17), SchoolName: "S2", MaintenanceNotes: "door", ACNotes: "لا يوجد", CleaningNotes: "dust"},
		{SupervisorName: "A", VisitDate: day(2024, 12, 16), SchoolName: "S1", MaintenanceNotes: "", ACNotes: "leak", CleaningNotes: "  "},
		{SupervisorName: "C", VisitDate: day(2024, 12, 12), SchoolName: "S3", MaintenanceNotes: "old week"},
	}
}

func TestGenerate_WeekExample(t *testing.T) {
	f := newReportFixture(t)
	f.seed(t, weekExample()...)

	sum, err := f.svc.Generate(context.Background(), period.Week, day(2024, 12, 18))
	require.NoError(t, err)

	assert.Equal(t, day(2024, 12, 13), sum.Range.Start)
	assert.Equal(t, day(2024, 12, 19), sum.Range.End)
	require.Len(t, sum.Reports, 2)
	assert.Equal(t, "A", sum.Reports[0].SupervisorName)
	assert.Equal(t, "B", sum.Reports[1].SupervisorName)
	assert.Equal(t, report.SectionCounts{Maintenance: 1, AC: 1, Cleaning: 1}, sum.Counts)
}

func TestGenerate_EmptyPeriod(t *testing.T) {
	f := newReportFixture(t)
	f.seed(t, weekExample()...)

	_, err := f.svc.Generate(context.Background(), period.Month, day(2025, 1, 10))

	assert.ErrorIs(t, err, ErrNoData)
}

func TestGenerate_InvalidPeriod(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.Generate(context.Background(), period.Period("year"), day(2024, 12, 18))

	assert.ErrorIs(t, err, period.ErrInvalidPeriod)
}

func TestGenerate_StorageFailure(t *testing.T) {
	f := newReportFixture(t)
	f.repo.failList = true

	_, err := f.svc.Generate(context.Background(), period.Today, day(2024, 12, 18))

	assert.ErrorIs(t, err, report.ErrStorage)
}

func TestGenerateAndDeliver_RequiresAdmin(t *testing.T) {
	f := newReportFixture(t)
	f.seed(t, weekExample()...)

	_, err := f.svc.GenerateAndDeliver(context.Background(), Caller{ID: 42, Supervisor: true}, "week")

	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Empty(t, f.renderer.rendered)
	assert.Empty(t, f.client.docs)
}

func TestGenerateAndDeliver_UnknownKeyword(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.GenerateAndDeliver(context.Background(), admin, "year")

	assert.ErrorIs(t, err, period.ErrInvalidPeriod)
}

func TestGenerateAndDeliver_NoDataProducesNoArtifact(t *testing.T) {
	f := newReportFixture(t)

	res, err := f.svc.GenerateAndDeliver(context.Background(), admin, "month")

	assert.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, res)
	assert.Empty(t, f.renderer.rendered)
	assert.Empty(t, f.client.docs)
}

func TestGenerateAndDeliver_Delivers(t *testing.T) {
	f := newReportFixture(t)
	f.seed(t, weekExample()...)

	res, err := f.svc.GenerateAndDeliver(context.Background(), admin, "week")
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Summary.Reports, 2)
	require.Len(t, f.client.docs, 1)
	assert.Equal(t, groupChatID, f.client.docs[0].ChatID)
	assert.Equal(t, res.Artifact.FileName, f.client.docs[0].FileName)
	assert.Contains(t, f.client.docs[0].Caption, "الأسبوع")
	assert.Contains(t, f.client.docs[0].Caption, "عدد التقارير: 2")

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "delivered artifacts are not kept locally")
}

func TestGenerateAndDeliver_RetriesTransientFailure(t *testing.T) {
	f := newReportFixture(t)
	f.seed(t, weekExample()...)
	f.client.failures = 2

	_, err := f.svc.GenerateAndDeliver(context.Background(), admin, "week")

	require.NoError(t, err)
	assert.Equal(t, 3, f.client.calls)
	assert.Len(t, f.client.docs, 1)
}

func TestGenerateAndDeliver_DeliveryFailureKeepsArtifact(t *testing.T) {
	f := newReportFixture(t)
	f.seed(t, weekExample()...)
	f.client.failures = -1

	res, err := f.svc.GenerateAndDeliver(context.Background(), admin, "week")

	var deliveryErr *DeliveryError
	require.True(t, errors.As(err, &deliveryErr))
	assert.ErrorIs(t, err, errSendFailed)
	assert.Equal(t, 3, f.client.calls)
	require.NotNil(t, res)
	assert.Same(t, res.Artifact, deliveryErr.Artifact)

	assert.Equal(t, filepath.Join(f.dir, res.Artifact.FileName), deliveryErr.SavedPath)
	content, readErr := os.ReadFile(deliveryErr.SavedPath)
	require.NoError(t, readErr)
	assert.Equal(t, res.Artifact.Content, content)
}

func TestGenerateAndDeliver_PanicBecomesError(t *testing.T) {
	f := newReportFixture(t)
	f.seed(t, weekExample()...)
	f.renderer.panics = true

	res, err := f.svc.GenerateAndDeliver(context.Background(), admin, "week")

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "boom")
}

func TestCaption(t *testing.T) {
	sum := &report.Summary{
		Period:  period.Today,
		Range:   period.Range{Start: day(2024, 12, 18), End: day(2024, 12, 18)},
		Reports: make([]report.VisitReport, 4),
	}
	assert.Equal(t, "📊 تقرير اليوم\n📅 2024-12-18 → 2024-12-18\n📈 عدد التقارير: 4", Caption(sum))
}
