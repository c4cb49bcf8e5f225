package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"school_inspection_bot/internal/domain/period"
	"school_inspection_bot/internal/domain/report"
)

// MemoryReportRepository keeps reports in-process. It backs STORAGE_BACKEND=memory
// and the service tests.
type MemoryReportRepository struct {
	mu      sync.RWMutex
	nextID  int64
	reports []report.VisitReport
	now     func() time.Time
}

func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{now: time.Now}
}

func (m *MemoryReportRepository) EnsureSchema(ctx context.Context) error {
	return nil
}

func (m *MemoryReportRepository) Append(ctx context.Context, rep *report.VisitReport) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	rep.ID = m.nextID
	rep.CreatedAt = m.now().UTC()
	rep.VisitDate = period.DateOf(rep.VisitDate)
	m.reports = append(m.reports, *rep)
	return rep.ID, nil
}

// ListByVisitDateRange returns copies; callers cannot reach stored rows.
func (m *MemoryReportRepository) ListByVisitDateRange(ctx context.Context, start, end time.Time) ([]report.VisitReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rng := period.Range{Start: period.DateOf(start), End: period.DateOf(end)}
	res := make([]report.VisitReport, 0)
	for _, rep := range m.reports {
		if rng.Contains(rep.VisitDate) {
			res = append(res, rep)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].VisitDate.Equal(res[j].VisitDate) {
			return res[i].VisitDate.Before(res[j].VisitDate)
		}
		if res[i].SupervisorName != res[j].SupervisorName {
			return res[i].SupervisorName < res[j].SupervisorName
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}
