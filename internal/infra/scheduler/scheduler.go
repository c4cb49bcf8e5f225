package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"school_inspection_bot/internal/app"
	"school_inspection_bot/internal/domain/period"
)

// DraftSweeper drops abandoned drafts.
type DraftSweeper interface {
	PurgeIdle(ctx context.Context) (int, error)
}

// SummaryPublisher generates a period summary and posts it to the group.
type SummaryPublisher interface {
	Publish(ctx context.Context, p period.Period) (*app.Delivery, error)
}

type ReportScheduler struct {
	cronEngine      *cron.Cron
	sweeper         DraftSweeper
	publisher       SummaryPublisher
	logger          *logrus.Entry
	location        *time.Location
	cronSpecSweep   string
	cronSpecWeekly  string // empty disables
	cronSpecLastDay string // runs daily, the job checks for the last day of the month; empty disables
	clock           func() time.Time
}

func NewReportScheduler(
	sweeper DraftSweeper,
	publisher SummaryPublisher,
	logger *logrus.Entry,
	location *time.Location,
	cronSpecSweep string, // e.g. "*/15 * * * *"
	cronSpecWeekly string, // e.g. "0 20 * * 4" (Thursday 20:00)
	cronSpecDailyCheckForLastDay string, // e.g. "0 21 * * *"
) *ReportScheduler {
	if location == nil {
		location = time.Local
	}
	return &ReportScheduler{
		cronEngine:      cron.New(cron.WithLocation(location)),
		sweeper:         sweeper,
		publisher:       publisher,
		logger:          logger.WithField("component", "scheduler"),
		location:        location,
		cronSpecSweep:   cronSpecSweep,
		cronSpecWeekly:  cronSpecWeekly,
		cronSpecLastDay: cronSpecDailyCheckForLastDay,
		clock:           time.Now,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *ReportScheduler) Start() error {
	s.logger.Info("Starting report scheduler...")

	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"draft_sweep", s.cronSpecSweep, s.runDraftSweep},
		{"weekly_summary", s.cronSpecWeekly, func() { s.publish(period.Week) }},
		{"month_end_check", s.cronSpecLastDay, func() { s.runMonthEndCheck(s.clock().In(s.location)) }},
	}
	for _, job := range jobs {
		if job.spec == "" {
			s.logger.WithField("job", job.name).Info("Job disabled")
			continue
		}
		if _, err := s.cronEngine.AddFunc(job.spec, job.fn); err != nil {
			return fmt.Errorf("could not add %s cron job %q: %w", job.name, job.spec, err)
		}
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Report scheduler started")
	return nil
}

func (s *ReportScheduler) runDraftSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	n, err := s.sweeper.PurgeIdle(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Idle draft sweep failed")
		return
	}
	if n > 0 {
		s.logger.WithField("purged", n).Info("Idle drafts purged")
	}
}

func (s *ReportScheduler) runMonthEndCheck(now time.Time) {
	if !IsLastDayOfMonth(now) {
		s.logger.Debugf("Today (Day %d) is not the last day of the month. Skipping monthly summary.", now.Day())
		return
	}
	s.logger.Info("Today is the last day of the month. Publishing monthly summary.")
	s.publish(period.Month)
}

func (s *ReportScheduler) publish(p period.Period) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logCtx := s.logger.WithField("period", string(p))
	res, err := s.publisher.Publish(ctx, p)

	var deliveryErr *app.DeliveryError
	switch {
	case err == nil:
		logCtx.WithField("run_id", res.RunID).Info("Scheduled summary published")
	case errors.Is(err, app.ErrNoData):
		logCtx.Info("No reports in period, scheduled summary skipped")
	case errors.As(err, &deliveryErr):
		logCtx.WithError(err).WithField("saved_path", deliveryErr.SavedPath).Error("Scheduled summary generated but not delivered")
	default:
		logCtx.WithError(err).Error("Scheduled summary failed")
	}
}

// IsLastDayOfMonth reports whether t falls on the final day of its month.
func IsLastDayOfMonth(t time.Time) bool {
	firstOfNextMonth := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	return t.Day() == firstOfNextMonth.AddDate(0, 0, -1).Day()
}

func (s *ReportScheduler) Stop() {
	s.logger.Info("Stopping report scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Report scheduler gracefully stopped.")
}
