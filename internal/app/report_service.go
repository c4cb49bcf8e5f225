// internal/app/report_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"school_inspection_bot/internal/domain/period"
	"school_inspection_bot/internal/domain/report"
	domainTelegram "school_inspection_bot/internal/domain/telegram"
)

// Renderer turns an aggregated summary into a deliverable file.
type Renderer interface {
	Render(sum *report.Summary, generatedAt time.Time) (*report.Artifact, error)
}

// DeliveryOptions configures where and how hard the services try to deliver.
type DeliveryOptions struct {
	GroupChatID int64
	ReportsDir  string
	Attempts    int
	Backoff     time.Duration
}

// Delivery is the outcome of a report pipeline run.
type Delivery struct {
	RunID    string
	Summary  *report.Summary
	Artifact *report.Artifact
}

type ReportService struct {
	reports  report.Repository
	resolver period.Resolver
	renderer Renderer
	client   domainTelegram.Client
	delivery DeliveryOptions
	location *time.Location
	clock    func() time.Time
	logger   *logrus.Entry
}

func NewReportService(
	reports report.Repository,
	resolver period.Resolver,
	renderer Renderer,
	client domainTelegram.Client,
	delivery DeliveryOptions,
	location *time.Location,
	logger *logrus.Entry,
) *ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportService{
		reports:  reports,
		resolver: resolver,
		renderer: renderer,
		client:   client,
		delivery: delivery,
		location: location,
		clock:    time.Now,
		logger:   logger.WithField("component", "report_service"),
	}
}

// Generate resolves p against today and aggregates the matching reports.
// It returns ErrNoData when the period holds no reports.
func (s *ReportService) Generate(ctx context.Context, p period.Period, today time.Time) (*report.Summary, error) {
	rng, err := s.resolver.Resolve(p, today)
	if err != nil {
		return nil, err
	}

	records, err := s.reports.ListByVisitDateRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports for %s: %w", p, err)
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	ordered := make([]report.VisitReport, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].VisitDate.Equal(ordered[j].VisitDate) {
			return ordered[i].VisitDate.Before(ordered[j].VisitDate)
		}
		return ordered[i].SupervisorName < ordered[j].SupervisorName
	})

	return &report.Summary{
		Period:  p,
		Range:   rng,
		Reports: ordered,
		Counts:  report.CountSections(ordered),
	}, nil
}

// GenerateAndDeliver is the admin-facing pipeline: authorize, parse the period
// keyword, then Publish.
func (s *ReportService) GenerateAndDeliver(ctx context.Context, caller Caller, keyword string) (*Delivery, error) {
	if !caller.Admin {
		return nil, ErrNotAdmin
	}
	p, err := period.Parse(keyword)
	if err != nil {
		return nil, err
	}
	return s.Publish(ctx, p)
}

// Publish renders the summary for p and sends it to the group chat.
// A failed hand-off keeps the artifact under ReportsDir and returns a
// *DeliveryError alongside the Delivery. Panics are returned as errors.
func (s *ReportService) Publish(ctx context.Context, p period.Period) (result *Delivery, err error) {
	runID := uuid.NewString()
	logCtx := s.logger.WithFields(logrus.Fields{"run_id": runID, "period": string(p)})

	defer func() {
		if r := recover(); r != nil {
			logCtx.WithField("panic", r).Error("Report pipeline panicked")
			result = nil
			err = fmt.Errorf("report generation failed: %v", r)
		}
	}()

	now := s.clock().In(s.location)
	sum, err := s.Generate(ctx, p, period.DateOf(now))
	if err != nil {
		if errors.Is(err, ErrNoData) {
			logCtx.Info("No reports for period")
		} else {
			logCtx.WithError(err).Error("Failed to aggregate reports")
		}
		return nil, err
	}
	logCtx = logCtx.WithField("records", len(sum.Reports))

	artifact, err := s.renderer.Render(sum, now)
	if err != nil {
		logCtx.WithError(err).Error("Failed to render report")
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	result = &Delivery{RunID: runID, Summary: sum, Artifact: artifact}
	caption := Caption(sum)
	sendErr := retryDelivery(ctx, logCtx, s.delivery.Attempts, s.delivery.Backoff, func() error {
		return s.client.SendDocument(s.delivery.GroupChatID, artifact, caption)
	})
	if sendErr != nil {
		path, keepErr := s.keep(artifact)
		if keepErr != nil {
			logCtx.WithError(keepErr).Error("Failed to keep undelivered report")
			sendErr = errors.Join(sendErr, keepErr)
		}
		logCtx.WithError(sendErr).WithField("saved_path", path).Error("Report generated but not delivered")
		return result, &DeliveryError{Artifact: artifact, SavedPath: path, Err: sendErr}
	}

	logCtx.WithField("file_name", artifact.FileName).Info("Report delivered")
	return result, nil
}

// Caption is the text sent with a report artifact.
func Caption(sum *report.Summary) string {
	return fmt.Sprintf("📊 تقرير %s\n📅 %s\n📈 عدد التقارير: %d",
		sum.Period.Label(), sum.Range.String(), len(sum.Reports))
}

func (s *ReportService) keep(artifact *report.Artifact) (string, error) {
	dir := s.delivery.ReportsDir
	if dir == "" {
		dir = "reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports dir: %w", err)
	}
	path := filepath.Join(dir, artifact.FileName)
	if err := os.WriteFile(path, artifact.Content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
