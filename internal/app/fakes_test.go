package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"school_inspection_bot/internal/domain/report"
	"school_inspection_bot/internal/infra/database"
	"school_inspection_bot/internal/infra/session"
)

var errSendFailed = errors.New("telegram unavailable")

type sentText struct {
	ChatID int64
	Text   string
}

type sentDoc struct {
	ChatID   int64
	FileName string
	Caption  string
}

// fakeClient fails the first failures calls, or every call when failures < 0.
type fakeClient struct {
	mu       sync.Mutex
	failures int
	calls    int
	texts    []sentText
	docs     []sentDoc
}

func (f *fakeClient) fail() bool {
	f.calls++
	if f.failures < 0 {
		return true
	}
	if f.failures > 0 {
		f.failures--
		return true
	}
	return false
}

func (f *fakeClient) SendText(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail() {
		return errSendFailed
	}
	f.texts = append(f.texts, sentText{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeClient) SendDocument(chatID int64, artifact *report.Artifact, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail() {
		return errSendFailed
	}
	f.docs = append(f.docs, sentDoc{ChatID: chatID, FileName: artifact.FileName, Caption: caption})
	return nil
}

// flakyRepository wraps the memory repository and can be told to fail or stall.
type flakyRepository struct {
	*database.MemoryReportRepository
	failAppend  bool
	failList    bool
	appendDelay time.Duration
}

func newFlakyRepository() *flakyRepository {
	return &flakyRepository{MemoryReportRepository: database.NewMemoryReportRepository()}
}

func (r *flakyRepository) Append(ctx context.Context, rep *report.VisitReport) (int64, error) {
	if r.failAppend {
		return 0, fmt.Errorf("%w: connection refused", report.ErrStorage)
	}
	if r.appendDelay > 0 {
		time.Sleep(r.appendDelay)
	}
	return r.MemoryReportRepository.Append(ctx, rep)
}

func (r *flakyRepository) ListByVisitDateRange(ctx context.Context, start, end time.Time) ([]report.VisitReport, error) {
	if r.failList {
		return nil, fmt.Errorf("%w: connection refused", report.ErrStorage)
	}
	return r.MemoryReportRepository.ListByVisitDateRange(ctx, start, end)
}

// flakyDrafts wraps the memory draft store and can refuse deletes.
type flakyDrafts struct {
	*session.MemoryDraftStore
	failDelete bool
}

func newFlakyDrafts() *flakyDrafts {
	return &flakyDrafts{MemoryDraftStore: session.NewMemoryDraftStore(0)}
}

func (d *flakyDrafts) Delete(ctx context.Context, submitterID int64) error {
	if d.failDelete {
		return errors.New("redis: connection reset")
	}
	return d.MemoryDraftStore.Delete(ctx, submitterID)
}

type fakeRenderer struct {
	panics   bool
	rendered []*report.Summary
}

func (f *fakeRenderer) Render(sum *report.Summary, generatedAt time.Time) (*report.Artifact, error) {
	if f.panics {
		panic("boom")
	}
	f.rendered = append(f.rendered, sum)
	return &report.Artifact{
		FileName: fmt.Sprintf("report_%s_%s.xlsx", sum.Period, generatedAt.Format("20060102")),
		Content:  []byte("xlsx"),
	}, nil
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
