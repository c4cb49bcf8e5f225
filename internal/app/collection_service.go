// internal/app/collection_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"school_inspection_bot/internal/domain/collection"
	"school_inspection_bot/internal/domain/period"
	"school_inspection_bot/internal/domain/report"
	domainTelegram "school_inspection_bot/internal/domain/telegram"
)

// DraftStore keeps at most one in-progress session per submitter.
// Get returns collection.ErrDraftNotFound when there is none.
type DraftStore interface {
	Get(ctx context.Context, submitterID int64) (*collection.Session, error)
	Save(ctx context.Context, s *collection.Session) error
	Delete(ctx context.Context, submitterID int64) error
	PurgeIdle(ctx context.Context) (int, error)
}

// CollectionService runs the guided visit-report conversation for supervisors
// and commits finished drafts. Calls for the same submitter are serialized.
type CollectionService struct {
	machine     *collection.Machine
	drafts      DraftStore
	reports     report.Repository
	client      domainTelegram.Client
	groupChatID int64
	location    *time.Location
	attempts    int
	backoff     time.Duration
	clock       func() time.Time
	logger      *logrus.Entry

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

func NewCollectionService(
	machine *collection.Machine,
	drafts DraftStore,
	reports report.Repository,
	client domainTelegram.Client,
	delivery DeliveryOptions,
	location *time.Location,
	logger *logrus.Entry,
) *CollectionService {
	if location == nil {
		location = time.UTC
	}
	return &CollectionService{
		machine:     machine,
		drafts:      drafts,
		reports:     reports,
		client:      client,
		groupChatID: delivery.GroupChatID,
		location:    location,
		attempts:    delivery.Attempts,
		backoff:     delivery.Backoff,
		clock:       time.Now,
		logger:      logger.WithField("component", "collection_service"),
		locks:       make(map[int64]*sync.Mutex),
	}
}

// lock takes the submitter's mutex and returns its unlock func.
func (s *CollectionService) lock(submitterID int64) func() {
	s.locksMu.Lock()
	l, ok := s.locks[submitterID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[submitterID] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *CollectionService) now() time.Time {
	return s.clock().In(s.location)
}

// Start opens a draft for a supervisor. If one is already open it is left
// untouched: the current step's prompt is returned with ErrDraftInProgress.
func (s *CollectionService) Start(ctx context.Context, caller Caller) (collection.Reply, error) {
	if !caller.Supervisor {
		return collection.Reply{}, ErrNotSupervisor
	}

	unlock := s.lock(caller.ID)
	defer unlock()

	existing, err := s.drafts.Get(ctx, caller.ID)
	switch {
	case err == nil && !existing.State.Terminal():
		return s.machine.Prompt(*existing), ErrDraftInProgress
	case err != nil && !errors.Is(err, collection.ErrDraftNotFound):
		return collection.Reply{}, fmt.Errorf("failed to check existing draft: %w", err)
	}

	sess, reply := s.machine.Start(caller.ID, s.now())
	if err := s.drafts.Save(ctx, &sess); err != nil {
		return collection.Reply{}, fmt.Errorf("failed to save new draft: %w", err)
	}
	s.logger.WithField("submitter_id", caller.ID).Info("Draft started")
	return reply, nil
}

// Handle feeds one event into the submitter's open draft.
//
// When committing fails with report.ErrStorage the draft stays in review and
// the returned reply is the review prompt again, so nothing has to be retyped.
// When the report is stored but the group announcement fails, the reply is
// the success reply and the error is a *DeliveryError.
func (s *CollectionService) Handle(ctx context.Context, submitterID int64, ev collection.Event) (collection.Reply, error) {
	unlock := s.lock(submitterID)
	defer unlock()

	sess, err := s.drafts.Get(ctx, submitterID)
	if err != nil {
		if errors.Is(err, collection.ErrDraftNotFound) {
			return collection.Reply{}, ErrNoActiveDraft
		}
		return collection.Reply{}, fmt.Errorf("failed to load draft: %w", err)
	}
	if sess.State.Terminal() {
		// Left behind by a failed delete; it must never commit again.
		if err := s.drafts.Delete(ctx, submitterID); err != nil {
			s.logger.WithError(err).WithField("submitter_id", submitterID).Warn("Failed to drop finished draft")
		}
		return collection.Reply{}, ErrNoActiveDraft
	}

	now := s.now()
	next, reply, action := s.machine.Transition(*sess, ev, period.DateOf(now))
	logCtx := s.logger.WithFields(logrus.Fields{
		"submitter_id": submitterID,
		"from_state":   sess.State.String(),
		"to_state":     next.State.String(),
	})

	switch action {
	case collection.ActionCommit:
		rep := next.Draft.ToReport(submitterID)
		if _, err := s.reports.Append(ctx, &rep); err != nil {
			logCtx.WithError(err).Error("Failed to commit report, draft kept for retry")
			return s.machine.Prompt(*sess), err
		}
		logCtx.WithField("report_id", rep.ID).Info("Report committed")

		if err := s.drafts.Delete(ctx, submitterID); err != nil {
			logCtx.WithError(err).Warn("Failed to drop committed draft, marking it finished")
			next.UpdatedAt = now
			if err := s.drafts.Save(ctx, &next); err != nil {
				logCtx.WithError(err).Error("Failed to mark committed draft finished")
			}
		}
		if err := s.announce(ctx, rep); err != nil {
			logCtx.WithError(err).Error("Report stored but group announcement failed")
			return reply, &DeliveryError{Err: err}
		}
		return reply, nil

	case collection.ActionCancel:
		if err := s.drafts.Delete(ctx, submitterID); err != nil {
			return reply, fmt.Errorf("failed to drop cancelled draft: %w", err)
		}
		logCtx.Info("Draft cancelled")
		return reply, nil
	}

	next.UpdatedAt = now
	if err := s.drafts.Save(ctx, &next); err != nil {
		return collection.Reply{}, fmt.Errorf("failed to save draft: %w", err)
	}
	logCtx.Debug("Draft advanced")
	return reply, nil
}

// Cancel aborts the submitter's open draft.
func (s *CollectionService) Cancel(ctx context.Context, submitterID int64) (collection.Reply, error) {
	return s.Handle(ctx, submitterID, collection.Event{Kind: collection.EventCancel})
}

// PurgeIdle drops drafts that have been idle past the store's timeout.
func (s *CollectionService) PurgeIdle(ctx context.Context) (int, error) {
	n, err := s.drafts.PurgeIdle(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge idle drafts: %w", err)
	}
	return n, nil
}

func (s *CollectionService) announce(ctx context.Context, rep report.VisitReport) error {
	text := collection.Announcement(rep)
	return retryDelivery(ctx, s.logger, s.attempts, s.backoff, func() error {
		return s.client.SendText(s.groupChatID, text)
	})
}
