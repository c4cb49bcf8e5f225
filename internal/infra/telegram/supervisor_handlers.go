// internal/infra/telegram/supervisor_handlers.go
package telegram

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"school_inspection_bot/internal/app"
	"school_inspection_bot/internal/domain/collection"
	"school_inspection_bot/internal/domain/report"
)

const (
	msgSupervisorsOnly = "⚠️ عذراً، هذا الأمر متاح للمشرفين الميدانيين فقط"
	msgDraftInProgress = "لديك تقرير قيد الإدخال، أكمل من حيث توقفت أو أرسل /cancel لإلغائه"
	msgNothingToCancel = "لا توجد عملية جارية لإلغائها"
	msgCommitFailed    = "❌ تعذر حفظ التقرير حالياً. بياناتك محفوظة، حاول الاعتماد مرة أخرى."
	msgNotAnnounced    = "⚠️ تم حفظ التقرير لكن تعذر نشره في القروب."
	msgGenericFailure  = "❌ حدث خطأ، يرجى المحاولة لاحقاً."
)

// RegisterSupervisorHandlers wires /report, /cancel and free text into the
// collection conversation.
func RegisterSupervisorHandlers(ctx context.Context, b *telebot.Bot, svc *app.CollectionService, access *app.AccessList, baseLogger *logrus.Entry) {
	b.Handle("/report", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/report",
			"sender_id": c.Sender().ID,
		})

		reply, err := svc.Start(ctx, access.Caller(c.Sender().ID))
		switch {
		case err == nil:
			handlerLogger.Info("Report draft started")
			return sendReply(c, reply)
		case errors.Is(err, app.ErrNotSupervisor):
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgSupervisorsOnly)
		case errors.Is(err, app.ErrDraftInProgress):
			handlerLogger.Info("Draft already in progress, resending current step")
			if err := c.Send(msgDraftInProgress); err != nil {
				return err
			}
			return sendReply(c, reply)
		default:
			handlerLogger.WithError(err).Error("Failed to start report draft")
			return c.Send(msgGenericFailure)
		}
	})

	b.Handle("/cancel", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/cancel",
			"sender_id": c.Sender().ID,
		})

		reply, err := svc.Cancel(ctx, c.Sender().ID)
		if errors.Is(err, app.ErrNoActiveDraft) {
			return c.Send(msgNothingToCancel, &telebot.ReplyMarkup{RemoveKeyboard: true})
		}
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to cancel draft")
			return c.Send(msgGenericFailure)
		}
		handlerLogger.Info("Draft cancelled")
		return sendReply(c, reply)
	})

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "text",
			"sender_id": c.Sender().ID,
		})
		// Unregistered commands are not draft input.
		if strings.HasPrefix(c.Text(), "/") {
			handlerLogger.Debug("Unknown command ignored")
			return nil
		}
		ev := collection.Event{Kind: collection.EventText, Payload: c.Text()}
		return handleCollectionEvent(ctx, c, svc, ev, handlerLogger, false)
	})
}

// handleCollectionEvent runs ev through the sender's draft and answers in the
// chat. From a callback, final replies replace the review message.
func handleCollectionEvent(ctx context.Context, c telebot.Context, svc *app.CollectionService, ev collection.Event, logger *logrus.Entry, fromCallback bool) error {
	reply, err := svc.Handle(ctx, c.Sender().ID, ev)
	if errors.Is(err, app.ErrNoActiveDraft) {
		logger.Debug("Message outside of a draft ignored")
		return nil
	}

	var deliveryErr *app.DeliveryError
	switch {
	case err == nil:
	case errors.Is(err, report.ErrStorage):
		logger.WithError(err).Error("Report could not be stored")
		if sendErr := c.Send(msgCommitFailed); sendErr != nil {
			return sendErr
		}
		return sendReply(c, reply)
	case errors.As(err, &deliveryErr):
		logger.WithError(err).Warn("Report stored but not announced")
		if sendErr := answer(c, reply, fromCallback); sendErr != nil {
			return sendErr
		}
		return c.Send(msgNotAnnounced)
	default:
		logger.WithError(err).Error("Failed to process draft input")
		return c.Send(msgGenericFailure)
	}

	return answer(c, reply, fromCallback)
}

func answer(c telebot.Context, reply collection.Reply, fromCallback bool) error {
	if fromCallback && !reply.Inline && c.Message() != nil {
		return c.Edit(reply.Text)
	}
	return sendReply(c, reply)
}
