package telegram

import (
	"context"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"school_inspection_bot/internal/app"
	"school_inspection_bot/internal/domain/collection"
)

// RegisterCallbackHandler routes every inline button press: review
// confirm/cancel go to the draft, summary buttons to the report pipeline.
func RegisterCallbackHandler(ctx context.Context, b *telebot.Bot, collectionSvc *app.CollectionService, reportSvc *app.ReportService, access *app.AccessList, baseLogger *logrus.Entry) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		unique, payload := parseCallback(c.Callback().Data)
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "callback",
			"sender_id": c.Sender().ID,
			"callback":  unique,
		})

		if err := c.Respond(); err != nil {
			handlerLogger.WithError(err).Warn("Failed to acknowledge callback")
		}

		switch unique {
		case collection.ConfirmData, collection.CancelReviewData:
			ev := collection.Event{Kind: collection.EventChoice, Payload: unique}
			return handleCollectionEvent(ctx, c, collectionSvc, ev, handlerLogger, true)
		case summaryCallback:
			return runSummary(ctx, c, reportSvc, access.Caller(c.Sender().ID), payload, handlerLogger)
		}

		handlerLogger.Warn("Unhandled callback data")
		return nil
	})
}
