package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"school_inspection_bot/internal/app"
	"school_inspection_bot/internal/domain/period"
)

const (
	summaryCallback  = "summary"
	msgAdminsOnly    = "⚠️ هذا الأمر متاح للمدير فقط"
	msgGenerating    = "⏳ جاري إنشاء التقرير..."
	msgChooseSummary = "اختر نوع التقرير:"
	msgUnknownPeriod = "⚠️ فترة غير معروفة. استخدم: today أو week أو month"
)

var summaryButtons = []struct {
	label  string
	period period.Period
}{
	{"📅 حصر اليوم + Excel", period.Today},
	{"📆 حصر الأسبوع + Excel", period.Week},
	{"📊 حصر الشهر + Excel", period.Month},
}

// RegisterAdminHandlers registers the summary commands.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, svc *app.ReportService, access *app.AccessList, baseLogger *logrus.Entry) {
	b.Handle("/summary", func(c telebot.Context) error {
		caller := access.Caller(c.Sender().ID)
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/summary",
			"sender_id": caller.ID,
		})
		handlerLogger.Info("Command received")

		if !caller.Admin {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgAdminsOnly)
		}
		// "/summary week" skips the menu.
		if args := c.Args(); len(args) > 0 {
			return runSummary(ctx, c, svc, caller, args[0], handlerLogger)
		}
		return c.Send(msgChooseSummary, summaryMenu())
	})

	for _, p := range period.All {
		p := p
		command := "/summary_" + string(p)
		b.Handle(command, func(c telebot.Context) error {
			caller := access.Caller(c.Sender().ID)
			handlerLogger := baseLogger.WithFields(logrus.Fields{
				"handler":   command,
				"sender_id": caller.ID,
			})
			handlerLogger.Info("Command received")
			return runSummary(ctx, c, svc, caller, string(p), handlerLogger)
		})
	}
}

func summaryMenu() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(summaryButtons))
	for _, btn := range summaryButtons {
		rows = append(rows, m.Row(m.Data(btn.label, summaryCallback, string(btn.period))))
	}
	m.Inline(rows...)
	return m
}

// runSummary generates the summary for keyword and reports the outcome to the admin.
func runSummary(ctx context.Context, c telebot.Context, svc *app.ReportService, caller app.Caller, keyword string, logger *logrus.Entry) error {
	if !caller.Admin {
		logger.Warn("Unauthorized access attempt")
		return c.Send(msgAdminsOnly)
	}
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if _, err := period.Parse(keyword); err != nil {
		logger.WithField("period", keyword).Warn("Unknown period requested")
		return c.Send(msgUnknownPeriod)
	}

	if err := c.Send(msgGenerating); err != nil {
		return err
	}
	res, err := svc.GenerateAndDeliver(ctx, caller, keyword)
	logCtx := logger.WithField("period", keyword)
	if res != nil {
		logCtx = logCtx.WithField("run_id", res.RunID)
	}
	if err != nil {
		logCtx.WithError(err).Warn("Summary not delivered")
	} else {
		logCtx.Info("Summary delivered")
	}
	return c.Send(summaryOutcomeText(period.Period(keyword), res, err))
}

// summaryOutcomeText is the message the admin gets after a pipeline run.
func summaryOutcomeText(p period.Period, res *app.Delivery, err error) string {
	var deliveryErr *app.DeliveryError
	switch {
	case err == nil:
		return fmt.Sprintf("✅ تم إرسال تقرير %s إلى القروب (%d تقرير)", p.Label(), len(res.Summary.Reports))
	case errors.Is(err, app.ErrNoData):
		return fmt.Sprintf("⚠️ لا توجد تقارير في هذه الفترة (%s)", p.Label())
	case errors.Is(err, period.ErrInvalidPeriod):
		return msgUnknownPeriod
	case errors.Is(err, app.ErrNotAdmin):
		return msgAdminsOnly
	case errors.As(err, &deliveryErr):
		if deliveryErr.SavedPath != "" {
			return fmt.Sprintf("⚠️ تم إنشاء تقرير %s وحفظه (%s) لكن تعذر إرساله إلى القروب", p.Label(), deliveryErr.SavedPath)
		}
		return fmt.Sprintf("⚠️ تم إنشاء تقرير %s لكن تعذر إرساله أو حفظه:\n%v", p.Label(), deliveryErr.Err)
	default:
		return fmt.Sprintf("❌ حدث خطأ في إنشاء التقرير:\n%v", err)
	}
}
