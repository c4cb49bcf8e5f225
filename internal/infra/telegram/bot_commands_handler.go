// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"school_inspection_bot/internal/app"
)

// RegisterBotCommands registers /start and /help, which describe what the
// caller's role allows.
func RegisterBotCommands(b *telebot.Bot, access *app.AccessList, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	for _, command := range []string{"/start", "/help"} {
		command := command
		b.Handle(command, func(c telebot.Context) error {
			caller := access.Caller(c.Sender().ID)
			startHelpLogger.WithFields(logrus.Fields{
				"command":    command,
				"sender_id":  caller.ID,
				"supervisor": caller.Supervisor,
				"admin":      caller.Admin,
			}).Info("Processing command")
			return c.Send(welcomeText(caller))
		})
	}
}

func welcomeText(caller app.Caller) string {
	var text strings.Builder
	text.WriteString("🏫 مرحباً بك في بوت تقارير المدارس\n\n")

	if !caller.Supervisor && !caller.Admin {
		text.WriteString("⚠️ عذراً، ليس لديك صلاحية استخدام هذا البوت")
		return text.String()
	}

	if caller.Supervisor {
		text.WriteString("أنت مشرف ميداني ✅\n\n")
		text.WriteString("الأوامر المتاحة:\n")
		text.WriteString("/report - إرسال تقرير زيارة جديد\n")
		text.WriteString("/cancel - إلغاء العملية الحالية")
	}
	if caller.Supervisor && caller.Admin {
		text.WriteString("\n\n")
	}
	if caller.Admin {
		text.WriteString("أنت مدير النظام 👨‍💼\n\n")
		text.WriteString("الأوامر المتاحة:\n")
		text.WriteString("/summary - استخراج تقرير Excel\n")
		text.WriteString("/summary_today - تقرير اليوم\n")
		text.WriteString("/summary_week - تقرير الأسبوع\n")
		text.WriteString("/summary_month - تقرير الشهر")
	}
	return text.String()
}
