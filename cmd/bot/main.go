package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"school_inspection_bot/internal/app"
	"school_inspection_bot/internal/domain/collection"
	"school_inspection_bot/internal/domain/period"
	"school_inspection_bot/internal/domain/report"
	"school_inspection_bot/internal/infra/config"
	idb "school_inspection_bot/internal/infra/database"
	"school_inspection_bot/internal/infra/logger"
	"school_inspection_bot/internal/infra/scheduler"
	"school_inspection_bot/internal/infra/session"
	"school_inspection_bot/internal/infra/spreadsheet"
	"school_inspection_bot/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.For("main")

	mainLogger.WithFields(logrus.Fields{
		"environment":     cfg.Environment,
		"storage_backend": cfg.StorageBackend,
		"admins":          len(cfg.AdminIDs),
		"supervisors":     len(cfg.SupervisorIDs),
		"timezone":        cfg.Location.String(),
		"week_start":      cfg.WeekStart.String(),
	}).Info("School Inspection Bot starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Report storage
	var reportRepo report.Repository
	switch cfg.StorageBackend {
	case config.StorageBackendMemory:
		reportRepo = idb.NewMemoryReportRepository()
		mainLogger.Warn("Using in-memory report storage; reports are lost on restart")
	default:
		var db *sql.DB
		db, err = idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to database")
		}
		defer db.Close()
		reportRepo = idb.NewPostgresReportRepository(db)
		mainLogger.Info("Database connection established successfully.")
	}
	if err := reportRepo.EnsureSchema(ctx); err != nil {
		mainLogger.WithError(err).Fatal("Could not prepare report storage")
	}

	// Draft storage
	var drafts app.DraftStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to Redis")
		}
		drafts = session.NewRedisDraftStore(rdb, "", cfg.DraftIdleTimeout)
		mainLogger.WithField("addr", cfg.RedisAddr).Info("Drafts stored in Redis")
	} else {
		drafts = session.NewMemoryDraftStore(cfg.DraftIdleTimeout)
		mainLogger.Info("Drafts stored in memory")
	}

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.For("telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}
	client := telegram.NewTelebotAdapter(bot)

	// Services
	delivery := app.DeliveryOptions{
		GroupChatID: cfg.GroupChatID,
		ReportsDir:  cfg.ReportsDir,
		Attempts:    cfg.DeliveryAttempts,
		Backoff:     2 * time.Second,
	}
	access := app.NewAccessList(cfg.SupervisorIDs, cfg.AdminIDs)
	collectionService := app.NewCollectionService(
		collection.NewMachine(cfg.SupervisorNames),
		drafts,
		reportRepo,
		client,
		delivery,
		cfg.Location,
		logger.For("app"),
	)
	reportService := app.NewReportService(
		reportRepo,
		period.NewResolver(cfg.WeekStart),
		spreadsheet.NewBuilder(),
		client,
		delivery,
		cfg.Location,
		logger.For("app"),
	)

	// Handlers
	handlerLogger := logger.For("telegram")
	telegram.RegisterBotCommands(bot, access, handlerLogger)
	telegram.RegisterSupervisorHandlers(ctx, bot, collectionService, access, handlerLogger)
	telegram.RegisterAdminHandlers(ctx, bot, reportService, access, handlerLogger)
	telegram.RegisterCallbackHandler(ctx, bot, collectionService, reportService, access, handlerLogger)
	mainLogger.Info("Telegram handlers registered.")

	reportScheduler := scheduler.NewReportScheduler(
		collectionService,
		reportService,
		logger.For("scheduler"),
		cfg.Location,
		cfg.CronSpecDraftSweep,
		cfg.CronSpecWeeklySummary,
		cfg.CronSpecDaily,
	)
	if err := reportScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	go bot.Start()
	mainLogger.Info("Application setup complete. Bot and scheduler are running.")

	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	reportScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
