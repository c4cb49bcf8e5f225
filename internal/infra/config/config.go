package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on minimal images

	"github.com/joho/godotenv"

	"school_inspection_bot/internal/domain/period"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"
)

// DefaultSupervisorNames is the quick-pick list offered when SUPERVISOR_NAMES is unset.
var DefaultSupervisorNames = []string{"ممدوح", "افنان", "عبدالله", "ريان", "مصطفى", "موسى", "طه", "محمد"}

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken    string
	GroupChatID      int64
	AdminIDs         []int64
	SupervisorIDs    []int64
	SupervisorNames  []string
	StorageBackend   string
	DatabaseURL      string
	RedisAddr        string
	RedisPassword    string
	DraftIdleTimeout time.Duration
	Location         *time.Location
	WeekStart        time.Weekday
	ReportsDir       string
	DeliveryAttempts int
	LogLevel         string
	Environment      string

	CronSpecDraftSweep    string
	CronSpecWeeklySummary string
	CronSpecDaily         string // daily run; the job itself checks for the last day of the month
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	groupIDStr := os.Getenv("GROUP_CHAT_ID")
	if groupIDStr == "" {
		return nil, fmt.Errorf("GROUP_CHAT_ID is not set")
	}
	cfg.GroupChatID, err = strconv.ParseInt(strings.TrimSpace(groupIDStr), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GROUP_CHAT_ID: %w", err)
	}

	if cfg.AdminIDs, err = parseIDList(os.Getenv("ADMIN_IDS")); err != nil {
		return nil, fmt.Errorf("invalid ADMIN_IDS: %w", err)
	}
	if cfg.SupervisorIDs, err = parseIDList(os.Getenv("SUPERVISOR_IDS")); err != nil {
		return nil, fmt.Errorf("invalid SUPERVISOR_IDS: %w", err)
	}

	cfg.SupervisorNames = parseNameList(os.Getenv("SUPERVISOR_NAMES"))
	if len(cfg.SupervisorNames) == 0 {
		cfg.SupervisorNames = append([]string(nil), DefaultSupervisorNames...)
	}

	cfg.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", StorageBackendPostgres))
	switch cfg.StorageBackend {
	case StorageBackendPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case StorageBackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	cfg.DraftIdleTimeout, err = time.ParseDuration(getEnv("DRAFT_IDLE_TIMEOUT", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DRAFT_IDLE_TIMEOUT: %w", err)
	}

	cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Asia/Riyadh"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.WeekStart, err = period.ParseWeekday(getEnv("WEEK_START", "friday"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEEK_START: %w", err)
	}

	cfg.ReportsDir = getEnv("REPORTS_DIR", "reports")

	cfg.DeliveryAttempts, err = strconv.Atoi(getEnv("DELIVERY_ATTEMPTS", "3"))
	if err != nil || cfg.DeliveryAttempts < 1 {
		return nil, fmt.Errorf("invalid DELIVERY_ATTEMPTS %q", os.Getenv("DELIVERY_ATTEMPTS"))
	}

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))

	cfg.CronSpecDraftSweep = getEnv("CRON_SPEC_DRAFT_SWEEP", "*/15 * * * *")
	// An explicitly empty value disables the scheduled summaries.
	cfg.CronSpecWeeklySummary = lookupEnv("CRON_SPEC_WEEKLY_SUMMARY", "0 20 * * 4") // Thursday 20:00, end of the Friday-start week
	cfg.CronSpecDaily = lookupEnv("CRON_SPEC_DAILY_FOR_LAST_DAY_CHECK", "0 21 * * *")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func lookupEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return strings.TrimSpace(v)
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseNameList(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
