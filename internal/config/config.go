package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"daily-tasks/internal/service"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config keeps runtime settings for the tracker.
type Config struct {
	StoreBackend   string
	DatabaseURL    string
	RemoteEndpoint string
	RemoteTimeout  time.Duration
	TelegramToken  string
	OwnerChatID    int64
	HTTPAddr       string
	Location       *time.Location
	RolloverTime   string
	TickInterval   time.Duration
	ReportInterval time.Duration
	SeedFile       string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		StoreBackend:   strings.ToLower(getEnvAsString("STORE_BACKEND", BackendLocal)),
		DatabaseURL:    getEnvAsString("DATABASE_URL", "daily_tasks.db"),
		RemoteEndpoint: getEnvAsString("REMOTE_ENDPOINT", ""),
		TelegramToken:  getEnvAsString("TELEGRAM_TOKEN", ""),
		HTTPAddr:       getEnvAsString("HTTP_ADDR", ":8080"),
		RolloverTime:   getEnvAsString("ROLLOVER_TIME", "00:00"),
		SeedFile:       getEnvAsString("SEED_FILE", ""),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "daily_tasks.db"
	}

	var err error
	if cfg.RemoteTimeout, err = getEnvAsDuration("REMOTE_TIMEOUT", 15*time.Second); err != nil {
		return cfg, err
	}
	if cfg.RemoteTimeout <= 0 {
		return cfg, fmt.Errorf("REMOTE_TIMEOUT must be positive")
	}
	if cfg.TickInterval, err = getEnvAsDuration("TICK_INTERVAL", time.Second); err != nil {
		return cfg, err
	}
	if cfg.ReportInterval, err = parseInterval(getEnvAsString("REPORT_INTERVAL_HOURS", "")); err != nil {
		return cfg, err
	}
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 5 * time.Hour
	}

	if raw := getEnvAsString("TELEGRAM_OWNER_CHAT_ID", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_OWNER_CHAT_ID must be an integer: %w", err)
		}
		cfg.OwnerChatID = id
	}

	loc, err := time.LoadLocation(getEnvAsString("TIMEZONE", "Local"))
	if err != nil {
		return cfg, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	switch cfg.StoreBackend {
	case BackendLocal:
	case BackendRemote:
		if cfg.RemoteEndpoint == "" {
			return cfg, fmt.Errorf("REMOTE_ENDPOINT is required when STORE_BACKEND=%s", BackendRemote)
		}
	default:
		return cfg, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendLocal, BackendRemote, cfg.StoreBackend)
	}

	if !service.ValidClock(cfg.RolloverTime) {
		return cfg, fmt.Errorf("ROLLOVER_TIME must be a 24h time like 00:00, got %q", cfg.RolloverTime)
	}

	if cfg.TickInterval <= 0 {
		return cfg, fmt.Errorf("TICK_INTERVAL must be positive")
	}

	if cfg.TelegramToken == "" && cfg.HTTPAddr == "" {
		return cfg, fmt.Errorf("either TELEGRAM_TOKEN or HTTP_ADDR is required")
	}

	return cfg, nil
}

func parseInterval(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0, fmt.Errorf("REPORT_INTERVAL_HOURS must be a positive number of hours, got %q", raw)
	}
	return hours, nil
}

func getEnvAsString(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultVal
}

// getEnvAsDuration falls back to defaultVal only when key is unset or empty.
func getEnvAsDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value := getEnvAsString(key, "")
	if value == "" {
		return defaultVal, nil
	}
	result, err := time.ParseDuration(value)
	if err != nil {
		return defaultVal, fmt.Errorf("%s must be a duration like 1s or 15s: %w", key, err)
	}
	return result, nil
}
