package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the service.
type Config struct {
	Addr          string
	DatabaseURL   string
	TelegramToken string
	ReminderSweep time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		Addr:          strings.TrimSpace(os.Getenv("TASKPOINTS_ADDR")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("TASKPOINTS_DB_PATH")),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "data/taskpoints.db"
	}

	sweep, err := parseSweep(strings.TrimSpace(os.Getenv("REMINDER_SWEEP_SECONDS")))
	if err != nil {
		return cfg, err
	}
	cfg.ReminderSweep = sweep

	return cfg, nil
}

func parseSweep(raw string) (time.Duration, error) {
	if raw == "" {
		return time.Minute, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("REMINDER_SWEEP_SECONDS must be a positive integer, got %q", raw)
	}
	return time.Duration(seconds) * time.Second, nil
}
