// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // zone database for images without system tzdata
)

// State backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	HadiAPIURL  string
	HadiToken   string
	HadiRecords int

	TelegramBotToken string
	TelegramChatID   int64

	PollInterval time.Duration
	StateBackend string
	StateFile    string
	DatabasePath string

	Location *time.Location
	LogLevel string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	apiURL := os.Getenv("HADI_API_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("HADI_API_URL is required")
	}

	token := os.Getenv("HADI_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("HADI_TOKEN is required")
	}

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	rawChatID := os.Getenv("TELEGRAM_CHAT_ID")
	if rawChatID == "" {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	chatID, err := strconv.ParseInt(rawChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", rawChatID, err)
	}

	records, err := intEnv("HADI_RECORDS", 100)
	if err != nil {
		return nil, err
	}
	if records <= 0 {
		return nil, fmt.Errorf("HADI_RECORDS must be positive, got %d", records)
	}

	intervalSec, err := intEnv("POLL_INTERVAL", 10)
	if err != nil {
		return nil, err
	}
	if intervalSec <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %d", intervalSec)
	}

	backend := os.Getenv("STATE_BACKEND")
	if backend == "" {
		backend = BackendFile
	}
	if backend != BackendFile && backend != BackendSQLite {
		return nil, fmt.Errorf("invalid STATE_BACKEND %q: must be %q or %q", backend, BackendFile, BackendSQLite)
	}

	stateFile := os.Getenv("STATE_FILE")
	if stateFile == "" {
		stateFile = "./data/state.json"
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/poller.db"
	}

	tzName := os.Getenv("TZ")
	if tzName == "" {
		tzName = "Asia/Dhaka"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ %q: %w", tzName, err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		HadiAPIURL:       apiURL,
		HadiToken:        token,
		HadiRecords:      records,
		TelegramBotToken: botToken,
		TelegramChatID:   chatID,
		PollInterval:     time.Duration(intervalSec) * time.Second,
		StateBackend:     backend,
		StateFile:        stateFile,
		DatabasePath:     dbPath,
		Location:         loc,
		LogLevel:         logLevel,
	}, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
