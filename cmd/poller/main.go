package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hadi_poller/internal/config"
	"hadi_poller/internal/hadi"
	"hadi_poller/internal/poller"
	"hadi_poller/internal/state"
	"hadi_poller/internal/telegram"
)

func main() {
	// For local runs: load .env if present.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	store, err := openStore(cfg)
	if err != nil {
		log.Error("open state store", "backend", cfg.StateBackend, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	sender, err := telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.Location)
	if err != nil {
		log.Error("create telegram sender", "error", err)
		os.Exit(1)
	}

	client := hadi.New(
		&http.Client{Timeout: 30 * time.Second},
		cfg.HadiAPIURL, cfg.HadiToken, cfg.HadiRecords, cfg.Location,
	)

	p := poller.New(client, sender, store, cfg.PollInterval, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting poller", "interval", cfg.PollInterval, "backend", cfg.StateBackend)

	p.Run(ctx)

	log.Info("poller stopped")
}

func openStore(cfg *config.Config) (state.Store, error) {
	switch cfg.StateBackend {
	case config.BackendSQLite:
		if err := ensureDir(cfg.DatabasePath); err != nil {
			return nil, err
		}
		return state.NewSQLite(cfg.DatabasePath)
	default:
		if err := ensureDir(cfg.StateFile); err != nil {
			return nil, err
		}
		return state.NewFile(cfg.StateFile, cfg.Location)
	}
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		return os.MkdirAll(dir, 0o750)
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
