package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var locCmp = cmp.Comparer(func(a, b *time.Location) bool {
	return a.String() == b.String()
})

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestLoad(t *testing.T) {
	required := map[string]string{
		"HADI_API_URL":       "https://hadi.example.com/api/sms",
		"HADI_TOKEN":         "secret",
		"TELEGRAM_BOT_TOKEN": "bot-token",
		"TELEGRAM_CHAT_ID":   "-100123456",
	}

	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name:    "empty environment",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "missing telegram bot token",
			env: map[string]string{
				"HADI_API_URL":     "https://hadi.example.com/api/sms",
				"HADI_TOKEN":       "secret",
				"TELEGRAM_CHAT_ID": "42",
			},
			wantErr: true,
		},
		{
			name: "missing hadi token",
			env: map[string]string{
				"HADI_API_URL":       "https://hadi.example.com/api/sms",
				"TELEGRAM_BOT_TOKEN": "bot-token",
				"TELEGRAM_CHAT_ID":   "42",
			},
			wantErr: true,
		},
		{
			name: "required only, defaults applied",
			env:  required,
			want: &Config{
				HadiAPIURL:       "https://hadi.example.com/api/sms",
				HadiToken:        "secret",
				HadiRecords:      100,
				TelegramBotToken: "bot-token",
				TelegramChatID:   -100123456,
				PollInterval:     10 * time.Second,
				StateBackend:     BackendFile,
				StateFile:        "./data/state.json",
				DatabasePath:     "./data/poller.db",
				LogLevel:         "info",
			},
		},
		{
			name: "all values set",
			env: merge(required, map[string]string{
				"HADI_RECORDS":  "25",
				"POLL_INTERVAL": "60",
				"STATE_BACKEND": "sqlite",
				"STATE_FILE":    "/var/lib/poller/state.json",
				"DATABASE_PATH": "/var/lib/poller/poller.db",
				"TZ":            "UTC",
				"LOG_LEVEL":     "debug",
			}),
			want: &Config{
				HadiAPIURL:       "https://hadi.example.com/api/sms",
				HadiToken:        "secret",
				HadiRecords:      25,
				TelegramBotToken: "bot-token",
				TelegramChatID:   -100123456,
				PollInterval:     60 * time.Second,
				StateBackend:     BackendSQLite,
				StateFile:        "/var/lib/poller/state.json",
				DatabasePath:     "/var/lib/poller/poller.db",
				LogLevel:         "debug",
			},
		},
		{
			name:    "invalid chat id",
			env:     merge(required, map[string]string{"TELEGRAM_CHAT_ID": "not-a-number"}),
			wantErr: true,
		},
		{
			name:    "invalid record limit",
			env:     merge(required, map[string]string{"HADI_RECORDS": "ten"}),
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			env:     merge(required, map[string]string{"POLL_INTERVAL": "0"}),
			wantErr: true,
		},
		{
			name:    "unknown state backend",
			env:     merge(required, map[string]string{"STATE_BACKEND": "redis"}),
			wantErr: true,
		},
		{
			name:    "unknown timezone",
			env:     merge(required, map[string]string{"TZ": "Mars/Olympus"}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear relevant env vars
			for _, key := range []string{
				"HADI_API_URL", "HADI_TOKEN", "HADI_RECORDS",
				"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
				"POLL_INTERVAL", "STATE_BACKEND", "STATE_FILE",
				"DATABASE_PATH", "TZ", "LOG_LEVEL",
			} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.want.Location == nil {
				tzName := tt.env["TZ"]
				if tzName == "" {
					tzName = "Asia/Dhaka"
				}
				tt.want.Location = mustLoc(t, tzName)
			}
			if diff := cmp.Diff(tt.want, got, locCmp); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
