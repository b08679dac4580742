package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"hadi_poller/migrations"
)

const sqliteTimeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Store backed by a SQLite database. Durability comes from
// the database itself, so no state-file handling is needed.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// IsSeen checks whether a record hash has already been forwarded.
func (s *SQLite) IsSeen(ctx context.Context, hash string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seen_records WHERE hash = ?`, hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check seen: %w", err)
	}
	return count > 0, nil
}

// MarkSeen records that a record has been forwarded.
func (s *SQLite) MarkSeen(ctx context.Context, hash string) error {
	now := time.Now().UTC().Format(sqliteTimeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_records (hash, seen_at) VALUES (?, ?)`,
		hash, now,
	)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// LastPoll returns the persisted end of the last polled window.
func (s *SQLite) LastPoll(ctx context.Context) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_poll_at FROM poll_state WHERE id = 1`,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last poll: %w", err)
	}
	t, err := time.Parse(sqliteTimeLayout, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last poll %q: %w", raw, err)
	}
	return t, true, nil
}

// SetLastPoll persists the end of the current polled window.
func (s *SQLite) SetLastPoll(ctx context.Context, t time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO poll_state (id, last_poll_at) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET last_poll_at = excluded.last_poll_at`,
		t.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("set last poll: %w", err)
	}
	return nil
}
