// Package state defines the poll-state persistence interface and its
// implementations.
package state

import (
	"context"
	"time"
)

// Store persists the set of forwarded record hashes and the end of the last
// successfully polled window.
type Store interface {
	IsSeen(ctx context.Context, hash string) (bool, error)
	MarkSeen(ctx context.Context, hash string) error

	// LastPoll returns the last persisted poll time. ok is false when no
	// poll has been recorded yet.
	LastPoll(ctx context.Context) (t time.Time, ok bool, err error)
	SetLastPoll(ctx context.Context, t time.Time) error

	Close() error
}
