package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Seen-set bounds for the file backend: once the set exceeds maxSeen hashes,
// only the most recent trimTo are kept.
const (
	maxSeen = 5000
	trimTo  = 2000
)

// File implements Store backed by a single JSON state file. Every mutation is
// persisted with an atomic replace (temp file, fsync, rename), so a crash
// mid-write leaves either the old or the new complete state on disk.
type File struct {
	path string
	loc  *time.Location

	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order, oldest first
	last    time.Time
	hasLast bool
}

// fileState is the on-disk representation.
type fileState struct {
	LastDT string   `json:"last_dt"`
	Seen   []string `json:"seen"`
}

// NewFile opens the state file at path. A missing file yields empty state; a
// corrupt file is treated the same way rather than blocking startup.
func NewFile(path string, loc *time.Location) (*File, error) {
	f := &File{
		path: path,
		loc:  loc,
		seen: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var st fileState
	if err := json.Unmarshal(data, &st); err != nil {
		return f, nil
	}
	for _, h := range st.Seen {
		if _, dup := f.seen[h]; dup {
			continue
		}
		f.seen[h] = struct{}{}
		f.order = append(f.order, h)
	}
	if st.LastDT != "" {
		if t, err := time.ParseInLocation(timeLayout, st.LastDT, loc); err == nil {
			f.last = t
			f.hasLast = true
		}
	}
	return f, nil
}

// IsSeen reports whether the hash has already been forwarded.
func (f *File) IsSeen(_ context.Context, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seen[hash]
	return ok, nil
}

// MarkSeen records the hash and persists the updated state.
func (f *File) MarkSeen(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[hash]; !ok {
		f.seen[hash] = struct{}{}
		f.order = append(f.order, hash)
		f.trimLocked()
	}
	return f.writeLocked()
}

// LastPoll returns the persisted end of the last polled window.
func (f *File) LastPoll(_ context.Context) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.hasLast, nil
}

// SetLastPoll persists the end of the current polled window.
func (f *File) SetLastPoll(_ context.Context, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = t
	f.hasLast = true
	return f.writeLocked()
}

// Close is a no-op; every mutation is already on disk.
func (f *File) Close() error { return nil }

func (f *File) trimLocked() {
	if len(f.order) <= maxSeen {
		return
	}
	drop := f.order[:len(f.order)-trimTo]
	for _, h := range drop {
		delete(f.seen, h)
	}
	kept := make([]string, trimTo)
	copy(kept, f.order[len(f.order)-trimTo:])
	f.order = kept
}

func (f *File) writeLocked() error {
	st := fileState{Seen: f.order}
	if f.hasLast {
		st.LastDT = f.last.In(f.loc).Format(timeLayout)
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
