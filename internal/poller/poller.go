// Package poller implements the fetch, filter, forward, persist cycle.
package poller

import (
	"context"
	"log/slog"
	"time"

	"hadi_poller/internal/model"
	"hadi_poller/internal/state"
)

// Fetcher is the interface for retrieving records in a time window.
type Fetcher interface {
	Fetch(ctx context.Context, from, to time.Time) ([]model.Record, error)
}

// Sender is the interface for forwarding a single record.
type Sender interface {
	SendRecord(rec model.Record) error
}

// Poller periodically fetches records and forwards the unseen ones.
type Poller struct {
	fetcher  Fetcher
	sender   Sender
	store    state.Store
	log      *slog.Logger
	interval time.Duration

	now       func() time.Time
	sendDelay time.Duration
}

// New creates a Poller that runs one cycle per interval.
func New(fetcher Fetcher, sender Sender, store state.Store, interval time.Duration, log *slog.Logger) *Poller {
	return &Poller{
		fetcher:  fetcher,
		sender:   sender,
		store:    store,
		log:      log,
		interval: interval,
		now:      time.Now,
		// Rate limit: ~20 messages/sec max for Telegram.
		sendDelay: 50 * time.Millisecond,
	}
}

// Run executes one cycle immediately, then one per interval, blocking until
// ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.RunCycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunCycle(ctx)
		}
	}
}

// RunCycle performs a single fetch, filter, forward, persist pass. Errors are
// logged and never propagate; a failed cycle is simply retried at the next
// interval.
func (p *Poller) RunCycle(ctx context.Context) {
	now := p.now()

	from, ok, err := p.store.LastPoll(ctx)
	if err != nil {
		p.log.Error("load last poll", "error", err)
		ok = false
	}
	if !ok {
		from = now.Add(-time.Minute)
	}

	records, err := p.fetcher.Fetch(ctx, from, now)
	if err != nil {
		// Window is not advanced, so these records are fetched again
		// at the next interval.
		p.log.Error("fetch records", "error", err)
		return
	}

	sent, failed := 0, 0
	for _, rec := range records {
		if ctx.Err() != nil {
			return
		}

		seen, err := p.store.IsSeen(ctx, rec.Hash)
		if err != nil {
			p.log.Error("check seen", "hash", rec.Hash, "error", err)
			failed++
			continue
		}
		if seen {
			continue
		}

		if err := p.sender.SendRecord(rec); err != nil {
			// Not marked seen: the record is retried next cycle.
			p.log.Error("forward record", "number", rec.Number, "received_at", rec.ReceivedAt, "error", err)
			failed++
			continue
		}
		sent++

		if err := p.store.MarkSeen(ctx, rec.Hash); err != nil {
			p.log.Error("mark seen", "hash", rec.Hash, "error", err)
		}

		time.Sleep(p.sendDelay)
	}

	if sent > 0 {
		p.log.Info("forwarded records", "count", sent)
	}

	// A failed forward keeps the window open so the record is included in
	// the next fetch; already-forwarded hashes stay deduplicated.
	if failed > 0 {
		return
	}

	if err := p.store.SetLastPoll(ctx, now); err != nil {
		p.log.Error("persist last poll", "error", err)
	}
}
