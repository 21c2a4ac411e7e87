// Package worker keeps the served calendar and countdowns fresh.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/engine"
)

// Publisher receives the result of every successful synchronization.
type Publisher interface {
	Publish(ics []byte, entries []engine.BirthdayEntry)
}

// Syncer runs the engine once at start, then every Interval.
type Syncer struct {
	Generator *engine.Generator
	Config    engine.SyncConfig
	Target    Publisher

	// Interval between syncs; zero or less disables the periodic sync.
	Interval time.Duration

	refresh chan struct{}
}

// New creates a Syncer. refreshMinutes follows the settings file semantics.
func New(gen *engine.Generator, cfg engine.SyncConfig, target Publisher, refreshMinutes int) *Syncer {
	return &Syncer{
		Generator: gen,
		Config:    cfg,
		Target:    target,
		Interval:  time.Duration(refreshMinutes) * time.Minute,
		refresh:   make(chan struct{}, config.ChannelBufferSize),
	}
}

// Refresh asks a running Syncer for an immediate sync. Requests made while
// one is already pending are coalesced.
func (s *Syncer) Refresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled. Sync failures are logged and keep the
// previously published snapshot. Without an Interval only Refresh triggers
// further syncs.
func (s *Syncer) Run(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_ = s.SyncOnce(ctx)

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	if s.Interval > 0 {
		ticker = time.NewTicker(s.Interval)
		defer ticker.Stop()
		tick = ticker.C
		log.Info(config.MsgWorkerStart, config.LogKeyInterval, s.Interval)
	} else {
		log.Info(config.MsgWorkerOnce)
	}

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return nil

		case <-s.refresh:
			log.Info(config.MsgWorkerRefresh)
			_ = s.SyncOnce(ctx)
			if ticker != nil {
				ticker.Reset(s.Interval)
			}

		case <-tick:
			_ = s.SyncOnce(ctx)
		}
	}
}

// SyncOnce performs a single synchronization and publishes its result.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	ics, entries, today, err := s.Generator.RunSync(ctx, s.Config)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error(config.MsgSyncFailed,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyError, err)
		}
		return fmt.Errorf("%s: %w", config.ErrSyncFailed, err)
	}

	engine.SortByCountdown(entries)
	s.Target.Publish(ics, entries)

	slog.Debug(config.MsgSyncDone,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyCount, len(entries),
		config.LogKeyToday, today)
	return nil
}
