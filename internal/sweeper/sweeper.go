// Package sweeper runs the background job that persists alert expiry.
// Expiry is evaluated lazily on every query; the sweeper only flips the
// stored status of active alerts past their expiry in bulk.
package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/campushq/beacon/internal/config"
	"github.com/campushq/beacon/internal/core"
	"github.com/campushq/beacon/internal/sqlite"
)

// Options encapsulates the dependencies required to run the sweeper.
type Options struct {
	Config config.AlertsConfig
	DB     *sqlite.DB
	Logger *slog.Logger
}

// Manager periodically expires alerts whose expiry has passed.
type Manager struct {
	cfg config.AlertsConfig
	db  *sqlite.DB
	log *slog.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewManager constructs a new sweeper instance.
func NewManager(opts Options) *Manager {
	return &Manager{
		cfg:  opts.Config,
		db:   opts.DB,
		log:  opts.Logger.With("component", "sweeper"),
		stop: make(chan struct{}),
	}
}

// Start launches the sweep loop. It is a no-op when the interval is zero.
func (m *Manager) Start(ctx context.Context) {
	interval := m.cfg.SweepInterval
	if interval <= 0 {
		m.log.Info("expiry sweeper disabled")
		return
	}
	m.log.Info("starting expiry sweeper", "interval", interval)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Run an initial sweep so a restart catches up promptly.
		m.sweep(ctx)

		for {
			select {
			case <-ticker.C:
				m.sweep(ctx)
			case <-m.stop:
				m.log.Info("expiry sweeper stopping")
				return
			case <-ctx.Done():
				m.log.Info("expiry sweeper context cancelled")
				return
			}
		}
	}()
}

// Stop signals the sweeper to stop and waits for the loop to exit.
func (m *Manager) Stop() {
	close(m.stop)
	m.wg.Wait()
}

func (m *Manager) sweep(ctx context.Context) {
	if _, err := core.ExpireDueAlerts(ctx, m.db, m.log); err != nil {
		m.log.Error("expiry sweep failed", "error", err)
	}
}
