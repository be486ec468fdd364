// Package app wires together configuration, storage, the alert engine,
// the expiry sweeper and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campushq/beacon/internal/config"
	"github.com/campushq/beacon/internal/core"
	"github.com/campushq/beacon/internal/server"
	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/internal/sweeper"
	"github.com/campushq/beacon/pkg/logger"
)

// App represents the core application context, holding dependencies and
// configuration.
type App struct {
	Config  *config.Config
	SQLite  *sqlite.DB
	Logger  *slog.Logger
	Sweeper *sweeper.Manager
	server  *server.Server
	Version string
}

// Options contains configuration needed when creating a new App instance.
type Options struct {
	ConfigPath string
	Version    string
}

// New creates and configures a new App instance.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &App{
		Config:  cfg,
		Logger:  logger.New(cfg.Logging.Level == "debug"),
		Version: opts.Version,
	}, nil
}

// Initialize sets up the database, seeds admin users, and constructs
// the HTTP server and the expiry sweeper.
func (a *App) Initialize(ctx context.Context) error {
	var err error

	a.SQLite, err = sqlite.New(sqlite.Options{
		Config: a.Config.SQLite,
		Logger: a.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sqlite: %w", err)
	}

	if err := core.InitAdminUsers(ctx, a.SQLite, a.Logger, a.Config.Auth.AdminEmails); err != nil {
		return fmt.Errorf("failed to initialize admin users: %w", err)
	}

	a.Sweeper = sweeper.NewManager(sweeper.Options{
		Config: a.Config.Alerts,
		DB:     a.SQLite,
		Logger: a.Logger,
	})

	a.server = server.New(server.ServerOptions{
		Config:  a.Config,
		SQLite:  a.SQLite,
		Logger:  a.Logger,
		Version: a.Version,
	})

	a.Sweeper.Start(ctx)
	return nil
}

// Start begins the application's main execution loop (starts the HTTP
// server). It blocks until the server stops.
func (a *App) Start() error {
	if a.server == nil {
		return fmt.Errorf("server not initialized")
	}
	a.Logger.Info("starting server")
	return a.server.Start()
}

// Shutdown gracefully stops all application components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}

	if a.Sweeper != nil {
		a.Logger.Info("stopping expiry sweeper")
		a.Sweeper.Stop()
	}

	if a.server != nil {
		serverCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(serverCtx); err != nil {
			a.Logger.Error("error shutting down server", "error", err)
		}
	}

	if a.SQLite != nil {
		if err := a.SQLite.Close(); err != nil {
			a.Logger.Error("error closing database", "error", err)
			return err
		}
	}

	a.Logger.Info("shutdown complete")
	return nil
}
