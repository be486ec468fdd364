package sweeper

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campushq/beacon/internal/config"
	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/pkg/models"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(sqlite.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "beacon-test.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedDueAlert(t *testing.T, db *sqlite.DB) models.AlertID {
	t.Helper()
	ctx := context.Background()

	user := &models.User{
		Email: "admin@school.test", FullName: "admin",
		Role: models.UserRoleAdmin, Status: models.UserStatusActive,
	}
	require.NoError(t, db.CreateUser(ctx, user))

	expired := time.Now().UTC().Add(-time.Hour)
	alert := &models.Alert{
		Title: "Drill over", Message: "All clear.",
		Type: models.AlertTypeSystem, Priority: models.AlertPriorityLow,
		Status:      models.AlertStatusActive,
		TargetRoles: []models.UserRole{models.UserRoleAdmin},
		CreatedBy:   user.ID,
		ExpiresAt:   &expired,
	}
	require.NoError(t, db.CreateAlert(ctx, alert))
	return alert.ID
}

func TestManagerExpiresDueAlerts(t *testing.T) {
	db := newTestDB(t)
	alertID := seedDueAlert(t, db)

	m := NewManager(Options{
		Config: config.AlertsConfig{SweepInterval: 10 * time.Millisecond},
		DB:     db,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	m.Start(context.Background())
	defer m.Stop()

	// The initial sweep runs before the first tick, so the status flip
	// should land almost immediately.
	require.Eventually(t, func() bool {
		alert, err := db.GetAlert(context.Background(), alertID)
		return err == nil && alert.Status == models.AlertStatusExpired
	}, 2*time.Second, 10*time.Millisecond)
}

func TestManagerDisabledOnZeroInterval(t *testing.T) {
	db := newTestDB(t)
	alertID := seedDueAlert(t, db)

	m := NewManager(Options{
		Config: config.AlertsConfig{SweepInterval: 0},
		DB:     db,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	m.Start(context.Background())
	// Stop must return promptly even though no loop was started.
	m.Stop()

	alert, err := db.GetAlert(context.Background(), alertID)
	require.NoError(t, err)
	require.Equal(t, models.AlertStatusActive, alert.Status)
}

func TestManagerStopsOnContextCancel(t *testing.T) {
	db := newTestDB(t)

	m := NewManager(Options{
		Config: config.AlertsConfig{SweepInterval: 10 * time.Millisecond},
		DB:     db,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep loop did not exit on context cancellation")
	}
}
