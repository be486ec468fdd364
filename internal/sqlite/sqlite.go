// Package sqlite implements the persistence layer over a local SQLite
// database. It owns alert, acknowledgement, template, directory and
// transport rows; all other packages go through the typed methods here.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/campushq/beacon/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint, e.g. a second acknowledgement for the same (alert, user).
	ErrDuplicate = errors.New("record already exists")
)

// DB provides access to the SQLite database. It uses separate connections
// for reads and writes to fit SQLite's WAL mode: many concurrent readers,
// one serialized writer.
type DB struct {
	readDB  *sql.DB
	writeDB *sql.DB
	log     *slog.Logger
}

// Options holds configuration for creating a new DB instance.
type Options struct {
	Logger *slog.Logger
	Config config.SQLiteConfig
}

// New opens the SQLite database, applies pragmas, runs migrations, and
// returns a DB ready for use.
func New(opts Options) (*DB, error) {
	log := opts.Logger.With("component", "sqlite")

	if err := setupAndRunMigrations(opts.Config.Path, log); err != nil {
		return nil, err
	}

	readDB, err := sql.Open("sqlite", opts.Config.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening read database: %w", err)
	}
	readDB.SetMaxOpenConns(25)
	readDB.SetMaxIdleConns(10)
	readDB.SetConnMaxLifetime(30 * time.Minute)

	if err := setPragmas(readDB); err != nil {
		readDB.Close()
		return nil, fmt.Errorf("error setting pragmas on read database: %w", err)
	}

	// _txlock=immediate acquires the write lock up front, avoiding
	// deadlocks when goroutines compete for writes.
	writeDB, err := sql.Open("sqlite", opts.Config.Path+"?_txlock=immediate")
	if err != nil {
		readDB.Close()
		return nil, fmt.Errorf("error opening write database: %w", err)
	}
	writeDB.SetMaxOpenConns(1)
	writeDB.SetMaxIdleConns(1)
	writeDB.SetConnMaxLifetime(0)

	if err := setPragmas(writeDB); err != nil {
		readDB.Close()
		writeDB.Close()
		return nil, fmt.Errorf("error setting pragmas on write database: %w", err)
	}

	log.Debug("sqlite initialized with read/write separation", "path", opts.Config.Path)

	return &DB{readDB: readDB, writeDB: writeDB, log: log}, nil
}

func setupAndRunMigrations(dsn string, log *slog.Logger) error {
	migrationDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("error opening migration database: %w", err)
	}
	defer migrationDB.Close()

	if _, err := migrationDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("error setting busy_timeout on migration database: %w", err)
	}

	log.Debug("running database migrations")
	if err := runMigrations(migrationDB, log); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}
	log.Debug("database migrations completed")
	return nil
}

func setPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA journal_size_limit = 5000000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA cache_size = -16000",
		"PRAGMA mmap_size = 0", // memory-mapped I/O misbehaves with modernc.org/sqlite
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("error setting pragma %q: %w", pragma, err)
		}
	}
	return nil
}

func runMigrations(db *sql.DB, log *slog.Logger) error {
	migrationFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("error creating migrations filesystem: %w", err)
	}

	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("error creating migration source driver: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("error creating sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if sourceErr != nil {
			log.Warn("error closing migration source driver", "error", sourceErr)
		}
		if dbErr != nil {
			log.Warn("error closing migration database driver", "error", dbErr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("migrations up to date")
			return nil
		}
		return fmt.Errorf("error applying migrations: %w", err)
	}
	return nil
}

// Close shuts down both database connections.
func (db *DB) Close() error {
	db.log.Debug("closing database connections")
	var errs []error
	if err := db.writeDB.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := db.readDB.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("error closing database connections: %v", errs)
	}
	return nil
}

// isUniqueConstraintError reports whether the driver error represents a
// violated UNIQUE constraint.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
