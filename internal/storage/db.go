// Package db provides the embedded SQLite store for resolved movies.
//
// This package contains:
//   - DB: connection wrapper over a single SQLite database file
//   - The movie repository: FindMovie / UpsertMovie keyed by
//     (normalized_title, year)
//   - Migration support via goose
//
// Writes are serialized through a mutex so the upsert's
// read-check-write stays idempotent even if callers process items
// concurrently.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/trendscout/trendscout/migrations"
)

// DB wraps the SQLite handle and provides repository methods.
type DB struct {
	sql    *sql.DB
	path   string
	logger *zerolog.Logger

	// single-writer discipline for upserts
	writeMu sync.Mutex
}

// Open initializes or connects to the movie database at path and
// applies pending migrations.
func Open(path string, logger *zerolog.Logger) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := handle.Exec(pragma); execErr != nil {
			_ = handle.Close()

			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	database := &DB{sql: handle, path: path, logger: logger}
	if err := database.Migrate(); err != nil {
		_ = handle.Close()

		return nil, err
	}

	return database, nil
}

// Migrate applies pending goose migrations.
func (db *DB) Migrate() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db.sql, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Ping checks the database connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.sql.PingContext(ctx)
}

// Close closes the underlying database handle.
func (db *DB) Close() error {
	if db == nil || db.sql == nil {
		return nil
	}

	return db.sql.Close()
}
