package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/trendscout/trendscout/internal/core/domain"
)

// MovieRecord is an alias for the domain type.
type MovieRecord = domain.MovieRecord

const movieColumns = "id, title, normalized_title, year, COALESCE(external_id, ''), source, first_seen_at, last_seen_at"

// FindMovie looks up a record by its composite key. Year 0 matches
// records stored without a release year. Returns nil when no record
// exists.
func (db *DB) FindMovie(ctx context.Context, normalizedTitle string, year int) (*MovieRecord, error) {
	row := db.sql.QueryRowContext(
		ctx,
		"SELECT "+movieColumns+" FROM movies WHERE normalized_title = ? AND year = ?",
		normalizedTitle,
		year,
	)

	rec, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("find movie: %w", err)
	}

	return rec, nil
}

// UpsertMovie inserts the record or, when the (normalized_title, year)
// key already exists, refreshes last_seen_at and fills external_id if
// it was previously unknown. A populated external_id never regresses.
// The upsert is a single statement, atomic per call; inserted reports
// whether a new row was created.
func (db *DB) UpsertMovie(ctx context.Context, rec *MovieRecord) (inserted bool, err error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	now := time.Now().UTC()
	if rec.LastSeenAt.IsZero() {
		rec.LastSeenAt = now
	}

	timestamp := rec.LastSeenAt.UTC().Format(time.RFC3339Nano)

	row := db.sql.QueryRowContext(
		ctx,
		`INSERT INTO movies (title, normalized_title, year, external_id, source, first_seen_at, last_seen_at)
         VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?)
         ON CONFLICT (normalized_title, year) DO UPDATE SET
             last_seen_at = excluded.last_seen_at,
             external_id = COALESCE(movies.external_id, excluded.external_id)
         RETURNING id, first_seen_at, COALESCE(external_id, '')`,
		rec.Title,
		rec.NormalizedTitle,
		rec.Year,
		rec.ExternalID,
		rec.Source,
		timestamp,
		timestamp,
	)

	var firstSeen string
	if err := row.Scan(&rec.ID, &firstSeen, &rec.ExternalID); err != nil {
		return false, fmt.Errorf("upsert movie: %w", err)
	}

	rec.FirstSeenAt, err = time.Parse(time.RFC3339Nano, firstSeen)
	if err != nil {
		return false, fmt.Errorf("parse first_seen_at: %w", err)
	}

	// A freshly inserted row has first_seen_at equal to the timestamp
	// written by this call.
	return firstSeen == timestamp, nil
}

// CountMovies returns the total number of stored records.
func (db *DB) CountMovies(ctx context.Context) (int, error) {
	var count int
	if err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&count); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*MovieRecord, error) {
	var rec MovieRecord

	var firstSeen, lastSeen string

	if err := row.Scan(&rec.ID, &rec.Title, &rec.NormalizedTitle, &rec.Year, &rec.ExternalID, &rec.Source, &firstSeen, &lastSeen); err != nil {
		return nil, err
	}

	var err error

	rec.FirstSeenAt, err = time.Parse(time.RFC3339Nano, firstSeen)
	if err != nil {
		return nil, fmt.Errorf("parse first_seen_at: %w", err)
	}

	rec.LastSeenAt, err = time.Parse(time.RFC3339Nano, lastSeen)
	if err != nil {
		return nil, fmt.Errorf("parse last_seen_at: %w", err)
	}

	return &rec, nil
}
