package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tjma12/gwsumm/internal/timerange"

	_ "modernc.org/sqlite"
)

const samplesSchema = `
CREATE TABLE IF NOT EXISTS samples (
	channel TEXT NOT NULL,
	gps     REAL NOT NULL,
	value   REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS samples_channel_gps ON samples (channel, gps);
`

// SQLiteSource reads samples from a SQLite database holding a
// samples(channel, gps, value) table.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens an existing sample database at path. A missing file is
// an error; use CreateSQLite to start a new database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open sample db: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open sample db: %s is a directory", path)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sample db: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// CreateSQLite opens the sample database at path, creating the file, its
// directory and the samples table if needed.
func CreateSQLite(ctx context.Context, path string) (*SQLiteSource, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sample db: ensure dir: %w", err)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, samplesSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sample db: create schema: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sample db: %w", err)
	}
	// Keep operations serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// Insert stores samples for channel in one transaction.
func (s *SQLiteSource) Insert(ctx context.Context, channel string, times, values []float64) error {
	if len(times) != len(values) {
		return fmt.Errorf("insert %s: %d times but %d values", channel, len(times), len(values))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert %s: begin: %w", channel, err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO samples (channel, gps, value) VALUES (?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert %s: prepare: %w", channel, err)
	}
	defer stmt.Close()
	for i := range times {
		if _, err := stmt.ExecContext(ctx, channel, times[i], values[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: %w", channel, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert %s: commit: %w", channel, err)
	}
	return nil
}

// Fetch implements Source.
func (s *SQLiteSource) Fetch(ctx context.Context, channel string, span timerange.Span) (*Series, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT gps, value FROM samples WHERE channel = ? AND gps >= ? AND gps < ? ORDER BY gps",
		channel, float64(span.Start), float64(span.End))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", channel, err)
	}
	defer rows.Close()

	series := &Series{Channel: channel}
	for rows.Next() {
		var gps, value float64
		if err := rows.Scan(&gps, &value); err != nil {
			return nil, fmt.Errorf("fetch %s: scan: %w", channel, err)
		}
		series.Times = append(series.Times, gps)
		series.Values = append(series.Values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", channel, err)
	}
	return series, nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
