// Package sqlitedb is an embedded SQLite implementation of the candidate store,
// used for local development and tests.
package sqlitedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/talent-pool/internal/types"
	_ "modernc.org/sqlite"
)

// ErrCandidateNotFound is returned when a write targets a candidate that does not exist.
var ErrCandidateNotFound = types.ErrCandidateNotFound

// timeLayout is fixed width so that stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                      TEXT PRIMARY KEY,
	name                    TEXT NOT NULL,
	email                   TEXT NOT NULL UNIQUE,
	password_hash           TEXT,
	role                    TEXT NOT NULL CHECK (role IN ('job_seeker', 'recruiter', 'admin')),
	professional_summary    TEXT NOT NULL DEFAULT '',
	linkedin_url            TEXT NOT NULL DEFAULT '',
	is_profile_complete     INTEGER NOT NULL DEFAULT 0,
	years_of_experience     REAL,
	skills                  TEXT NOT NULL DEFAULT '[]',
	projects                TEXT NOT NULL DEFAULT '[]',
	achievements            TEXT NOT NULL DEFAULT '[]',
	scores                  TEXT,
	profile_score           INTEGER NOT NULL DEFAULT 0,
	score_version           INTEGER NOT NULL DEFAULT 1,
	last_score_computed_at  TEXT,
	created_at              TEXT NOT NULL,
	updated_at              TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS users_role_score_idx ON users (role, profile_score DESC);
CREATE TABLE IF NOT EXISTS job_descriptions (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	skills_required  TEXT NOT NULL DEFAULT '[]',
	experience       TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS applications (
	id             TEXT PRIMARY KEY,
	job_seeker_id  TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	job_id         TEXT,
	score          REAL,
	completed_at   TEXT,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS applications_seeker_idx ON applications (job_seeker_id, completed_at);
`

// DB wraps an SQLite database handle.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1) // SQLite: single writer

	d := &DB{db: sqlDB}
	if err := d.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks that the database is usable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate applies the schema. It is safe to run repeatedly.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func jsonText(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// stringsOrEmpty keeps nil slices from being stored as JSON null.
func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
