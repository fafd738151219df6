// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps finished reviews in a SQLite database so past runs
// can be listed and re-rendered. The pipeline never reads from it.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-reviewer/internal/pipeline"
	"github.com/pdiddy/paper-reviewer/internal/report"
	"github.com/pdiddy/paper-reviewer/internal/review"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("review not found")

// timeLayout keeps a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry summarizes one archived review.
type Entry struct {
	RunID          string        `json:"run_id" yaml:"run_id"`
	Source         string        `json:"source" yaml:"source"`
	Title          string        `json:"title" yaml:"title"`
	Recommendation string        `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Halted         bool          `json:"halted" yaml:"halted"`
	StartedAt      time.Time     `json:"started_at" yaml:"started_at"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
	Warnings       int           `json:"warnings" yaml:"warnings"`
	Errors         int           `json:"errors" yaml:"errors"`
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the entries returned, newest first. Zero means 20.
	Limit int

	// Query matches titles and sources containing the text.
	Query string
}

// Store manages the review archive database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive at path, creating its directory and
// schema when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reviews (
			run_id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			title TEXT,
			recommendation TEXT,
			halted INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			warnings INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			snapshot TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_started_at ON reviews(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores a finished run. Saving the same run twice replaces it.
func (s *Store) Save(ctx context.Context, state *pipeline.ReviewState, source string) (Entry, error) {
	snap, err := json.Marshal(report.NewSnapshot(state, source))
	if err != nil {
		return Entry{}, fmt.Errorf("encoding snapshot: %w", err)
	}

	e := Entry{
		RunID:     state.RunID.String(),
		Source:    source,
		Halted:    state.Halted,
		StartedAt: state.StartedAt.UTC(),
		Duration:  state.Duration(),
		Warnings:  len(state.Warnings),
		Errors:    len(state.Errors),
	}
	if md, ok := pipeline.Output[*types.Metadata](state, review.StageMetadata); ok {
		e.Title = md.Title
	}
	if v, ok := pipeline.Output[*types.Verdict](state, review.StageVerdict); ok {
		e.Recommendation = string(v.Recommendation)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reviews
			(run_id, source, title, recommendation, halted, started_at, duration_ms, warnings, errors, snapshot)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Source, e.Title, e.Recommendation, e.Halted,
		e.StartedAt.Format(timeLayout), e.Duration.Milliseconds(),
		e.Warnings, e.Errors, string(snap),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("saving review %s: %w", e.RunID, err)
	}
	return e, nil
}

// List returns archived reviews, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT run_id, source, title, recommendation, halted, started_at, duration_ms, warnings, errors
		FROM reviews`
	args := []any{}
	if opts.Query != "" {
		query += ` WHERE title LIKE ? OR source LIKE ?`
		pattern := "%" + opts.Query + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns one archived review and its stored snapshot.
func (s *Store) Get(ctx context.Context, runID string) (Entry, report.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, source, title, recommendation, halted, started_at, duration_ms, warnings, errors, snapshot
			FROM reviews WHERE run_id = ?`, runID)

	var (
		e       Entry
		snap    report.Snapshot
		started string
		durMS   int64
		raw     string
		title   sql.NullString
		rec     sql.NullString
	)
	err := row.Scan(&e.RunID, &e.Source, &title, &rec, &e.Halted, &started, &durMS, &e.Warnings, &e.Errors, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, snap, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return Entry{}, snap, fmt.Errorf("reading review %s: %w", runID, err)
	}
	e.Title, e.Recommendation = title.String, rec.String
	e.Duration = time.Duration(durMS) * time.Millisecond
	if e.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Entry{}, snap, fmt.Errorf("parsing start time: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Entry{}, snap, fmt.Errorf("decoding snapshot: %w", err)
	}
	return e, snap, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e       Entry
		started string
		durMS   int64
		title   sql.NullString
		rec     sql.NullString
	)
	if err := rows.Scan(&e.RunID, &e.Source, &title, &rec, &e.Halted, &started, &durMS, &e.Warnings, &e.Errors); err != nil {
		return Entry{}, fmt.Errorf("scanning review row: %w", err)
	}
	e.Title, e.Recommendation = title.String, rec.String
	e.Duration = time.Duration(durMS) * time.Millisecond
	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing start time: %w", err)
	}
	e.StartedAt = t
	return e, nil
}
