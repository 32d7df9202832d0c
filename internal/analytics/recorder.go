// Package analytics records search events. Recording is best-effort: callers
// fire it on a detached goroutine and never let a recording failure affect the
// search response.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docuvault/docsearch/internal/models"
)

// Event describes one completed search request.
type Event struct {
	Query       string
	Mode        models.SearchMode
	Filters     *models.SearchFilters
	RequesterID string
	ResultCount int
	DurationMs  int64
	At          time.Time
}

// Recorder persists search events.
type Recorder interface {
	Record(ctx context.Context, ev *Event) error
}

// NopRecorder discards events.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, ev *Event) error { return nil }

// SQLiteRecorder stores search events in a table alongside the document store.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder initializes the search_events table on the given handle.
func NewSQLiteRecorder(db *sql.DB) (*SQLiteRecorder, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS search_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		mode TEXT NOT NULL,
		filters TEXT,
		requester_id TEXT,
		result_count INTEGER,
		duration_ms INTEGER,
		created_at TIMESTAMP NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize search_events schema: %w", err)
	}
	return &SQLiteRecorder{db: db}, nil
}

// Record inserts one event row.
func (r *SQLiteRecorder) Record(ctx context.Context, ev *Event) error {
	var filtersJSON []byte
	if !ev.Filters.Empty() {
		var err error
		filtersJSON, err = json.Marshal(ev.Filters)
		if err != nil {
			return fmt.Errorf("failed to marshal filters: %w", err)
		}
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO search_events (query, mode, filters, requester_id, result_count, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Query, string(ev.Mode), string(filtersJSON), ev.RequesterID, ev.ResultCount, ev.DurationMs, at,
	)
	return err
}

// CountEvents returns the number of recorded events (used by tests and stats).
func (r *SQLiteRecorder) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_events`).Scan(&count)
	return count, err
}
