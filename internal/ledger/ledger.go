// Package ledger records run history in SQLite: one row per pipeline
// invocation and one per processed work item. The ledger is observational;
// resume authority stays with the plain-integer checkpoint file. It gives
// operators a queryable trail of what each run did and how long items took.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/paragen/pkg/types"
)

// ErrNotFound is returned when a requested run doesn't exist
var ErrNotFound = errors.New("not found")

// Run represents one pipeline invocation.
type Run struct {
	ID         string
	Mode       string // generate, tag
	Provider   string
	Model      string
	StartedAt  time.Time
	FinishedAt time.Time
	Success    int
	Failed     int
	Skipped    int
}

// Ledger persists run history.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database and applies migrations.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	// Enable WAL mode for crash durability without blocking readers
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// StartRun records a new run and returns its generated id.
func (l *Ledger) StartRun(ctx context.Context, mode, provider, model string) (string, error) {
	id := uuid.NewString()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, provider, model, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, mode, provider, model, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to record run start: %w", err)
	}
	return id, nil
}

// RecordItem stores the outcome of one processed work item. Re-recording the
// same ordinal within a run replaces the earlier row, keeping the entry
// idempotent under retries.
func (l *Ledger) RecordItem(ctx context.Context, runID string, result types.ItemResult) error {
	errMsg := ""
	if result.Err != nil {
		errMsg = result.Err.Error()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO run_items (run_id, ordinal, tag, outcome, attempts, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, ordinal) DO UPDATE SET
		   tag = excluded.tag,
		   outcome = excluded.outcome,
		   attempts = excluded.attempts,
		   duration_ms = excluded.duration_ms,
		   error = excluded.error`,
		runID, result.Ordinal, result.Tag, string(result.Outcome),
		result.Attempts, result.Duration.Milliseconds(), errMsg)
	if err != nil {
		return fmt.Errorf("failed to record item: %w", err)
	}
	return nil
}

// FinishRun stamps the run's end time and final tallies.
func (l *Ledger) FinishRun(ctx context.Context, runID string, stats types.RunStats) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, success_count = ?, failed_count = ?, skipped_count = ? WHERE id = ?`,
		time.Now().UTC(), stats.Success, stats.Failed, stats.Skipped, runID)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check run update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// ListRuns returns runs ordered most recent first.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, mode, provider, model, started_at, finished_at,
		        success_count, failed_count, skipped_count
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.Mode, &run.Provider, &run.Model,
			&run.StartedAt, &finished, &run.Success, &run.Failed, &run.Skipped); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finished.Valid {
			run.FinishedAt = finished.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListItems returns the item outcomes for a run in ordinal order.
func (l *Ledger) ListItems(ctx context.Context, runID string) ([]types.ItemResult, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT ordinal, tag, outcome, attempts, duration_ms, error
		 FROM run_items WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []types.ItemResult
	for rows.Next() {
		var item types.ItemResult
		var outcome string
		var durationMs int64
		var errMsg string
		if err := rows.Scan(&item.Ordinal, &item.Tag, &outcome, &item.Attempts, &durationMs, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Outcome = types.Outcome(outcome)
		item.Duration = time.Duration(durationMs) * time.Millisecond
		if errMsg != "" {
			item.Err = errors.New(errMsg)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
