// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package classify

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a ledger query references an unknown run.
var ErrRunNotFound = errors.New("classify: run not found")

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	scenario   TEXT NOT NULL,
	started_at TEXT NOT NULL,
	ended_at   TEXT,
	dry_run    INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS run_items (
	run_id   INTEGER NOT NULL REFERENCES runs(id),
	path     TEXT NOT NULL,
	drive_id TEXT NOT NULL,
	item_id  TEXT NOT NULL,
	label    TEXT NOT NULL,
	outcome  TEXT NOT NULL,
	attempts INTEGER NOT NULL,
	error    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS run_items_run_id ON run_items(run_id);
`

// Ledger persists classification runs in a sqlite database.
type Ledger struct {
	db *sql.DB
}

// Run is a ledger run header.
type Run struct {
	Id        int64
	Scenario  string
	StartedAt time.Time
	EndedAt   time.Time
	DryRun    bool
}

// OpenLedger opens (and if needed initializes) the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	// sqlite allows one writer, more connections just contend.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close() //nolint:wrapcheck
}

// BeginRun records the start of a run and returns its id.
func (l *Ledger) BeginRun(ctx context.Context, scenario string, dryRun bool) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (scenario, started_at, dry_run) VALUES (?, ?, ?)`,
		scenario, time.Now().UTC().Format(time.RFC3339), boolToInt(dryRun))
	if err != nil {
		return 0, fmt.Errorf("recording run start: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}
	return id, nil
}

// RecordResults appends the item results to the run in one transaction.
func (l *Ledger) RecordResults(ctx context.Context, runId int64, results []ItemResult) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recording results: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_items (run_id, path, drive_id, item_id, label, outcome, attempts, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("recording results: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx,
			runId, r.Item.Path, r.Item.DriveId, r.Item.ItemId, r.Item.Label,
			string(r.Outcome), r.Attempts, r.Error); err != nil {
			return fmt.Errorf("recording result for %s: %w", r.Item.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recording results: %w", err)
	}
	return nil
}

// FinishRun records the end time of the run.
func (l *Ledger) FinishRun(ctx context.Context, runId int64) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET ended_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), runId)
	if err != nil {
		return fmt.Errorf("recording run end: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recording run end: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, runId)
	}
	return nil
}

// GetRun returns the run header for the given id.
func (l *Ledger) GetRun(ctx context.Context, runId int64) (*Run, error) {
	var (
		run     Run
		started string
		ended   sql.NullString
		dryRun  int
	)
	err := l.db.QueryRowContext(ctx,
		`SELECT id, scenario, started_at, ended_at, dry_run FROM runs WHERE id = ?`, runId).
		Scan(&run.Id, &run.Scenario, &started, &ended, &dryRun)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runId)
	}
	if err != nil {
		return nil, fmt.Errorf("reading run %d: %w", runId, err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return nil, fmt.Errorf("reading run %d: %w", runId, err)
	}
	if ended.Valid {
		if run.EndedAt, err = time.Parse(time.RFC3339, ended.String); err != nil {
			return nil, fmt.Errorf("reading run %d: %w", runId, err)
		}
	}
	run.DryRun = dryRun != 0
	return &run, nil
}

// GetRunItems returns the item results of the run, in insertion order.
func (l *Ledger) GetRunItems(ctx context.Context, runId int64) ([]ItemResult, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT path, drive_id, item_id, label, outcome, attempts, error
		 FROM run_items WHERE run_id = ? ORDER BY rowid`, runId)
	if err != nil {
		return nil, fmt.Errorf("reading run %d items: %w", runId, err)
	}
	defer rows.Close()

	var results []ItemResult
	for rows.Next() {
		var (
			r       ItemResult
			outcome string
		)
		if err := rows.Scan(&r.Item.Path, &r.Item.DriveId, &r.Item.ItemId,
			&r.Item.Label, &outcome, &r.Attempts, &r.Error); err != nil {
			return nil, fmt.Errorf("reading run %d items: %w", runId, err)
		}
		r.Outcome = Outcome(outcome)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading run %d items: %w", runId, err)
	}
	return results, nil
}

// ExportRunCSV writes the run's items as CSV.
func (l *Ledger) ExportRunCSV(ctx context.Context, runId int64, w io.Writer) error {
	items, err := l.GetRunItems(ctx, runId)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "driveId", "itemId", "label", "outcome", "attempts", "error"}); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	for _, r := range items {
		record := []string{
			r.Item.Path, r.Item.DriveId, r.Item.ItemId, r.Item.Label,
			string(r.Outcome), strconv.Itoa(r.Attempts), r.Error,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error() //nolint:wrapcheck
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
