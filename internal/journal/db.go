// Package journal records runs of the program in SQLite: when each run
// started and ended, how it ended, every message the loop processed, and
// the last frame it rendered.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// DB is the journal database.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens the journal at path, creating its directory and applying
// migrations.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// one writer; sqlite serialises anyway
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Close closes the database.
func (db *DB) Close() error { return db.conn.Close() }

func (db *DB) migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	if err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Runs},
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

const migrationV1Runs = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	screen TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'running',
	error TEXT NOT NULL DEFAULT '',
	final_view TEXT NOT NULL DEFAULT '',
	renders INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS events (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	at TEXT NOT NULL,
	type TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Status is how a run ended.
type Status string

const (
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusKilled  Status = "killed"
)

// Run is one execution of the program.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Screen     string
	Status     Status
	Error      string
	FinalView  string
	Renders    int
	Events     int
}

// Duration returns how long the run lasted, or 0 while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Event is one processed message.
type Event struct {
	Seq    int
	At     time.Time
	Type   string
	Detail string
}

// CreateRun inserts a new run.
func (db *DB) CreateRun(ctx context.Context, r Run) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, screen, status) VALUES (?, ?, ?, ?)",
		r.ID, formatTime(r.StartedAt), r.Screen, string(StatusRunning))
	if err != nil {
		return fmt.Errorf("create run %s: %w", r.ID, err)
	}
	return nil
}

// FinishRun records how a run ended.
func (db *DB) FinishRun(ctx context.Context, id string, at time.Time, status Status, errText, finalView string, renders int) error {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, status = ?, error = ?, final_view = ?, renders = ? WHERE id = ?",
		formatTime(at), string(status), errText, finalView, renders, id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

// AppendEvents stores events for a run in one transaction.
func (db *DB) AppendEvents(ctx context.Context, runID string, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO events (run_id, seq, at, type, detail) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, runID, e.Seq, formatTime(e.At), e.Type, e.Detail); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert event %d: %w", e.Seq, err)
		}
	}
	return tx.Commit()
}

const runColumns = `r.id, r.started_at, r.finished_at, r.screen, r.status, r.error, r.final_view, r.renders,
	(SELECT COUNT(*) FROM events e WHERE e.run_id = r.id)`

// ListRuns returns the most recent runs first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs r ORDER BY r.started_at DESC, r.rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given id or id prefix.
func (db *DB) GetRun(ctx context.Context, id string) (Run, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs r WHERE r.id LIKE ? || '%' ORDER BY r.started_at DESC LIMIT 2", id)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(found) {
	case 0:
		return Run{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	case 1:
		return found[0], nil
	}
	if found[0].ID == id {
		return found[0], nil
	}
	return Run{}, fmt.Errorf("run id %q is ambiguous", id)
}

// Events returns a run's events in order.
func (db *DB) Events(ctx context.Context, runID string) ([]Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT seq, at, type, detail FROM events WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e  Event
			at string
		)
		if err := rows.Scan(&e.Seq, &at, &e.Type, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.At, _ = parseTime(at)
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		r        Run
		started  string
		finished sql.NullString
		status   string
	)
	if err := rows.Scan(&r.ID, &started, &finished, &r.Screen, &status, &r.Error, &r.FinalView, &r.Renders, &r.Events); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.Status = Status(status)
	r.StartedAt, _ = parseTime(started)
	if finished.Valid {
		if t, err := parseTime(finished.String); err == nil {
			r.FinishedAt = &t
		}
	}
	return r, nil
}

// timeLayout has a fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
