// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/verte-zerg/tuiread/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for progress and history.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS step_events (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			path TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			cycles INTEGER NOT NULL,
			failures INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_step_events_ended_at ON step_events(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_step_events_run_id ON step_events(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

type stepEventRow struct {
	ID        int64  `db:"id"`
	RunID     string `db:"run_id"`
	Step      int    `db:"step"`
	Path      string `db:"path"`
	StartedAt string `db:"started_at"`
	EndedAt   string `db:"ended_at"`
	Cycles    int    `db:"cycles"`
	Failures  int    `db:"failures"`
}

// RecordStep stores one step completion.
func (s *Store) RecordStep(ctx context.Context, rec model.StepRecord) error {
	_, err := s.InsertStepEvent(ctx, rec)
	return err
}

// InsertStepEvent stores one step completion and returns its row id.
func (s *Store) InsertStepEvent(ctx context.Context, rec model.StepRecord) (int64, error) {
	row := stepEventRow{
		RunID:     rec.RunID,
		Step:      rec.Step,
		Path:      string(rec.Path),
		StartedAt: rec.StartedAt.UTC().Format(time.RFC3339Nano),
		EndedAt:   rec.EndedAt.UTC().Format(time.RFC3339Nano),
		Cycles:    rec.Cycles,
		Failures:  rec.Failures,
	}
	res, err := s.db.NamedExecContext(ctx,
		`INSERT INTO step_events (run_id, step, path, started_at, ended_at, cycles, failures)
		 VALUES (:run_id, :step, :path, :started_at, :ended_at, :cycles, :failures)`, row)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListStepEvents returns step completions oldest first. A positive Last keeps
// only the most recent Last completions.
func (s *Store) ListStepEvents(ctx context.Context, cfg model.HistoryConfig) ([]model.StepRecord, error) {
	limit := -1
	if cfg.Last > 0 {
		limit = cfg.Last
	}
	var rows []stepEventRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM (
			SELECT id, run_id, step, path, started_at, ended_at, cycles, failures
			FROM step_events
			ORDER BY ended_at DESC, id DESC
			LIMIT ?
		) ORDER BY ended_at ASC, id ASC`, limit)
	if err != nil {
		return nil, err
	}
	records := make([]model.StepRecord, 0, len(rows))
	for _, r := range rows {
		started, err := time.Parse(time.RFC3339Nano, r.StartedAt)
		if err != nil {
			return nil, err
		}
		ended, err := time.Parse(time.RFC3339Nano, r.EndedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, model.StepRecord{
			RunID:     r.RunID,
			Step:      r.Step,
			Path:      model.Path(r.Path),
			StartedAt: started,
			EndedAt:   ended,
			Cycles:    r.Cycles,
			Failures:  r.Failures,
		})
	}
	return records, nil
}

// CountRuns returns how many distinct training runs have history.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(DISTINCT run_id) FROM step_events`); err != nil {
		return 0, err
	}
	return n, nil
}
