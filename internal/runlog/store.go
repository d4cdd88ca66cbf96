// Package runlog records runs and their snapshot diagnostics in SQLite.
package runlog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pmocz/superconductor-spectral/internal/tdgl"
)

//go:embed schema.sql
var schemaSQL string

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Store wraps the SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Run is one row of the runs table.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Params     tdgl.Params
	Status     string
	Steps      int
	SimTime    float64
}

// Entry is one row of the snapshots table. Mean and Max are NaN when the
// snapshot was not finite.
type Entry struct {
	Step   int
	Time   float64
	Mean   float64
	Max    float64
	Finite bool
	Final  bool
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun inserts a new run with a fresh id and returns the id.
func (s *Store) StartRun(ctx context.Context, p tdgl.Params) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, n, length, dt, t_end, t_out, alpha, beta, seed, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, s.now().UTC().Format(time.RFC3339Nano), p.N, p.L, p.Dt, p.TEnd, p.TOut, p.Alpha, p.Beta, p.Seed, StatusRunning)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// AddSnapshot records the diagnostics of one snapshot.
func (s *Store) AddSnapshot(ctx context.Context, runID string, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (run_id, step, time, mean, max, finite, final)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, e.Step, e.Time, nullable(e.Mean), nullable(e.Max), e.Finite, e.Final)
	if err != nil {
		return fmt.Errorf("add snapshot: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, runID, status string, res tdgl.Result) error {
	out, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, status = ?, steps = ?, sim_time = ? WHERE id = ?
	`, s.now().UTC().Format(time.RFC3339Nano), status, res.Steps, res.Time, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := out.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}

// GetRun loads a run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	var (
		r        Run
		started  string
		finished sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, n, length, dt, t_end, t_out, alpha, beta, seed, status, steps, sim_time
		FROM runs WHERE id = ?
	`, runID).Scan(&r.ID, &started, &finished, &r.Params.N, &r.Params.L, &r.Params.Dt, &r.Params.TEnd,
		&r.Params.TOut, &r.Params.Alpha, &r.Params.Beta, &r.Params.Seed, &r.Status, &r.Steps, &r.SimTime)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run: unknown run %q", runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	if finished.Valid {
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished.String); err != nil {
			return Run{}, fmt.Errorf("get run: %w", err)
		}
	}
	return r, nil
}

// Snapshots returns the recorded snapshots of a run ordered by step.
func (s *Store) Snapshots(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, time, mean, max, finite, final FROM snapshots WHERE run_id = ? ORDER BY step
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			mean, max sql.NullFloat64
		)
		if err := rows.Scan(&e.Step, &e.Time, &mean, &max, &e.Finite, &e.Final); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		e.Mean, e.Max = orNaN(mean), orNaN(max)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SQLite has no NaN; non-finite values are stored as NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
