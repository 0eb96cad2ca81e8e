// Package statsstore persists scheduler task statistics to SQLite, for
// analysis after a run.
package statsstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/joeycumines/go-rtsched/scheduler"
	"github.com/joeycumines/logiface"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("statsstore: run not found")

type (
	// Store is a SQLite backed store of task statistic samples.
	Store struct {
		db     *sql.DB
		logger *logiface.Logger[logiface.Event]
	}

	// Run is a recorded scheduler run.
	Run struct {
		ID         int64
		Name       string
		StartedAt  time.Time
		FinishedAt time.Time
	}

	// Sample is the state of one task, at a point in (scheduler) time.
	Sample struct {
		RunID int64
		At    int64
		scheduler.TaskStats
	}

	// Summary aggregates the samples of one task, within a run.
	Summary struct {
		Task          string
		Samples       int64
		Runs          uint64
		MaxMisses     int32
		MeanRate      float64
		MaxAvgRuntime int64
		MaxRuntime    int64
	}
)

// Open opens (or creates) the database at path, use ":memory:" for an
// in-memory database. A nil logger disables logging.
func Open(path string, logger *logiface.Logger[logiface.Event]) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("statsstore: open %s: %w", path, err)
	}
	// a single connection, so in-memory databases are shared
	db.SetMaxOpenConns(1)

	for _, pragma := range [...]string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("statsstore: %s: %w", pragma, err)
		}
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (x *Store) Close() error {
	return x.db.Close()
}

// Migrate creates the tables, if they do not exist.
func (x *Store) Migrate(ctx context.Context) error {
	x.logger.Debug().Str(`op`, `migrate`).Log(`statsstore: sql`)
	if err := migrate(ctx, x.db); err != nil {
		return fmt.Errorf("statsstore: migrate: %w", err)
	}
	return nil
}

// StartRun records the start of a run, returning its id.
func (x *Store) StartRun(ctx context.Context, name string, startedAt time.Time) (int64, error) {
	res, err := x.db.ExecContext(ctx,
		`INSERT INTO runs (name, started_at) VALUES (?, ?)`,
		name, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("statsstore: start run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("statsstore: start run: %w", err)
	}
	x.logger.Debug().Str(`op`, `insert`).Str(`table`, `runs`).Int64(`id`, id).Log(`statsstore: sql`)
	return id, nil
}

// FinishRun records the end of a run.
func (x *Store) FinishRun(ctx context.Context, runID int64, finishedAt time.Time) error {
	res, err := x.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		finishedAt.UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("statsstore: finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("statsstore: finish run: %w", err)
	} else if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// Runs lists all runs, oldest first.
func (x *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT id, name, started_at, finished_at FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("statsstore: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Name, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("statsstore: list runs: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("statsstore: run %d: started_at: %w", r.ID, err)
		}
		if finishedAt.Valid {
			if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt.String); err != nil {
				return nil, fmt.Errorf("statsstore: run %d: finished_at: %w", r.ID, err)
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Record stores a snapshot of every task, taken at (scheduler) time at, in
// a single transaction.
func (x *Store) Record(ctx context.Context, runID int64, at int64, stats []scheduler.TaskStats) error {
	if len(stats) == 0 {
		return nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("statsstore: record: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO task_samples (run_id, at_ns, task, release_ns, deadline_ns, avg_runtime_ns,
			runtime_p50_ns, runtime_p99_ns, runtime_max_ns, runs, rate_hz, misses, priority, paused)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("statsstore: record: %w", err)
	}
	defer stmt.Close()

	for _, s := range stats {
		if _, err := stmt.ExecContext(ctx,
			runID, at, s.Name, s.Release, s.Deadline, s.AvgRuntime,
			s.RuntimeP50, s.RuntimeP99, s.RuntimeMax,
			int64(s.Runs), float64(s.Rate), s.Misses, int64(s.Priority), s.Paused,
		); err != nil {
			return fmt.Errorf("statsstore: record %q: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("statsstore: record: %w", err)
	}
	x.logger.Debug().
		Str(`op`, `insert`).
		Str(`table`, `task_samples`).
		Int64(`run_id`, runID).
		Int(`rows`, len(stats)).
		Log(`statsstore: sql`)
	return nil
}

// Samples returns the samples of one task, within a run, in time order.
func (x *Store) Samples(ctx context.Context, runID int64, task string) ([]Sample, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT at_ns, task, release_ns, deadline_ns, avg_runtime_ns, runtime_p50_ns, runtime_p99_ns,
			runtime_max_ns, runs, rate_hz, misses, priority, paused
		 FROM task_samples WHERE run_id = ? AND task = ? ORDER BY at_ns, rowid`,
		runID, task,
	)
	if err != nil {
		return nil, fmt.Errorf("statsstore: samples: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var (
			s        = Sample{RunID: runID}
			runs     int64
			rate     float64
			priority int64
		)
		if err := rows.Scan(&s.At, &s.Name, &s.Release, &s.Deadline, &s.AvgRuntime,
			&s.RuntimeP50, &s.RuntimeP99, &s.RuntimeMax, &runs, &rate, &s.Misses, &priority, &s.Paused,
		); err != nil {
			return nil, fmt.Errorf("statsstore: samples: %w", err)
		}
		s.Runs = uint64(runs)
		s.Rate = float32(rate)
		s.Priority = uint16(priority)
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// Summarize aggregates the samples of a run, per task, ordered by name.
func (x *Store) Summarize(ctx context.Context, runID int64) ([]Summary, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT task, COUNT(*), MAX(runs), MAX(misses), AVG(rate_hz), MAX(avg_runtime_ns), MAX(runtime_max_ns)
		 FROM task_samples WHERE run_id = ? GROUP BY task ORDER BY task`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("statsstore: summarize: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s    Summary
			runs int64
		)
		if err := rows.Scan(&s.Task, &s.Samples, &runs, &s.MaxMisses, &s.MeanRate, &s.MaxAvgRuntime, &s.MaxRuntime); err != nil {
			return nil, fmt.Errorf("statsstore: summarize: %w", err)
		}
		s.Runs = uint64(runs)
		out = append(out, s)
	}
	return out, rows.Err()
}
