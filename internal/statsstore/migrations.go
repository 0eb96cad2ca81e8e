package statsstore

import (
	"context"
	"database/sql"
)

// schema is applied in order, every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS task_samples (
		run_id         INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		at_ns          INTEGER NOT NULL,
		task           TEXT NOT NULL,
		release_ns     INTEGER NOT NULL,
		deadline_ns    INTEGER NOT NULL,
		avg_runtime_ns INTEGER NOT NULL,
		runtime_p50_ns INTEGER NOT NULL DEFAULT 0,
		runtime_p99_ns INTEGER NOT NULL DEFAULT 0,
		runtime_max_ns INTEGER NOT NULL DEFAULT 0,
		runs           INTEGER NOT NULL,
		rate_hz        REAL NOT NULL,
		misses         INTEGER NOT NULL,
		priority       INTEGER NOT NULL,
		paused         INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_task_samples_run_task ON task_samples(run_id, task, at_ns)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
