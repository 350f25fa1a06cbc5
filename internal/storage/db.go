package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"todoreader/internal"
)

type DB struct {
	conn *sqlx.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := conn.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  input TEXT NOT NULL,
  inputHash TEXT NOT NULL DEFAULT '',
  scanned INTEGER NOT NULL DEFAULT 0,
  exported INTEGER NOT NULL DEFAULT 0,
  fullPath TEXT NOT NULL DEFAULT '',
  simplePath TEXT NOT NULL DEFAULT '',
  startedAt TEXT NOT NULL,
  finishedAt TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_inputHash ON runs(inputHash);

CREATE TABLE IF NOT EXISTS tasks (
  runId TEXT NOT NULL,
  seq INTEGER NOT NULL,
  subject TEXT NOT NULL,
  taskId TEXT NOT NULL DEFAULT '',
  folder TEXT NOT NULL DEFAULT '',
  isComplete INTEGER NOT NULL DEFAULT 0,
  fullJson TEXT NOT NULL,
  simpleJson TEXT NOT NULL,
  PRIMARY KEY(runId, seq),
  FOREIGN KEY(runId) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// SaveRun stores a run and its tasks in one transaction.
func (d *DB) SaveRun(ctx context.Context, run internal.RunRow, tasks []internal.TaskRow) error {
	tx, err := d.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, `
INSERT INTO runs (id, source, input, inputHash, scanned, exported, fullPath, simplePath, startedAt, finishedAt)
VALUES (:id, :source, :input, :inputHash, :scanned, :exported, :fullPath, :simplePath, :startedAt, :finishedAt)`, run); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
INSERT INTO tasks (runId, seq, subject, taskId, folder, isComplete, fullJson, simpleJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing task insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		if _, err := stmt.ExecContext(ctx, run.ID, t.Seq, t.Subject, t.TaskID, t.Folder, t.IsComplete, t.FullJSON, t.SimpleJSON); err != nil {
			return fmt.Errorf("inserting task %d: %w", t.Seq, err)
		}
	}

	return tx.Commit()
}

func (d *DB) ListRuns(ctx context.Context, limit int) ([]internal.RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []internal.RunRow
	err := d.conn.SelectContext(ctx, &out, `
SELECT id, source, input, inputHash, scanned, exported, fullPath, simplePath, startedAt, finishedAt
FROM runs
ORDER BY startedAt DESC, id
LIMIT ?`, limit)
	return out, err
}

func (d *DB) GetRun(ctx context.Context, id string) (*internal.RunRow, error) {
	var run internal.RunRow
	err := d.conn.GetContext(ctx, &run, `
SELECT id, source, input, inputHash, scanned, exported, fullPath, simplePath, startedAt, finishedAt
FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListTasks returns the stored tasks of a run in encounter order.
func (d *DB) ListTasks(ctx context.Context, runID string) ([]internal.TaskRow, error) {
	var out []internal.TaskRow
	err := d.conn.SelectContext(ctx, &out, `
SELECT runId, seq, subject, taskId, folder, isComplete, fullJson, simpleJson
FROM tasks WHERE runId = ?
ORDER BY seq`, runID)
	return out, err
}

// HasInputHash reports whether any run already converted an input with this hash.
func (d *DB) HasInputHash(ctx context.Context, hash string) (bool, error) {
	var n int
	if err := d.conn.GetContext(ctx, &n, `SELECT COUNT(*) FROM runs WHERE inputHash = ?`, hash); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *DB) SetMetadata(ctx context.Context, key, value string) error {
	_, err := d.conn.ExecContext(ctx, `
INSERT INTO metadata(key, value, updatedAt) VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updatedAt=CURRENT_TIMESTAMP`, key, value)
	return err
}

func (d *DB) GetMetadata(ctx context.Context, key string) (*string, error) {
	var value string
	err := d.conn.GetContext(ctx, &value, `SELECT value FROM metadata WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
