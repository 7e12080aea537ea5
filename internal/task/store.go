// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package task persists research run records so long pipelines can be
// inspected and their results retrieved after the fact.
package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/deep-research/pkg/types"
)

const dbFile = "tasks.db"

// ErrNotFound is returned when a task id has no record.
var ErrNotFound = errors.New("task not found")

// Status values for a research run record.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is one research run: the user query, its lifecycle status, the
// most recent progress note, and the final report once the run completes.
type Record struct {
	ID        string
	Query     string
	Status    string
	Progress  string
	Error     string
	Result    *types.FinalReportResult
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store manages the task record SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the task database at cfg.DataDir/tasks.db,
// creating the schema if it does not exist.
func NewStore(cfg types.TaskStoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
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
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			status TEXT NOT NULL,
			progress TEXT,
			error TEXT,
			result TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

// Create inserts a new running record for query and returns its id.
func (s *Store) Create(ctx context.Context, query string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, query, status, progress, created_at, updated_at)
		 VALUES (?, ?, ?, '', ?, ?)`,
		id, query, StatusRunning, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting task: %w", err)
	}

	return id, nil
}

// UpdateProgress records the latest progress note for a running task.
func (s *Store) UpdateProgress(ctx context.Context, id, progress string) error {
	return s.update(ctx, id,
		`UPDATE tasks SET progress = ?, updated_at = ? WHERE id = ?`,
		progress, nowString(), id,
	)
}

// Complete marks the task completed and stores the final report as JSON.
func (s *Store) Complete(ctx context.Context, id string, result *types.FinalReportResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return s.update(ctx, id,
		`UPDATE tasks SET status = ?, result = ?, updated_at = ? WHERE id = ?`,
		StatusCompleted, string(data), nowString(), id,
	)
}

// Fail marks the task failed and stores the error message.
func (s *Store) Fail(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.update(ctx, id,
		`UPDATE tasks SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, msg, nowString(), id,
	)
}

func (s *Store) update(ctx context.Context, id, stmt string, args ...any) error {
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// Get returns the record for id, including the decoded final report when
// the run has completed.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, status, progress, error, result, created_at, updated_at
		 FROM tasks WHERE id = ?`, id,
	)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return rec, err
}

// List returns all records, newest first. Result payloads are not decoded;
// use Get for a single task's report.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, status, progress, error, created_at, updated_at
		 FROM tasks ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt, updatedAt string
		var progress, errMsg sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Status, &progress, &errMsg, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		rec.Progress = progress.String
		rec.Error = errMsg.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func scanRecord(row *sql.Row) (*Record, error) {
	var rec Record
	var createdAt, updatedAt string
	var progress, errMsg, result sql.NullString
	if err := row.Scan(&rec.ID, &rec.Query, &rec.Status, &progress, &errMsg, &result, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rec.Progress = progress.String
	rec.Error = errMsg.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	if result.Valid && result.String != "" {
		var fr types.FinalReportResult
		if err := json.Unmarshal([]byte(result.String), &fr); err != nil {
			return nil, fmt.Errorf("decoding result for task %s: %w", rec.ID, err)
		}
		rec.Result = &fr
	}

	return &rec, nil
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
