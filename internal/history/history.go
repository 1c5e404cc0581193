// Package history provides a SQLite-backed log of served answers. Every
// question the service answers is recorded with its outcome so operators can
// audit what was asked and what the assistant said, across restarts.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Record is one served answer.
type Record struct {
	// Question is the trimmed question as received.
	Question string
	// Answer is the answer text that was served.
	Answer string
	// References is the number of citations the answer carried.
	References int
	// Degraded is true when the answer reported a model failure.
	Degraded bool
	// Duration is the end-to-end pipeline latency.
	Duration time.Duration
	// CreatedAt is when the record was persisted.
	CreatedAt time.Time
}

// Recorder persists and retrieves served-answer records.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// Append persists a single record.
	Append(ctx context.Context, rec Record) error
	// Recent returns the most recent n records, newest first.
	Recent(ctx context.Context, n int) ([]Record, error)
	// Close releases any resources held by the recorder.
	Close() error
}

// SQLiteLog is a Recorder backed by a local SQLite database.
type SQLiteLog struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the answer log database.
// It resolves to ~/.gfi-support/answers.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("history: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".gfi-support")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("history: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "answers.db"), nil
}

// Open opens (or creates) a SQLiteLog at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteLog, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	l := &SQLiteLog{db: db}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// migrate creates the schema if it does not already exist.
func (l *SQLiteLog) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS answers (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    question    TEXT    NOT NULL,
    answer      TEXT    NOT NULL,
    refs        INTEGER NOT NULL,
    degraded    INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL,
    created_at  INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_answers_created ON answers (created_at);
`
	if _, err := l.db.Exec(ddl); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Append persists a single record.
func (l *SQLiteLog) Append(ctx context.Context, rec Record) error {
	const q = `INSERT INTO answers (question, answer, refs, degraded, duration_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	degraded := 0
	if rec.Degraded {
		degraded = 1
	}
	_, err := l.db.ExecContext(ctx, q,
		rec.Question, rec.Answer, rec.References, degraded,
		rec.Duration.Milliseconds(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// Recent returns the most recent n records, newest first.
func (l *SQLiteLog) Recent(ctx context.Context, n int) ([]Record, error) {
	const q = `SELECT question, answer, refs, degraded, duration_ms, created_at
FROM answers ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := l.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var degraded int
		var durationMS, createdAt int64
		if err := rows.Scan(&rec.Question, &rec.Answer, &rec.References, &degraded, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		rec.Degraded = degraded != 0
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}
	return records, nil
}

// Close closes the underlying database.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}
