// Package storage provides a persistent audit archive of codec operations.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Operation is one archived encode or decode call.
type Operation struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Direction   string    `json:"direction"` // "encode" or "decode"
	SizeBytes   int       `json:"size_bytes"`
	RecordCount int       `json:"record_count"`
	Status      string    `json:"status"` // "ok" or "error"
	Detail      string    `json:"detail,omitempty"`
}

// DB wraps a SQLite database connection for the operation archive.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite archive at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		direction TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		record_count INTEGER NOT NULL,
		status TEXT NOT NULL,
		detail TEXT,
		created_at TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_operations_direction ON operations(direction);
	CREATE INDEX IF NOT EXISTS idx_operations_timestamp ON operations(timestamp);
	`
	_, err := db.Exec(schema)
	return err
}

// InsertOperation archives one codec operation.
func (d *DB) InsertOperation(op Operation) (int64, error) {
	ts := op.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	res, err := d.db.Exec(
		`INSERT INTO operations (timestamp, direction, size_bytes, record_count, status, detail)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339Nano), op.Direction, op.SizeBytes,
		op.RecordCount, op.Status, op.Detail,
	)
	if err != nil {
		return 0, fmt.Errorf("insert operation: %w", err)
	}
	return res.LastInsertId()
}

// RecentOperations returns the newest operations, most recent first.
func (d *DB) RecentOperations(limit int) ([]Operation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.Query(
		`SELECT id, timestamp, direction, size_bytes, record_count, status, COALESCE(detail, '')
		 FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var op Operation
		var ts string
		if err := rows.Scan(&op.ID, &ts, &op.Direction, &op.SizeBytes,
			&op.RecordCount, &op.Status, &op.Detail); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			op.Timestamp = parsed
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
