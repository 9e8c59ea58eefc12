package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Use WAL mode for better concurrency
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Migrate creates the optimizer run tables if they do not exist
func (db *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS optimizer_runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		aum_total REAL NOT NULL,
		target_term INTEGER,
		pool_size INTEGER NOT NULL,
		selected_count INTEGER NOT NULL,
		selected_amount REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS optimizer_audit_rows (
		run_id TEXT NOT NULL REFERENCES optimizer_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		candidate_id TEXT NOT NULL,
		input_index INTEGER NOT NULL,
		amount REAL NOT NULL,
		apr REAL NOT NULL,
		term INTEGER,
		customer_id TEXT NOT NULL,
		industry TEXT NOT NULL,
		payer_rank INTEGER NOT NULL,
		apr_bucket TEXT NOT NULL,
		line_bucket TEXT NOT NULL,
		payer_bucket TEXT NOT NULL,
		score REAL NOT NULL,
		selected INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		cumulative_amount REAL,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_optimizer_runs_created_at
		ON optimizer_runs(created_at);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// Exec executes a query without returning rows
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
