// ABOUTME: SQLite connection lifecycle with lock-retry for multi-process access
// ABOUTME: Uses modernc.org/sqlite for pure-Go SQLite support
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/2389-research/memelord/internal/storage"
	"github.com/2389-research/memelord/internal/util"
	_ "modernc.org/sqlite"
)

const (
	// connectAttempts is how many times Open retries when another process
	// holds the file lock.
	connectAttempts = 10

	// connectBaseDelay feeds the randomized retry backoff.
	connectBaseDelay = 50 * time.Millisecond
)

// Queryer is the common surface of *sql.Tx and *DB. Entity stores run
// against it so the same queries compose into multi-entity transactions.
type Queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// DB wraps a short-lived SQLite connection. Every store operation opens one,
// executes, and closes it before returning; nothing holds a DB across calls.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens or creates the database at path and ensures the schema exists.
// The file lock is taken at connect time, so "locked" failures are retried
// with randomized backoff before giving up with storage.ErrLocked.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"

	var lastErr error
	for attempt := 0; attempt < connectAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(util.ConnectBackoff(connectBaseDelay, attempt))
		}

		db, err := open(dsn, path)
		if err == nil {
			return db, nil
		}
		if !isLockedError(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %v", storage.ErrLocked, path, connectAttempts, lastErr)
}

// OpenInMemory creates an in-memory database (for testing)
func OpenInMemory() (*DB, error) {
	return open(":memory:?_pragma=foreign_keys(ON)", ":memory:")
}

func open(dsn, path string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection serializes this
	// process's statements while busy_timeout covers the other processes.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// isLockedError reports whether err is SQLite lock contention rather than a
// real failure. Any other connect error propagates immediately.
func isLockedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "locked") || strings.Contains(msg, "locking") || strings.Contains(msg, "busy")
}

// initSchema creates all tables and indexes, idempotently
func (db *DB) initSchema() error {
	_, err := db.conn.Exec(Schema)
	return err
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Exec executes a query without returning rows
func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// WithTx runs fn inside a transaction, committing on nil and rolling back on
// error. Store operations compose their multi-entity writes through this so
// each public operation is atomic against other processes.
func (db *DB) WithTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
