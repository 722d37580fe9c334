// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite, so the server builds without a C
// toolchain and the whole store is a single file next to the binary
// (or ":memory:" in tests).
//
// ONE CONNECTION:
// The pool is capped at a single open connection. Every statement in the
// process is serialised through it, which gives us two things:
//   - ":memory:" databases work in tests (each new connection to ":memory:"
//     would otherwise see its own empty database)
//   - writers never race each other for the file lock inside one process
//
// Across processes, SQLite's own file locking (plus busy_timeout) does the
// serialising.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB and implements every repository interface in
// internal/repository.
type DB struct {
	conn *sql.DB
}

// New opens (creating if absent) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/showtracker.db"  → file-based database (persistent)
//   - ":memory:"             → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	// "sqlite" is the driver name registered by modernc.org/sqlite's init().
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a writer holds the lock. For ":memory:"
	// SQLite silently keeps journal_mode=memory, which is fine.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Wait up to 5s for another process's write lock instead of failing with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	// NOTE: foreign_keys stays OFF. The username references are declarative
	// only: media and activities may be written for a username that has no
	// users row, and nothing cascades.

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the three tables if they do not exist yet.
//
// CREATE TABLE IF NOT EXISTS makes this safe to run on every start, and
// addColumnIfNotExists upgrades files created before total_episodes existed.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username   TEXT PRIMARY KEY,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// id alone is the primary key: one provider id can be on only one
	// user's list. See DESIGN.md before changing this to (username, id).
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS media (
			id               TEXT PRIMARY KEY,
			username         TEXT REFERENCES users(username),
			type             TEXT,
			title            TEXT,
			year             TEXT,
			overview         TEXT,
			poster_path      TEXT,
			status           TEXT,
			watched_episodes INTEGER,
			progress         INTEGER,
			season           INTEGER,
			episode          INTEGER,
			added_date       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_media_username ON media(username);
	`)
	if err != nil {
		return fmt.Errorf("creating media table: %w", err)
	}

	if err := db.addColumnIfNotExists("media", "total_episodes", "INTEGER"); err != nil {
		return fmt.Errorf("adding total_episodes to media: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS activities (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			username    TEXT REFERENCES users(username),
			media_id    TEXT,
			media_type  TEXT,
			media_title TEXT,
			action      TEXT,
			message     TEXT,
			timestamp   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_activities_user_time ON activities(username, timestamp);
	`)
	if err != nil {
		return fmt.Errorf("creating activities table: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
// Makes ALTER TABLE migrations idempotent; safe to run multiple times.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error.
//
// fn must only use tx. Touching db.conn inside fn would wait forever for
// the single pooled connection that tx is holding.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a PRIMARY KEY or UNIQUE constraint failure.
//
// modernc.org/sqlite returns *sqlite.Error carrying SQLite's extended result
// code. The bare SQLITE_CONSTRAINT code is accepted too, for connections
// where extended codes are off.
func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return true
	}
	return false
}
