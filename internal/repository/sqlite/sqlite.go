// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for:
// - Single-server deployments (which is most apps, honestly)
// - Development and testing (use ":memory:" for an in-memory DB)
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// WHY ONE ROW PER USER WITH A JSON DOCUMENT LIST?
// The store's contract is document-oriented: get the whole aggregate, replace the
// whole list (see internal/repository). Holding the list in a single TEXT column
// gives us exactly those semantics — a read is one row lookup, a write is one row
// update — and the `version` column gives us an optimistic-concurrency token to
// detect two writers racing on the same user. Normalising the documents into their
// own table would be the conventional relational design, but it would change the
// store's semantics out from under the service layer.
package sqlite

import (
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// The underscore import `_ "modernc.org/sqlite"` is a "side-effect only" import.
	// The sqlite package's init() function registers itself with database/sql as a
	// driver named "sqlite". After this import, sql.Open("sqlite", ...) knows how
	// to talk to SQLite.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the UserStore methods.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/doctalk.db"  → file-based database (persistent)
//   - ":memory:"         → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping verifies the connection actually works. Without this, a bad path or
	// permissions issue would only surface on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) mode:
	// Default SQLite locks the entire database during writes. WAL mode allows
	// concurrent reads WHILE a write is happening — important for a web server
	// where reads vastly outnumber writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// busy_timeout makes a writer wait (up to 5s) for a competing writer to
	// finish instead of failing immediately with SQLITE_BUSY. Our version-token
	// updates are short, so contention resolves in microseconds; the timeout is
	// the backstop, not the mechanism.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
// Wherever you call New(), immediately defer Close() — this flushes the WAL
// and releases the file lock.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema.
//
// One table. The aggregate's document list lives in `documents` as a JSON
// array (never NULL — an empty list is '[]'). `version` starts at 0 and is
// incremented by every successful list replace; it is the compare half of
// the compare-and-swap in ReplaceDocuments.
//
// `theme` and `social_media` belong to profile endpoints outside this
// service; they are columns here so document writes never touch them.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			email        TEXT NOT NULL DEFAULT '',
			documents    TEXT NOT NULL DEFAULT '[]',
			version      INTEGER NOT NULL DEFAULT 0,
			theme        TEXT NOT NULL DEFAULT '',
			social_media TEXT NOT NULL DEFAULT '{}',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	return nil
}
