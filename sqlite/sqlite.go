// Package sqlite provides SQLite-based storage implementations for folio services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// pragmas returns the connection settings applied on Open, in order.
func (db *DB) pragmas() []string {
	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	// WAL is not supported for in-memory databases.
	if db.path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	return append(pragmas, "PRAGMA foreign_keys = ON")
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; the cache worker and the CLI share this pool.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, pragma := range db.pragmas() {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	db.db = conn

	if err := db.migrate(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// Version returns the schema version recorded in the database.
func (db *DB) Version(ctx context.Context) (int, error) {
	var v int
	err := db.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v)
	return v, err
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// migrations[i] upgrades a database from user_version i to i+1.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS books (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		title_hebrew TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		author_hebrew TEXT NOT NULL DEFAULT '',
		publication_place TEXT NOT NULL DEFAULT '',
		publication_place_hebrew TEXT NOT NULL DEFAULT '',
		publication_date TEXT NOT NULL DEFAULT '',
		publication_date_hebrew TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		thumbnail TEXT NOT NULL DEFAULT '',
		num_pages INTEGER NOT NULL,
		last_page INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pages (
		book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		page INTEGER NOT NULL,
		path TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		checksum TEXT NOT NULL DEFAULT '',
		rendered_at TEXT NOT NULL,
		PRIMARY KEY (book_id, page)
	);
	`,
	`
	ALTER TABLE books ADD COLUMN oclc TEXT NOT NULL DEFAULT '';
	ALTER TABLE books ADD COLUMN uli TEXT NOT NULL DEFAULT '';
	ALTER TABLE books ADD COLUMN source TEXT NOT NULL DEFAULT '';
	ALTER TABLE books ADD COLUMN catalog_info TEXT NOT NULL DEFAULT '';
	`,
}

// schemaVersion is stored in PRAGMA user_version once every migration ran.
var schemaVersion = len(migrations)

// migrate applies the migrations the database has not seen yet, each in its
// own transaction.
func (db *DB) migrate() error {
	var version int
	if err := db.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}

	for v := version; v < schemaVersion; v++ {
		tx, err := db.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
