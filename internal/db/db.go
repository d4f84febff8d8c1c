package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with galatea-specific helpers.
type DB struct {
	*sql.DB
	mu   sync.RWMutex
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
// The pool is pinned to one connection so every query sees the same database.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the file the database was opened from.
func (d *DB) Path() string { return d.path }

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS catalog_pages (
    number INTEGER PRIMARY KEY CHECK(number >= 1),
    title TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS catalog_panels (
    page_number INTEGER NOT NULL REFERENCES catalog_pages(number) ON DELETE CASCADE,
    position INTEGER NOT NULL CHECK(position >= 0),
    image TEXT NOT NULL DEFAULT '',
    background TEXT NOT NULL DEFAULT '',
    class_name TEXT NOT NULL DEFAULT '',
    aspect_ratio TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    dialogue TEXT NOT NULL DEFAULT '',
    speaker TEXT NOT NULL DEFAULT '',
    narration TEXT NOT NULL DEFAULT '',
    PRIMARY KEY(page_number, position)
);

CREATE TABLE IF NOT EXISTS catalog_imports (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    pages INTEGER NOT NULL DEFAULT 0,
    panels INTEGER NOT NULL DEFAULT 0,
    imported_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS profiles (
    uid TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    age INTEGER NOT NULL CHECK(age BETWEEN 18 AND 99),
    bio TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    interests TEXT NOT NULL DEFAULT '[]',
    looking_for TEXT NOT NULL DEFAULT '',
    gender_identity TEXT NOT NULL DEFAULT '',
    gender_preference TEXT NOT NULL DEFAULT '[]',
    photos TEXT NOT NULL DEFAULT '[]',
    verified INTEGER NOT NULL DEFAULT 0,
    last_active TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_profiles_age ON profiles(age);
CREATE INDEX IF NOT EXISTS idx_profiles_last_active ON profiles(last_active);

CREATE TABLE IF NOT EXISTS preferences (
    uid TEXT PRIMARY KEY,
    age_min INTEGER NOT NULL,
    age_max INTEGER NOT NULL,
    max_distance INTEGER NOT NULL,
    gender_preference TEXT NOT NULL DEFAULT '[]',
    looking_for TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`
