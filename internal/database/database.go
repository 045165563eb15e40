// Package database is the SQLite implementation of the repository interfaces.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"condoflow/internal/repository"
)

// DB represents the database connection.
type DB struct {
	*sql.DB
	path   string
	logger *zerolog.Logger
}

var _ repository.Store = (*DB)(nil)

// NewDB opens the database at path and runs the migrations. The path
// ":memory:" opens a private in-memory database.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	inMemory := path == ":memory:"

	dsn := path
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// WAL mode and busy timeout for concurrent readers
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if inMemory {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{DB: db, path: path, logger: logger}
	if err := instance.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return instance, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string { return db.path }

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS areas (
		id TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		icon TEXT NOT NULL DEFAULT '',
		capacity INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		opens_at TEXT NOT NULL DEFAULT '00:00',
		closes_at TEXT NOT NULL DEFAULT '00:00',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		area TEXT NOT NULL,
		resident_name TEXT NOT NULL,
		unit TEXT NOT NULL,
		owner_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		guests INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_area_date ON reservations(area, date)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_owner ON reservations(owner_id)`,
	`CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		unit TEXT NOT NULL,
		block TEXT NOT NULL,
		resident_name TEXT,
		resident_since TEXT,
		resident_image TEXT,
		type TEXT NOT NULL,
		contact_phone TEXT,
		contact_email TEXT,
		owner TEXT NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		amount REAL NOT NULL,
		date TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		entity TEXT NOT NULL DEFAULT '',
		receipt_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
	`CREATE TABLE IF NOT EXISTS chart_points (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		revenue REAL NOT NULL,
		expense REAL NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		requester TEXT NOT NULL,
		date TEXT NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		assigned_to TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		author_id TEXT NOT NULL DEFAULT '',
		author_name TEXT NOT NULL,
		author_role TEXT NOT NULL DEFAULT '',
		author_avatar TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		pinned BOOLEAN NOT NULL DEFAULT 0,
		urgent BOOLEAN NOT NULL DEFAULT 0,
		likes INTEGER NOT NULL DEFAULT 0,
		poll_options TEXT NOT NULL DEFAULT '[]',
		comments TEXT NOT NULL DEFAULT '[]',
		liked_by TEXT NOT NULL DEFAULT '{}',
		voted_by TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT 0,
		audience TEXT NOT NULL DEFAULT '',
		recipient TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at)`,
}

func (db *DB) migrate() error {
	for _, q := range migrations {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// execOne runs a statement that must touch exactly one row.
func (db *DB) execOne(ctx context.Context, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
