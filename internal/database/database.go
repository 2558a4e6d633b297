package database

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/weichenlin/tripmate/internal/database/migrations"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("database: not found")
	// ErrNotOwned is returned when a row exists but belongs to someone else.
	ErrNotOwned = errors.New("database: not owned")
	// ErrBadTime is returned when a time-of-day value does not parse.
	ErrBadTime = errors.New("database: bad time of day")
)

type DB struct {
	*sql.DB
}

func New(dbPath string) (*DB, error) {
	// Enable WAL mode for better concurrency, busy timeout to wait instead of failing,
	// and foreign keys for referential integrity
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{db}, nil
}

func (d *DB) Close() error {
	return d.DB.Close()
}
