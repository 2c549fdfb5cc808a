// Package sqlite is the local storage backend. It implements store.Repository
// on a single SQLite file with versioned migrations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements store.Repository using SQLite.
type Repository struct {
	db     *sql.DB
	dbPath string
}

var _ store.Repository = (*Repository)(nil)

// Open opens (creating if needed) the database at dbPath and applies pending migrations.
func Open(ctx context.Context, dbPath string) (*Repository, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite.Open: dbPath cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("sqlite.Open: creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: opening database: %w", err)
	}

	// One writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.Open: pinging database: %w", err)
	}

	repo := &Repository{db: db, dbPath: dbPath}
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.dbPath
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
