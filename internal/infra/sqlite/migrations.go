package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

// SchemaVersion is the latest schema version this package expects.
const SchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS customers (
					customer_id TEXT PRIMARY KEY,
					customer_name TEXT NOT NULL,
					phone_number TEXT NOT NULL,
					created_ts TIMESTAMP NOT NULL,
					updated_ts TIMESTAMP NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS raw_messages (
					raw_message_id TEXT PRIMARY KEY,
					customer_id TEXT NOT NULL REFERENCES customers(customer_id),
					message_text TEXT NOT NULL,
					message_type TEXT NOT NULL,
					important_points TEXT NOT NULL DEFAULT '[]',
					sender TEXT,
					sms_id TEXT,
					processed INTEGER NOT NULL DEFAULT 1,
					created_ts TIMESTAMP NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_raw_messages_customer ON raw_messages(customer_id, created_ts)`,
				`CREATE INDEX IF NOT EXISTS idx_raw_messages_type ON raw_messages(message_type)`,
				`CREATE TABLE IF NOT EXISTS transactions (
					transaction_id TEXT PRIMARY KEY,
					customer_id TEXT NOT NULL REFERENCES customers(customer_id),
					message_type TEXT NOT NULL,
					raw_message_id TEXT NOT NULL REFERENCES raw_messages(raw_message_id),
					sms_id TEXT,
					transaction_date TEXT,
					amount REAL,
					available_balance REAL,
					total_outstanding REAL,
					account_number TEXT,
					bank_name TEXT,
					loan_reference TEXT,
					folio_number TEXT,
					policy_number TEXT,
					details TEXT NOT NULL DEFAULT '{}',
					created_ts TIMESTAMP NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions(customer_id, created_ts)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Index sms ids for duplicate detection",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX IF NOT EXISTS idx_raw_messages_sms ON raw_messages(customer_id, sms_id)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate applies every migration newer than the database's user_version.
func (r *Repository) Migrate(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var current int
	if err := r.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("Migrate: reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("Migrate: begin transaction: %w", err)
		}
		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("Migrate: migration %d failed: %w", m.Version, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("Migrate: updating schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("Migrate: commit migration %d: %w", m.Version, err)
		}

		log.Info().Int("version", m.Version).Str("description", m.Description).Msg("Applied migration")
	}

	var final int
	if err := r.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&final); err != nil {
		return fmt.Errorf("Migrate: verifying schema version: %w", err)
	}
	if final != SchemaVersion {
		return fmt.Errorf("Migrate: schema version mismatch: expected %d, got %d", SchemaVersion, final)
	}
	return nil
}

// SchemaVersionOf reports the schema version of the open database.
func (r *Repository) SchemaVersionOf(ctx context.Context) (int, error) {
	var v int
	if err := r.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("SchemaVersionOf: %w", err)
	}
	return v, nil
}
