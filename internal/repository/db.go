package repository

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("not found")

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS drivers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			rental_fee REAL NOT NULL DEFAULT 0,
			integrations TEXT NOT NULL DEFAULT '{}',
			vehicle_plate TEXT NOT NULL DEFAULT '',
			admin_fee_mode TEXT,
			admin_fee_value REAL,
			commission REAL NOT NULL DEFAULT 0,
			iban TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_drivers_status ON drivers(status)`,

		`CREATE TABLE IF NOT EXISTS weekly_entries (
			id TEXT PRIMARY KEY,
			driver_id TEXT,
			reference_id TEXT,
			vehicle_plate TEXT,
			platform TEXT NOT NULL,
			week_id TEXT NOT NULL,
			week_start DATETIME NOT NULL,
			week_end DATETIME NOT NULL,
			total_value REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_entries_week ON weekly_entries(week_id)`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_entries_platform ON weekly_entries(platform)`,

		`CREATE TABLE IF NOT EXISTS financing_obligations (
			id TEXT PRIMARY KEY,
			driver_id TEXT NOT NULL,
			type TEXT NOT NULL,
			amount REAL NOT NULL,
			weeks INTEGER NOT NULL DEFAULT 0,
			remaining_weeks INTEGER,
			weekly_interest REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_financing_driver ON financing_obligations(driver_id)`,

		`CREATE TABLE IF NOT EXISTS weekly_bonuses (
			id TEXT PRIMARY KEY,
			driver_id TEXT NOT NULL,
			week_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			amount REAL NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			pending INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_bonuses_driver_week ON weekly_bonuses(driver_id, week_id)`,

		`CREATE TABLE IF NOT EXISTS weekly_settlements (
			id TEXT PRIMARY KEY,
			driver_id TEXT NOT NULL,
			driver_name TEXT NOT NULL,
			week_id TEXT NOT NULL,
			week_start DATETIME NOT NULL,
			week_end DATETIME NOT NULL,
			uber_total REAL NOT NULL,
			bolt_total REAL NOT NULL,
			ganhos_total REAL NOT NULL,
			iva_valor REAL NOT NULL,
			ganhos_menos_iva REAL NOT NULL,
			despesas_adm REAL NOT NULL,
			combustivel REAL NOT NULL,
			portagens REAL NOT NULL,
			aluguel REAL NOT NULL,
			financing_installment REAL NOT NULL,
			financing_interest REAL NOT NULL,
			financing_total REAL NOT NULL,
			has_financing INTEGER NOT NULL,
			financing_count INTEGER NOT NULL DEFAULT 0,
			bonus_meta REAL NOT NULL,
			bonus_referral REAL NOT NULL,
			commission REAL NOT NULL,
			total_despesas REAL NOT NULL,
			repasse REAL NOT NULL,
			payment_status TEXT NOT NULL,
			paid_at DATETIME,
			payment_proof TEXT,
			record_snapshot TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_settlements_week ON weekly_settlements(week_id)`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_settlements_driver ON weekly_settlements(driver_id)`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_settlements_status ON weekly_settlements(payment_status)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	return nil
}
