package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// CreateSchema creates the database schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	if err := createScansTable(db); err != nil {
		return fmt.Errorf("creating scans table: %w", err)
	}

	if err := createMatchesTable(db); err != nil {
		return fmt.Errorf("creating matches table: %w", err)
	}

	return nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}

	return nil
}

func createScansTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			pattern TEXT NOT NULL,
			start_offset INTEGER NOT NULL,
			end_offset INTEGER NOT NULL,
			buffer_size INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			match_count INTEGER NOT NULL DEFAULT 0,
			stop_reason TEXT NOT NULL DEFAULT ''
		)
	`)
	return err
}

func createMatchesTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id INTEGER NOT NULL REFERENCES scans(id),
			match_offset INTEGER NOT NULL,
			length INTEGER NOT NULL,
			source TEXT NOT NULL,
			context_start INTEGER,
			context BLOB,
			UNIQUE(scan_id, match_offset)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_matches_scan_id ON matches(scan_id)
	`)
	return err
}
