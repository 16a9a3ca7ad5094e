package database

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// schemaStep is one forward-only schema change. The schema version lives in
// SQLite's user_version header field and equals the index of the last
// applied step plus one.
type schemaStep struct {
	name  string
	stmts []string
}

// SchemaVersion returns the number of schema steps applied to the database
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.queryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// Migrate brings the schema up to date. Each step commits together with its
// version bump, so an interrupted run resumes at the failed step.
func (db *DB) Migrate() error {
	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	if current > len(schema) {
		return fmt.Errorf("database schema version %d is newer than this build supports (%d)", current, len(schema))
	}
	if current == len(schema) {
		log.Debug().Int("version", current).Msg("Schema up to date")
		return nil
	}

	for v := current; v < len(schema); v++ {
		step := schema[v]
		log.Info().Int("version", v+1).Str("step", step.name).Msg("Upgrading schema")

		err := db.Transaction(func(tx *sql.Tx) error {
			for _, stmt := range step.stmts {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("schema step %q: %w", step.name, err)
				}
			}
			_, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

var schema = []schemaStep{
	{
		name: "inventory",
		stmts: []string{
			`CREATE TABLE accounts (
				id INTEGER PRIMARY KEY,
				username TEXT NOT NULL COLLATE NOCASE UNIQUE,
				password TEXT NOT NULL,
				phone_num TEXT NOT NULL UNIQUE,
				is_admin INTEGER NOT NULL DEFAULT 0,
				is_confirmed INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE part_stores (
				id INTEGER PRIMARY KEY,
				part_store_name TEXT NOT NULL UNIQUE,
				icon TEXT NOT NULL
			)`,
			`CREATE TABLE part_types (
				id INTEGER PRIMARY KEY,
				type_name TEXT NOT NULL COLLATE NOCASE UNIQUE,
				type_unit TEXT NOT NULL
			)`,
			// store and type are referenced by name, unit is copied from the type
			`CREATE TABLE parts (
				id INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				amount INTEGER NOT NULL DEFAULT 0,
				part_number TEXT NOT NULL,
				part_store_name TEXT NOT NULL,
				type TEXT NOT NULL,
				unit TEXT NOT NULL DEFAULT '',
				low_thresh INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX parts_by_store ON parts(part_store_name)`,
			`CREATE INDEX parts_by_type ON parts(type)`,
			`CREATE TABLE jobs (
				job_id INTEGER PRIMARY KEY,
				username TEXT NOT NULL,
				time TEXT NOT NULL,
				part_store_name TEXT NOT NULL,
				parts_used TEXT NOT NULL
			)`,
		},
	},
	{
		name: "sessions_and_settings",
		stmts: []string{
			`CREATE TABLE sessions (
				id TEXT PRIMARY KEY,
				account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
				expires_at TIMESTAMP NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		name: "notification_log",
		stmts: []string{
			`CREATE TABLE notification_log (
				id INTEGER PRIMARY KEY,
				username TEXT NOT NULL,
				phone_num TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				error TEXT NOT NULL DEFAULT '',
				part_count INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX notification_log_by_time ON notification_log(created_at)`,
		},
	},
}
