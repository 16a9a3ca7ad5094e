package database

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// pragmas are applied to every pooled connection. WAL lets the API read
// while a bulk amount update holds the write lock.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// DB is the inventory store. All SQL lives in methods on DB, one file per table.
type DB struct {
	conn *sql.DB
	path string

	// writeMu serializes transactions and maintenance
	writeMu sync.Mutex
}

// New opens the SQLite file at path, creating it if needed
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(8)
	conn.SetMaxIdleConns(4)

	log.Debug().Str("path", path).Msg("Database opened")
	return &DB{conn: conn, path: path}, nil
}

func dsn(path string) string {
	var b strings.Builder
	b.WriteString("file:")
	b.WriteString(path)
	for i, p := range pragmas {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString("_pragma=")
		b.WriteString(p)
	}
	return b.String()
}

// Close closes the underlying connection pool
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Transaction runs fn in a transaction, rolling back when fn fails
func (db *DB) Transaction(fn func(*sql.Tx) error) (err error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Optimize refreshes the query planner statistics
func (db *DB) Optimize() error {
	return db.maintenance("PRAGMA optimize", "optimize")
}

// Vacuum checkpoints the WAL and rebuilds the file to reclaim space left
// by deleted parts and jobs
func (db *DB) Vacuum() error {
	if err := db.maintenance("PRAGMA wal_checkpoint(TRUNCATE)", "checkpoint"); err != nil {
		return err
	}
	return db.maintenance("VACUUM", "vacuum")
}

func (db *DB) maintenance(stmt, what string) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	if _, err := db.conn.Exec(stmt); err != nil {
		return fmt.Errorf("failed to %s database: %w", what, err)
	}
	log.Debug().Str("task", what).Msg("Database maintenance done")
	return nil
}

func (db *DB) exec(query string, args ...any) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

func (db *DB) query(query string, args ...any) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

func (db *DB) queryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// affected reports whether a statement touched at least one row
func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
