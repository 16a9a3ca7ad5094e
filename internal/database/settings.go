package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/saltyorg/partsroom/internal/logging"
)

// GetSetting retrieves the stored JSON text for a key, "" when missing
func (db *DB) GetSetting(key string) (string, error) {
	var value sql.NullString
	err := db.queryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value.String, nil
}

const upsertSetting = `
	INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// SetSetting stores raw setting text
func (db *DB) SetSetting(key, value string) error {
	return db.SetSettings(map[string]string{key: value})
}

// SetSettings stores every value in one transaction. Either all keys are
// written or none are.
func (db *DB) SetSettings(values map[string]string) error {
	now := time.Now()
	return db.Transaction(func(tx *sql.Tx) error {
		for key, value := range values {
			if _, err := tx.Exec(upsertSetting, key, value, now); err != nil {
				return fmt.Errorf("failed to set setting %s: %w", key, err)
			}
		}
		return nil
	})
}

// GetAllSettings returns every stored setting keyed by name
func (db *DB) GetAllSettings() (map[string]string, error) {
	rows, err := db.query("SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// DefaultSettings holds the value each known setting starts with. Keys not
// listed here are rejected by the settings API.
var DefaultSettings = map[string]any{
	"log.level":                         "info",
	"log.max_size_mb":                   logging.DefaultMaxSizeMB,
	"log.max_backups":                   logging.DefaultMaxBackups,
	"log.max_age_days":                  logging.DefaultMaxAgeDays,
	"log.compress":                      logging.DefaultCompress,
	"notifications.low_stock.enabled":   false,
	"notifications.low_stock.schedule":  "0 8 * * 1-5", // weekday mornings
	"notifications.log_retention_days":  30,
	"sessions.cleanup_interval_minutes": 60,
}

// InitializeDefaults stores DefaultSettings for keys that have no value yet
func (db *DB) InitializeDefaults() error {
	return db.Transaction(func(tx *sql.Tx) error {
		for key, def := range DefaultSettings {
			data, err := json.Marshal(def)
			if err != nil {
				return fmt.Errorf("failed to encode default %s: %w", key, err)
			}
			if _, err := tx.Exec(
				"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING",
				key, string(data),
			); err != nil {
				return fmt.Errorf("failed to seed setting %s: %w", key, err)
			}
		}
		return nil
	})
}
