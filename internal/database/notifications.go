package database

import (
	"fmt"
	"time"
)

// NotificationStatus is the outcome of a low-stock text attempt
type NotificationStatus string

const (
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
	NotificationSkipped NotificationStatus = "skipped"
)

// NotificationLog records one attempt to text a user about low stock
type NotificationLog struct {
	ID        int64              `json:"id"`
	Username  string             `json:"username"`
	PhoneNum  string             `json:"phone_num"`
	Status    NotificationStatus `json:"status"`
	Error     string             `json:"error,omitempty"`
	PartCount int                `json:"part_count"`
	CreatedAt time.Time          `json:"created_at"`
}

// LogNotification stores a notification attempt
func (db *DB) LogNotification(entry *NotificationLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	result, err := db.exec(`
		INSERT INTO notification_log (username, phone_num, status, error, part_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Username, entry.PhoneNum, entry.Status, entry.Error, entry.PartCount, entry.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to log notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get notification log id: %w", err)
	}
	entry.ID = id
	return nil
}

// ListNotificationLogs returns the most recent attempts, newest first
func (db *DB) ListNotificationLogs(limit int) ([]*NotificationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.query(`
		SELECT id, username, phone_num, status, error, part_count, created_at
		FROM notification_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification logs: %w", err)
	}
	defer rows.Close()

	var logs []*NotificationLog
	for rows.Next() {
		l := &NotificationLog{}
		if err := rows.Scan(&l.ID, &l.Username, &l.PhoneNum, &l.Status, &l.Error, &l.PartCount, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ClearNotificationLogs removes entries older than the cutoff
func (db *DB) ClearNotificationLogs(before time.Time) (int64, error) {
	result, err := db.exec("DELETE FROM notification_log WHERE created_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to clear notification logs: %w", err)
	}
	return result.RowsAffected()
}
