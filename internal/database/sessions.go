package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SessionRecord is a login session stored in the database.
type SessionRecord struct {
	ID        string
	AccountID int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CreateSession inserts a new session record.
func (db *DB) CreateSession(id string, accountID int64, expiresAt time.Time) (*SessionRecord, error) {
	// Stored in UTC so expiry comparisons in SQL order correctly
	now := time.Now().UTC()
	expiresAt = expiresAt.UTC()
	_, err := db.exec(`
		INSERT INTO sessions (id, account_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, id, accountID, expiresAt, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &SessionRecord{
		ID:        id,
		AccountID: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// GetSession retrieves a session by ID.
func (db *DB) GetSession(id string) (*SessionRecord, error) {
	session := &SessionRecord{}
	err := db.queryRow(`
		SELECT id, account_id, expires_at, created_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.AccountID, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session by ID.
func (db *DB) DeleteSession(id string) error {
	if _, err := db.exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ExtendSession updates a session's expiration time.
func (db *DB) ExtendSession(id string, expiresAt time.Time) error {
	if _, err := db.exec("UPDATE sessions SET expires_at = ? WHERE id = ?", expiresAt.UTC(), id); err != nil {
		return fmt.Errorf("failed to extend session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now.
func (db *DB) DeleteExpiredSessions(now time.Time) (int64, error) {
	result, err := db.exec("DELETE FROM sessions WHERE expires_at < ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
