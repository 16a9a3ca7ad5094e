package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Account represents a registered user stored in the database.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	PhoneNum     string
	IsAdmin      bool
	IsConfirmed  bool
	CreatedAt    time.Time
}

const accountColumns = "id, username, password, phone_num, is_admin, is_confirmed, created_at"

func scanAccount(row interface{ Scan(...any) error }) (*Account, error) {
	a := &Account{}
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.PhoneNum, &a.IsAdmin, &a.IsConfirmed, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAccount inserts a new account. A UNIQUE violation on username or
// phone number is returned unwrapped enough for IsUniqueViolation to detect.
func (db *DB) CreateAccount(username, passwordHash, phoneNum string, isAdmin, isConfirmed bool) (*Account, error) {
	now := time.Now()
	result, err := db.exec(`
		INSERT INTO accounts (username, password, phone_num, is_admin, is_confirmed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, username, passwordHash, phoneNum, isAdmin, isConfirmed, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get account id: %w", err)
	}

	return &Account{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		PhoneNum:     phoneNum,
		IsAdmin:      isAdmin,
		IsConfirmed:  isConfirmed,
		CreatedAt:    now,
	}, nil
}

// RegisterAccount inserts an account that is confirmed and admin only when
// the table is empty. The emptiness check and the insert are one statement,
// so concurrent first registrations yield a single admin.
func (db *DB) RegisterAccount(username, passwordHash, phoneNum string) (*Account, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	a := &Account{Username: username, PasswordHash: passwordHash, PhoneNum: phoneNum, CreatedAt: time.Now()}
	err := db.queryRow(`
		INSERT INTO accounts (username, password, phone_num, is_admin, is_confirmed, created_at)
		SELECT ?, ?, ?, first, first, ?
		FROM (SELECT NOT EXISTS (SELECT 1 FROM accounts) AS first)
		RETURNING id, is_admin, is_confirmed
	`, username, passwordHash, phoneNum, a.CreatedAt).Scan(&a.ID, &a.IsAdmin, &a.IsConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to register account: %w", err)
	}
	return a, nil
}

// GetAccountByUsername retrieves an account by username (case-insensitive).
func (db *DB) GetAccountByUsername(username string) (*Account, error) {
	account, err := scanAccount(db.queryRow(`
		SELECT `+accountColumns+`
		FROM accounts WHERE username = ?
	`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetAccountByID retrieves an account by ID.
func (db *DB) GetAccountByID(id int64) (*Account, error) {
	account, err := scanAccount(db.queryRow(`
		SELECT `+accountColumns+`
		FROM accounts WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// AccountTaken reports whether either the username or the phone number is
// already registered.
func (db *DB) AccountTaken(username, phoneNum string) (bool, error) {
	var count int
	err := db.queryRow(`
		SELECT COUNT(*) FROM accounts WHERE username = ? OR phone_num = ?
	`, username, phoneNum).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check account: %w", err)
	}
	return count > 0, nil
}

// PhoneNumExists reports whether a phone number is already registered.
func (db *DB) PhoneNumExists(phoneNum string) (bool, error) {
	var count int
	err := db.queryRow("SELECT COUNT(*) FROM accounts WHERE phone_num = ?", phoneNum).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check phone number: %w", err)
	}
	return count > 0, nil
}

// ListAccountsExcept returns every account other than the given username.
func (db *DB) ListAccountsExcept(username string) ([]*Account, error) {
	rows, err := db.query(`
		SELECT `+accountColumns+`
		FROM accounts WHERE username != ?
		ORDER BY id
	`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ListConfirmedUsernames returns usernames of every confirmed account.
func (db *DB) ListConfirmedUsernames() ([]string, error) {
	rows, err := db.query("SELECT username FROM accounts WHERE is_confirmed = 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed accounts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ConfirmAccount marks an account as confirmed. There is no way back.
func (db *DB) ConfirmAccount(id int64) (bool, error) {
	result, err := db.exec("UPDATE accounts SET is_confirmed = 1 WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to confirm account: %w", err)
	}
	return affected(result)
}

// SetAccountAdmin grants or revokes admin rights.
func (db *DB) SetAccountAdmin(id int64, isAdmin bool) (bool, error) {
	result, err := db.exec("UPDATE accounts SET is_admin = ? WHERE id = ?", isAdmin, id)
	if err != nil {
		return false, fmt.Errorf("failed to update admin flag: %w", err)
	}
	return affected(result)
}

// DeleteAccount removes an account and, through the foreign key, its sessions.
func (db *DB) DeleteAccount(id int64) (bool, error) {
	result, err := db.exec("DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete account: %w", err)
	}
	return affected(result)
}
