package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/saltyorg/partsroom/internal/database"
)

const (
	// SessionDuration is how long sessions last
	SessionDuration = 7 * 24 * time.Hour // 7 days
	// SessionIDLength is the number of random bytes in a session ID (hex encoded)
	SessionIDLength = 32
)

// BcryptCost is the bcrypt cost factor
var BcryptCost = 12

// ErrHashMismatch is returned when a freshly generated hash does not verify
var ErrHashMismatch = errors.New("generated password hash failed verification")

// CreatePasswordHash hashes a password with a random salt and checks the
// result against the plaintext before returning it.
func CreatePasswordHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	if !CheckPasswordHash(password, string(hash)) {
		return "", ErrHashMismatch
	}
	return string(hash), nil
}

// CheckPasswordHash verifies a password against a hash
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Session represents a logged in account
type Session struct {
	ID        string
	AccountID int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionStore is the persistence used by SessionService
type SessionStore interface {
	CreateSession(id string, accountID int64, expiresAt time.Time) (*database.SessionRecord, error)
	GetSession(id string) (*database.SessionRecord, error)
	DeleteSession(id string) error
	ExtendSession(id string, expiresAt time.Time) error
	DeleteExpiredSessions(now time.Time) (int64, error)
}

// SessionService handles login sessions
type SessionService struct {
	store SessionStore
	now   func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{store: store, now: time.Now}
}

// CreateSession creates a new session for an account
func (s *SessionService) CreateSession(accountID int64) (*Session, error) {
	sessionID, err := GenerateToken(SessionIDLength)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.CreateSession(sessionID, accountID, s.now().Add(SessionDuration))
	if err != nil {
		return nil, err
	}
	return fromRecord(rec), nil
}

// GetSession retrieves a live session. Expired sessions are deleted and
// reported as nil.
func (s *SessionService) GetSession(sessionID string) (*Session, error) {
	rec, err := s.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	if s.now().After(rec.ExpiresAt) {
		if err := s.store.DeleteSession(sessionID); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, nil
	}

	return fromRecord(rec), nil
}

// DeleteSession removes a session
func (s *SessionService) DeleteSession(sessionID string) error {
	return s.store.DeleteSession(sessionID)
}

// ExtendSession pushes a session's expiry out by SessionDuration
func (s *SessionService) ExtendSession(sessionID string) error {
	return s.store.ExtendSession(sessionID, s.now().Add(SessionDuration))
}

// CleanupExpired removes every expired session and returns how many went
func (s *SessionService) CleanupExpired() (int64, error) {
	return s.store.DeleteExpiredSessions(s.now())
}

// GenerateToken returns n cryptographically random bytes, hex encoded
func GenerateToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func fromRecord(rec *database.SessionRecord) *Session {
	return &Session{
		ID:        rec.ID,
		AccountID: rec.AccountID,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}
}
