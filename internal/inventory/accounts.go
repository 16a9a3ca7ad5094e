package inventory

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/saltyorg/partsroom/internal/auth"
	"github.com/saltyorg/partsroom/internal/database"
)

// RegisterStatus is the HTTP-style outcome of Register
type RegisterStatus int

const (
	// RegisterOK means the account was created
	RegisterOK RegisterStatus = 200
	// RegisterConflict covers mismatched or blank passwords and a taken username or phone number
	RegisterConflict RegisterStatus = 409
	// RegisterInvalid covers a failed hash and an invalid phone number
	RegisterInvalid RegisterStatus = 422
)

// UserSummary is an account as shown in the admin user list
type UserSummary struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"is_admin"`
	IsConfirmed bool   `json:"is_confirmed"`
	PhoneNum    string `json:"phone_num"`
}

// Register creates an unconfirmed, non-admin account. The very first account
// is created confirmed and admin so someone can approve the rest.
func (s *Service) Register(username, password, confPassword, phoneNum string) (RegisterStatus, error) {
	if !CheckPassword(password, confPassword) || !CheckInput(password) || !CheckInput(confPassword) {
		return RegisterConflict, nil
	}

	taken, err := s.db.AccountTaken(username, phoneNum)
	if err != nil {
		return 0, err
	}
	if taken {
		return RegisterConflict, nil
	}

	hash, err := auth.CreatePasswordHash(password)
	if err != nil {
		log.Debug().Err(err).Str("username", username).Msg("Registration rejected: password hash failed")
		return RegisterInvalid, nil
	}
	if !CheckPhoneNum(phoneNum) {
		log.Debug().Str("username", username).Msg("Registration rejected: invalid phone number")
		return RegisterInvalid, nil
	}

	acct, err := s.db.RegisterAccount(username, hash, phoneNum)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return RegisterConflict, nil
		}
		return 0, err
	}

	log.Info().Str("username", acct.Username).Bool("admin", acct.IsAdmin).Msg("Account registered")
	s.publish(EventAccount, map[string]any{"id": acct.ID, "action": "registered"})
	return RegisterOK, nil
}

// Login returns the account when the password verifies and the account is confirmed
func (s *Service) Login(username, password string) (*database.Account, Result, error) {
	acct, err := s.db.GetAccountByUsername(username)
	if err != nil {
		return nil, Result{}, err
	}
	if acct == nil || !auth.CheckPasswordHash(password, acct.PasswordHash) {
		return nil, rejected(ReasonBadCredentials), nil
	}
	if !acct.IsConfirmed {
		return nil, rejected(ReasonUnconfirmed), nil
	}
	return acct, applied(acct.ID), nil
}

// CheckIfAccountExists reports whether the username is registered
func (s *Service) CheckIfAccountExists(username string) (bool, error) {
	acct, err := s.db.GetAccountByUsername(username)
	if err != nil {
		return false, err
	}
	return acct != nil, nil
}

// CheckIfPhoneNumExists reports whether the phone number is registered
func (s *Service) CheckIfPhoneNumExists(phoneNum string) (bool, error) {
	return s.db.PhoneNumExists(phoneNum)
}

// GetPasswordByUsername returns the stored hash, "" when the account is missing
func (s *Service) GetPasswordByUsername(username string) (string, error) {
	acct, err := s.db.GetAccountByUsername(username)
	if err != nil || acct == nil {
		return "", err
	}
	return acct.PasswordHash, nil
}

// CheckIfConfirmed reports whether the account exists and is confirmed
func (s *Service) CheckIfConfirmed(username string) (bool, error) {
	acct, err := s.db.GetAccountByUsername(username)
	if err != nil || acct == nil {
		return false, err
	}
	return acct.IsConfirmed, nil
}

// CheckAdmin reports whether the account exists and is an admin
func (s *Service) CheckAdmin(username string) (bool, error) {
	acct, err := s.db.GetAccountByUsername(username)
	if err != nil || acct == nil {
		return false, err
	}
	return acct.IsAdmin, nil
}

// ConfirmAccount confirms an account. Confirmation cannot be undone.
func (s *Service) ConfirmAccount(id int64) (Result, error) {
	ok, err := s.db.ConfirmAccount(id)
	if err != nil {
		return Result{}, err
	}
	if ok {
		s.publish(EventAccount, map[string]any{"id": id, "action": "confirmed"})
	}
	return appliedIf(ok, id), nil
}

// ModifyAdmin grants or revokes admin rights
func (s *Service) ModifyAdmin(id int64, isAdmin bool) (Result, error) {
	ok, err := s.db.SetAccountAdmin(id, isAdmin)
	if err != nil {
		return Result{}, err
	}
	if ok {
		s.publish(EventAccount, map[string]any{"id": id, "action": "admin", "is_admin": isAdmin})
	}
	return appliedIf(ok, id), nil
}

// DeleteAccount removes an account and its sessions
func (s *Service) DeleteAccount(id int64) (Result, error) {
	ok, err := s.db.DeleteAccount(id)
	if err != nil {
		return Result{}, err
	}
	if ok {
		s.publish(EventAccount, map[string]any{"id": id, "action": "deleted"})
	}
	return appliedIf(ok, id), nil
}

// GetUsers lists every account except excludeUsername with lowercased
// usernames and readable phone numbers
func (s *Service) GetUsers(excludeUsername string) ([]UserSummary, error) {
	accounts, err := s.db.ListAccountsExcept(excludeUsername)
	if err != nil {
		return nil, err
	}

	users := make([]UserSummary, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, UserSummary{
			ID:          a.ID,
			Username:    strings.ToLower(a.Username),
			IsAdmin:     a.IsAdmin,
			IsConfirmed: a.IsConfirmed,
			PhoneNum:    FormatPhone(a.PhoneNum),
		})
	}
	return users, nil
}

// ConfirmedUsernames lists the usernames that receive low-stock texts
func (s *Service) ConfirmedUsernames() ([]string, error) {
	return s.db.ListConfirmedUsernames()
}
