package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/saltyorg/partsroom/internal/database"
	"github.com/saltyorg/partsroom/internal/inventory"
	"github.com/saltyorg/partsroom/internal/web/middleware"
)

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"conf_password"`
	PhoneNum        string `json:"phone_num"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type accountResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	PhoneNum    string `json:"phone_num"`
	IsAdmin     bool   `json:"is_admin"`
	IsConfirmed bool   `json:"is_confirmed"`
}

func toAccountResponse(a *database.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Username:    strings.ToLower(a.Username),
		PhoneNum:    inventory.FormatPhone(a.PhoneNum),
		IsAdmin:     a.IsAdmin,
		IsConfirmed: a.IsConfirmed,
	}
}

// Register creates an account. The response status is the registration outcome.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	status, err := h.svc.Register(req.Username, req.Password, req.ConfirmPassword, req.PhoneNum)
	if err != nil {
		h.serverError(w, r, err, "Registration failed")
		return
	}

	log.Info().Str("username", req.Username).Int("status", int(status)).Msg("Registration attempt")
	h.writeJSON(w, int(status), map[string]int{"status": int(status)})
}

// Login checks credentials and starts a session
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	account, res, err := h.svc.Login(req.Username, req.Password)
	if err != nil {
		h.serverError(w, r, err, "Login failed")
		return
	}
	if !res.Applied {
		status := http.StatusUnauthorized
		if res.Reason == inventory.ReasonUnconfirmed {
			status = http.StatusForbidden
		}
		log.Info().Str("username", req.Username).Str("reason", string(res.Reason)).Msg("Login rejected")
		h.writeJSON(w, status, res)
		return
	}

	session, err := h.sessions.CreateSession(account.ID)
	if err != nil {
		h.serverError(w, r, err, "Failed to create session")
		return
	}

	cookie := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
	}
	h.applyCookieSecurity(cookie)
	http.SetCookie(w, cookie)

	log.Info().Str("username", account.Username).Msg("User logged in")
	h.writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// Logout ends the current session
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if err := h.sessions.DeleteSession(cookie.Value); err != nil {
			log.Debug().Err(err).Msg("Failed to delete session during logout")
		}
	}

	cookie := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
	h.applyCookieSecurity(cookie)
	http.SetCookie(w, cookie)

	h.jsonSuccess(w, "Logged out")
}

// Me returns the logged in account
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toAccountResponse(middleware.GetAccount(r.Context())))
}

// ListUsers lists every account except the caller
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.GetUsers(middleware.GetAccount(r.Context()).Username)
	if err != nil {
		h.serverError(w, r, err, "Failed to list users")
		return
	}
	writeList(h, w, users)
}

// ConfirmUser confirms an account
func (h *Handlers) ConfirmUser(w http.ResponseWriter, r *http.Request, id int64) {
	res, err := h.svc.ConfirmAccount(id)
	h.writeResult(w, r, res, err, http.StatusOK)
}

type adminRequest struct {
	IsAdmin *bool `json:"is_admin" validate:"required"`
}

// SetUserAdmin grants or revokes admin
func (h *Handlers) SetUserAdmin(w http.ResponseWriter, r *http.Request, id int64) {
	var req adminRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	if self := middleware.GetAccount(r.Context()); self.ID == id && !*req.IsAdmin {
		h.jsonError(w, "Cannot revoke your own admin rights", http.StatusConflict)
		return
	}

	res, err := h.svc.ModifyAdmin(id, *req.IsAdmin)
	h.writeResult(w, r, res, err, http.StatusOK)
}

// DeleteUser removes an account and its sessions
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request, id int64) {
	if self := middleware.GetAccount(r.Context()); self.ID == id {
		h.jsonError(w, "Cannot delete your own account", http.StatusConflict)
		return
	}

	res, err := h.svc.DeleteAccount(id)
	h.writeResult(w, r, res, err, http.StatusOK)
}
