package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/partsroom/internal/database"
	"github.com/saltyorg/partsroom/internal/inventory"
	"github.com/saltyorg/partsroom/internal/logging"
	"github.com/saltyorg/partsroom/internal/notification"
	"github.com/saltyorg/partsroom/internal/web/middleware"
)

// NotifySelf texts the low-stock list to the logged in user
func (h *Handlers) NotifySelf(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	delivered, err := h.svc.SendLowStockText(r.Context(), account.Username)
	if errors.Is(err, inventory.ErrTextingDisabled) {
		h.jsonError(w, "Texting is not configured", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("username", account.Username).Msg("Low-stock text failed")
		h.writeJSON(w, http.StatusBadGateway, map[string]any{"delivered": false, "error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"delivered": delivered})
}

// NotifyAll runs the low-stock notification for every confirmed user now
func (h *Handlers) NotifyAll(w http.ResponseWriter, r *http.Request) {
	if !h.svc.TextingEnabled() {
		h.jsonError(w, "Texting is not configured", http.StatusServiceUnavailable)
		return
	}
	summary, err := h.scheduler.RunNow(r.Context())
	if err != nil {
		h.serverError(w, r, err, "Low-stock notification run failed")
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// NotificationLog returns recent notification attempts
func (h *Handlers) NotificationLog(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			h.jsonError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.db.ListNotificationLogs(limit)
	if err != nil {
		h.serverError(w, r, err, "Failed to list notification log")
		return
	}
	writeList(h, w, entries)
}

// SchedulerStatus reports the low-stock schedule
func (h *Handlers) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.scheduler.Status())
}

// GetSettings returns every runtime setting as stored JSON
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.db.GetAllSettings()
	if err != nil {
		h.serverError(w, r, err, "Failed to load settings")
		return
	}

	out := make(map[string]json.RawMessage, len(settings))
	for k, v := range settings {
		if json.Valid([]byte(v)) {
			out[k] = json.RawMessage(v)
			continue
		}
		quoted, _ := json.Marshal(v)
		out[k] = quoted
	}
	h.writeJSON(w, http.StatusOK, out)
}

// UpdateSettings stores known settings and applies them to the scheduler
// and log level
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.badRequest(w, RequestValidationError{Message: "invalid JSON: " + err.Error()})
		return
	}
	if len(req) == 0 {
		h.jsonError(w, "No settings given", http.StatusBadRequest)
		return
	}

	for key, raw := range req {
		if err := checkSetting(key, raw); err != nil {
			h.badRequest(w, err)
			return
		}
	}

	values := make(map[string]string, len(req))
	for key, raw := range req {
		values[key] = string(raw)
	}
	if err := h.db.SetSettings(values); err != nil {
		h.serverError(w, r, err, "Failed to save settings")
		return
	}

	if raw, ok := req["log.level"]; ok {
		var level string
		_ = json.Unmarshal(raw, &level)
		zerolog.SetGlobalLevel(logging.ParseLevel(level))
	}
	if err := h.scheduler.Reload(); err != nil {
		h.serverError(w, r, err, "Failed to reload scheduler")
		return
	}

	log.Info().Int("count", len(req)).Msg("Settings updated")
	h.jsonSuccess(w, "Settings saved")
}

// checkSetting rejects unknown keys and values of the wrong JSON type
func checkSetting(key string, raw json.RawMessage) error {
	def, ok := database.DefaultSettings[key]
	if !ok {
		return RequestValidationError{Field: key, Message: "unknown setting"}
	}

	var err error
	switch def.(type) {
	case bool:
		var v bool
		err = json.Unmarshal(raw, &v)
	case int:
		var v int
		if err = json.Unmarshal(raw, &v); err == nil && v < 0 {
			err = errors.New("must not be negative")
		}
	case string:
		var v string
		if err = json.Unmarshal(raw, &v); err == nil {
			err = checkStringSetting(key, v)
		}
	}
	if err != nil {
		return RequestValidationError{Field: key, Message: err.Error()}
	}
	return nil
}

func checkStringSetting(key, v string) error {
	switch key {
	case notification.SettingLowStockSchedule:
		if _, err := cron.ParseStandard(v); err != nil {
			return err
		}
	case "log.level":
		switch v {
		case "info", "debug", "trace":
		default:
			return errors.New("must be info, debug or trace")
		}
	}
	return nil
}
