package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/partsroom/internal/auth"
	"github.com/saltyorg/partsroom/internal/database"
	"github.com/saltyorg/partsroom/internal/inventory"
	"github.com/saltyorg/partsroom/internal/notification"
	"github.com/saltyorg/partsroom/internal/web/sse"
)

// IconLister lists the available store icons
type IconLister interface {
	Names() []string
}

// Scheduler is the low-stock scheduler as seen by the API
type Scheduler interface {
	RunNow(ctx context.Context) (*notification.RunSummary, error)
	Status() notification.Status
	Reload() error
}

// Deps are the services the handlers call into
type Deps struct {
	DB            *database.DB
	Service       *inventory.Service
	Sessions      *auth.SessionService
	Scheduler     Scheduler
	Icons         IconLister
	Broker        *sse.Broker
	SecureCookies bool
}

// Handlers contains all HTTP handlers
type Handlers struct {
	db            *database.DB
	svc           *inventory.Service
	sessions      *auth.SessionService
	scheduler     Scheduler
	icons         IconLister
	broker        *sse.Broker
	secureCookies bool
	validate      *validator.Validate
}

// New creates a new Handlers instance
func New(deps Deps) *Handlers {
	return &Handlers{
		db:            deps.DB,
		svc:           deps.Service,
		sessions:      deps.Sessions,
		scheduler:     deps.Scheduler,
		icons:         deps.Icons,
		broker:        deps.Broker,
		secureCookies: deps.SecureCookies,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

// jsonError sends a JSON error response
func (h *Handlers) jsonError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// jsonSuccess sends a JSON success response
func (h *Handlers) jsonSuccess(w http.ResponseWriter, message string) {
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": message})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// serverError logs err and sends a generic 500
func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	h.jsonError(w, "Internal server error", http.StatusInternalServerError)
}

// writeResult maps a mutation outcome onto a response. Rejections are 422
// except a missing row, which is 404.
func (h *Handlers) writeResult(w http.ResponseWriter, r *http.Request, res inventory.Result, err error, status int) {
	if err != nil {
		h.serverError(w, r, err, "Mutation failed")
		return
	}
	if !res.Applied {
		code := http.StatusUnprocessableEntity
		if res.Reason == inventory.ReasonNotFound {
			code = http.StatusNotFound
		}
		h.writeJSON(w, code, res)
		return
	}
	h.writeJSON(w, status, res)
}

// writeList writes a slice, never null
func writeList[T any](h *Handlers, w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

// applyCookieSecurity sets Secure/SameSite defaults based on configuration.
func (h *Handlers) applyCookieSecurity(c *http.Cookie) {
	if !h.secureCookies {
		if c.SameSite == 0 {
			c.SameSite = http.SameSiteLaxMode
		}
		return
	}
	c.Secure = true
	if c.SameSite == 0 {
		c.SameSite = http.SameSiteStrictMode
	}
}

// urlID parses the {id} route parameter
func urlID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// WithID wraps a handler that needs a valid {id}
func (h *Handlers) WithID(fn func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r)
		if err != nil {
			h.jsonError(w, "Invalid ID", http.StatusBadRequest)
			return
		}
		fn(w, r, id)
	}
}
