package web

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/partsroom/internal/auth"
	"github.com/saltyorg/partsroom/internal/config"
	"github.com/saltyorg/partsroom/internal/database"
	"github.com/saltyorg/partsroom/internal/inventory"
	"github.com/saltyorg/partsroom/internal/web/handlers"
	"github.com/saltyorg/partsroom/internal/web/middleware"
	"github.com/saltyorg/partsroom/internal/web/sse"
)

// Options configures the HTTP server
type Options struct {
	Addr            string
	AllowedNetworks []netip.Prefix
	SecureCookies   bool
}

// Server represents the JSON API server
type Server struct {
	opts      Options
	db        *database.DB
	router    *chi.Mux
	sessions  *auth.SessionService
	sseBroker *sse.Broker
	handlers  *handlers.Handlers
}

// NewServer creates the server and publishes inventory changes to its
// event stream
func NewServer(opts Options, db *database.DB, svc *inventory.Service, scheduler handlers.Scheduler, icons handlers.IconLister) *Server {
	s := &Server{
		opts:      opts,
		db:        db,
		router:    chi.NewRouter(),
		sessions:  auth.NewSessionService(db),
		sseBroker: sse.NewBroker(),
	}
	svc.SetPublisher(s.sseBroker)

	s.handlers = handlers.New(handlers.Deps{
		DB:            db,
		Service:       svc,
		Sessions:      s.sessions,
		Scheduler:     scheduler,
		Icons:         icons,
		Broker:        s.sseBroker,
		SecureCookies: opts.SecureCookies,
	})

	s.setupRoutes()
	return s
}

// Sessions returns the session service used for cookie auth
func (s *Server) Sessions() *auth.SessionService {
	return s.sessions
}

// Broker returns the live event broker
func (s *Server) Broker() *sse.Broker {
	return s.sseBroker
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router
	h := s.handlers

	r.Use(chimiddleware.RequestID)
	// peer address check, ahead of RealIP
	r.Use(middleware.AllowSubnets(s.opts.AllowedNetworks))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)

	requireSession := middleware.SessionAuth(s.sessions, s.db)

	// Long-lived streams, no timeout
	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/api/events", s.sseBroker.ServeHTTP)
		r.Get("/api/ws", h.Events)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/me", h.Me)
			r.Get("/icons", h.ListIcons)
			r.Post("/notify", h.NotifySelf)

			r.Route("/parts", func(r chi.Router) {
				r.Get("/", h.ListParts)
				r.Post("/", h.CreatePart)
				r.Get("/low", h.LowParts)
				r.Get("/{id}", h.WithID(h.GetPart))
				r.Put("/{id}", h.WithID(h.UpdatePart))
				r.Delete("/{id}", h.WithID(h.DeletePart))
				r.Put("/{id}/threshold", h.WithID(h.UpdateThreshold))
			})

			r.Route("/stores", func(r chi.Router) {
				r.Get("/", h.ListStores)
				r.Post("/", h.CreateStore)
				r.Get("/selections", h.StoreSelections)
				r.Put("/amounts", h.UpdateAmounts)
				r.Get("/{id}", h.WithID(h.GetStore))
				r.Put("/{id}", h.WithID(h.UpdateStore))
				r.Delete("/{id}", h.WithID(h.DeleteStore))
				r.Route("/by-name/{name}", func(r chi.Router) {
					r.Get("/exists", h.StoreExists)
					r.Get("/parts", h.StoreParts)
					r.Get("/inventory", h.StoreInventory)
					r.Get("/total", h.StoreTotal)
				})
			})

			r.Route("/types", func(r chi.Router) {
				r.Get("/", h.ListTypes)
				r.Post("/", h.CreateType)
				r.Get("/names", h.TypeNames)
				r.Put("/{id}", h.WithID(h.UpdateType))
				r.Delete("/{id}", h.WithID(h.DeleteType))
				r.Route("/by-name/{name}", func(r chi.Router) {
					r.Get("/parts", h.TypeParts)
					r.Get("/unit", h.TypeUnit)
				})
			})

			r.Get("/jobs", h.ListJobs)
			r.Post("/jobs", h.RecordJob)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/users", h.ListUsers)
				r.Put("/users/{id}/confirm", h.WithID(h.ConfirmUser))
				r.Put("/users/{id}/admin", h.WithID(h.SetUserAdmin))
				r.Delete("/users/{id}", h.WithID(h.DeleteUser))

				r.Post("/notify", h.NotifyAll)
				r.Get("/notifications", h.NotificationLog)
				r.Get("/scheduler", h.SchedulerStatus)
				r.Get("/settings", h.GetSettings)
				r.Put("/settings", h.UpdateSettings)
			})
		})
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.router,
		// ReadTimeout is for reading request body
		ReadTimeout: 15 * time.Second,
		// WriteTimeout disabled (0) to allow long-lived event streams
		// Chi middleware timeout (60s) protects regular requests
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.opts.Addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		// Close event streams first so Shutdown doesn't wait on them
		s.sseBroker.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.CurrentTimeouts().Shutdown)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		s.sseBroker.Stop()
		return err
	}
}
