package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/partsroom/internal/auth"
	"github.com/saltyorg/partsroom/internal/database"
)

type (
	accountKey struct{}
	sessionKey struct{}
)

// SessionCookie is the name of the login cookie
const SessionCookie = "session"

// AccountLookup loads the account behind a session
type AccountLookup interface {
	GetAccountByID(id int64) (*database.Account, error)
}

// Logger logs one line per request. Server errors are logged at warn level.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		level := zerolog.DebugLevel
		if ww.Status() >= http.StatusInternalServerError {
			level = zerolog.WarnLevel
		}
		log.WithLevel(level).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(started)).
			Str("remote", r.RemoteAddr).
			Msg("Request")
	})
}

func writeDenied(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}

func expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// SessionAuth admits requests carrying a live session of a confirmed account.
// The session is extended on every admitted request.
func SessionAuth(sessions *auth.SessionService, accounts AccountLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				writeDenied(w, http.StatusUnauthorized, "not logged in")
				return
			}

			session, err := sessions.GetSession(cookie.Value)
			if err != nil {
				log.Error().Err(err).Msg("Session lookup failed")
				writeDenied(w, http.StatusUnauthorized, "not logged in")
				return
			}
			if session == nil {
				expireCookie(w)
				writeDenied(w, http.StatusUnauthorized, "not logged in")
				return
			}

			account, err := accounts.GetAccountByID(session.AccountID)
			if err != nil {
				log.Error().Err(err).Int64("account_id", session.AccountID).Msg("Account lookup failed")
			}
			if account == nil || !account.IsConfirmed {
				expireCookie(w)
				writeDenied(w, http.StatusUnauthorized, "not logged in")
				return
			}

			if err := sessions.ExtendSession(session.ID); err != nil {
				log.Debug().Err(err).Msg("Session not extended")
			}

			ctx := context.WithValue(r.Context(), accountKey{}, account)
			ctx = context.WithValue(ctx, sessionKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin accounts. It must run after SessionAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a := GetAccount(r.Context()); a == nil || !a.IsAdmin {
			writeDenied(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetAccount returns the account SessionAuth stored, or nil
func GetAccount(ctx context.Context) *database.Account {
	a, _ := ctx.Value(accountKey{}).(*database.Account)
	return a
}

// GetSession returns the session SessionAuth stored, or nil
func GetSession(ctx context.Context) *auth.Session {
	s, _ := ctx.Value(sessionKey{}).(*auth.Session)
	return s
}

// AllowSubnets admits only connections whose direct peer address lies in one
// of the prefixes. It checks RemoteAddr, so it must run before RealIP.
// An empty list admits everyone.
func AllowSubnets(allowed []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if addr, ok := peerAddr(r.RemoteAddr); ok {
				for _, p := range allowed {
					if p.Contains(addr) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			log.Warn().Str("remote_addr", r.RemoteAddr).Msg("Connection refused: peer outside allowed networks")
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

func peerAddr(remote string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// ParseNetworks parses CIDR strings for AllowSubnets
func ParseNetworks(cidrs []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(c)
		if err != nil {
			return nil, fmt.Errorf("invalid network %q: %w", c, err)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}
