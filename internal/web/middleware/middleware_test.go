package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/saltyorg/partsroom/internal/auth"
	"github.com/saltyorg/partsroom/internal/database"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	if a := GetAccount(r.Context()); a != nil {
		_, _ = w.Write([]byte(a.Username))
		return
	}
	_, _ = w.Write([]byte("ok"))
}

func TestAllowSubnets(t *testing.T) {
	nets, err := ParseNetworks([]string{"10.0.0.0/8", "192.168.1.0/24"})
	if err != nil {
		t.Fatalf("ParseNetworks: %v", err)
	}
	h := AllowSubnets(nets)(http.HandlerFunc(okHandler))

	tests := []struct {
		remote string
		want   int
	}{
		{"10.1.2.3:5555", http.StatusOK},
		{"192.168.1.20:80", http.StatusOK},
		{"192.168.2.20:80", http.StatusForbidden},
		{"garbage", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("remote %s: status = %d, want %d", tt.remote, rec.Code, tt.want)
		}
	}

	open := AllowSubnets(nil)(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "8.8.8.8:1"
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty allow list: status = %d", rec.Code)
	}
}

func TestParseNetworks_Invalid(t *testing.T) {
	if _, err := ParseNetworks([]string{"not-a-cidr"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSessionAuth(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	confirmed, err := db.CreateAccount("alice", "x", "2025551234", true, true)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	pending, err := db.CreateAccount("bob", "x", "6502530000", false, false)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	sessions := auth.NewSessionService(db)
	good, err := sessions.CreateSession(confirmed.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	unconfirmed, err := sessions.CreateSession(pending.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	h := SessionAuth(sessions, db)(http.HandlerFunc(okHandler))
	admin := SessionAuth(sessions, db)(RequireAdmin(http.HandlerFunc(okHandler)))

	tests := []struct {
		name    string
		handler http.Handler
		cookie  string
		want    int
		body    string
	}{
		{"no cookie", h, "", http.StatusUnauthorized, ""},
		{"unknown session", h, "nope", http.StatusUnauthorized, ""},
		{"unconfirmed account", h, unconfirmed.ID, http.StatusUnauthorized, ""},
		{"valid", h, good.ID, http.StatusOK, "alice"},
		{"admin", admin, good.ID, http.StatusOK, "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Fatalf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}

	if _, err := db.SetAccountAdmin(confirmed.ID, false); err != nil {
		t.Fatalf("SetAccountAdmin: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: good.ID})
	rec := httptest.NewRecorder()
	admin.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin status = %d, want 403", rec.Code)
	}
}
