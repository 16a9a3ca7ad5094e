package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "partsroom.db" {
		t.Fatalf("expected default database path, got %q", cfg.Database.Path)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PARTSROOM_SERVER_PORT", "9090")
	t.Setenv("PARTSROOM_SERVER_ALLOWED_NETWORKS", "10.0.0.0/8, 192.168.1.0/24")
	t.Setenv("PARTSROOM_DATABASE_PATH", "/data/parts.db")
	t.Setenv("PARTSROOM_ICONS_DIR", "/srv/icons")
	t.Setenv("PARTSROOM_LOG_LEVEL", "debug")
	t.Setenv("TILL_URL", "https://platform.tillmobile.com/api/send?username=u&api_key=k")
	t.Setenv("TILL_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedNetworks) != 2 || cfg.Server.AllowedNetworks[1] != "192.168.1.0/24" {
		t.Errorf("unexpected allowed networks: %v", cfg.Server.AllowedNetworks)
	}
	if cfg.Database.Path != "/data/parts.db" {
		t.Errorf("unexpected database path: %q", cfg.Database.Path)
	}
	if cfg.Icons.Dir != "/srv/icons" {
		t.Errorf("unexpected icons dir: %q", cfg.Icons.Dir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("unexpected log level: %q", cfg.Log.Level)
	}
	if cfg.Till.URL == "" {
		t.Error("expected TILL_URL to be loaded")
	}
	if cfg.Till.Timeout != 5*time.Second {
		t.Errorf("expected 5s gateway timeout, got %v", cfg.Till.Timeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "PARTSROOM_LOG_LEVEL", "loud"},
		{"bad port", "PARTSROOM_SERVER_PORT", "70000"},
		{"bad network", "PARTSROOM_SERVER_ALLOWED_NETWORKS", "not-a-cidr"},
		{"bad gateway url", "TILL_URL", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected %s=%q to be rejected", tt.key, tt.value)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 3000
	if got := cfg.Addr(); got != "127.0.0.1:3000" {
		t.Fatalf("Addr() = %q", got)
	}
}

type mapSettings map[string]string

func (m mapSettings) GetSetting(key string) (string, error) {
	if key == "broken" {
		return "", errors.New("boom")
	}
	return m[key], nil
}

func TestLoader(t *testing.T) {
	l := NewLoader(mapSettings{
		"count":    "7",
		"bad":      "x",
		"on":       "true",
		"off":      "false",
		"schedule": `"0 8 * * *"`,
		"plain":    "raw",
		"empty":    `""`,
	})

	if got := l.Int("count", 1); got != 7 {
		t.Errorf("Int(count) = %d", got)
	}
	if got := l.Int("bad", 1); got != 1 {
		t.Errorf("Int(bad) = %d", got)
	}
	if got := l.Int("broken", 3); got != 3 {
		t.Errorf("Int(broken) = %d", got)
	}
	if !l.Bool("on", false) || l.Bool("off", true) || !l.Bool("missing", true) {
		t.Error("unexpected Bool results")
	}
	if got := l.String("schedule", ""); got != "0 8 * * *" {
		t.Errorf("String(schedule) = %q", got)
	}
	if got := l.String("plain", ""); got != "raw" {
		t.Errorf("String(plain) = %q", got)
	}
	if got := l.String("empty", "fallback"); got != "fallback" {
		t.Errorf("String(empty) = %q", got)
	}
	if got := l.DurationMinutes("count", 1); got != 7*time.Minute {
		t.Errorf("DurationMinutes(count) = %v", got)
	}

	var nilLoader *Loader
	if got := nilLoader.Int("count", 4); got != 4 {
		t.Errorf("nil loader Int = %d", got)
	}
}
