package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every application environment variable.
// PARTSROOM_SERVER_PORT maps to server.port.
const EnvPrefix = "PARTSROOM_"

// Config is the process configuration read from the environment (and a
// .env file when present)
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Icons    IconsConfig    `koanf:"icons"`
	Log      LogConfig      `koanf:"log"`
	Till     TillConfig     `koanf:"till"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port" validate:"min=1,max=65535"`
	AllowedNetworks []string `koanf:"allowed_networks" validate:"dive,cidr"`
	SecureCookies   bool     `koanf:"secure_cookies"`
}

// DatabaseConfig locates the SQLite file
type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// IconsConfig locates the store icon directory
type IconsConfig struct {
	Dir   string `koanf:"dir" validate:"required"`
	Watch bool   `koanf:"watch"`
}

// LogConfig sets the log level and file
type LogConfig struct {
	Level string `koanf:"level" validate:"omitempty,oneof=info debug trace"`
	File  string `koanf:"file"`
}

// TillConfig points at the SMS gateway. TILL_URL is read without the
// application prefix.
type TillConfig struct {
	URL     string        `koanf:"url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout" validate:"min=0"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{Path: "partsroom.db"},
		Icons:    IconsConfig{Dir: "static/assets/stores", Watch: true},
		Log:      LogConfig{},
		Till:     TillConfig{Timeout: CurrentTimeouts().Gateway},
	}
}

// envKey maps PARTSROOM_SERVER_ALLOWED_NETWORKS to server.allowed_networks
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// Load reads the environment over the defaults and validates the result
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	if err := k.Load(env.Provider("TILL_", ".", func(s string) string {
		return "till." + strings.ToLower(strings.TrimPrefix(s, "TILL_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load gateway environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Server.AllowedNetworks = splitList(cfg.Server.AllowedNetworks)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList expands comma separated entries, since a single env value
// arrives as a one element slice
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for part := range strings.SplitSeq(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
