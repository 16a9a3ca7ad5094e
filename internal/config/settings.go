package config

import (
	"encoding/json"
	"time"
)

// SettingsGetter reads raw setting text from the settings table
type SettingsGetter interface {
	GetSetting(key string) (string, error)
}

// Loader reads runtime settings stored as JSON text. A missing, unreadable
// or mistyped value yields the caller's default.
type Loader struct {
	db SettingsGetter
}

func NewLoader(db SettingsGetter) *Loader {
	return &Loader{db: db}
}

func decodeSetting[T any](l *Loader, key string) (T, bool) {
	var v T
	if l == nil || l.db == nil {
		return v, false
	}
	raw, err := l.db.GetSetting(key)
	if err != nil || raw == "" {
		return v, false
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, false
	}
	return v, true
}

func (l *Loader) Int(key string, def int) int {
	if v, ok := decodeSetting[int](l, key); ok {
		return v
	}
	return def
}

func (l *Loader) Bool(key string, def bool) bool {
	if v, ok := decodeSetting[bool](l, key); ok {
		return v
	}
	return def
}

// String also accepts a value stored without JSON quoting. An empty string
// counts as unset.
func (l *Loader) String(key, def string) string {
	if v, ok := decodeSetting[string](l, key); ok {
		if v == "" {
			return def
		}
		return v
	}
	if l != nil && l.db != nil {
		if raw, err := l.db.GetSetting(key); err == nil && raw != "" {
			return raw
		}
	}
	return def
}

// DurationMinutes reads an integer count of minutes
func (l *Loader) DurationMinutes(key string, defMinutes int) time.Duration {
	return time.Duration(l.Int(key, defMinutes)) * time.Minute
}
