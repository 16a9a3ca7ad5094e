package config

import (
	"sync/atomic"
	"time"
)

// Timeouts bounds the waits that are tunable from the command line
type Timeouts struct {
	// Gateway bounds one request to the SMS gateway
	Gateway time.Duration
	// WebSocketPing is the keepalive interval of /api/ws
	WebSocketPing time.Duration
	// Shutdown bounds graceful HTTP shutdown
	Shutdown time.Duration
}

// DefaultTimeouts returns the values used when no flag is given
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Gateway:       30 * time.Second,
		WebSocketPing: 30 * time.Second,
		Shutdown:      10 * time.Second,
	}
}

var timeouts atomic.Pointer[Timeouts]

// SetTimeouts replaces the process-wide timeouts. Zero fields keep their default.
func SetTimeouts(t Timeouts) {
	def := DefaultTimeouts()
	if t.Gateway <= 0 {
		t.Gateway = def.Gateway
	}
	if t.WebSocketPing <= 0 {
		t.WebSocketPing = def.WebSocketPing
	}
	if t.Shutdown <= 0 {
		t.Shutdown = def.Shutdown
	}
	timeouts.Store(&t)
}

// CurrentTimeouts returns the process-wide timeouts
func CurrentTimeouts() Timeouts {
	if t := timeouts.Load(); t != nil {
		return *t
	}
	return DefaultTimeouts()
}
