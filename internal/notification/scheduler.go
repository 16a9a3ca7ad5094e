package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/partsroom/internal/config"
	"github.com/saltyorg/partsroom/internal/database"
)

// Setting keys read by the scheduler
const (
	SettingLowStockEnabled  = "notifications.low_stock.enabled"
	SettingLowStockSchedule = "notifications.low_stock.schedule"
	SettingLogRetentionDays = "notifications.log_retention_days"

	defaultSchedule = "0 8 * * 1-5"
)

// LowStockSender is the part of the inventory service the scheduler drives
type LowStockSender interface {
	ConfirmedUsernames() ([]string, error)
	GetLowParts() ([]*database.Part, error)
	SendLowStockText(ctx context.Context, username string) (bool, error)
}

// LogPruner removes old notification log rows
type LogPruner interface {
	ClearNotificationLogs(before time.Time) (int64, error)
}

// RunSummary describes one pass over the confirmed users
type RunSummary struct {
	StartedAt time.Time `json:"started_at"`
	LowParts  int       `json:"low_parts"`
	Sent      int       `json:"sent"`
	Failed    int       `json:"failed"`
}

// Status is a snapshot of the scheduler
type Status struct {
	Running  bool        `json:"running"`
	Enabled  bool        `json:"enabled"`
	Schedule string      `json:"schedule"`
	NextRun  *time.Time  `json:"next_run,omitempty"`
	LastRun  *RunSummary `json:"last_run,omitempty"`
}

// Scheduler texts every confirmed user on a cron schedule while low parts exist
type Scheduler struct {
	sender LowStockSender
	pruner LogPruner
	loader *config.Loader

	cron        *cron.Cron
	cronEntryID cron.EntryID

	mu       sync.RWMutex
	enabled  bool
	schedule string
	running  bool
	lastRun  *RunSummary
	runMu    sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new low-stock scheduler
func NewScheduler(sender LowStockSender, pruner LogPruner, loader *config.Loader) *Scheduler {
	return &Scheduler{
		sender: sender,
		pruner: pruner,
		loader: loader,
		cron:   cron.New(),
	}
}

// Start loads the schedule from settings and starts cron
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true
	s.cron.Start()

	if err := s.applySettingsLocked(); err != nil {
		log.Warn().Err(err).Str("schedule", s.schedule).Msg("Failed to set low-stock schedule")
	}

	log.Info().
		Bool("enabled", s.enabled).
		Str("schedule", s.schedule).
		Msg("Low-stock scheduler started")
	return nil
}

// Stop stops cron and waits for a running pass to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()

	log.Info().Msg("Low-stock scheduler stopped")
}

// Reload re-reads the settings and reschedules
func (s *Scheduler) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	return s.applySettingsLocked()
}

func (s *Scheduler) applySettingsLocked() error {
	s.enabled = s.loader.Bool(SettingLowStockEnabled, false)
	s.schedule = s.loader.String(SettingLowStockSchedule, defaultSchedule)

	if s.cronEntryID != 0 {
		s.cron.Remove(s.cronEntryID)
		s.cronEntryID = 0
	}
	if !s.enabled {
		return nil
	}

	id, err := s.cron.AddFunc(s.schedule, s.scheduledRun)
	if err != nil {
		return fmt.Errorf("invalid cron schedule: %w", err)
	}
	s.cronEntryID = id
	return nil
}

// Status returns the current scheduler state
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		Running:  s.running,
		Enabled:  s.enabled,
		Schedule: s.schedule,
		LastRun:  s.lastRun,
	}
	if s.cronEntryID != 0 {
		if next := s.cron.Entry(s.cronEntryID).Next; !next.IsZero() {
			status.NextRun = &next
		}
	}
	return status
}

func (s *Scheduler) scheduledRun() {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()

	if _, err := s.RunNow(ctx); err != nil {
		log.Error().Err(err).Msg("Scheduled low-stock notification failed")
	}
}

// RunNow texts every confirmed user if any part is low. Passes never overlap.
func (s *Scheduler) RunNow(ctx context.Context) (*RunSummary, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	summary := &RunSummary{StartedAt: time.Now()}

	low, err := s.sender.GetLowParts()
	if err != nil {
		return nil, err
	}
	summary.LowParts = len(low)

	if len(low) > 0 {
		usernames, err := s.sender.ConfirmedUsernames()
		if err != nil {
			return nil, err
		}

		for _, username := range usernames {
			if ctx.Err() != nil {
				break
			}
			ok, err := s.sender.SendLowStockText(ctx, username)
			if err != nil {
				log.Error().Err(err).Str("username", username).Msg("Failed to send low-stock text")
			}
			if ok {
				summary.Sent++
			} else {
				summary.Failed++
			}
		}
	}

	s.prune()

	s.mu.Lock()
	s.lastRun = summary
	s.mu.Unlock()

	log.Info().
		Int("low_parts", summary.LowParts).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Msg("Low-stock notification run complete")
	return summary, nil
}

func (s *Scheduler) prune() {
	if s.pruner == nil {
		return
	}
	days := s.loader.Int(SettingLogRetentionDays, 30)
	if days <= 0 {
		return
	}
	n, err := s.pruner.ClearNotificationLogs(time.Now().AddDate(0, 0, -days))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to prune notification log")
		return
	}
	if n > 0 {
		log.Debug().Int64("removed", n).Msg("Pruned notification log")
	}
}
