package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/saltyorg/partsroom/internal/config"
	"github.com/saltyorg/partsroom/internal/database"
)

type fakeSender struct {
	mu       sync.Mutex
	low      []*database.Part
	users    []string
	failFor  map[string]bool
	texted   []string
	lowCalls int
}

func (f *fakeSender) ConfirmedUsernames() ([]string, error) { return f.users, nil }

func (f *fakeSender) GetLowParts() ([]*database.Part, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lowCalls++
	return f.low, nil
}

func (f *fakeSender) SendLowStockText(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texted = append(f.texted, username)
	if f.failFor[username] {
		return false, errors.New("gateway down")
	}
	return true, nil
}

type fakePruner struct {
	before time.Time
}

func (f *fakePruner) ClearNotificationLogs(before time.Time) (int64, error) {
	f.before = before
	return 0, nil
}

type settings map[string]string

func (s settings) GetSetting(key string) (string, error) { return s[key], nil }

func TestScheduler_RunNow(t *testing.T) {
	sender := &fakeSender{
		low:     []*database.Part{{Name: "M3", Amount: 1, LowThresh: 5}},
		users:   []string{"alice", "bob"},
		failFor: map[string]bool{"bob": true},
	}
	pruner := &fakePruner{}
	s := NewScheduler(sender, pruner, config.NewLoader(settings{SettingLogRetentionDays: "7"}))

	summary, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow returned error: %v", err)
	}
	if summary.LowParts != 1 || summary.Sent != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(sender.texted) != 2 {
		t.Fatalf("expected both users texted, got %v", sender.texted)
	}

	cutoff := time.Now().AddDate(0, 0, -7)
	if pruner.before.Sub(cutoff).Abs() > time.Minute {
		t.Fatalf("expected prune cutoff near %v, got %v", cutoff, pruner.before)
	}

	if s.Status().LastRun != summary {
		t.Fatal("expected status to report the last run")
	}
}

func TestScheduler_RunNowSkipsWhenNothingLow(t *testing.T) {
	sender := &fakeSender{users: []string{"alice"}}
	s := NewScheduler(sender, nil, config.NewLoader(settings{}))

	summary, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow returned error: %v", err)
	}
	if summary.Sent != 0 || len(sender.texted) != 0 {
		t.Fatalf("expected no texts without low parts, got %v", sender.texted)
	}
}

func TestScheduler_StartSchedulesWhenEnabled(t *testing.T) {
	store := settings{
		SettingLowStockEnabled:  "true",
		SettingLowStockSchedule: `"*/5 * * * *"`,
	}
	s := NewScheduler(&fakeSender{}, nil, config.NewLoader(store))

	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer s.Stop()

	status := s.Status()
	if !status.Running || !status.Enabled || status.Schedule != "*/5 * * * *" {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.NextRun == nil {
		t.Fatal("expected a next run time")
	}

	store[SettingLowStockEnabled] = "false"
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	if s.Status().NextRun != nil {
		t.Fatal("expected no next run after disabling")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	store := settings{
		SettingLowStockEnabled:  "true",
		SettingLowStockSchedule: `"not a schedule"`,
	}
	s := NewScheduler(&fakeSender{}, nil, config.NewLoader(store))
	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer s.Stop()

	if err := s.Reload(); err == nil {
		t.Fatal("expected invalid schedule to be reported")
	}
}
