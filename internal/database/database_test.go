package database

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate returned error: %v", err)
	}

	version, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion returned error: %v", err)
	}
	if version != len(schema) {
		t.Fatalf("expected version %d, got %d", len(schema), version)
	}
}

func TestMigrate_RefusesNewerSchema(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.exec(fmt.Sprintf("PRAGMA user_version = %d", len(schema)+1)); err != nil {
		t.Fatalf("failed to bump version: %v", err)
	}
	if err := db.Migrate(); err == nil {
		t.Fatal("expected Migrate to refuse a newer schema")
	}
}

func TestCreateAccount_DuplicateIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.CreateAccount("alice", "hash", "2025550143", false, false); err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}

	tests := []struct {
		name     string
		username string
		phone    string
	}{
		{"same username", "alice", "2025550199"},
		{"username differs only in case", "ALICE", "2025550198"},
		{"same phone", "bob", "2025550143"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.CreateAccount(tt.username, "hash", tt.phone, false, false)
			if err == nil {
				t.Fatal("expected duplicate insert to fail")
			}
			if !IsUniqueViolation(err) {
				t.Fatalf("expected unique violation, got %v", err)
			}
		})
	}
}

func TestRegisterAccount_SingleFirstAdmin(t *testing.T) {
	db := newTestDB(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.RegisterAccount(fmt.Sprintf("user%d", i), "hash", fmt.Sprintf("20255501%02d", i))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("RegisterAccount returned error: %v", err)
		}
	}

	var admins, confirmed int
	if err := db.queryRow("SELECT SUM(is_admin), SUM(is_confirmed) FROM accounts").Scan(&admins, &confirmed); err != nil {
		t.Fatalf("failed to count flags: %v", err)
	}
	if admins != 1 || confirmed != 1 {
		t.Fatalf("admins = %d, confirmed = %d, want exactly one of each", admins, confirmed)
	}

	if _, err := db.RegisterAccount("USER0", "hash", "2025550199"); !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation for duplicate username, got %v", err)
	}
}

func TestAccounts_LookupsAndFlags(t *testing.T) {
	db := newTestDB(t)

	acct, err := db.CreateAccount("Alice", "hash", "2025550143", false, false)
	if err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}

	got, err := db.GetAccountByUsername("alice")
	if err != nil {
		t.Fatalf("GetAccountByUsername returned error: %v", err)
	}
	if got == nil || got.ID != acct.ID {
		t.Fatalf("expected case-insensitive lookup to find account %d, got %+v", acct.ID, got)
	}
	if got.IsConfirmed || got.IsAdmin {
		t.Fatalf("expected new account to be unconfirmed non-admin, got %+v", got)
	}

	missing, err := db.GetAccountByUsername("nobody")
	if err != nil {
		t.Fatalf("GetAccountByUsername returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing account, got %+v", missing)
	}

	if ok, err := db.ConfirmAccount(acct.ID); err != nil || !ok {
		t.Fatalf("ConfirmAccount = %v, %v", ok, err)
	}
	if ok, err := db.SetAccountAdmin(acct.ID, true); err != nil || !ok {
		t.Fatalf("SetAccountAdmin = %v, %v", ok, err)
	}
	if ok, err := db.ConfirmAccount(9999); err != nil || ok {
		t.Fatalf("ConfirmAccount on missing id = %v, %v", ok, err)
	}

	got, _ = db.GetAccountByID(acct.ID)
	if !got.IsConfirmed || !got.IsAdmin {
		t.Fatalf("expected confirmed admin, got %+v", got)
	}

	names, err := db.ListConfirmedUsernames()
	if err != nil {
		t.Fatalf("ListConfirmedUsernames returned error: %v", err)
	}
	if len(names) != 1 || names[0] != "Alice" {
		t.Fatalf("unexpected confirmed usernames: %v", names)
	}

	taken, err := db.AccountTaken("someone", "2025550143")
	if err != nil || !taken {
		t.Fatalf("AccountTaken by phone = %v, %v", taken, err)
	}
}

func TestDeleteAccount_CascadesSessions(t *testing.T) {
	db := newTestDB(t)

	acct, err := db.CreateAccount("alice", "hash", "2025550143", false, true)
	if err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}
	if _, err := db.CreateSession("abc", acct.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	if ok, err := db.DeleteAccount(acct.ID); err != nil || !ok {
		t.Fatalf("DeleteAccount = %v, %v", ok, err)
	}

	session, err := db.GetSession("abc")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if session != nil {
		t.Fatalf("expected session to be removed with its account, got %+v", session)
	}
}

func TestSessions_ExtendAndExpire(t *testing.T) {
	db := newTestDB(t)

	acct, _ := db.CreateAccount("alice", "hash", "2025550143", false, true)
	now := time.Now()
	if _, err := db.CreateSession("old", acct.ID, now.Add(-time.Minute)); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if _, err := db.CreateSession("new", acct.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	later := now.Add(48 * time.Hour)
	if err := db.ExtendSession("new", later); err != nil {
		t.Fatalf("ExtendSession returned error: %v", err)
	}

	n, err := db.DeleteExpiredSessions(now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired session removed, got %d", n)
	}

	s, err := db.GetSession("new")
	if err != nil || s == nil {
		t.Fatalf("GetSession = %+v, %v", s, err)
	}
	if s.ExpiresAt.Sub(later).Abs() > time.Second {
		t.Fatalf("expected expiry %v, got %v", later, s.ExpiresAt)
	}
}

func TestListPartStores_Ordering(t *testing.T) {
	db := newTestDB(t)

	for _, name := range []string{"10", "2", "Warehouse", "1"} {
		if _, err := db.CreatePartStore(name, "box"); err != nil {
			t.Fatalf("CreatePartStore(%q) returned error: %v", name, err)
		}
	}

	stores, err := db.ListPartStores()
	if err != nil {
		t.Fatalf("ListPartStores returned error: %v", err)
	}

	want := []string{"Warehouse", "1", "2", "10"}
	if len(stores) != len(want) {
		t.Fatalf("expected %d stores, got %d", len(want), len(stores))
	}
	for i, s := range stores {
		if s.Name != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], s.Name)
		}
	}
}

func TestPartTypeNameTaken_ExcludesSelf(t *testing.T) {
	db := newTestDB(t)

	screws, _ := db.CreatePartType("Screws", "pcs")
	if _, err := db.CreatePartType("Wire", "m"); err != nil {
		t.Fatalf("CreatePartType returned error: %v", err)
	}

	if taken, _ := db.PartTypeNameTaken("screws", screws.ID); taken {
		t.Fatal("expected a type's own name not to count as taken")
	}
	if taken, _ := db.PartTypeNameTaken("WIRE", screws.ID); !taken {
		t.Fatal("expected another type's name to be taken regardless of case")
	}
}

func TestParts_LowAndSum(t *testing.T) {
	db := newTestDB(t)

	parts := []*Part{
		{Name: "M3 bolt", Amount: 2, PartNumber: "B-3", PartStoreName: "Main", Type: "Screws", Unit: "pcs", LowThresh: 5},
		{Name: "M4 bolt", Amount: 5, PartNumber: "B-4", PartStoreName: "Main", Type: "Screws", Unit: "pcs", LowThresh: 5},
		{Name: "Cable", Amount: 9, PartNumber: "C-1", PartStoreName: "Annex", Type: "Wire", Unit: "m"},
	}
	for _, p := range parts {
		if err := db.CreatePart(p); err != nil {
			t.Fatalf("CreatePart returned error: %v", err)
		}
		if p.ID == 0 {
			t.Fatal("expected CreatePart to set the ID")
		}
	}

	low, err := db.ListLowParts()
	if err != nil {
		t.Fatalf("ListLowParts returned error: %v", err)
	}
	if len(low) != 1 || low[0].Name != "M3 bolt" {
		t.Fatalf("expected only the part strictly below threshold, got %+v", low)
	}

	total, err := db.SumPartsByStore("Main")
	if err != nil || total != 7 {
		t.Fatalf("SumPartsByStore(Main) = %d, %v", total, err)
	}
	total, err = db.SumPartsByStore("Nowhere")
	if err != nil || total != 0 {
		t.Fatalf("SumPartsByStore(Nowhere) = %d, %v", total, err)
	}
}

func TestUpdatePartAmounts_Batch(t *testing.T) {
	db := newTestDB(t)

	a := &Part{Name: "A", Amount: 1, PartNumber: "1", PartStoreName: "Main", Type: "T"}
	b := &Part{Name: "B", Amount: 1, PartNumber: "2", PartStoreName: "Main", Type: "T"}
	for _, p := range []*Part{a, b} {
		if err := db.CreatePart(p); err != nil {
			t.Fatalf("CreatePart returned error: %v", err)
		}
	}

	n, err := db.UpdatePartAmounts([]AmountUpdate{
		{PartID: a.ID, Amount: 10},
		{PartID: b.ID, Amount: 20},
		{PartID: 9999, Amount: 30},
	})
	if err != nil {
		t.Fatalf("UpdatePartAmounts returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows updated, got %d", n)
	}

	got, _ := db.GetPart(b.ID)
	if got.Amount != 20 {
		t.Fatalf("expected amount 20, got %d", got.Amount)
	}
}

func TestCreateJob_LowercasesUsername(t *testing.T) {
	db := newTestDB(t)

	job := &Job{Username: "ÅSA Berg", Time: "2024-01-02 10:00", PartStoreName: "Main", PartsUsed: "M3 bolt x2"}
	if err := db.CreateJob(job); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	jobs, err := db.ListJobs()
	if err != nil {
		t.Fatalf("ListJobs returned error: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Username != "åsa berg" {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestSettings_Defaults(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetSetting("notifications.low_stock.enabled", "true"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	if err := db.InitializeDefaults(); err != nil {
		t.Fatalf("InitializeDefaults returned error: %v", err)
	}

	if got, _ := db.GetSetting("notifications.low_stock.enabled"); got != "true" {
		t.Fatalf("expected existing setting to survive InitializeDefaults, got %q", got)
	}

	want := fmt.Sprintf("%q", DefaultSettings["notifications.low_stock.schedule"])
	if got, _ := db.GetSetting("notifications.low_stock.schedule"); got != want {
		t.Fatalf("expected default schedule %s, got %s", want, got)
	}
}

func TestSetSettings_AllOrNothing(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.exec(`
		CREATE TRIGGER reject_broken BEFORE INSERT ON settings
		WHEN NEW.key = 'broken'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END
	`); err != nil {
		t.Fatalf("failed to create trigger: %v", err)
	}

	err := db.SetSettings(map[string]string{
		"notifications.log_retention_days": "9",
		"log.level":                        `"debug"`,
		"broken":                           "1",
	})
	if err == nil {
		t.Fatal("expected SetSettings to fail")
	}

	for _, key := range []string{"notifications.log_retention_days", "log.level"} {
		if got, _ := db.GetSetting(key); got != "" {
			t.Errorf("%s = %q after failed batch, want nothing stored", key, got)
		}
	}

	if err := db.SetSettings(map[string]string{"log.level": `"trace"`, "log.compress": "false"}); err != nil {
		t.Fatalf("SetSettings returned error: %v", err)
	}
	if got, _ := db.GetSetting("log.compress"); got != "false" {
		t.Fatalf("log.compress = %q", got)
	}
}

func TestNotificationLog(t *testing.T) {
	db := newTestDB(t)

	entry := &NotificationLog{Username: "alice", PhoneNum: "2025550143", Status: NotificationSent, PartCount: 3}
	if err := db.LogNotification(entry); err != nil {
		t.Fatalf("LogNotification returned error: %v", err)
	}
	if entry.ID == 0 {
		t.Fatal("expected LogNotification to set the ID")
	}

	logs, err := db.ListNotificationLogs(10)
	if err != nil {
		t.Fatalf("ListNotificationLogs returned error: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != NotificationSent || logs[0].PartCount != 3 {
		t.Fatalf("unexpected logs: %+v", logs)
	}
}
