package tether

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestNewStore_CreatesTables verifies that NewStore creates the kv and
// metadata tables.
func TestNewStore_CreatesTables(t *testing.T) {
	store := newTestStore(t)

	tables := []string{"kv", "metadata"}
	for _, table := range tables {
		var name string
		err := store.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

// TestNewStore_EnablesWAL verifies that WAL mode is enabled after initialization.
func TestNewStore_EnablesWAL(t *testing.T) {
	store := newTestStore(t)

	var journalMode string
	if err := store.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected journal_mode=wal, got %q", journalMode)
	}
}

// TestNewStore_SetsSchemaVersion verifies that schema_version is recorded.
func TestNewStore_SetsSchemaVersion(t *testing.T) {
	store := newTestStore(t)

	version, err := store.GetMetadata("schema_version")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("schema_version = %q, want %q", version, schemaVersion)
	}
}

func TestStore_GetSetDelete(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}

	if err := store.Set("greeting", "hello"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := store.Get("greeting")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "hello" {
		t.Errorf("Get = %q, want %q", value, "hello")
	}

	// Overwrite
	if err := store.Set("greeting", "goodbye"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	value, _ = store.Get("greeting")
	if value != "goodbye" {
		t.Errorf("Get after overwrite = %q, want %q", value, "goodbye")
	}

	if err := store.Delete("greeting"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get("greeting"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	// Deleting an absent key is not an error.
	if err := store.Delete("greeting"); err != nil {
		t.Errorf("Delete of absent key = %v, want nil", err)
	}
}

func TestStore_Keys(t *testing.T) {
	store := newTestStore(t)

	for _, key := range []string{"b", "a", "c"} {
		if err := store.Set(key, "v"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("len(keys) = %d, want 3", len(keys))
	}
	// Keys come back sorted for deterministic sweeps.
	for i, want := range []string{"a", "b", "c"} {
		if keys[i] != want {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want)
		}
	}
}

func TestStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.Set("k", "survives restart"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	value, err := reopened.Get("k")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if value != "survives restart" {
		t.Errorf("Get = %q, want %q", value, "survives restart")
	}
}

func TestStore_ClosedOperationsFail(t *testing.T) {
	store := newTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := store.Get("k"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Get on closed store = %v, want ErrStoreClosed", err)
	}
	if err := store.Set("k", "v"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Set on closed store = %v, want ErrStoreClosed", err)
	}
	if _, err := store.Keys(); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Keys on closed store = %v, want ErrStoreClosed", err)
	}

	// Double close is fine.
	if err := store.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestStore_Stats(t *testing.T) {
	store := newTestStore(t)

	if err := store.EnqueueCompletion(PendingCompletion{TaskID: "t1", HouseholdID: "hh", Date: "2026-08-27"}); err != nil {
		t.Fatalf("EnqueueCompletion failed: %v", err)
	}
	if err := store.EnqueueAlert(PendingAlert{HouseholdID: "hh", Type: AlertSOS}); err != nil {
		t.Fatalf("EnqueueAlert failed: %v", err)
	}
	if err := store.SetPendingCheckin(PendingCheckin{HouseholdID: "hh", Date: "2026-08-27", Mood: 3, SleepQuality: 2}); err != nil {
		t.Fatalf("SetPendingCheckin failed: %v", err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.PendingCompletions != 1 {
		t.Errorf("PendingCompletions = %d, want 1", stats.PendingCompletions)
	}
	if stats.PendingAlerts != 1 {
		t.Errorf("PendingAlerts = %d, want 1", stats.PendingAlerts)
	}
	if stats.PendingLocationLogs != 0 {
		t.Errorf("PendingLocationLogs = %d, want 0", stats.PendingLocationLogs)
	}
	if !stats.CheckinPending {
		t.Error("CheckinPending = false, want true")
	}
	if stats.SchemaVersion != schemaVersion {
		t.Errorf("SchemaVersion = %q, want %q", stats.SchemaVersion, schemaVersion)
	}
}
