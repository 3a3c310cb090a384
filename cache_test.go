package tether

import (
	"errors"
	"testing"
	"time"
)

// TestEvictStaleCache removes dated keys older than 7 days and keeps
// recent ones and undated ones.
func TestEvictStaleCache(t *testing.T) {
	store := newTestStore(t)

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -10).Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	keep := []string{
		"cached_tasks_" + yesterday,
		"cached_completions_" + yesterday,
		"pending_completions", // not a cache key
		"cached_notes",        // cache prefix but no trailing date
	}
	evict := []string{
		"cached_tasks_" + old,
		"cached_completions_" + old,
		"cached_activity_" + old,
	}

	for _, key := range append(append([]string{}, keep...), evict...) {
		if err := store.Set(key, "[]"); err != nil {
			t.Fatalf("Set %q failed: %v", key, err)
		}
	}

	evicted, err := store.EvictStaleCache(now)
	if err != nil {
		t.Fatalf("EvictStaleCache failed: %v", err)
	}
	if evicted != len(evict) {
		t.Errorf("evicted = %d, want %d", evicted, len(evict))
	}

	for _, key := range evict {
		if _, err := store.Get(key); !errors.Is(err, ErrNotFound) {
			t.Errorf("key %q survived eviction", key)
		}
	}
	for _, key := range keep {
		if _, err := store.Get(key); err != nil {
			t.Errorf("key %q was wrongly evicted: %v", key, err)
		}
	}
}

func TestCacheDayPlan_Roundtrip(t *testing.T) {
	store := newTestStore(t)

	plan := &DayPlan{
		Date: "2026-08-27",
		Tasks: []CarePlanTask{
			{ID: "task-1", HouseholdID: "hh-1", Title: "Take morning medication", TimeOfDay: "morning", Recurring: true},
		},
		Completions: []TaskCompletion{
			{TaskID: "task-1", Date: "2026-08-27", CompletedAt: time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)},
		},
		Activity: &BrainActivity{ID: "act-1", Kind: "puzzle", Title: "Word search"},
	}

	if err := store.CacheDayPlan(plan); err != nil {
		t.Fatalf("CacheDayPlan failed: %v", err)
	}

	cached, err := store.CachedDayPlan("2026-08-27")
	if err != nil {
		t.Fatalf("CachedDayPlan failed: %v", err)
	}
	if len(cached.Tasks) != 1 || cached.Tasks[0].Title != "Take morning medication" {
		t.Errorf("cached tasks = %+v", cached.Tasks)
	}
	if len(cached.Completions) != 1 || cached.Completions[0].TaskID != "task-1" {
		t.Errorf("cached completions = %+v", cached.Completions)
	}
	if cached.Activity == nil || cached.Activity.Kind != "puzzle" {
		t.Errorf("cached activity = %+v", cached.Activity)
	}
}

func TestCachedDayPlan_EmptyWhenAbsent(t *testing.T) {
	store := newTestStore(t)

	plan, err := store.CachedDayPlan("2026-01-01")
	if err != nil {
		t.Fatalf("CachedDayPlan failed: %v", err)
	}
	if len(plan.Tasks) != 0 || len(plan.Completions) != 0 || plan.Activity != nil {
		t.Errorf("plan for absent date = %+v, want empty", plan)
	}
}

func TestCacheCompletionLocally_Dedup(t *testing.T) {
	store := newTestStore(t)

	completion := TaskCompletion{TaskID: "task-1", Date: "2026-08-27", CompletedAt: time.Now().UTC()}
	if err := store.CacheCompletionLocally(completion); err != nil {
		t.Fatalf("first cache failed: %v", err)
	}
	if err := store.CacheCompletionLocally(completion); err != nil {
		t.Fatalf("second cache failed: %v", err)
	}

	plan, _ := store.CachedDayPlan("2026-08-27")
	if len(plan.Completions) != 1 {
		t.Errorf("len(completions) = %d, want 1", len(plan.Completions))
	}
}
