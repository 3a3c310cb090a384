package tether

import (
	"regexp"
	"strings"
	"time"
)

// Per-date cache key prefixes. Full keys carry a trailing YYYY-MM-DD which
// the eviction sweep matches on.
const (
	cacheTasksPrefix       = "cached_tasks_"
	cacheCompletionsPrefix = "cached_completions_"
	cacheActivityPrefix    = "cached_activity_"
)

// cacheMaxAge is how long dated cache entries survive before the sweep
// removes them.
const cacheMaxAge = 7 * 24 * time.Hour

var datedKeyPattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})$`)

// CacheDayPlan overwrites the per-date read caches with a freshly fetched
// plan. Cached entities are not reconciled, only replaced on the next
// successful fetch.
func (s *Store) CacheDayPlan(plan *DayPlan) error {
	if err := s.writeJSON(cacheTasksPrefix+plan.Date, plan.Tasks); err != nil {
		return err
	}
	if err := s.writeJSON(cacheCompletionsPrefix+plan.Date, plan.Completions); err != nil {
		return err
	}
	if plan.Activity != nil {
		if err := s.writeJSON(cacheActivityPrefix+plan.Date, plan.Activity); err != nil {
			return err
		}
	}
	return nil
}

// CachedDayPlan reads the per-date caches. Missing entries come back empty;
// a fully absent date yields an empty plan, not an error, because the cache
// is a best-effort offline fallback.
func (s *Store) CachedDayPlan(date string) (*DayPlan, error) {
	plan := &DayPlan{Date: date}
	if err := s.readJSON(cacheTasksPrefix+date, &plan.Tasks); err != nil {
		return nil, err
	}
	if err := s.readJSON(cacheCompletionsPrefix+date, &plan.Completions); err != nil {
		return nil, err
	}
	var activity BrainActivity
	if err := s.readJSON(cacheActivityPrefix+date, &activity); err != nil {
		return nil, err
	}
	if activity.ID != "" {
		plan.Activity = &activity
	}
	return plan, nil
}

// CacheCompletionLocally appends a completion to the cached read-side list
// for its date, so the optimistic UI sees the task as done while offline.
func (s *Store) CacheCompletionLocally(c TaskCompletion) error {
	var cached []TaskCompletion
	if err := s.readJSON(cacheCompletionsPrefix+c.Date, &cached); err != nil {
		return err
	}
	for _, existing := range cached {
		if existing.TaskID == c.TaskID {
			return nil
		}
	}
	return s.writeJSON(cacheCompletionsPrefix+c.Date, append(cached, c))
}

// EvictStaleCache removes any dated cache key older than cacheMaxAge,
// judged against now. Keys without a trailing date are untouched.
func (s *Store) EvictStaleCache(now time.Time) (int, error) {
	keys, err := s.Keys()
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-cacheMaxAge)
	evicted := 0

	for _, key := range keys {
		if !strings.HasPrefix(key, "cached_") {
			continue
		}
		match := datedKeyPattern.FindString(key)
		if match == "" {
			continue
		}
		day, err := time.Parse("2006-01-02", match)
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			if err := s.Delete(key); err != nil {
				return evicted, err
			}
			evicted++
		}
	}

	return evicted, nil
}
