package tether

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Local storage keys. The queue keys each hold one JSON blob; per-date cache
// keys are derived in cache.go.
const (
	keyPendingCompletions  = "pending_completions"
	keyPendingAlerts       = "pending_location_alerts"
	keyPendingLocationLogs = "pending_location_logs"
	keyPendingCheckin      = "pending_checkin"
	keySession             = "session"

	metaLastReconcile = "last_reconcile"
)

// The four pending-operation queues live on Store. Each exposes enqueue,
// read-all, and clear-all; none supports per-entry removal. Partial drain
// progress is deliberately not persisted; see Reconciler for the
// all-or-nothing clear policy that depends on this shape.

// PendingCompletions returns all queued task completions in insertion order.
func (s *Store) PendingCompletions() ([]PendingCompletion, error) {
	var entries []PendingCompletion
	if err := s.readJSON(keyPendingCompletions, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnqueueCompletion appends a completion unless one with the same
// (TaskID, Date) identity is already queued. The dedup prevents duplicate
// completions when a user repeatedly taps "done" while offline.
func (s *Store) EnqueueCompletion(entry PendingCompletion) error {
	entries, err := s.PendingCompletions()
	if err != nil {
		return err
	}

	for _, existing := range entries {
		if existing.TaskID == entry.TaskID && existing.Date == entry.Date {
			return nil
		}
	}

	return s.writeJSON(keyPendingCompletions, append(entries, entry))
}

// ClearCompletions empties the completion queue.
func (s *Store) ClearCompletions() error {
	return s.Delete(keyPendingCompletions)
}

// PendingAlerts returns all queued safety alerts in insertion order.
func (s *Store) PendingAlerts() ([]PendingAlert, error) {
	var entries []PendingAlert
	if err := s.readJSON(keyPendingAlerts, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnqueueAlert always appends. Alerts are never deduplicated: a false
// negative on a duplicate safety alert is worse than a duplicate delivery.
func (s *Store) EnqueueAlert(entry PendingAlert) error {
	entries, err := s.PendingAlerts()
	if err != nil {
		return err
	}
	return s.writeJSON(keyPendingAlerts, append(entries, entry))
}

// ClearAlerts empties the alert queue.
func (s *Store) ClearAlerts() error {
	return s.Delete(keyPendingAlerts)
}

// PendingLocationLogs returns all queued location samples in insertion order.
func (s *Store) PendingLocationLogs() ([]PendingLocationLog, error) {
	var entries []PendingLocationLog
	if err := s.readJSON(keyPendingLocationLogs, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnqueueLocationLog appends a sample, then truncates the queue to the most
// recent MaxPendingLocationLogs entries, oldest evicted first.
func (s *Store) EnqueueLocationLog(entry PendingLocationLog) error {
	entries, err := s.PendingLocationLogs()
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if len(entries) > MaxPendingLocationLogs {
		entries = entries[len(entries)-MaxPendingLocationLogs:]
	}

	return s.writeJSON(keyPendingLocationLogs, entries)
}

// ClearLocationLogs empties the location-log queue.
func (s *Store) ClearLocationLogs() error {
	return s.Delete(keyPendingLocationLogs)
}

// PendingCheckin returns the single pending check-in, or nil if none.
func (s *Store) PendingCheckin() (*PendingCheckin, error) {
	var entry PendingCheckin
	err := s.readJSON(keyPendingCheckin, &entry)
	if err != nil {
		return nil, err
	}
	if entry.Date == "" {
		return nil, nil
	}
	return &entry, nil
}

// SetPendingCheckin stores the pending check-in, replacing any prior one.
// Only "today's" check-in is ever pending, so last write wins.
func (s *Store) SetPendingCheckin(entry PendingCheckin) error {
	return s.writeJSON(keyPendingCheckin, entry)
}

// ClearPendingCheckin removes the pending check-in.
func (s *Store) ClearPendingCheckin() error {
	return s.Delete(keyPendingCheckin)
}

// readJSON decodes the blob under key into v. An absent key leaves v at its
// zero value.
func (s *Store) readJSON(key string, v any) error {
	raw, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("store: decode %q: %w", key, err)
	}
	return nil
}

func (s *Store) writeJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	return s.Set(key, string(raw))
}
