package tether

import (
	"context"
	"fmt"
	"time"
)

// Reconciler drains the pending-operation queues against Hearth. It is
// triggered from three independent sources (cold start, app-foreground
// transition, network restore) which may race. There is deliberately
// no mutex here: overlapping passes are tolerated because every remote
// write is idempotent-safe-enough (completions dedup server-side per
// task/date, alerts and location logs are harmless as duplicates, the
// check-in is an upsert).
type Reconciler struct {
	store  *Store
	remote Remote
	log    *DebugLogger
}

// NewReconciler creates a reconciler over the given store and remote.
func NewReconciler(store *Store, remote Remote, log *DebugLogger) *Reconciler {
	return &Reconciler{store: store, remote: remote, log: log}
}

// Report summarizes one reconciliation pass.
type Report struct {
	Trigger       string
	Completions   DrainResult
	Alerts        DrainResult
	LocationLogs  DrainResult
	CheckinSynced bool
	Duration      time.Duration
}

// DrainResult summarizes one queue's drain attempt.
type DrainResult struct {
	Attempted int
	Failed    int
	Cleared   bool
}

// Run executes one reconciliation pass for the given household. It no-ops
// when householdID is empty (device not yet paired). Remote failures never
// escape: they leave entries queued for the next trigger. Only local store
// failures return an error.
func (r *Reconciler) Run(ctx context.Context, trigger, householdID string) (*Report, error) {
	report := &Report{Trigger: trigger}
	if householdID == "" {
		return report, nil
	}

	start := time.Now()
	r.log.LogReconcile(trigger, "pass started")

	var err error
	if report.Completions, err = r.drainCompletions(ctx); err != nil {
		return report, err
	}
	if report.Alerts, err = r.drainAlerts(ctx); err != nil {
		return report, err
	}
	if report.LocationLogs, err = r.drainLocationLogs(ctx); err != nil {
		return report, err
	}
	if report.CheckinSynced, err = r.drainCheckin(ctx); err != nil {
		return report, err
	}

	report.Duration = time.Since(start)
	r.log.LogReconcile(trigger, fmt.Sprintf(
		"pass finished in %s: completions %d/%d failed, alerts %d/%d failed, locations %d/%d failed, checkin synced=%v",
		report.Duration.Round(time.Millisecond),
		report.Completions.Failed, report.Completions.Attempted,
		report.Alerts.Failed, report.Alerts.Attempted,
		report.LocationLogs.Failed, report.LocationLogs.Attempted,
		report.CheckinSynced,
	))

	_ = r.store.SetMetadata(metaLastReconcile, time.Now().UTC().Format(time.RFC3339))
	return report, nil
}

// Each drain is symmetric: read all entries, attempt every remote write in
// insertion order collecting per-entry failures without aborting, and clear
// the queue only when zero entries failed. On any failure the entire queue,
// successes included, is left untouched so the next pass retries
// everything. Persisting partial progress would require per-entry removal;
// redundant idempotent writes are the cheaper side of that trade.

func (r *Reconciler) drainCompletions(ctx context.Context) (DrainResult, error) {
	entries, err := r.store.PendingCompletions()
	if err != nil {
		return DrainResult{}, err
	}
	if len(entries) == 0 {
		return DrainResult{}, nil
	}

	result := DrainResult{Attempted: len(entries)}
	for _, entry := range entries {
		if err := r.remote.CompleteTask(ctx, entry.TaskID, entry.HouseholdID, entry.Date); err != nil {
			result.Failed++
			r.log.LogError("drain completion", err)
		}
	}

	if result.Failed == 0 {
		if err := r.store.ClearCompletions(); err != nil {
			return result, err
		}
		result.Cleared = true
		r.log.LogQueue("completions", fmt.Sprintf("drained %d entries", result.Attempted))
	}
	return result, nil
}

func (r *Reconciler) drainAlerts(ctx context.Context) (DrainResult, error) {
	entries, err := r.store.PendingAlerts()
	if err != nil {
		return DrainResult{}, err
	}
	if len(entries) == 0 {
		return DrainResult{}, nil
	}

	result := DrainResult{Attempted: len(entries)}
	for _, entry := range entries {
		if err := r.remote.CreateLocationAlert(ctx, entry); err != nil {
			result.Failed++
			r.log.LogError("drain alert", err)
		}
	}

	if result.Failed == 0 {
		if err := r.store.ClearAlerts(); err != nil {
			return result, err
		}
		result.Cleared = true
		r.log.LogQueue("alerts", fmt.Sprintf("drained %d entries", result.Attempted))
	}
	return result, nil
}

func (r *Reconciler) drainLocationLogs(ctx context.Context) (DrainResult, error) {
	entries, err := r.store.PendingLocationLogs()
	if err != nil {
		return DrainResult{}, err
	}
	if len(entries) == 0 {
		return DrainResult{}, nil
	}

	result := DrainResult{Attempted: len(entries)}
	for _, entry := range entries {
		if err := r.remote.LogLocation(ctx, entry); err != nil {
			result.Failed++
			r.log.LogError("drain location log", err)
		}
	}

	if result.Failed == 0 {
		if err := r.store.ClearLocationLogs(); err != nil {
			return result, err
		}
		result.Cleared = true
		r.log.LogQueue("location_logs", fmt.Sprintf("drained %d entries", result.Attempted))
	}
	return result, nil
}

func (r *Reconciler) drainCheckin(ctx context.Context) (bool, error) {
	entry, err := r.store.PendingCheckin()
	if err != nil {
		return false, err
	}
	if entry == nil {
		return false, nil
	}

	if err := r.remote.UpsertCheckin(ctx, *entry); err != nil {
		r.log.LogError("drain checkin", err)
		return false, nil
	}

	if err := r.store.ClearPendingCheckin(); err != nil {
		return false, err
	}
	r.log.LogQueue("checkin", "drained pending check-in")
	return true, nil
}
