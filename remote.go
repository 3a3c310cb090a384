package tether

import (
	"context"
	"time"
)

// Remote is the set of Hearth operations this subsystem consumes. The
// production implementation is internal/care.HTTPClient; tests substitute
// fakes. Implementations must be safe for concurrent use: overlapping
// reconciliation passes may invoke the same write twice, so every write
// must be idempotent-safe-enough (repeat execution with the same logical
// key produces no materially different outcome).
type Remote interface {
	// CompleteTask records a task completion. Idempotent per (taskID, date);
	// Hearth deduplicates server-side.
	CompleteTask(ctx context.Context, taskID, householdID, date string) error

	// CreateLocationAlert delivers a safety alert. Duplicates are harmless
	// notifications, not state mutations.
	CreateLocationAlert(ctx context.Context, alert PendingAlert) error

	// LogLocation records a position sample. Duplicates are harmless.
	LogLocation(ctx context.Context, log PendingLocationLog) error

	// UpsertCheckin records the daily check-in. Idempotent per
	// (householdID, date).
	UpsertCheckin(ctx context.Context, checkin PendingCheckin) error

	// Heartbeat writes a liveness timestamp for the patient. Never retried
	// and never queued by callers; a stale heartbeat is itself the signal.
	Heartbeat(ctx context.Context, patientID string, at time.Time) error

	// FetchDayPlan retrieves the read-side entities for a date.
	FetchDayPlan(ctx context.Context, householdID, date string) (*DayPlan, error)

	// Ping validates connectivity to Hearth.
	Ping(ctx context.Context) error
}
