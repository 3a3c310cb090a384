// Package tracker runs the background location task. It is driven by the
// OS background scheduler and may execute in a detached process context, so
// it resolves patient identity from the durable store rather than from
// in-memory application state.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/hearthlink/tether"
	"github.com/oklog/ulid/v2"
)

// TaskName is the stable identifier the OS scheduler registers the task
// under. Registered once per process.
const TaskName = "tether-background-location"

// Sample is one delivered position fix.
type Sample struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Timestamp time.Time
}

// Accuracy selects the platform location accuracy profile.
type Accuracy string

const (
	AccuracyBalanced Accuracy = "balanced"
	AccuracyHigh     Accuracy = "high"
)

// Options configures the platform location source.
type Options struct {
	Accuracy          Accuracy
	MinDistanceMeters float64
	MinInterval       time.Duration

	// ShowIndicator keeps a persistent foreground-service/background
	// indicator visible while tracking runs. Platform policy makes this a
	// transparency requirement, not a UI nicety.
	ShowIndicator bool
}

// DefaultOptions samples at balanced accuracy on 100-meter movement or
// 5-minute elapsed time, whichever triggers first.
func DefaultOptions() Options {
	return Options{
		Accuracy:          AccuracyBalanced,
		MinDistanceMeters: 100,
		MinInterval:       5 * time.Minute,
		ShowIndicator:     true,
	}
}

// Source abstracts the OS background location scheduler. Implementations
// deliver batches of samples to the callback until Stop is called.
type Source interface {
	Start(ctx context.Context, opts Options, deliver func(batch []Sample)) error
	Stop() error
}

// Permissions abstracts the platform permission prompts. Foreground must be
// granted before background is requested; requesting background first is a
// platform policy violation.
type Permissions interface {
	RequestForeground(ctx context.Context) (bool, error)
	RequestBackground(ctx context.Context) (bool, error)
}

// Tracker owns the background location task lifecycle.
type Tracker struct {
	store  *tether.Store
	remote tether.Remote
	source Source
	perms  Permissions
	opts   Options
	log    *tether.DebugLogger

	mu         sync.Mutex
	registered bool
}

// New creates a tracker. remote may be nil; samples then go straight to the
// pending queue.
func New(store *tether.Store, remote tether.Remote, source Source, perms Permissions, log *tether.DebugLogger) *Tracker {
	return &Tracker{
		store:  store,
		remote: remote,
		source: source,
		perms:  perms,
		opts:   DefaultOptions(),
		log:    log,
	}
}

// Start registers the background task. Guarded and idempotent: if the task
// is already registered it returns immediately without re-requesting
// permissions. A denied permission means tracking silently does not start;
// surfacing permission state is the settings screen's job, not this
// layer's.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.registered {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	foreground, err := t.perms.RequestForeground(ctx)
	if err != nil {
		t.log.LogError("foreground permission", err)
		return nil
	}
	if !foreground {
		t.log.Log("tracking not started: foreground permission denied")
		return nil
	}

	background, err := t.perms.RequestBackground(ctx)
	if err != nil {
		t.log.LogError("background permission", err)
		return nil
	}
	if !background {
		t.log.Log("tracking not started: background permission denied")
		return nil
	}

	if err := t.source.Start(ctx, t.opts, t.handleBatch); err != nil {
		t.log.LogError("register background task", err)
		return nil
	}

	t.mu.Lock()
	t.registered = true
	t.mu.Unlock()

	t.log.Log("background location task %q registered", TaskName)
	return nil
}

// Stop unregisters the background task. Guarded: stopping when nothing is
// running is a no-op.
func (t *Tracker) Stop() error {
	t.mu.Lock()
	if !t.registered {
		t.mu.Unlock()
		return nil
	}
	t.registered = false
	t.mu.Unlock()

	if err := t.source.Stop(); err != nil {
		t.log.LogError("unregister background task", err)
	}
	t.log.Log("background location task %q unregistered", TaskName)
	return nil
}

// Registered reports whether the background task is currently registered.
func (t *Tracker) Registered() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registered
}

// handleBatch processes one delivered batch. Only the most recent sample is
// used: earlier samples in the batch carry no value for safe-zone or
// take-me-home features, which only care about current position.
func (t *Tracker) handleBatch(batch []Sample) {
	if len(batch) == 0 {
		return
	}
	sample := batch[len(batch)-1]

	session, err := t.store.ReadSession()
	if err != nil {
		// Unpaired or unreadable session: nothing to attribute the sample to.
		t.log.LogError("tracker session read", err)
		return
	}

	entry := tether.PendingLocationLog{
		ID:          ulid.Make().String(),
		PatientID:   session.PatientID,
		HouseholdID: session.HouseholdID,
		Latitude:    sample.Latitude,
		Longitude:   sample.Longitude,
		Accuracy:    sample.Accuracy,
		Timestamp:   sample.Timestamp,
	}

	if t.remote != nil {
		err := t.remote.LogLocation(context.Background(), entry)
		if err == nil {
			return
		}
		t.log.LogError("log location", err)
	}

	if err := t.store.EnqueueLocationLog(entry); err != nil {
		t.log.LogError("enqueue location log", err)
	}
}
