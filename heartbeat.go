package tether

import (
	"context"
	"sync"
	"time"
)

// HeartbeatEmitter periodically writes a liveness timestamp for the patient
// while the app is foregrounded. It is fully independent of the pending
// queues: on failure it logs and drops. A liveness signal has no
// retroactive value: the stale timestamp is itself the actionable signal
// to the caregiver, and queueing a late beat would fabricate a misleading
// "just checked in" event after the fact.
//
// Exactly one heartbeat loop is active per emitter; Start stops any prior
// run before starting a new one.
type HeartbeatEmitter struct {
	remote   Remote
	interval time.Duration
	log      *DebugLogger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewHeartbeatEmitter creates an emitter. A zero interval falls back to the
// 10-minute default.
func NewHeartbeatEmitter(remote Remote, interval time.Duration, log *DebugLogger) *HeartbeatEmitter {
	if interval == 0 {
		interval = 10 * time.Minute
	}
	return &HeartbeatEmitter{remote: remote, interval: interval, log: log}
}

// Start begins the heartbeat loop for patientID, beating once immediately.
// Idempotent: a running loop is stopped first, so callers can invoke it on
// every foreground transition and get both the immediate beat and a fresh
// interval.
func (h *HeartbeatEmitter) Start(patientID string) {
	h.Stop()

	h.mu.Lock()
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	stop, done := h.stop, h.done
	h.mu.Unlock()

	go h.run(patientID, stop, done)
}

// Stop tears down the heartbeat loop. Safe to call when nothing is running.
func (h *HeartbeatEmitter) Stop() {
	h.mu.Lock()
	stop, done := h.stop, h.done
	h.stop, h.done = nil, nil
	h.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether a heartbeat loop is active.
func (h *HeartbeatEmitter) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stop != nil
}

func (h *HeartbeatEmitter) run(patientID string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	h.Beat(context.Background(), patientID)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.Beat(context.Background(), patientID)
		case <-stop:
			return
		}
	}
}

// Beat writes one liveness timestamp. Failures are logged and dropped; the
// next interval simply tries again. Nothing is ever queued from here.
func (h *HeartbeatEmitter) Beat(ctx context.Context, patientID string) {
	if h.remote == nil || patientID == "" {
		return
	}
	if err := h.remote.Heartbeat(ctx, patientID, time.Now().UTC()); err != nil {
		h.log.LogError("heartbeat", err)
	}
}
