package tether

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hearthlink/tether/internal/sms"
)

// Client is the patient-device entry point for the offline-first care
// subsystem. Every user-facing operation is optimistic: it appears to
// succeed immediately whether or not the write reached Hearth, and the
// pending queues are the only record of the discrepancy. That asymmetry is
// a deliberate usability choice for a cognitively vulnerable user
// population, so the UI layer must never be made to await a network round
// trip.
type Client struct {
	store     *Store
	remote    Remote
	recon     *Reconciler
	heartbeat *HeartbeatEmitter
	fallback  *sms.Channel
	log       *DebugLogger
	config    Config

	// network reports current connectivity when set. It distinguishes
	// "request failed" from "no network at all", which decides whether the
	// SMS fallback fires for safety-critical alerts.
	network func() NetworkStatus

	mu       sync.Mutex
	session  *Session
	appState AppState
}

// New creates a client. remote may be nil for offline-only operation; every
// write then lands in a queue until a remote is available.
func New(cfg Config, remote Remote) (*Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := NewStore(cfg.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	log := NewDebugLogger(cfg.Debug, cfg.DebugLogPath)

	c := &Client{
		store:     store,
		remote:    remote,
		recon:     NewReconciler(store, remote, log),
		heartbeat: NewHeartbeatEmitter(remote, cfg.HeartbeatInterval, log),
		log:       log,
		config:    cfg,
		appState:  AppStateBackground,
	}
	return c, nil
}

// SetFallbackComposer wires the platform SMS composer for the emergency
// fallback channel. Without one, total-offline alerts are queued only.
func (c *Client) SetFallbackComposer(composer sms.Composer) {
	c.fallback = sms.NewChannel(c.config.EmergencyContacts, c.config.Region, composer)
}

// SetConnectivityProbe wires a connectivity snapshot source, typically the
// network monitor. Without one the client assumes connectivity and lets
// request failures decide.
func (c *Client) SetConnectivityProbe(probe func() NetworkStatus) {
	c.network = probe
}

// Store exposes the underlying durable store for collaborators that must
// resolve identity from persistence (the background location task).
func (c *Client) Store() *Store {
	return c.store
}

// Start performs cold-start initialization: session load (racing the fixed
// timeout, failing safe to unpaired), the cache-eviction sweep, and the
// first reconciliation pass. A missing or timed-out session is not an
// error; the client simply runs unpaired until Pair is called.
func (c *Client) Start(ctx context.Context) error {
	session, err := LoadSession(ctx, c.store)
	if err != nil {
		c.log.LogError("session load", err)
		session = nil
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	if evicted, err := c.store.EvictStaleCache(time.Now()); err != nil {
		c.log.LogError("cache eviction", err)
	} else if evicted > 0 {
		c.log.Log("evicted %d stale cache entries", evicted)
	}

	c.Reconcile(ctx, "cold_start")

	if session != nil {
		c.heartbeat.Start(session.PatientID)
	}
	return nil
}

// Pair persists the paired-device session and begins the heartbeat.
func (c *Client) Pair(ctx context.Context, patientID, householdID string) (*Session, error) {
	session, err := c.store.SaveSession(Session{
		PatientID:   patientID,
		HouseholdID: householdID,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	c.heartbeat.Start(session.PatientID)
	c.Reconcile(ctx, "pairing")
	return session, nil
}

// Session returns the current session, or nil when unpaired.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetAppState feeds app lifecycle transitions into the subsystem. A
// transition from background/inactive to active triggers a reconciliation
// pass and restarts the heartbeat (which beats immediately).
func (c *Client) SetAppState(ctx context.Context, state AppState) {
	c.mu.Lock()
	prev := c.appState
	c.appState = state
	session := c.session
	c.mu.Unlock()

	if state != AppStateActive || prev == AppStateActive {
		return
	}

	if session != nil {
		c.heartbeat.Start(session.PatientID)
	}
	c.Reconcile(ctx, "foreground")
}

// SetNetworkStatus feeds OS connectivity events into the subsystem. A
// report with both flags true triggers the network-restore reconciliation.
func (c *Client) SetNetworkStatus(ctx context.Context, status NetworkStatus) {
	if !status.Online() {
		return
	}
	c.Reconcile(ctx, "network_restore")
}

// Reconcile runs one reconciliation pass. Safe to call concurrently from
// racing triggers; see Reconciler. No-ops when unpaired or when no remote
// is configured.
func (c *Client) Reconcile(ctx context.Context, trigger string) *Report {
	session := c.Session()
	householdID := ""
	if session != nil {
		householdID = session.HouseholdID
	}
	if c.remote == nil {
		return &Report{Trigger: trigger}
	}

	report, err := c.recon.Run(ctx, trigger, householdID)
	if err != nil {
		c.log.LogError("reconcile", err)
	}
	return report
}

// CompleteTask records a task completion. The cached read-side list is
// updated first so the completion appears instantly; the remote write is
// then attempted and, on failure, queued. Remote failures never reach the
// caller.
func (c *Client) CompleteTask(ctx context.Context, taskID, date string) error {
	session := c.Session()
	if session == nil {
		return ErrNotPaired
	}
	if !isValidDate(date) {
		return ErrInvalidDate
	}

	now := time.Now().UTC()
	if err := c.store.CacheCompletionLocally(TaskCompletion{
		TaskID:      taskID,
		Date:        date,
		CompletedAt: now,
	}); err != nil {
		return err
	}

	if c.online() && c.remote != nil {
		err := c.remote.CompleteTask(ctx, taskID, session.HouseholdID, date)
		if err == nil {
			return nil
		}
		c.log.LogError("complete task", err)
	}

	c.log.LogQueue("completions", "queued "+taskID+" for "+date)
	return c.store.EnqueueCompletion(PendingCompletion{
		TaskID:      taskID,
		HouseholdID: session.HouseholdID,
		Date:        date,
		CompletedAt: now,
	})
}

// SubmitCheckin records the daily mood check-in, queueing on failure. The
// pending slot holds at most one check-in; resubmitting today's replaces it.
func (c *Client) SubmitCheckin(ctx context.Context, params CheckinParams) error {
	session := c.Session()
	if session == nil {
		return ErrNotPaired
	}
	if params.Mood < MoodMin || params.Mood > MoodMax {
		return ErrInvalidMood
	}
	if params.SleepQuality < SleepQualityMin || params.SleepQuality > SleepQualityMax {
		return ErrInvalidSleepQuality
	}
	if !isValidDate(params.Date) {
		return ErrInvalidDate
	}

	checkin := PendingCheckin{
		HouseholdID:  session.HouseholdID,
		Date:         params.Date,
		Mood:         params.Mood,
		SleepQuality: params.SleepQuality,
		VoiceNoteURL: params.VoiceNoteURL,
		SubmittedAt:  time.Now().UTC(),
	}

	if c.online() && c.remote != nil {
		err := c.remote.UpsertCheckin(ctx, checkin)
		if err == nil {
			return nil
		}
		c.log.LogError("submit checkin", err)
	}

	c.log.LogQueue("checkin", "queued check-in for "+params.Date)
	return c.store.SetPendingCheckin(checkin)
}

// RaiseAlert delivers a safety alert, queueing on failure. Use TriggerSOS
// or TriggerTakeMeHome for the alert types that carry the SMS fallback.
func (c *Client) RaiseAlert(ctx context.Context, alertType AlertType, latitude, longitude float64) error {
	if !alertType.IsValid() {
		return ErrInvalidAlertType
	}
	session := c.Session()
	if session == nil {
		return ErrNotPaired
	}

	alert := PendingAlert{
		HouseholdID: session.HouseholdID,
		Type:        alertType,
		Latitude:    latitude,
		Longitude:   longitude,
		TriggeredAt: time.Now().UTC(),
	}

	if c.online() && c.remote != nil {
		err := c.remote.CreateLocationAlert(ctx, alert)
		if err == nil {
			return nil
		}
		c.log.LogError("raise alert", err)
	}

	c.log.LogQueue("alerts", "queued "+string(alertType))
	return c.store.EnqueueAlert(alert)
}

// TriggerSOS raises an SOS alert. With no connectivity at all, the SMS
// fallback fires in parallel with queueing so a human-readable message goes
// out immediately while the structured alert waits for reconciliation.
func (c *Client) TriggerSOS(ctx context.Context, latitude, longitude float64, hasFix bool) error {
	return c.triggerEmergency(ctx, AlertSOS, latitude, longitude, hasFix)
}

// TriggerTakeMeHome raises a take-me-home alert with the same fallback
// semantics as TriggerSOS.
func (c *Client) TriggerTakeMeHome(ctx context.Context, latitude, longitude float64, hasFix bool) error {
	return c.triggerEmergency(ctx, AlertTakeMeHome, latitude, longitude, hasFix)
}

func (c *Client) triggerEmergency(ctx context.Context, alertType AlertType, latitude, longitude float64, hasFix bool) error {
	if !c.online() {
		// Total connectivity absence: the request cannot even be attempted.
		// Fire the SMS composer and queue the structured alert in parallel.
		c.fallback.Send(string(alertType), latitude, longitude, hasFix)
	}
	return c.RaiseAlert(ctx, alertType, latitude, longitude)
}

// RefreshDayPlan fetches the read-side entities for date and overwrites the
// cache. On fetch failure it falls back to whatever is cached, so the day
// screen still renders offline.
func (c *Client) RefreshDayPlan(ctx context.Context, date string) (*DayPlan, error) {
	session := c.Session()
	if session == nil {
		return nil, ErrNotPaired
	}
	if !isValidDate(date) {
		return nil, ErrInvalidDate
	}

	if c.remote != nil {
		plan, err := c.remote.FetchDayPlan(ctx, session.HouseholdID, date)
		if err == nil {
			if err := c.store.CacheDayPlan(plan); err != nil {
				c.log.LogError("cache day plan", err)
			}
			return plan, nil
		}
		c.log.LogError("fetch day plan", err)
	}

	return c.store.CachedDayPlan(date)
}

// Stats reports queue depths and reconciliation bookkeeping.
func (c *Client) Stats() (*StoreStats, error) {
	return c.store.Stats()
}

// Close stops the heartbeat and closes the store and logger.
func (c *Client) Close() error {
	c.heartbeat.Stop()
	err := c.store.Close()
	_ = c.log.Close()
	return err
}

// online consults the connectivity probe. With no probe wired, connectivity
// is assumed and request failures decide.
func (c *Client) online() bool {
	if c.network == nil {
		return true
	}
	return c.network().Online()
}

func isValidDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}
