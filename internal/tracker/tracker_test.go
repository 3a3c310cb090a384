package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hearthlink/tether"
)

type fakeSource struct {
	mu      sync.Mutex
	starts  int
	stops   int
	deliver func(batch []Sample)
	failing bool
}

func (s *fakeSource) Start(ctx context.Context, opts Options, deliver func(batch []Sample)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("scheduler rejected task")
	}
	s.starts++
	s.deliver = deliver
	return nil
}

func (s *fakeSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return nil
}

func (s *fakeSource) startCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

type fakePerms struct {
	mu         sync.Mutex
	order      []string
	foreground bool
	background bool
}

func (p *fakePerms) RequestForeground(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = append(p.order, "foreground")
	return p.foreground, nil
}

func (p *fakePerms) RequestBackground(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = append(p.order, "background")
	return p.background, nil
}

type fakeLocationRemote struct {
	mu     sync.Mutex
	logged []tether.PendingLocationLog
	fail   bool
}

func (r *fakeLocationRemote) CompleteTask(ctx context.Context, taskID, householdID, date string) error {
	return nil
}

func (r *fakeLocationRemote) CreateLocationAlert(ctx context.Context, alert tether.PendingAlert) error {
	return nil
}

func (r *fakeLocationRemote) LogLocation(ctx context.Context, entry tether.PendingLocationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("connection refused")
	}
	r.logged = append(r.logged, entry)
	return nil
}

func (r *fakeLocationRemote) UpsertCheckin(ctx context.Context, checkin tether.PendingCheckin) error {
	return nil
}

func (r *fakeLocationRemote) Heartbeat(ctx context.Context, patientID string, at time.Time) error {
	return nil
}

func (r *fakeLocationRemote) FetchDayPlan(ctx context.Context, householdID, date string) (*tether.DayPlan, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeLocationRemote) Ping(ctx context.Context) error { return nil }

func newTestStore(t *testing.T) *tether.Store {
	t.Helper()
	store, err := tether.NewStore(filepath.Join(t.TempDir(), "tracker_test.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func pairedStore(t *testing.T) *tether.Store {
	t.Helper()
	store := newTestStore(t)
	_, err := store.SaveSession(tether.Session{PatientID: "pat-1", HouseholdID: "hh-1"})
	if err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	return store
}

func TestTracker_StartRequestsForegroundBeforeBackground(t *testing.T) {
	perms := &fakePerms{foreground: true, background: true}
	tr := New(pairedStore(t), nil, &fakeSource{}, perms, nil)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if len(perms.order) != 2 || perms.order[0] != "foreground" || perms.order[1] != "background" {
		t.Errorf("permission order = %v, want [foreground background]", perms.order)
	}
	if !tr.Registered() {
		t.Error("Registered = false after successful Start")
	}
}

func TestTracker_StartIsIdempotent(t *testing.T) {
	perms := &fakePerms{foreground: true, background: true}
	source := &fakeSource{}
	tr := New(pairedStore(t), nil, source, perms, nil)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}

	if source.startCount() != 1 {
		t.Errorf("source starts = %d, want 1", source.startCount())
	}
	// The second Start must not have re-prompted.
	if len(perms.order) != 2 {
		t.Errorf("permission prompts = %d, want 2", len(perms.order))
	}
}

func TestTracker_ForegroundDenied(t *testing.T) {
	perms := &fakePerms{foreground: false}
	source := &fakeSource{}
	tr := New(pairedStore(t), nil, source, perms, nil)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error on denial: %v", err)
	}

	if tr.Registered() {
		t.Error("task registered despite foreground denial")
	}
	// Background must not even be requested.
	if len(perms.order) != 1 {
		t.Errorf("permission prompts = %v, background requested after foreground denial", perms.order)
	}
}

func TestTracker_BackgroundDenied(t *testing.T) {
	perms := &fakePerms{foreground: true, background: false}
	source := &fakeSource{}
	tr := New(pairedStore(t), nil, source, perms, nil)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error on denial: %v", err)
	}
	if tr.Registered() {
		t.Error("task registered despite background denial")
	}
	if source.startCount() != 0 {
		t.Error("source started despite background denial")
	}
}

func TestTracker_SourceFailureLeavesUnregistered(t *testing.T) {
	perms := &fakePerms{foreground: true, background: true}
	tr := New(pairedStore(t), nil, &fakeSource{failing: true}, perms, nil)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start surfaced scheduler failure: %v", err)
	}
	if tr.Registered() {
		t.Error("Registered = true after scheduler rejection")
	}
}

func TestTracker_StopWhenIdle(t *testing.T) {
	source := &fakeSource{}
	tr := New(pairedStore(t), nil, source, &fakePerms{}, nil)

	if err := tr.Stop(); err != nil {
		t.Fatalf("Stop when idle failed: %v", err)
	}
	if source.stops != 0 {
		t.Error("source stopped without a prior start")
	}
}

func TestTracker_StopUnregisters(t *testing.T) {
	perms := &fakePerms{foreground: true, background: true}
	source := &fakeSource{}
	tr := New(pairedStore(t), nil, source, perms, nil)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := tr.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if tr.Registered() {
		t.Error("Registered = true after Stop")
	}
	if source.stops != 1 {
		t.Errorf("source stops = %d, want 1", source.stops)
	}
}

func TestTracker_BatchUsesLastSample(t *testing.T) {
	perms := &fakePerms{foreground: true, background: true}
	source := &fakeSource{}
	remote := &fakeLocationRemote{}
	tr := New(pairedStore(t), remote, source, perms, nil)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	now := time.Now().UTC()
	source.deliver([]Sample{
		{Latitude: 1, Longitude: 1, Timestamp: now.Add(-2 * time.Minute)},
		{Latitude: 2, Longitude: 2, Timestamp: now.Add(-time.Minute)},
		{Latitude: 3, Longitude: 3, Timestamp: now},
	})

	if len(remote.logged) != 1 {
		t.Fatalf("logged = %d entries, want 1", len(remote.logged))
	}
	entry := remote.logged[0]
	if entry.Latitude != 3 || entry.Longitude != 3 {
		t.Errorf("logged position = (%v, %v), want newest sample (3, 3)", entry.Latitude, entry.Longitude)
	}
	if entry.PatientID != "pat-1" || entry.HouseholdID != "hh-1" {
		t.Errorf("identity = (%q, %q), want session identity", entry.PatientID, entry.HouseholdID)
	}
	if entry.ID == "" {
		t.Error("entry ID not assigned")
	}
}

func TestTracker_RemoteFailureFallsBackToQueue(t *testing.T) {
	store := pairedStore(t)
	perms := &fakePerms{foreground: true, background: true}
	source := &fakeSource{}
	tr := New(store, &fakeLocationRemote{fail: true}, source, perms, nil)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	source.deliver([]Sample{{Latitude: 40.7, Longitude: -74.0, Timestamp: time.Now().UTC()}})

	logs, err := store.PendingLocationLogs()
	if err != nil {
		t.Fatalf("PendingLocationLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("queued logs = %d, want 1", len(logs))
	}
	if logs[0].Latitude != 40.7 {
		t.Errorf("queued latitude = %v", logs[0].Latitude)
	}
}

func TestTracker_UnpairedSampleDropped(t *testing.T) {
	store := newTestStore(t)
	perms := &fakePerms{foreground: true, background: true}
	source := &fakeSource{}
	remote := &fakeLocationRemote{}
	tr := New(store, remote, source, perms, nil)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	source.deliver([]Sample{{Latitude: 1, Longitude: 1, Timestamp: time.Now().UTC()}})

	if len(remote.logged) != 0 {
		t.Error("sample attributed without a paired session")
	}
	logs, _ := store.PendingLocationLogs()
	if len(logs) != 0 {
		t.Error("sample queued without a paired session")
	}
}

func TestTracker_EmptyBatchIgnored(t *testing.T) {
	perms := &fakePerms{foreground: true, background: true}
	source := &fakeSource{}
	remote := &fakeLocationRemote{}
	tr := New(pairedStore(t), remote, source, perms, nil)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	source.deliver(nil)
	if len(remote.logged) != 0 {
		t.Error("empty batch produced a log entry")
	}
}
