package tether

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// sessionLoadTimeout bounds the startup session read. A hung storage layer
// must degrade to "not paired", never a hung launch.
const sessionLoadTimeout = 5 * time.Second

// SaveSession persists the paired-device session. A zero DeviceID is minted
// here so pairing callers only supply the identities Hearth assigned.
func (s *Store) SaveSession(session Session) (*Session, error) {
	if session.DeviceID == "" {
		session.DeviceID = uuid.NewString()
	}
	if session.PairedAt.IsZero() {
		session.PairedAt = time.Now().UTC()
	}
	if err := s.writeJSON(keySession, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ReadSession reads the persisted session directly. Returns ErrNotPaired if
// no session exists. The background location task uses this path because it
// may run in a detached execution context with no in-memory state.
func (s *Store) ReadSession() (*Session, error) {
	var session Session
	if err := s.readJSON(keySession, &session); err != nil {
		return nil, err
	}
	if session.HouseholdID == "" {
		return nil, ErrNotPaired
	}
	return &session, nil
}

// ClearSession removes the persisted session (unpairing).
func (s *Store) ClearSession() error {
	return s.Delete(keySession)
}

// LoadSession races the session read against a fixed timeout and the
// caller's context. Timeout is treated as "not paired" by callers: the one
// place in the subsystem where a failure propagates, and it propagates as a
// fail-safe logged-out state rather than a hang.
func LoadSession(ctx context.Context, store *Store) (*Session, error) {
	return loadSession(ctx, store, sessionLoadTimeout)
}

func loadSession(ctx context.Context, store *Store, timeout time.Duration) (*Session, error) {
	type result struct {
		session *Session
		err     error
	}

	ch := make(chan result, 1)
	go func() {
		session, err := store.ReadSession()
		ch <- result{session, err}
	}()

	select {
	case r := <-ch:
		if errors.Is(r.err, ErrNotFound) {
			return nil, ErrNotPaired
		}
		return r.session, r.err
	case <-time.After(timeout):
		return nil, ErrSessionTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
