package tether

import (
	"errors"
	"fmt"
)

// Common errors returned by the tether subsystem.
var (
	// ErrNotFound is returned when a key is absent from the local store.
	ErrNotFound = errors.New("key not found")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrNotPaired is returned when an operation requires a paired device
	// and no session exists.
	ErrNotPaired = errors.New("device is not paired")

	// ErrSessionTimeout is returned when the session read does not complete
	// within the auth-initialization deadline. Callers treat it as "not
	// paired" rather than hanging startup.
	ErrSessionTimeout = errors.New("session load timed out")

	// ErrInvalidMood is returned when a check-in mood is out of range [1, 5].
	ErrInvalidMood = errors.New("mood must be between 1 and 5")

	// ErrInvalidSleepQuality is returned when sleep quality is out of range [1, 3].
	ErrInvalidSleepQuality = errors.New("sleep quality must be between 1 and 3")

	// ErrInvalidAlertType is returned when an unrecognized alert type is used.
	ErrInvalidAlertType = errors.New("invalid alert type")

	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
)

// ValidationError is returned when configuration validation fails.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// RemoteError is returned when a Hearth API call fails with details.
// Extractable via errors.As(). Supports Unwrap().
type RemoteError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("hearth: %s failed (status %d): %v", e.Operation, e.StatusCode, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
