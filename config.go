package tether

import (
	"os"
	"path/filepath"
	"time"
)

// Config configures the tether client.
type Config struct {
	// LocalPath is the path to the local SQLite database.
	LocalPath string

	// HearthURL is the base URL of the Hearth backend. If empty, the client
	// operates offline-only: every write lands in a queue.
	HearthURL string

	// APIKey authenticates with Hearth.
	APIKey string

	// HeartbeatInterval is how often the liveness timestamp is written while
	// the app is foregrounded. Defaults to 10 minutes.
	HeartbeatInterval time.Duration

	// EmergencyContacts are SMS recipients for the offline fallback, in
	// priority order. The first configured contact is used; if none are
	// configured the region's emergency number is.
	EmergencyContacts []string

	// Region is the ISO country code used to derive an emergency number
	// when no contacts are configured. Defaults to "US".
	Region string

	// Debug enables verbose logging of queue and sync activity.
	Debug bool

	// DebugLogPath is the path for rotated debug logs. Stderr if empty.
	DebugLogPath string
}

// DefaultLocalPath returns the default database location,
// ~/.tether/tether.db, falling back to ./.tether/tether.db when the home
// directory is unavailable.
func DefaultLocalPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, ".tether", "tether.db")
	}
	return filepath.Join(home, ".tether", "tether.db")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LocalPath:         DefaultLocalPath(),
		HeartbeatInterval: 10 * time.Minute,
		Region:            "US",
	}
}

// ConfigFromEnv reads configuration from environment variables.
//
//	TETHER_DB_PATH    → LocalPath
//	HEARTH_URL        → HearthURL
//	HEARTH_API_KEY    → APIKey
//	TETHER_DEBUG      → Debug (any non-empty value enables)
//	TETHER_DEBUG_LOG  → DebugLogPath
func ConfigFromEnv() Config {
	return Config{
		LocalPath:    os.Getenv("TETHER_DB_PATH"),
		HearthURL:    os.Getenv("HEARTH_URL"),
		APIKey:       os.Getenv("HEARTH_API_KEY"),
		Debug:        os.Getenv("TETHER_DEBUG") != "",
		DebugLogPath: os.Getenv("TETHER_DEBUG_LOG"),
	}
}

// WithDefaults fills unset fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()
	if c.LocalPath == "" {
		c.LocalPath = defaults.LocalPath
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if c.Region == "" {
		c.Region = defaults.Region
	}
	return c
}

// Validate checks the configuration for inconsistencies.
func (c Config) Validate() error {
	if c.LocalPath == "" {
		return &ValidationError{Field: "LocalPath", Message: "cannot be empty"}
	}
	if c.HearthURL == "" && c.APIKey != "" {
		return &ValidationError{Field: "HearthURL", Message: "required when APIKey is set"}
	}
	if c.HeartbeatInterval < time.Minute {
		return &ValidationError{Field: "HeartbeatInterval", Message: "must be at least one minute"}
	}
	if len(c.Region) != 2 {
		return &ValidationError{Field: "Region", Message: "must be a two-letter country code"}
	}
	return nil
}
