package tether

import "time"

// PendingCompletion records a task completion that has not reached Hearth yet.
// Identity is (TaskID, Date); enqueueing a duplicate identity is a no-op.
type PendingCompletion struct {
	TaskID      string    `json:"task_id"`
	HouseholdID string    `json:"household_id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	CompletedAt time.Time `json:"completed_at"`
}

// AlertType classifies a safety alert.
type AlertType string

const (
	AlertLeftSafeZone  AlertType = "left_safe_zone"
	AlertInactive      AlertType = "inactive"
	AlertNightMovement AlertType = "night_movement"
	AlertTakeMeHome    AlertType = "take_me_home_tapped"
	AlertSOS           AlertType = "sos_triggered"
)

// ValidAlertTypes returns all recognized alert types.
func ValidAlertTypes() []AlertType {
	return []AlertType{
		AlertLeftSafeZone,
		AlertInactive,
		AlertNightMovement,
		AlertTakeMeHome,
		AlertSOS,
	}
}

// IsValid checks whether the alert type is recognized.
func (t AlertType) IsValid() bool {
	for _, valid := range ValidAlertTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// PendingAlert records a safety alert that has not reached Hearth yet.
// Alerts carry no identity and are never deduplicated: dropping a duplicate
// safety alert is worse than delivering it twice.
type PendingAlert struct {
	HouseholdID string    `json:"household_id"`
	Type        AlertType `json:"type"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// PendingLocationLog records a position sample that has not reached Hearth
// yet. The queue holding these is capped at MaxPendingLocationLogs; the
// oldest entries are evicted first.
type PendingLocationLog struct {
	ID          string    `json:"id"` // ULID, time-ordered
	PatientID   string    `json:"patient_id"`
	HouseholdID string    `json:"household_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Accuracy    *float64  `json:"accuracy,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// PendingCheckin is the single-slot pending daily check-in. Only "today's"
// check-in is ever pending, so a new enqueue overwrites the previous one.
type PendingCheckin struct {
	HouseholdID  string    `json:"household_id"`
	Date         string    `json:"date"`          // YYYY-MM-DD
	Mood         int       `json:"mood"`          // 1-5
	SleepQuality int       `json:"sleep_quality"` // 1-3
	VoiceNoteURL string    `json:"voice_note_url,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// CarePlanTask is a cached read-side task from the household care plan.
type CarePlanTask struct {
	ID          string `json:"id"`
	HouseholdID string `json:"household_id"`
	Title       string `json:"title"`
	TimeOfDay   string `json:"time_of_day,omitempty"`
	Recurring   bool   `json:"recurring"`
}

// TaskCompletion is a cached read-side completion record.
type TaskCompletion struct {
	TaskID      string    `json:"task_id"`
	Date        string    `json:"date"`
	CompletedAt time.Time `json:"completed_at"`
}

// BrainActivity is a cached read-side cognitive activity for the day.
type BrainActivity struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

// DayPlan bundles the read-side entities fetched (and cached) per date.
type DayPlan struct {
	Date        string           `json:"date"`
	Tasks       []CarePlanTask   `json:"tasks"`
	Completions []TaskCompletion `json:"completions"`
	Activity    *BrainActivity   `json:"activity,omitempty"`
}

// Session identifies the paired patient device. It is persisted in the
// durable store so detached execution contexts (the background location
// task) can resolve identity without in-memory application state.
type Session struct {
	DeviceID    string    `json:"device_id"`
	PatientID   string    `json:"patient_id"`
	HouseholdID string    `json:"household_id"`
	PairedAt    time.Time `json:"paired_at"`
}

// AppState mirrors the mobile application lifecycle states that drive the
// reconciliation and heartbeat triggers.
type AppState string

const (
	AppStateActive     AppState = "active"
	AppStateInactive   AppState = "inactive"
	AppStateBackground AppState = "background"
)

// NetworkStatus is the connectivity snapshot reported by the monitor.
// A reconciliation pass fires only when both flags are true.
type NetworkStatus struct {
	Connected         bool `json:"connected"`
	InternetReachable bool `json:"internet_reachable"`
}

// Online reports whether the device can usefully attempt remote writes.
func (s NetworkStatus) Online() bool {
	return s.Connected && s.InternetReachable
}

// CheckinParams carries a daily check-in submission.
type CheckinParams struct {
	Date         string
	Mood         int
	SleepQuality int
	VoiceNoteURL string
}

// StoreStats summarizes local persistence state for introspection.
type StoreStats struct {
	PendingCompletions  int       `json:"pending_completions"`
	PendingAlerts       int       `json:"pending_alerts"`
	PendingLocationLogs int       `json:"pending_location_logs"`
	CheckinPending      bool      `json:"checkin_pending"`
	LastReconcile       time.Time `json:"last_reconcile"`
	SchemaVersion       string    `json:"schema_version"`
}

// Check-in bounds.
const (
	MoodMin         = 1
	MoodMax         = 5
	SleepQualityMin = 1
	SleepQualityMax = 3
)

// MaxPendingLocationLogs bounds the location-log queue. A background task
// sampling every 5 minutes across a multi-day offline stretch would grow
// without bound otherwise.
const MaxPendingLocationLogs = 100
