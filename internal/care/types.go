package care

// CompleteTaskRequest for POST /api/v1/households/{id}/completions
type CompleteTaskRequest struct {
	TaskID string `json:"task_id"`
	Date   string `json:"date"`
}

// AlertRequest for POST /api/v1/households/{id}/alerts
type AlertRequest struct {
	Type        string  `json:"type"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	TriggeredAt string  `json:"triggered_at"`
}

// LocationRequest for POST /api/v1/households/{id}/locations
type LocationRequest struct {
	SampleID  string   `json:"sample_id"`
	PatientID string   `json:"patient_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Source    string   `json:"source,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// CheckinRequest for PUT /api/v1/households/{id}/checkins/{date}
type CheckinRequest struct {
	Mood         int    `json:"mood"`
	SleepQuality int    `json:"sleep_quality"`
	VoiceNoteURL string `json:"voice_note_url,omitempty"`
	SubmittedAt  string `json:"submitted_at"`
}

// HeartbeatRequest for PUT /api/v1/patients/{id}/heartbeat
type HeartbeatRequest struct {
	At string `json:"at"`
}

// DayPlanResponse from GET /api/v1/households/{id}/plan/{date}
type DayPlanResponse struct {
	Date        string              `json:"date"`
	Tasks       []TaskPayload       `json:"tasks"`
	Completions []CompletionPayload `json:"completions"`
	Activity    *ActivityPayload    `json:"activity,omitempty"`
}

// TaskPayload is a care-plan task in the Hearth API format.
type TaskPayload struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	TimeOfDay string `json:"time_of_day,omitempty"`
	Recurring bool   `json:"recurring"`
}

// CompletionPayload is a completion record in the Hearth API format.
type CompletionPayload struct {
	TaskID      string `json:"task_id"`
	Date        string `json:"date"`
	CompletedAt string `json:"completed_at"`
}

// ActivityPayload is the day's cognitive activity in the Hearth API format.
type ActivityPayload struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

// PingResponse from GET /api/v1/ping
type PingResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
