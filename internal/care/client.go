// Package care implements the Hearth backend API client. It satisfies
// tether.Remote; all idempotency guarantees the reconciler relies on
// (completion dedup per task/date, check-in upsert per household/date) are
// enforced server-side by Hearth.
package care

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hearthlink/tether"
)

// HTTPClient implements tether.Remote against Hearth over HTTP.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	deviceID   string
	httpClient *http.Client
}

// NewHTTPClient creates a Hearth client. deviceID is optional; when
// non-empty it is sent as X-Tether-Device-ID for observability.
func NewHTTPClient(hearthURL, apiKey, deviceID string) *HTTPClient {
	return &HTTPClient{
		baseURL:  strings.TrimSuffix(hearthURL, "/"),
		apiKey:   apiKey,
		deviceID: deviceID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient sets a custom http.Client (for testing or custom timeouts).
func (c *HTTPClient) WithHTTPClient(client *http.Client) *HTTPClient {
	c.httpClient = client
	return c
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "tether-client/1.0")
	if strings.TrimSpace(c.deviceID) != "" {
		req.Header.Set("X-Tether-Device-ID", c.deviceID)
	}
}

func newRemoteError(op string, statusCode int, body []byte) *tether.RemoteError {
	msg := ""
	if len(body) > 0 && statusCode >= 400 {
		if len(body) > 200 {
			msg = string(body[:200]) + "..."
		} else {
			msg = string(body)
		}
	}
	return &tether.RemoteError{
		Operation:  op,
		StatusCode: statusCode,
		Err:        fmt.Errorf("HTTP %d: %s", statusCode, msg),
	}
}

// do sends a JSON request and discards the response body on success.
// Accepts any 2xx status; Hearth returns 200 for idempotent replays and 201
// for first writes.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &tether.RemoteError{Operation: op, Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &tether.RemoteError{Operation: op, Err: err}
	}
	c.setHeaders(req)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &tether.RemoteError{Operation: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return newRemoteError(op, resp.StatusCode, respBody)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// CompleteTask implements tether.Remote.
func (c *HTTPClient) CompleteTask(ctx context.Context, taskID, householdID, date string) error {
	path := "/api/v1/households/" + url.PathEscape(householdID) + "/completions"
	return c.do(ctx, "complete_task", http.MethodPost, path, CompleteTaskRequest{
		TaskID: taskID,
		Date:   date,
	})
}

// CreateLocationAlert implements tether.Remote.
func (c *HTTPClient) CreateLocationAlert(ctx context.Context, alert tether.PendingAlert) error {
	path := "/api/v1/households/" + url.PathEscape(alert.HouseholdID) + "/alerts"
	return c.do(ctx, "create_alert", http.MethodPost, path, AlertRequest{
		Type:        string(alert.Type),
		Latitude:    alert.Latitude,
		Longitude:   alert.Longitude,
		TriggeredAt: alert.TriggeredAt.UTC().Format(time.RFC3339),
	})
}

// LogLocation implements tether.Remote.
func (c *HTTPClient) LogLocation(ctx context.Context, log tether.PendingLocationLog) error {
	path := "/api/v1/households/" + url.PathEscape(log.HouseholdID) + "/locations"
	return c.do(ctx, "log_location", http.MethodPost, path, LocationRequest{
		SampleID:  log.ID,
		PatientID: log.PatientID,
		Latitude:  log.Latitude,
		Longitude: log.Longitude,
		Accuracy:  log.Accuracy,
		Source:    "background",
		Timestamp: log.Timestamp.UTC().Format(time.RFC3339),
	})
}

// UpsertCheckin implements tether.Remote.
func (c *HTTPClient) UpsertCheckin(ctx context.Context, checkin tether.PendingCheckin) error {
	path := "/api/v1/households/" + url.PathEscape(checkin.HouseholdID) +
		"/checkins/" + url.PathEscape(checkin.Date)
	return c.do(ctx, "upsert_checkin", http.MethodPut, path, CheckinRequest{
		Mood:         checkin.Mood,
		SleepQuality: checkin.SleepQuality,
		VoiceNoteURL: checkin.VoiceNoteURL,
		SubmittedAt:  checkin.SubmittedAt.UTC().Format(time.RFC3339),
	})
}

// Heartbeat implements tether.Remote.
func (c *HTTPClient) Heartbeat(ctx context.Context, patientID string, at time.Time) error {
	path := "/api/v1/patients/" + url.PathEscape(patientID) + "/heartbeat"
	return c.do(ctx, "heartbeat", http.MethodPut, path, HeartbeatRequest{
		At: at.UTC().Format(time.RFC3339),
	})
}

// FetchDayPlan implements tether.Remote.
func (c *HTTPClient) FetchDayPlan(ctx context.Context, householdID, date string) (*tether.DayPlan, error) {
	path := "/api/v1/households/" + url.PathEscape(householdID) + "/plan/" + url.PathEscape(date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &tether.RemoteError{Operation: "fetch_day_plan", Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &tether.RemoteError{Operation: "fetch_day_plan", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, newRemoteError("fetch_day_plan", resp.StatusCode, respBody)
	}

	var payload DayPlanResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &tether.RemoteError{Operation: "fetch_day_plan", Err: err}
	}

	return dayPlanFromResponse(householdID, &payload), nil
}

// Ping implements tether.Remote.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/ping", nil)
	if err != nil {
		return &tether.RemoteError{Operation: "ping", Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &tether.RemoteError{Operation: "ping", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return newRemoteError("ping", resp.StatusCode, respBody)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func dayPlanFromResponse(householdID string, payload *DayPlanResponse) *tether.DayPlan {
	plan := &tether.DayPlan{Date: payload.Date}

	for _, task := range payload.Tasks {
		plan.Tasks = append(plan.Tasks, tether.CarePlanTask{
			ID:          task.ID,
			HouseholdID: householdID,
			Title:       task.Title,
			TimeOfDay:   task.TimeOfDay,
			Recurring:   task.Recurring,
		})
	}

	for _, completion := range payload.Completions {
		completedAt, _ := time.Parse(time.RFC3339, completion.CompletedAt)
		plan.Completions = append(plan.Completions, tether.TaskCompletion{
			TaskID:      completion.TaskID,
			Date:        completion.Date,
			CompletedAt: completedAt,
		})
	}

	if payload.Activity != nil {
		plan.Activity = &tether.BrainActivity{
			ID:    payload.Activity.ID,
			Kind:  payload.Activity.Kind,
			Title: payload.Activity.Title,
		}
	}

	return plan
}
