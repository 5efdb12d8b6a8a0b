package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskdash/internal/model"
)

// DefaultBaseURL matches the backend's development default.
const DefaultBaseURL = "http://localhost:8000"

// ErrNotFound is returned for 404 responses, which callers treat as
// "absent" rather than as failures (e.g. no saved dashboard state yet).
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Body)
}

// Client talks to the task tracker's REST backend. All methods take a
// context; none retry. The zero value is not usable, call New.
type Client struct {
	base string
	http *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// FetchTasks loads the task tree. The response shape (grouped or flat) is
// decided by model.DecodePayload.
func (c *Client) FetchTasks(ctx context.Context) (model.TasksPayload, error) {
	return c.fetchPayload(ctx, "/tasks")
}

// FetchRecurring loads today's recurring tasks, grouped by area.
func (c *Client) FetchRecurring(ctx context.Context) (model.TasksPayload, error) {
	return c.fetchPayload(ctx, "/recurring")
}

func (c *Client) fetchPayload(ctx context.Context, path string) (model.TasksPayload, error) {
	data, err := c.get(ctx, path)
	if err != nil {
		return model.TasksPayload{}, err
	}
	p, err := model.DecodePayload(data)
	if err != nil {
		return model.TasksPayload{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return p, nil
}

func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/tasks/create", req)
	return err
}

func (c *Client) UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) error {
	_, err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), req)
	return err
}

// CheckTask marks an ordinary task complete.
func (c *Client) CheckTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, "/tasks/check", map[string]string{"task_id": id})
	return err
}

// CheckRecurring records today's status for a recurring task. Status is
// one of "completed", "missed", "deferred".
func (c *Client) CheckRecurring(ctx context.Context, id, status string) error {
	body := map[string]string{"task_id": id, "status": status}
	_, err := c.do(ctx, http.MethodPost, "/recurring/check", body)
	return err
}

// ArchiveCompleted moves every completed task out of the active file.
func (c *Client) ArchiveCompleted(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/tasks/archive", nil)
	return err
}

func (c *Client) FetchStatistics(ctx context.Context) (Statistics, error) {
	var s Statistics
	err := c.getJSON(ctx, "/statistics", &s)
	return s, err
}

func (c *Client) FetchTimeSeries(ctx context.Context) ([]TimeSeriesPoint, error) {
	var pts []TimeSeriesPoint
	err := c.getJSON(ctx, "/statistics/time-series", &pts)
	return pts, err
}

func (c *Client) FetchListNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.getJSON(ctx, "/lists", &names)
	return names, err
}

func (c *Client) FetchList(ctx context.Context, name string) (List, error) {
	var l List
	err := c.getJSON(ctx, "/lists/"+url.PathEscape(name), &l)
	return l, err
}

func (c *Client) ToggleListItem(ctx context.Context, name, item string) error {
	path := "/lists/" + url.PathEscape(name) + "/toggle"
	_, err := c.do(ctx, http.MethodPost, path, map[string]string{"item": item})
	return err
}

// ResetList unchecks every item on the named list.
func (c *Client) ResetList(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodPost, "/lists/"+url.PathEscape(name)+"/reset", nil)
	return err
}

func (c *Client) FetchGoalNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.getJSON(ctx, "/goals", &names)
	return names, err
}

func (c *Client) FetchGoals(ctx context.Context, name string) (List, error) {
	var l List
	err := c.getJSON(ctx, "/goals/"+url.PathEscape(name), &l)
	return l, err
}

func (c *Client) ToggleGoal(ctx context.Context, name, item string) error {
	path := "/goals/" + url.PathEscape(name) + "/toggle"
	_, err := c.do(ctx, http.MethodPost, path, map[string]string{"item": item})
	return err
}

// FetchFile reads a raw backing file. Kind is "tasks", "recurring",
// "lists/{name}" or "goals/{name}".
func (c *Client) FetchFile(ctx context.Context, kind string) (FileContent, error) {
	var f FileContent
	err := c.getJSON(ctx, "/files/"+kind, &f)
	return f, err
}

// SaveFile writes a raw backing file wholesale.
func (c *Client) SaveFile(ctx context.Context, kind, content string) error {
	body := map[string]string{"content": content}
	_, err := c.do(ctx, http.MethodPut, "/files/"+kind, body)
	return err
}

// FetchState returns the persisted dashboard state as raw JSON. The state
// package owns decoding and shape validation.
func (c *Client) FetchState(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/state")
}

// SaveState stores a full dashboard state snapshot.
func (c *Client) SaveState(ctx context.Context, state any) error {
	_, err := c.do(ctx, http.MethodPost, "/state", state)
	return err
}

// DeleteState clears the persisted dashboard state.
func (c *Client) DeleteState(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/state", nil)
	return err
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}
