package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdash/internal/api"
	"taskdash/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.New(srv.URL, 5*time.Second)
}

func TestFetchTasksGrouped(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/tasks", r.URL.Path)
		w.Write([]byte(`[{"type":"group","title":"Inbox","tasks":[{"id":"1","description":"a"}]}]`))
	}))

	p, err := c.FetchTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.KindGrouped, p.Kind)
	require.Len(t, p.Groups, 1)
	assert.Equal(t, "Inbox", p.Groups[0].Title)
}

func TestFetchRecurringFlat(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/recurring", r.URL.Path)
		w.Write([]byte(`[{"id":"r1","description":"stretch","recurring":"daily"}]`))
	}))

	p, err := c.FetchRecurring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.KindFlat, p.Kind)
	require.Len(t, p.Tasks, 1)
	assert.Equal(t, "daily", p.Tasks[0].Recurring)
}

func TestCreateTaskOmitsEmptyOptionals(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tasks/create", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	err := c.CreateTask(context.Background(), api.CreateTaskRequest{
		Area:        "Work",
		Description: "write report",
	})
	require.NoError(t, err)

	// Only the two required fields go over the wire; absent optionals must
	// not arrive as placeholder strings.
	assert.Equal(t, map[string]any{"area": "Work", "description": "write report"}, got)
}

func TestUpdateTaskPathAndBody(t *testing.T) {
	var got api.UpdateTaskRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/tasks/task-42", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))

	err := c.UpdateTask(context.Background(), "task-42", api.UpdateTaskRequest{
		Area:        "Work",
		Description: "updated",
		Completed:   true,
		DueDate:     "2025-06-24",
	})
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "2025-06-24", got.DueDate)
}

func TestCheckEndpoints(t *testing.T) {
	type call struct {
		path string
		body map[string]string
	}
	var calls []call
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.URL.Path, body})
	}))

	require.NoError(t, c.CheckTask(context.Background(), "t1"))
	require.NoError(t, c.CheckRecurring(context.Background(), "r1", "missed"))

	require.Len(t, calls, 2)
	assert.Equal(t, call{"/tasks/check", map[string]string{"task_id": "t1"}}, calls[0])
	assert.Equal(t, call{"/recurring/check", map[string]string{"task_id": "r1", "status": "missed"}}, calls[1])
}

func TestListAndGoalRoutes(t *testing.T) {
	var paths []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/lists":
			w.Write([]byte(`["groceries","packing"]`))
		case "/lists/groceries":
			w.Write([]byte(`{"name":"groceries","items":[{"text":"milk","checked":true}]}`))
		default:
			w.Write([]byte(`{}`))
		}
	}))

	ctx := context.Background()
	names, err := c.FetchListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"groceries", "packing"}, names)

	l, err := c.FetchList(ctx, "groceries")
	require.NoError(t, err)
	require.Len(t, l.Items, 1)
	assert.True(t, l.Items[0].Checked)

	require.NoError(t, c.ToggleListItem(ctx, "groceries", "milk"))
	require.NoError(t, c.ResetList(ctx, "groceries"))
	require.NoError(t, c.ToggleGoal(ctx, "2026", "run more"))

	assert.Equal(t, []string{
		"GET /lists",
		"GET /lists/groceries",
		"POST /lists/groceries/toggle",
		"POST /lists/groceries/reset",
		"POST /goals/2026/toggle",
	}, paths)
}

func TestStateRoundTrip(t *testing.T) {
	var saved []byte
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/state", r.URL.Path)
		switch r.Method {
		case http.MethodPost:
			buf, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			saved = buf
		case http.MethodGet:
			if saved == nil {
				http.NotFound(w, r)
				return
			}
			w.Write(saved)
		}
	}))

	ctx := context.Background()
	_, err := c.FetchState(ctx)
	assert.ErrorIs(t, err, api.ErrNotFound)

	require.NoError(t, c.SaveState(ctx, map[string]any{"sortBy": "due"}))
	data, err := c.FetchState(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sortBy":"due"}`, string(data))
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	err := c.ArchiveCompleted(context.Background())
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Contains(t, se.Error(), "boom")
}

func TestFilesRoutes(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/files/tasks":
			w.Write([]byte(`{"content":"x Do it","path":"/data/tasks.txt"}`))
		case r.Method == http.MethodPut && r.URL.Path == "/files/lists/groceries":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))

	ctx := context.Background()
	f, err := c.FetchFile(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, "/data/tasks.txt", f.Path)

	require.NoError(t, c.SaveFile(ctx, "lists/groceries", "milk\neggs"))
}
