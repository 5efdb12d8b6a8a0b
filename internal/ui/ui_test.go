package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdash/internal/config"
	"taskdash/internal/model"
	"taskdash/internal/render"
	"taskdash/internal/state"
)

type nullRemote struct{}

func (nullRemote) FetchState(ctx context.Context) ([]byte, error) {
	return nil, errors.New("down")
}

func (nullRemote) SaveState(ctx context.Context, snapshot any) error { return nil }

func (nullRemote) DeleteState(ctx context.Context) error { return nil }

func newTestModel(t *testing.T) Model {
	t.Helper()
	store := state.NewStore(nullRemote{}, nil, time.Hour)
	store.SetLogf(func(string, ...any) {})
	return Model{
		store:  store,
		cfg:    config.Default(),
		st:     store.Load(context.Background()),
		cursor: map[panel]int{},
		input:  textinput.New(),
	}
}

func loadTasks(t *testing.T, m Model, tasks []model.Task) Model {
	t.Helper()
	updated, _ := m.updateData(tasksLoadedMsg{payload: model.TasksPayload{Kind: model.KindFlat, Tasks: tasks}})
	return updated.(Model)
}

func editingIDs(rows []render.Row) []string {
	var ids []string
	for _, r := range rows {
		if r.Editing {
			ids = append(ids, r.Task.ID)
		}
	}
	return ids
}

func TestEditIsSingleFlight(t *testing.T) {
	m := newTestModel(t)
	m = loadTasks(t, m, []model.Task{
		{ID: "a", Description: "first", Area: "Work"},
		{ID: "b", Description: "second", Area: "Work"},
	})

	// Edit task a.
	m.cursor[panelTasks] = 0
	next, _ := m.updateDashMode(m.cfg.Keys.Edit)
	m = next.(Model)
	require.Equal(t, "a", m.st.FormStates.EditingTaskID)
	assert.Equal(t, []string{"a"}, editingIDs(m.rows))

	// Opening edit on b closes a implicitly: just an id replacement.
	m.mode = modeDash
	m.cursor[panelTasks] = 1
	next, _ = m.updateDashMode(m.cfg.Keys.Edit)
	m = next.(Model)
	require.Equal(t, "b", m.st.FormStates.EditingTaskID)
	assert.Equal(t, []string{"b"}, editingIDs(m.rows), "exactly one task in edit mode")
}

func TestEditFormSeededFromTask(t *testing.T) {
	m := newTestModel(t)
	m = loadTasks(t, m, []model.Task{
		{ID: "a", Description: "write report", Area: "Work", Priority: "A", DueDate: "2025-06-24"},
	})

	next, _ := m.updateDashMode(m.cfg.Keys.Edit)
	m = next.(Model)
	require.NotNil(t, m.form)
	assert.Equal(t, formEdit, m.form.kind)
	assert.Equal(t, "write report", m.form.value("description"))
	assert.Equal(t, "A", m.form.value("priority"))
	assert.Equal(t, "2025-06-24", m.form.value("due"))
}

func TestCancelFormClearsSharedID(t *testing.T) {
	m := newTestModel(t)
	m = loadTasks(t, m, []model.Task{{ID: "a", Description: "x", Area: "Work"}})

	next, _ := m.updateDashMode(m.cfg.Keys.Edit)
	m = next.(Model)
	require.Equal(t, modeForm, m.mode)

	next, _ = m.updateFormMode("esc", tea.KeyMsg{})
	m = next.(Model)
	assert.Equal(t, modeDash, m.mode)
	assert.Equal(t, "", m.st.FormStates.EditingTaskID)
	assert.Empty(t, editingIDs(m.rows))
}

func TestCreateValidationBlocksSubmit(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.updateDashMode(m.cfg.Keys.Create)
	m = next.(Model)
	require.NotNil(t, m.form)
	assert.True(t, m.st.FormStates.IsCreateTaskExpanded)

	// Jump to the last field with everything blank and submit.
	m.form.index = len(m.form.fields) - 1
	next, cmd := m.updateFormMode("enter", tea.KeyMsg{})
	m = next.(Model)
	assert.Nil(t, cmd, "no network call before validation passes")
	assert.Equal(t, modeForm, m.mode, "form stays open")
	assert.Equal(t, "Description cannot be empty", m.status)
}

func TestAddSubtaskTracksParentID(t *testing.T) {
	m := newTestModel(t)
	m = loadTasks(t, m, []model.Task{{ID: "p1", Description: "parent", Area: "Work"}})

	next, _ := m.updateDashMode(m.cfg.Keys.AddSubtask)
	m = next.(Model)
	require.NotNil(t, m.form)
	assert.Equal(t, formAddSubtask, m.form.kind)
	assert.Equal(t, "p1", m.form.taskID)
	assert.Equal(t, "p1", m.st.FormStates.AddingSubtaskToID)

	// The flattened rows mark the receiving task.
	var adding []string
	for _, r := range m.rows {
		if r.AddingSubtask {
			adding = append(adding, r.Task.ID)
		}
	}
	assert.Equal(t, []string{"p1"}, adding)
}

func TestRecurStatusIgnoredOutsideRecurringPanel(t *testing.T) {
	m := newTestModel(t)
	m = loadTasks(t, m, []model.Task{{ID: "a", Description: "x"}})

	m.focus = panelTasks
	_, cmd := m.updateDashMode(m.cfg.Keys.RecurDone)
	assert.Nil(t, cmd)
}

func TestRecurStatusInRecurringPanel(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.updateData(recurringLoadedMsg{payload: model.TasksPayload{
		Kind:  model.KindFlat,
		Tasks: []model.Task{{ID: "r1", Description: "stretch"}},
	}})
	m = updated.(Model)
	m.focus = panelRecurring

	_, cmd := m.updateDashMode(m.cfg.Keys.RecurMissed)
	assert.NotNil(t, cmd, "recurring status keys act in the recurring panel")
}

func TestMutationErrorSurfacesInStatus(t *testing.T) {
	m := newTestModel(t)
	updated, cmd := m.updateData(mutationDoneMsg{action: "check", refetch: refetchTasks, err: errors.New("connection refused")})
	m = updated.(Model)
	assert.Nil(t, cmd, "no refetch after a failed write")
	assert.Contains(t, m.status, "check failed")
}

func TestMutationSuccessTriggersRefetch(t *testing.T) {
	m := newTestModel(t)
	m.client = nil // the returned command closes over the client lazily
	updated, cmd := m.updateData(mutationDoneMsg{action: "check", refetch: refetchTasks})
	m = updated.(Model)
	assert.NotNil(t, cmd, "successful write refetches")
	assert.True(t, m.loadingTasks)
}

func TestLoadErrorKeepsDashboardUsable(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.updateData(tasksLoadedMsg{err: errors.New("connection refused")})
	m = updated.(Model)
	assert.Contains(t, m.errMsg, "tasks load failed")

	// A later successful load clears the banner.
	m = loadTasks(t, m, []model.Task{{ID: "a", Description: "x"}})
	assert.Empty(t, m.errMsg)
	assert.Len(t, m.rows, 1)
}

func TestSortAndTypeCycles(t *testing.T) {
	assert.Equal(t, "due", nextSort("priority"))
	assert.Equal(t, "none", nextSort("due"))
	assert.Equal(t, "priority", nextSort("none"))

	assert.Equal(t, "tasks", nextTaskType("all"))
	assert.Equal(t, "onhold", nextTaskType("tasks"))
	assert.Equal(t, "all", nextTaskType("onhold"))

	assert.Equal(t, "pending", nextRecurringFilter("all"))
	assert.Equal(t, "completed", nextRecurringFilter("pending"))
	assert.Equal(t, "all", nextRecurringFilter("completed"))
}

func TestFormNavigationWraps(t *testing.T) {
	f := newCreateForm()
	n := len(f.fields)
	for i := 0; i < n; i++ {
		f.next()
	}
	assert.Equal(t, 0, f.index, "next wraps around")
	f.prev()
	assert.Equal(t, n-1, f.index, "prev wraps around")
	assert.True(t, f.atLast())
}

func TestClampCursor(t *testing.T) {
	assert.Equal(t, 0, clampCursor(-1, 5))
	assert.Equal(t, 4, clampCursor(9, 5))
	assert.Equal(t, 0, clampCursor(3, 0))
	assert.Equal(t, 2, clampCursor(2, 5))
}
