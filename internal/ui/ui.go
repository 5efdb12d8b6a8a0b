package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdash/internal/api"
	"taskdash/internal/config"
	"taskdash/internal/model"
	"taskdash/internal/render"
	"taskdash/internal/state"
)

type panel int

const (
	panelTasks panel = iota
	panelRecurring
	panelLists
	panelGoals
	panelCount
)

type mode int

const (
	modeDash mode = iota
	modeForm
	modeRaw
)

type Model struct {
	client *api.Client
	store  *state.Store
	cfg    config.Config

	// Server snapshots. Never mutated locally; every write goes to the
	// backend and is followed by a refetch.
	tasks     model.TasksPayload
	recurring model.TasksPayload
	stats     api.Statistics
	series    []api.TimeSeriesPoint
	listNames []string
	list      api.List
	goalNames []string
	goals     api.List

	st state.DashboardState

	rows          []render.Row
	recurringRows []render.Row

	focus  panel
	cursor map[panel]int
	mode   mode

	form    *formState
	input   textinput.Model
	rawKind string
	raw     textarea.Model

	loadingTasks     bool
	loadingRecurring bool
	spin             spinner.Model

	width  int
	height int
	status string
	errMsg string
}

func Run(client *api.Client, store *state.Store, cfg config.Config) error {
	st := store.Load(context.Background())

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	ta := textarea.New()
	ta.SetWidth(72)
	ta.SetHeight(16)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		client:           client,
		store:            store,
		cfg:              cfg,
		st:               st,
		cursor:           map[panel]int{},
		input:            ti,
		raw:              ta,
		spin:             sp,
		loadingTasks:     true,
		loadingRecurring: true,
		status:           "Loading…",
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	store.Flush()
	return err
}

func (m Model) Init() tea.Cmd {
	// Tasks and recurring load concurrently; there is no join barrier and
	// each panel fills in whenever its response lands.
	cmds := []tea.Cmd{
		m.fetchTasksCmd(),
		m.fetchRecurringCmd(),
		m.fetchStatsCmd(),
		m.fetchListNamesCmd(),
		m.fetchGoalNamesCmd(),
		m.spin.Tick,
	}
	if m.st.ListsState.SelectedList != "" {
		cmds = append(cmds, m.fetchListCmd(m.st.ListsState.SelectedList))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateFormMode(msg.String(), msg)
		case modeRaw:
			return m.updateRawMode(msg.String(), msg)
		}
		return m.updateDashMode(msg.String())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 10
		m.raw.SetWidth(min(msg.Width-4, 100))
		return m, nil
	case spinner.TickMsg:
		if !m.loadingTasks && !m.loadingRecurring {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m.updateData(msg)
}

func (m Model) updateData(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		m.loadingTasks = false
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("tasks load failed: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.tasks = msg.payload
		m.recompute()
		return m, nil
	case recurringLoadedMsg:
		m.loadingRecurring = false
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("recurring load failed: %v", msg.err)
			return m, nil
		}
		m.recurring = msg.payload
		m.recompute()
		return m, nil
	case statsLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("statistics load failed: %v", msg.err)
			return m, nil
		}
		m.stats = msg.stats
		return m, nil
	case timeSeriesLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("time series load failed: %v", msg.err)
			return m, nil
		}
		m.series = msg.points
		return m, nil
	case listNamesLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("lists load failed: %v", msg.err)
			return m, nil
		}
		m.listNames = msg.names
		if m.st.ListsState.SelectedList == "" && len(msg.names) > 0 {
			m.st = m.store.UpdateLists(state.ListsPatch{SelectedList: state.String(msg.names[0])})
			return m, m.fetchListCmd(msg.names[0])
		}
		return m, nil
	case listLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("list load failed: %v", msg.err)
			return m, nil
		}
		m.list = msg.list
		m.clampCursors()
		return m, nil
	case goalNamesLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("goals load failed: %v", msg.err)
			return m, nil
		}
		m.goalNames = msg.names
		if len(msg.names) > 0 {
			return m, m.fetchGoalsCmd(msg.names[0])
		}
		return m, nil
	case goalsLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("goals load failed: %v", msg.err)
			return m, nil
		}
		m.goals = msg.list
		m.clampCursors()
		return m, nil
	case fileLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("file load failed: %v", msg.err)
			return m, nil
		}
		m.rawKind = msg.kind
		m.raw.SetValue(msg.file.Content)
		m.raw.Focus()
		m.mode = modeRaw
		m.status = fmt.Sprintf("Editing %s (ctrl+s save, esc cancel)", msg.file.Path)
		return m, nil
	case mutationDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			return m, nil
		}
		m.status = msg.action + " ok"
		switch msg.refetch {
		case refetchTasks:
			m.loadingTasks = true
			return m, tea.Batch(m.fetchTasksCmd(), m.fetchStatsCmd(), m.spin.Tick)
		case refetchRecurring:
			m.loadingRecurring = true
			return m, tea.Batch(m.fetchRecurringCmd(), m.spin.Tick)
		case refetchList:
			return m, m.fetchListCmd(m.st.ListsState.SelectedList)
		case refetchGoals:
			if len(m.goalNames) > 0 {
				return m, m.fetchGoalsCmd(m.goalNames[0])
			}
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) recompute() {
	m.rows = render.Flatten(m.tasks, render.Options{
		Filters:           m.st.Filters,
		SortBy:            m.st.SortBy,
		TaskTypeFilter:    m.st.TaskTypeFilter,
		EditingTaskID:     m.st.FormStates.EditingTaskID,
		AddingSubtaskToID: m.st.FormStates.AddingSubtaskToID,
	})
	m.recurringRows = render.Flatten(m.recurring, render.Options{
		Filters:         m.st.Filters,
		RecurringFilter: m.st.RecurringFilter,
		Recurring:       true,
	})
	m.clampCursors()
}

func (m *Model) clampCursors() {
	for p := panelTasks; p < panelCount; p++ {
		m.cursor[p] = clampCursor(m.cursor[p], m.panelLen(p))
	}
}

func (m Model) panelLen(p panel) int {
	switch p {
	case panelTasks:
		return len(m.rows)
	case panelRecurring:
		return len(m.recurringRows)
	case panelLists:
		return len(m.list.Items)
	case panelGoals:
		return len(m.goals.Items)
	}
	return 0
}

// selectedTask returns the task row under the cursor in the focused task
// panel, if any.
func (m Model) selectedTask() (render.Row, bool) {
	var rows []render.Row
	switch m.focus {
	case panelTasks:
		rows = m.rows
	case panelRecurring:
		rows = m.recurringRows
	default:
		return render.Row{}, false
	}
	i := m.cursor[m.focus]
	if i < 0 || i >= len(rows) {
		return render.Row{}, false
	}
	r := rows[i]
	if r.Kind != render.RowTask {
		return render.Row{}, false
	}
	return r, true
}

func (m Model) updateDashMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		m.store.Flush()
		return m, tea.Quit

	case m.cfg.Keys.Down, "down":
		if n := m.panelLen(m.focus); n > 0 {
			m.cursor[m.focus] = clampCursor(m.cursor[m.focus]+1, n)
		}
	case m.cfg.Keys.Up, "up":
		if m.cursor[m.focus] > 0 {
			m.cursor[m.focus] = clampCursor(m.cursor[m.focus]-1, m.panelLen(m.focus))
		}
	case m.cfg.Keys.NextPanel:
		m.focus = (m.focus + 1) % panelCount
		m.status = panelName(m.focus)

	case m.cfg.Keys.Refresh:
		m.loadingTasks = true
		m.loadingRecurring = true
		m.status = "Refreshing"
		cmds := []tea.Cmd{m.fetchTasksCmd(), m.fetchRecurringCmd(), m.fetchStatsCmd(), m.fetchListNamesCmd(), m.fetchGoalNamesCmd(), m.spin.Tick}
		if m.st.ListsState.SelectedList != "" {
			cmds = append(cmds, m.fetchListCmd(m.st.ListsState.SelectedList))
		}
		return m, tea.Batch(cmds...)

	case m.cfg.Keys.Check:
		return m.handleCheck()

	case m.cfg.Keys.RecurDone:
		return m.handleRecurStatus("completed")
	case m.cfg.Keys.RecurMissed:
		return m.handleRecurStatus("missed")
	case m.cfg.Keys.RecurDeferred:
		return m.handleRecurStatus("deferred")

	case m.cfg.Keys.Create:
		m.form = newCreateForm()
		m.st = m.store.UpdateForms(state.FormsPatch{IsCreateTaskExpanded: state.Bool(true)})
		m.openFormInput()
		m.status = "New task: enter advances, esc cancels"

	case m.cfg.Keys.Edit:
		r, ok := m.selectedTask()
		if !ok || m.focus != panelTasks {
			m.status = "No task selected"
			return m, nil
		}
		t := r.Task
		m.form = newEditForm(t.ID, map[string]string{
			"area":        t.Area,
			"description": t.Description,
			"priority":    t.Priority,
			"due":         t.DueDate,
			"done":        t.DoneDate,
			"followup":    t.FollowupDate,
			"context":     t.Context,
			"project":     t.Project,
			"recurring":   t.Recurring,
		})
		// Setting the id is what closes any other open edit form.
		m.st = m.store.UpdateForms(state.FormsPatch{EditingTaskID: state.String(t.ID)})
		m.recompute()
		m.openFormInput()
		m.status = "Edit task: enter advances, esc cancels"

	case m.cfg.Keys.AddSubtask:
		r, ok := m.selectedTask()
		if !ok || m.focus != panelTasks {
			m.status = "No task selected"
			return m, nil
		}
		m.form = newAddSubtaskForm(r.Task.ID)
		m.st = m.store.UpdateForms(state.FormsPatch{AddingSubtaskToID: state.String(r.Task.ID)})
		m.recompute()
		m.openFormInput()
		m.status = "Add subtask: enter submits, esc cancels"

	case m.cfg.Keys.Filter:
		f := m.st.Filters
		m.form = newFilterForm(f.Area, f.Context, f.Project)
		m.openFormInput()
		opts := model.CollectFilterOptions(m.tasks, m.recurring)
		m.status = "Filters: blank clears, enter advances, esc cancels"
		if len(opts.Areas) > 0 {
			m.status += " • areas: " + strings.Join(opts.Areas, ", ")
		}

	case m.cfg.Keys.Sort:
		m.st = m.store.UpdateState(state.Patch{SortBy: state.String(nextSort(m.st.SortBy))})
		m.recompute()
		m.status = "Sort: " + m.st.SortBy

	case "t":
		if m.focus == panelRecurring {
			m.st = m.store.UpdateState(state.Patch{RecurringFilter: state.String(nextRecurringFilter(m.st.RecurringFilter))})
			m.recompute()
			m.status = "Recurring filter: " + m.st.RecurringFilter
		} else {
			m.st = m.store.UpdateState(state.Patch{TaskTypeFilter: state.String(nextTaskType(m.st.TaskTypeFilter))})
			m.recompute()
			m.status = "Task type: " + m.st.TaskTypeFilter
		}

	case "S":
		expanded := !m.st.PanelStates.IsStatisticsExpanded
		m.st = m.store.UpdatePanels(state.PanelsPatch{IsStatisticsExpanded: state.Bool(expanded)})
		if expanded {
			return m, m.fetchStatsCmd()
		}
	case "T":
		expanded := !m.st.PanelStates.IsTimeSeriesExpanded
		m.st = m.store.UpdatePanels(state.PanelsPatch{IsTimeSeriesExpanded: state.Bool(expanded)})
		if expanded {
			return m, m.fetchTimeSeriesCmd()
		}
	case "L":
		m.st = m.store.UpdatePanels(state.PanelsPatch{IsListsExpanded: state.Bool(!m.st.PanelStates.IsListsExpanded)})

	case m.cfg.Keys.Archive:
		m.status = "Archiving completed tasks"
		return m, m.mutateCmd("archive", refetchTasks, func(ctx context.Context) error {
			return m.client.ArchiveCompleted(ctx)
		})

	case "]":
		return m.switchList(1)
	case "[":
		return m.switchList(-1)

	case "R":
		if m.focus != panelLists || m.st.ListsState.SelectedList == "" {
			return m, nil
		}
		name := m.st.ListsState.SelectedList
		return m, m.mutateCmd("reset "+name, refetchList, func(ctx context.Context) error {
			return m.client.ResetList(ctx, name)
		})

	case "v":
		kind, ok := m.rawFileKind()
		if !ok {
			m.status = "Nothing to edit here"
			return m, nil
		}
		m.status = "Loading " + kind
		return m, m.fetchFileCmd(kind)

	case "u":
		m.st = m.store.Reset(context.Background())
		m.recompute()
		m.status = "View state reset"
	}
	return m, nil
}

func (m Model) handleCheck() (tea.Model, tea.Cmd) {
	switch m.focus {
	case panelTasks:
		r, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		id := r.Task.ID
		return m, m.mutateCmd("check", refetchTasks, func(ctx context.Context) error {
			return m.client.CheckTask(ctx, id)
		})
	case panelLists:
		i := m.cursor[panelLists]
		if i >= len(m.list.Items) || m.st.ListsState.SelectedList == "" {
			return m, nil
		}
		name, item := m.st.ListsState.SelectedList, m.list.Items[i].Text
		return m, m.mutateCmd("toggle", refetchList, func(ctx context.Context) error {
			return m.client.ToggleListItem(ctx, name, item)
		})
	case panelGoals:
		i := m.cursor[panelGoals]
		if i >= len(m.goals.Items) {
			return m, nil
		}
		name, item := m.goals.Name, m.goals.Items[i].Text
		return m, m.mutateCmd("toggle goal", refetchGoals, func(ctx context.Context) error {
			return m.client.ToggleGoal(ctx, name, item)
		})
	}
	// Recurring tasks have no checkbox; their status goes through the
	// three explicit keys.
	return m, nil
}

func (m Model) handleRecurStatus(status string) (tea.Model, tea.Cmd) {
	if m.focus != panelRecurring {
		return m, nil
	}
	r, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	id := r.Task.ID
	return m, m.mutateCmd(status, refetchRecurring, func(ctx context.Context) error {
		return m.client.CheckRecurring(ctx, id, status)
	})
}

func (m Model) switchList(delta int) (tea.Model, tea.Cmd) {
	if m.focus != panelLists || len(m.listNames) == 0 {
		return m, nil
	}
	cur := 0
	for i, n := range m.listNames {
		if n == m.st.ListsState.SelectedList {
			cur = i
			break
		}
	}
	next := m.listNames[wrapIndex(cur+delta, len(m.listNames))]
	m.st = m.store.UpdateLists(state.ListsPatch{SelectedList: state.String(next)})
	m.cursor[panelLists] = 0
	return m, m.fetchListCmd(next)
}

func (m Model) rawFileKind() (string, bool) {
	switch m.focus {
	case panelTasks:
		return "tasks", true
	case panelRecurring:
		return "recurring", true
	case panelLists:
		if m.st.ListsState.SelectedList == "" {
			return "", false
		}
		return "lists/" + m.st.ListsState.SelectedList, true
	case panelGoals:
		if m.goals.Name == "" {
			return "", false
		}
		return "goals/" + m.goals.Name, true
	}
	return "", false
}

func (m *Model) openFormInput() {
	m.mode = modeForm
	m.input.SetValue(m.form.current().value)
	m.input.Placeholder = m.form.current().label
	m.input.Focus()
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		return m.closeForm("Cancelled"), nil
	case "tab":
		m.form.setCurrent(m.input.Value())
		m.form.next()
		m.openFormInput()
		return m, nil
	case "shift+tab":
		m.form.setCurrent(m.input.Value())
		m.form.prev()
		m.openFormInput()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrent(m.input.Value())
		if m.form.atLast() {
			return m.submitForm()
		}
		m.form.next()
		m.openFormInput()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) closeForm(status string) Model {
	kind := m.form.kind
	m.form = nil
	m.mode = modeDash
	m.input.Blur()
	m.input.SetValue("")
	m.status = status

	switch kind {
	case formCreate:
		m.st = m.store.UpdateForms(state.FormsPatch{IsCreateTaskExpanded: state.Bool(false)})
	case formEdit:
		m.st = m.store.UpdateForms(state.FormsPatch{EditingTaskID: state.String("")})
	case formAddSubtask:
		m.st = m.store.UpdateForms(state.FormsPatch{AddingSubtaskToID: state.String("")})
	}
	m.recompute()
	return m
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	switch f.kind {
	case formCreate, formAddSubtask:
		// Presence checks happen before any network call.
		if strings.TrimSpace(f.value("description")) == "" {
			m.status = "Description cannot be empty"
			m.form.index = indexOf(f, "description")
			m.openFormInput()
			return m, nil
		}
		req := api.CreateTaskRequest{
			Area:        strings.TrimSpace(f.value("area")),
			Description: strings.TrimSpace(f.value("description")),
			Priority:    strings.TrimSpace(f.value("priority")),
			DueDate:     strings.TrimSpace(f.value("due")),
			Context:     strings.TrimSpace(f.value("context")),
			Project:     strings.TrimSpace(f.value("project")),
			Recurring:   strings.TrimSpace(f.value("recurring")),
		}
		action := "create"
		if f.kind == formAddSubtask {
			req.ParentID = f.taskID
			action = "add subtask"
		} else if req.Area == "" {
			m.status = "Area cannot be empty"
			m.form.index = indexOf(f, "area")
			m.openFormInput()
			return m, nil
		}
		next := m.closeForm(action)
		return next, next.mutateCmd(action, refetchTasks, func(ctx context.Context) error {
			return next.client.CreateTask(ctx, req)
		})

	case formEdit:
		if strings.TrimSpace(f.value("description")) == "" {
			m.status = "Description cannot be empty"
			m.form.index = indexOf(f, "description")
			m.openFormInput()
			return m, nil
		}
		id := f.taskID
		completed := false
		if t, ok := m.findTask(id); ok {
			completed = t.Completed
		}
		req := api.UpdateTaskRequest{
			Area:         strings.TrimSpace(f.value("area")),
			Description:  strings.TrimSpace(f.value("description")),
			Completed:    completed,
			Priority:     strings.TrimSpace(f.value("priority")),
			DueDate:      strings.TrimSpace(f.value("due")),
			DoneDate:     strings.TrimSpace(f.value("done")),
			FollowupDate: strings.TrimSpace(f.value("followup")),
			Context:      strings.TrimSpace(f.value("context")),
			Project:      strings.TrimSpace(f.value("project")),
			Recurring:    strings.TrimSpace(f.value("recurring")),
		}
		next := m.closeForm("save")
		return next, next.mutateCmd("save", refetchTasks, func(ctx context.Context) error {
			return next.client.UpdateTask(ctx, id, req)
		})

	case formFilter:
		m.st = m.store.UpdateFilters(state.FiltersPatch{
			Area:    state.String(strings.TrimSpace(f.value("area"))),
			Context: state.String(strings.TrimSpace(f.value("context"))),
			Project: state.String(strings.TrimSpace(f.value("project"))),
		})
		next := m.closeForm("Filters applied")
		return next, nil
	}
	return m, nil
}

func (m Model) updateRawMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = modeDash
		m.raw.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case "ctrl+s":
		kind := m.rawKind
		content := m.raw.Value()
		m.mode = modeDash
		m.raw.Blur()
		target := refetchTasks
		switch {
		case kind == "recurring":
			target = refetchRecurring
		case strings.HasPrefix(kind, "lists/"):
			target = refetchList
		case strings.HasPrefix(kind, "goals/"):
			target = refetchGoals
		}
		return m, m.mutateCmd("save "+kind, target, func(ctx context.Context) error {
			return m.client.SaveFile(ctx, kind, content)
		})
	default:
		var cmd tea.Cmd
		m.raw, cmd = m.raw.Update(msg)
		return m, cmd
	}
}

// findTask looks a task up by id across both payloads.
func (m Model) findTask(id string) (model.Task, bool) {
	var found model.Task
	ok := false
	for _, p := range []model.TasksPayload{m.tasks, m.recurring} {
		model.WalkAll(p.AllTasks(), func(t model.Task) {
			if !ok && t.ID == id {
				found = t
				ok = true
			}
		})
	}
	return found, ok
}

func indexOf(f *formState, key string) int {
	for i, fl := range f.fields {
		if fl.key == key {
			return i
		}
	}
	return 0
}

func nextSort(cur string) string {
	switch cur {
	case "priority":
		return "due"
	case "due":
		return "none"
	default:
		return "priority"
	}
}

func nextTaskType(cur string) string {
	switch cur {
	case "all":
		return "tasks"
	case "tasks":
		return "onhold"
	default:
		return "all"
	}
}

func nextRecurringFilter(cur string) string {
	switch cur {
	case "all":
		return "pending"
	case "pending":
		return "completed"
	default:
		return "all"
	}
}

func panelName(p panel) string {
	switch p {
	case panelTasks:
		return "Tasks"
	case panelRecurring:
		return "Recurring"
	case panelLists:
		return "Lists"
	case panelGoals:
		return "Goals"
	}
	return ""
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
