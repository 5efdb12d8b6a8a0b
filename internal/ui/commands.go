package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdash/internal/api"
	"taskdash/internal/model"
)

// Fetch results arrive as messages. The initial tasks and recurring loads
// are fired together and may land in either order; each panel renders as
// soon as its own data is in.

type tasksLoadedMsg struct {
	payload model.TasksPayload
	err     error
}

type recurringLoadedMsg struct {
	payload model.TasksPayload
	err     error
}

type statsLoadedMsg struct {
	stats api.Statistics
	err   error
}

type timeSeriesLoadedMsg struct {
	points []api.TimeSeriesPoint
	err    error
}

type listNamesLoadedMsg struct {
	names []string
	err   error
}

type listLoadedMsg struct {
	list api.List
	err  error
}

type goalNamesLoadedMsg struct {
	names []string
	err   error
}

type goalsLoadedMsg struct {
	list api.List
	err  error
}

type fileLoadedMsg struct {
	kind string
	file api.FileContent
	err  error
}

// mutationDoneMsg reports a write. The refetch it triggers is only issued
// once this message arrives, so a reload can never race ahead of the
// write it is meant to observe.
type mutationDoneMsg struct {
	action  string
	refetch refetchTarget
	err     error
}

type refetchTarget int

const (
	refetchNone refetchTarget = iota
	refetchTasks
	refetchRecurring
	refetchList
	refetchGoals
)

func (m Model) ctx() (context.Context, context.CancelFunc) {
	timeout := time.Duration(m.cfg.RequestTimeoutSeconds) * time.Second
	return context.WithTimeout(context.Background(), timeout)
}

func (m Model) fetchTasksCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		p, err := m.client.FetchTasks(ctx)
		return tasksLoadedMsg{payload: p, err: err}
	}
}

func (m Model) fetchRecurringCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		p, err := m.client.FetchRecurring(ctx)
		return recurringLoadedMsg{payload: p, err: err}
	}
}

func (m Model) fetchStatsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		s, err := m.client.FetchStatistics(ctx)
		return statsLoadedMsg{stats: s, err: err}
	}
}

func (m Model) fetchTimeSeriesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		pts, err := m.client.FetchTimeSeries(ctx)
		return timeSeriesLoadedMsg{points: pts, err: err}
	}
}

func (m Model) fetchListNamesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		names, err := m.client.FetchListNames(ctx)
		return listNamesLoadedMsg{names: names, err: err}
	}
}

func (m Model) fetchListCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		l, err := m.client.FetchList(ctx, name)
		return listLoadedMsg{list: l, err: err}
	}
}

func (m Model) fetchGoalNamesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		names, err := m.client.FetchGoalNames(ctx)
		return goalNamesLoadedMsg{names: names, err: err}
	}
}

func (m Model) fetchGoalsCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		l, err := m.client.FetchGoals(ctx, name)
		return goalsLoadedMsg{list: l, err: err}
	}
}

func (m Model) fetchFileCmd(kind string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		f, err := m.client.FetchFile(ctx, kind)
		return fileLoadedMsg{kind: kind, file: f, err: err}
	}
}

// mutateCmd runs a write and reports which panel must refetch afterwards.
func (m Model) mutateCmd(action string, target refetchTarget, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		return mutationDoneMsg{action: action, refetch: target, err: fn(ctx)}
	}
}
