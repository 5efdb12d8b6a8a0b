// Package render turns a decoded task payload into the flat list of rows
// the dashboard draws. All of it is pure: filters, sorting and the derived
// annotation strings depend only on the inputs, which keeps the golden
// tests honest.
package render

import (
	"sort"
	"strings"

	"taskdash/internal/model"
	"taskdash/internal/state"
)

// Sentinel classification values the backend uses for "none"; they are
// suppressed from tag strings, never shown.
const (
	NoProject = "NoProject"
	NoContext = "NoContext"
)

type RowKind int

const (
	RowTask RowKind = iota
	RowNote
	RowGroupHeader
)

// Row is one drawable line of the dashboard's task area.
type Row struct {
	Kind  RowKind
	Depth int

	Task      model.Task // RowTask
	Recurring bool

	Note model.Note // RowNote

	GroupTitle string // RowGroupHeader

	// Derived from the shared form ids, recomputed every flatten. At most
	// one row in the whole output has Editing set, same for AddingSubtask.
	Editing       bool
	AddingSubtask bool
}

// Options carries everything the flatten pass needs from the dashboard
// state. Recurring flips the interaction model for every row produced.
type Options struct {
	Filters         state.Filters
	SortBy          string
	TaskTypeFilter  string
	RecurringFilter string
	Recurring       bool

	EditingTaskID     string
	AddingSubtaskToID string
}

// Flatten walks a payload and emits rows in display order: group headers
// (grouped shape only), then each included task followed by its notes and
// the whole subtree of subtasks. Filtering applies to top-level inclusion
// per node; a subtask always renders when its parent does.
func Flatten(p model.TasksPayload, opts Options) []Row {
	var rows []Row
	if p.Kind == model.KindGrouped {
		for _, g := range p.Groups {
			tasks := topLevel(g.Tasks, opts)
			if len(tasks) == 0 {
				continue
			}
			rows = append(rows, Row{Kind: RowGroupHeader, GroupTitle: g.Title})
			for _, t := range tasks {
				rows = appendTask(rows, t, 0, opts)
			}
		}
		return rows
	}
	for _, t := range topLevel(p.Tasks, opts) {
		rows = appendTask(rows, t, 0, opts)
	}
	return rows
}

func appendTask(rows []Row, t model.Task, depth int, opts Options) []Row {
	rows = append(rows, Row{
		Kind:          RowTask,
		Depth:         depth,
		Task:          t,
		Recurring:     opts.Recurring,
		Editing:       t.ID != "" && t.ID == opts.EditingTaskID,
		AddingSubtask: t.ID != "" && t.ID == opts.AddingSubtaskToID,
	})
	for _, n := range t.Notes {
		rows = append(rows, Row{Kind: RowNote, Depth: depth + 1, Note: n})
	}
	// Subtasks inherit visibility from the parent; the filters are not
	// consulted again below depth 0's inclusion decision.
	for _, sub := range t.Subtasks {
		rows = appendTask(rows, sub, depth+1, opts)
	}
	return rows
}

// topLevel filters and sorts the tasks that compete for inclusion.
func topLevel(tasks []model.Task, opts Options) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if Included(t, opts) {
			out = append(out, t)
		}
	}
	sortTasks(out, opts.SortBy)
	return out
}

// Included applies every active filter to this node only. Ancestor and
// descendant matches play no part.
func Included(t model.Task, opts Options) bool {
	f := opts.Filters
	if f.Area != "" && t.Area != f.Area {
		return false
	}
	if f.Context != "" && t.Context != f.Context {
		return false
	}
	if f.Project != "" && t.Project != f.Project {
		return false
	}

	if opts.Recurring {
		switch opts.RecurringFilter {
		case "pending":
			if t.Done() {
				return false
			}
		case "completed":
			if !t.Done() {
				return false
			}
		}
		return true
	}

	switch opts.TaskTypeFilter {
	case "tasks":
		if t.OnHold {
			return false
		}
	case "onhold":
		if !t.OnHold {
			return false
		}
	}
	return true
}

func sortTasks(tasks []model.Task, sortBy string) {
	switch sortBy {
	case "priority":
		sort.SliceStable(tasks, func(i, j int) bool {
			return sortKey(tasks[i].Priority) < sortKey(tasks[j].Priority)
		})
	case "due":
		sort.SliceStable(tasks, func(i, j int) bool {
			return sortKey(tasks[i].DueDate) < sortKey(tasks[j].DueDate)
		})
	}
}

// sortKey pushes tasks without a value after those with one.
func sortKey(v string) string {
	if v == "" {
		return "￿"
	}
	return v
}

// MetaString builds the parenthesized annotation shown after the
// description. Field order is a display contract: priority, due, done,
// followup, every, then any open metadata keys (sorted for stable output).
func MetaString(t model.Task) string {
	var parts []string
	if t.Priority != "" {
		parts = append(parts, "priority:"+t.Priority)
	}
	if t.DueDate != "" {
		parts = append(parts, "due:"+t.DueDate)
	}
	if t.DoneDate != "" {
		parts = append(parts, "done:"+t.DoneDate)
	}
	if t.FollowupDate != "" {
		parts = append(parts, "followup:"+t.FollowupDate)
	}
	if t.Recurring != "" {
		parts = append(parts, "every:"+t.Recurring)
	}
	keys := make([]string, 0, len(t.Metadata))
	for k := range t.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+":"+t.Metadata[k])
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, " ") + ")"
}

// TagString builds the trailing classification annotation: the project,
// extra projects (deduplicated against the primary), the context, extra
// contexts, and at depth 0 only, the area.
func TagString(t model.Task, depth int) string {
	var parts []string
	project := t.Project
	if project == NoProject {
		project = ""
	}
	if project != "" {
		parts = append(parts, "+"+project)
	}
	for _, p := range t.ExtraProjects {
		if p == "" || p == project || p == NoProject {
			continue
		}
		parts = append(parts, "+"+p)
	}

	context := t.Context
	if context == NoContext {
		context = ""
	}
	if context != "" {
		parts = append(parts, "@"+context)
	}
	for _, c := range t.ExtraContexts {
		if c == "" || c == context || c == NoContext {
			continue
		}
		parts = append(parts, "@"+c)
	}

	if depth == 0 && t.Area != "" {
		parts = append(parts, "&"+t.Area)
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

// Indent is the fixed per-level offset. Depth is never capped; deeply
// nested subtasks just keep walking right.
func Indent(depth int) string {
	return strings.Repeat("  ", depth)
}
