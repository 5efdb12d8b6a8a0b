package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdash/internal/model"
	"taskdash/internal/render"
	"taskdash/internal/state"
)

func TestMetaStringFieldOrder(t *testing.T) {
	tests := []struct {
		name string
		task model.Task
		want string
	}{
		{
			"priority and due",
			model.Task{Priority: "A", DueDate: "2025-06-24"},
			" (priority:A due:2025-06-24)",
		},
		{
			"all named fields in contract order",
			model.Task{
				Priority:     "B",
				DueDate:      "2025-06-24",
				DoneDate:     "2025-06-25",
				FollowupDate: "2025-07-01",
				Recurring:    "weekly:Mon",
			},
			" (priority:B due:2025-06-24 done:2025-06-25 followup:2025-07-01 every:weekly:Mon)",
		},
		{
			"open metadata after named fields",
			model.Task{Priority: "A", Metadata: map[string]string{"effort": "2h", "blocked": "yes"}},
			" (priority:A blocked:yes effort:2h)",
		},
		{
			"nothing set",
			model.Task{Description: "bare"},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.MetaString(tt.task))
		})
	}
}

func TestTagString(t *testing.T) {
	tests := []struct {
		name  string
		task  model.Task
		depth int
		want  string
	}{
		{
			"sentinel project suppressed",
			model.Task{Project: "NoProject", Context: "Office"},
			0,
			" @Office",
		},
		{
			"sentinel context suppressed",
			model.Task{Project: "Site", Context: "NoContext"},
			0,
			" +Site",
		},
		{
			"extras deduplicated against primary",
			model.Task{
				Project:       "Site",
				ExtraProjects: []string{"Site", "Side"},
				Context:       "Office",
				ExtraContexts: []string{"Office", "Phone"},
			},
			0,
			" +Site +Side @Office @Phone",
		},
		{
			"area only at depth zero",
			model.Task{Context: "Office", Area: "Work"},
			0,
			" @Office &Work",
		},
		{
			"area hidden below depth zero",
			model.Task{Context: "Office", Area: "Work"},
			1,
			" @Office",
		},
		{
			"nothing to tag",
			model.Task{Project: "NoProject", Context: "NoContext"},
			0,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.TagString(tt.task, tt.depth))
		})
	}
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "", render.Indent(0))
	assert.Equal(t, "    ", render.Indent(2))
	assert.Equal(t, "          ", render.Indent(5))
}

func taskIDs(rows []render.Row) []string {
	var ids []string
	for _, r := range rows {
		if r.Kind == render.RowTask {
			ids = append(ids, r.Task.ID)
		}
	}
	return ids
}

func TestFlattenFilterDoesNotCascade(t *testing.T) {
	p := model.TasksPayload{Kind: model.KindFlat, Tasks: []model.Task{
		{ID: "p1", Area: "Work", Subtasks: []model.Task{
			{ID: "c1", Area: "Life"}, // filter mismatch, renders anyway
		}},
		{ID: "p2", Area: "Life"},
	}}

	rows := render.Flatten(p, render.Options{Filters: state.Filters{Area: "Work"}})
	assert.Equal(t, []string{"p1", "c1"}, taskIDs(rows))
}

func TestFlattenDepths(t *testing.T) {
	p := model.TasksPayload{Kind: model.KindFlat, Tasks: []model.Task{
		{ID: "a", Notes: []model.Note{{Type: "note", Content: "remember"}}, Subtasks: []model.Task{
			{ID: "b", Subtasks: []model.Task{{ID: "c"}}},
		}},
	}}

	rows := render.Flatten(p, render.Options{})
	require.Len(t, rows, 4)
	assert.Equal(t, render.RowTask, rows[0].Kind)
	assert.Equal(t, 0, rows[0].Depth)
	assert.Equal(t, render.RowNote, rows[1].Kind)
	assert.Equal(t, 1, rows[1].Depth)
	assert.Equal(t, "b", rows[2].Task.ID)
	assert.Equal(t, 1, rows[2].Depth)
	assert.Equal(t, "c", rows[3].Task.ID)
	assert.Equal(t, 2, rows[3].Depth)
}

func TestFlattenGroupedEmitsHeaders(t *testing.T) {
	p := model.TasksPayload{Kind: model.KindGrouped, Groups: []model.TaskGroup{
		{Type: "group", Title: "Today", Tasks: []model.Task{{ID: "1"}}},
		{Type: "group", Title: "Empty", Tasks: nil},
		{Type: "group", Title: "Later", Tasks: []model.Task{{ID: "2"}}},
	}}

	rows := render.Flatten(p, render.Options{})
	var headers []string
	for _, r := range rows {
		if r.Kind == render.RowGroupHeader {
			headers = append(headers, r.GroupTitle)
		}
	}
	// Groups left empty (or emptied by filters) do not emit a header.
	assert.Equal(t, []string{"Today", "Later"}, headers)
}

func TestFlattenSingleFlightEditing(t *testing.T) {
	p := model.TasksPayload{Kind: model.KindFlat, Tasks: []model.Task{
		{ID: "a"}, {ID: "b"}, {ID: "c", Subtasks: []model.Task{{ID: "d"}}},
	}}

	// Task a was being edited; the id then moved to b.
	rows := render.Flatten(p, render.Options{EditingTaskID: "b"})
	var editing []string
	for _, r := range rows {
		if r.Editing {
			editing = append(editing, r.Task.ID)
		}
	}
	assert.Equal(t, []string{"b"}, editing, "exactly one task in edit mode")
}

func TestFlattenEmptyIDNeverMatchesForms(t *testing.T) {
	p := model.TasksPayload{Kind: model.KindFlat, Tasks: []model.Task{
		{ID: "", Description: "malformed"},
	}}
	rows := render.Flatten(p, render.Options{EditingTaskID: "", AddingSubtaskToID: ""})
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Editing)
	assert.False(t, rows[0].AddingSubtask)
}

func TestFlattenTaskTypeFilter(t *testing.T) {
	p := model.TasksPayload{Kind: model.KindFlat, Tasks: []model.Task{
		{ID: "active"},
		{ID: "held", OnHold: true},
	}}

	rows := render.Flatten(p, render.Options{TaskTypeFilter: "tasks"})
	assert.Equal(t, []string{"active"}, taskIDs(rows))

	rows = render.Flatten(p, render.Options{TaskTypeFilter: "onhold"})
	assert.Equal(t, []string{"held"}, taskIDs(rows))

	rows = render.Flatten(p, render.Options{TaskTypeFilter: "all"})
	assert.Equal(t, []string{"active", "held"}, taskIDs(rows))
}

func TestFlattenRecurringFilter(t *testing.T) {
	p := model.TasksPayload{Kind: model.KindFlat, Tasks: []model.Task{
		{ID: "done", Status: "done"},
		{ID: "pending"},
	}}

	rows := render.Flatten(p, render.Options{Recurring: true, RecurringFilter: "pending"})
	assert.Equal(t, []string{"pending"}, taskIDs(rows))

	rows = render.Flatten(p, render.Options{Recurring: true, RecurringFilter: "completed"})
	assert.Equal(t, []string{"done"}, taskIDs(rows))
}

func TestFlattenSort(t *testing.T) {
	p := model.TasksPayload{Kind: model.KindFlat, Tasks: []model.Task{
		{ID: "none"},
		{ID: "b", Priority: "B"},
		{ID: "a", Priority: "A"},
	}}

	rows := render.Flatten(p, render.Options{SortBy: "priority"})
	assert.Equal(t, []string{"a", "b", "none"}, taskIDs(rows))

	byDue := model.TasksPayload{Kind: model.KindFlat, Tasks: []model.Task{
		{ID: "late", DueDate: "2025-07-01"},
		{ID: "soon", DueDate: "2025-06-24"},
		{ID: "never"},
	}}
	rows = render.Flatten(byDue, render.Options{SortBy: "due"})
	assert.Equal(t, []string{"soon", "late", "never"}, taskIDs(rows))
}

func TestCheckboxModes(t *testing.T) {
	// Recurring rows never render a checkbox; ordinary rows always do.
	ordinary := render.Row{Kind: render.RowTask, Task: model.Task{ID: "1", Description: "x"}}
	recurring := render.Row{Kind: render.RowTask, Recurring: true, Task: model.Task{ID: "2", Description: "y"}}

	assert.Contains(t, render.PlainLine(ordinary), "[ ]")
	assert.NotContains(t, render.PlainLine(recurring), "[ ]")
	assert.NotContains(t, render.PlainLine(recurring), "[x]")
}
