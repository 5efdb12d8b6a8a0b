package ui

// The field form is a sequential editor over a fixed list of labeled
// string fields, driven by one shared textinput: tab/shift+tab move,
// enter advances and submits from the last field.

type formKind int

const (
	formCreate formKind = iota
	formEdit
	formAddSubtask
	formFilter
)

type formField struct {
	key   string
	label string
	value string
}

type formState struct {
	kind   formKind
	taskID string // edit target or subtask parent
	fields []formField
	index  int
}

func newCreateForm() *formState {
	return &formState{
		kind: formCreate,
		fields: []formField{
			{key: "area", label: "area"},
			{key: "description", label: "description"},
			{key: "priority", label: "priority"},
			{key: "due", label: "due date (YYYY-MM-DD)"},
			{key: "context", label: "context"},
			{key: "project", label: "project"},
			{key: "recurring", label: "recurring (e.g. daily, weekly:Mon)"},
		},
	}
}

func newEditForm(taskID string, values map[string]string) *formState {
	f := &formState{
		kind:   formEdit,
		taskID: taskID,
		fields: []formField{
			{key: "area", label: "area"},
			{key: "description", label: "description"},
			{key: "priority", label: "priority"},
			{key: "due", label: "due date (YYYY-MM-DD)"},
			{key: "done", label: "done date (YYYY-MM-DD)"},
			{key: "followup", label: "followup date (YYYY-MM-DD)"},
			{key: "context", label: "context"},
			{key: "project", label: "project"},
			{key: "recurring", label: "recurring"},
		},
	}
	for i := range f.fields {
		f.fields[i].value = values[f.fields[i].key]
	}
	return f
}

func newAddSubtaskForm(parentID string) *formState {
	return &formState{
		kind:   formAddSubtask,
		taskID: parentID,
		fields: []formField{
			{key: "description", label: "description"},
		},
	}
}

func newFilterForm(area, context, project string) *formState {
	return &formState{
		kind: formFilter,
		fields: []formField{
			{key: "area", label: "area", value: area},
			{key: "context", label: "context", value: context},
			{key: "project", label: "project", value: project},
		},
	}
}

func (f *formState) current() formField {
	return f.fields[f.index]
}

func (f *formState) setCurrent(v string) {
	f.fields[f.index].value = v
}

func (f *formState) next() {
	f.index = wrapIndex(f.index+1, len(f.fields))
}

func (f *formState) prev() {
	f.index = wrapIndex(f.index-1, len(f.fields))
}

func (f *formState) atLast() bool {
	return f.index == len(f.fields)-1
}

// value looks a field up by key.
func (f *formState) value(key string) string {
	for _, fl := range f.fields {
		if fl.key == key {
			return fl.value
		}
	}
	return ""
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
