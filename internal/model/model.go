package model

// Task is one node of the task tree. Subtasks and notes are owned by their
// parent: replacing a snapshot discards the whole subtree. Date fields are
// opaque strings as served by the backend and are never parsed client-side.
type Task struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Status      string `json:"status,omitempty"` // "", "incomplete", "done", "followup"

	Area          string   `json:"area,omitempty"`
	Context       string   `json:"context,omitempty"`
	Project       string   `json:"project,omitempty"`
	ExtraContexts []string `json:"extra_contexts,omitempty"`
	ExtraProjects []string `json:"extra_projects,omitempty"`

	Priority     string `json:"priority,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
	DoneDate     string `json:"done_date,omitempty"`
	FollowupDate string `json:"followup_date,omitempty"`
	Recurring    string `json:"recurring,omitempty"`
	OnHold       bool   `json:"onhold,omitempty"`

	Subtasks []Task `json:"subtasks,omitempty"`
	Notes    []Note `json:"notes,omitempty"`

	// Metadata carries key/value annotations not covered by named fields.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Note is a leaf annotation attached to a task. Rendered, never actionable.
type Note struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Indent  string `json:"indent,omitempty"`
}

// TaskGroup is a named bucket of tasks as pre-grouped by the server:
// by title for ordinary tasks (type "group"), by area for recurring
// tasks (type "area"). Groups never nest.
type TaskGroup struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

// Done reports whether the task should render as completed.
func (t Task) Done() bool {
	return t.Completed || t.Status == "done"
}

// Walk visits t and every descendant in pre-order, parents before children.
func Walk(t Task, visit func(Task)) {
	visit(t)
	for _, sub := range t.Subtasks {
		Walk(sub, visit)
	}
}

// WalkAll walks every task in ts.
func WalkAll(ts []Task, visit func(Task)) {
	for _, t := range ts {
		Walk(t, visit)
	}
}
