package api

// Request and response shapes for the dashboard backend. Everything is
// plain JSON; optional fields are omitted rather than sent empty so the
// server stores absence, not placeholder strings.

// CreateTaskRequest is the body for POST /tasks/create. Area and
// Description are required; the rest ride along when set.
type CreateTaskRequest struct {
	Area        string   `json:"area"`
	Description string   `json:"description"`
	Priority    string   `json:"priority,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	Context     string   `json:"context,omitempty"`
	Project     string   `json:"project,omitempty"`
	Recurring   string   `json:"recurring,omitempty"`
	OnHold      bool     `json:"onhold,omitempty"`
	Notes       []string `json:"notes,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
}

// UpdateTaskRequest is the body for PUT /tasks/{id}.
type UpdateTaskRequest struct {
	Area         string `json:"area"`
	Description  string `json:"description"`
	Completed    bool   `json:"completed"`
	Priority     string `json:"priority,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
	DoneDate     string `json:"done_date,omitempty"`
	FollowupDate string `json:"followup_date,omitempty"`
	Context      string `json:"context,omitempty"`
	Project      string `json:"project,omitempty"`
	Recurring    string `json:"recurring,omitempty"`
}

// Statistics is the aggregate task count snapshot from GET /statistics.
type Statistics struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}

// TimeSeriesPoint is one day of completion counts from
// GET /statistics/time-series.
type TimeSeriesPoint struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Created   int    `json:"created"`
}

// ListItem is one checklist entry.
type ListItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// List is a named checklist from GET /lists/{name}.
type List struct {
	Name  string     `json:"name"`
	Items []ListItem `json:"items"`
}

// FileContent is a raw backing file from GET /files/*.
type FileContent struct {
	Content string `json:"content"`
	Path    string `json:"path"`
}
