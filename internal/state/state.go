package state

import "encoding/json"

// DashboardState is the whole persisted UI state: filters, sort order,
// which panels are expanded and which forms are open. It survives restarts
// via the remote /state endpoint with a local sqlite fallback. Field names
// on the wire match what the backend already stores for other clients.
type DashboardState struct {
	Filters         Filters     `json:"filters"`
	SortBy          string      `json:"sortBy"`
	TaskTypeFilter  string      `json:"taskTypeFilter"`
	RecurringFilter string      `json:"recurringFilter"`
	PanelStates     PanelStates `json:"panelStates"`
	FormStates      FormStates  `json:"formStates"`
	ListsState      ListsState  `json:"listsState"`
}

type Filters struct {
	Area    string `json:"area"`
	Context string `json:"context"`
	Project string `json:"project"`
}

type PanelStates struct {
	IsCommitExpanded     bool `json:"isCommitExpanded"`
	IsStatisticsExpanded bool `json:"isStatisticsExpanded"`
	IsTimeSeriesExpanded bool `json:"isTimeSeriesExpanded"`
	IsListsExpanded      bool `json:"isListsExpanded"`
}

type FormStates struct {
	IsCreateTaskExpanded bool   `json:"isCreateTaskExpanded"`
	EditingTaskID        string `json:"editingTaskId"`
	AddingSubtaskToID    string `json:"addingSubtaskToId"`
}

type ListsState struct {
	SelectedList string `json:"selectedList"`
}

// Default returns the hardcoded initial state used when neither the remote
// store nor the local copy has anything usable.
func Default() DashboardState {
	return DashboardState{
		SortBy:          "priority",
		TaskTypeFilter:  "all",
		RecurringFilter: "all",
	}
}

// Valid reports whether a raw persisted payload has the right shape to be
// merged over defaults: a JSON object whose known sections, when present,
// are themselves objects. Field-level content is not checked.
func Valid(data []byte) bool {
	// Unmarshaling JSON null into a map succeeds and leaves it nil, so a
	// nil check is needed on top of the error check.
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return false
	}
	for _, section := range []string{"filters", "panelStates", "formStates", "listsState"} {
		raw, ok := top[section]
		if !ok {
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			return false
		}
	}
	return true
}

// Decode merges a validated payload over the defaults. Sections absent
// from the payload keep their default values.
func Decode(data []byte) (DashboardState, error) {
	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), err
	}
	return s, nil
}

// Patch is a top-level shallow merge: every non-nil field replaces the
// corresponding field of the state wholesale. Nested sub-records are NOT
// merged field-by-field here; callers wanting that use the per-section
// helpers on Store.
type Patch struct {
	Filters         *Filters
	SortBy          *string
	TaskTypeFilter  *string
	RecurringFilter *string
	PanelStates     *PanelStates
	FormStates      *FormStates
	ListsState      *ListsState
}

// FiltersPatch merges into Filters one field at a time.
type FiltersPatch struct {
	Area    *string
	Context *string
	Project *string
}

// PanelsPatch merges into PanelStates one field at a time.
type PanelsPatch struct {
	IsCommitExpanded     *bool
	IsStatisticsExpanded *bool
	IsTimeSeriesExpanded *bool
	IsListsExpanded      *bool
}

// FormsPatch merges into FormStates one field at a time.
type FormsPatch struct {
	IsCreateTaskExpanded *bool
	EditingTaskID        *string
	AddingSubtaskToID    *string
}

// ListsPatch merges into ListsState one field at a time.
type ListsPatch struct {
	SelectedList *string
}

func (s *DashboardState) apply(p Patch) {
	if p.Filters != nil {
		s.Filters = *p.Filters
	}
	if p.SortBy != nil {
		s.SortBy = *p.SortBy
	}
	if p.TaskTypeFilter != nil {
		s.TaskTypeFilter = *p.TaskTypeFilter
	}
	if p.RecurringFilter != nil {
		s.RecurringFilter = *p.RecurringFilter
	}
	if p.PanelStates != nil {
		s.PanelStates = *p.PanelStates
	}
	if p.FormStates != nil {
		s.FormStates = *p.FormStates
	}
	if p.ListsState != nil {
		s.ListsState = *p.ListsState
	}
}

func (f *Filters) apply(p FiltersPatch) {
	if p.Area != nil {
		f.Area = *p.Area
	}
	if p.Context != nil {
		f.Context = *p.Context
	}
	if p.Project != nil {
		f.Project = *p.Project
	}
}

func (ps *PanelStates) apply(p PanelsPatch) {
	if p.IsCommitExpanded != nil {
		ps.IsCommitExpanded = *p.IsCommitExpanded
	}
	if p.IsStatisticsExpanded != nil {
		ps.IsStatisticsExpanded = *p.IsStatisticsExpanded
	}
	if p.IsTimeSeriesExpanded != nil {
		ps.IsTimeSeriesExpanded = *p.IsTimeSeriesExpanded
	}
	if p.IsListsExpanded != nil {
		ps.IsListsExpanded = *p.IsListsExpanded
	}
}

func (fs *FormStates) apply(p FormsPatch) {
	if p.IsCreateTaskExpanded != nil {
		fs.IsCreateTaskExpanded = *p.IsCreateTaskExpanded
	}
	if p.EditingTaskID != nil {
		fs.EditingTaskID = *p.EditingTaskID
	}
	if p.AddingSubtaskToID != nil {
		fs.AddingSubtaskToID = *p.AddingSubtaskToID
	}
}

func (ls *ListsState) apply(p ListsPatch) {
	if p.SelectedList != nil {
		ls.SelectedList = *p.SelectedList
	}
}

// String and Bool build pointer fields for patches.
func String(s string) *string { return &s }
func Bool(b bool) *bool       { return &b }
