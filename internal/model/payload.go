package model

import (
	"encoding/json"
	"sort"
)

// PayloadKind tells which of the two shapes the tasks endpoint returned.
type PayloadKind int

const (
	KindFlat PayloadKind = iota
	KindGrouped
)

// TasksPayload is the decoded result of GET /tasks or GET /recurring.
// Exactly one of Groups and Tasks is populated, per Kind.
type TasksPayload struct {
	Kind   PayloadKind
	Groups []TaskGroup
	Tasks  []Task
}

type probe struct {
	Type string `json:"type"`
}

// DecodePayload decides between the grouped and flat payload shapes and
// decodes accordingly. The server sends both from the same endpoint with no
// envelope, so the variant is inferred from the first element only: the
// payload is grouped iff it is non-empty and element 0 carries a type of
// "group" or "area". An empty array is flat. Records missing id or
// description are not rejected here; they surface downstream as blank rows.
func DecodePayload(data []byte) (TasksPayload, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return TasksPayload{}, err
	}
	if len(raw) == 0 {
		return TasksPayload{Kind: KindFlat}, nil
	}

	var p probe
	if err := json.Unmarshal(raw[0], &p); err != nil {
		return TasksPayload{}, err
	}
	if p.Type == "group" || p.Type == "area" {
		var groups []TaskGroup
		if err := json.Unmarshal(data, &groups); err != nil {
			return TasksPayload{}, err
		}
		return TasksPayload{Kind: KindGrouped, Groups: groups}, nil
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return TasksPayload{}, err
	}
	return TasksPayload{Kind: KindFlat, Tasks: tasks}, nil
}

// AllTasks returns the payload's top-level tasks regardless of shape.
func (p TasksPayload) AllTasks() []Task {
	if p.Kind == KindFlat {
		return p.Tasks
	}
	var out []Task
	for _, g := range p.Groups {
		out = append(out, g.Tasks...)
	}
	return out
}

// FilterOptions is the distinct, sorted set of classification values across
// an entire tree, used to populate the filter pickers.
type FilterOptions struct {
	Areas    []string
	Contexts []string
	Projects []string
}

// CollectFilterOptions walks every task in the given payloads, recurring
// included, and gathers the distinct areas, contexts and projects.
func CollectFilterOptions(payloads ...TasksPayload) FilterOptions {
	areas := map[string]struct{}{}
	contexts := map[string]struct{}{}
	projects := map[string]struct{}{}

	for _, p := range payloads {
		WalkAll(p.AllTasks(), func(t Task) {
			if t.Area != "" {
				areas[t.Area] = struct{}{}
			}
			if t.Context != "" {
				contexts[t.Context] = struct{}{}
			}
			for _, c := range t.ExtraContexts {
				if c != "" {
					contexts[c] = struct{}{}
				}
			}
			if t.Project != "" {
				projects[t.Project] = struct{}{}
			}
			for _, pr := range t.ExtraProjects {
				if pr != "" {
					projects[pr] = struct{}{}
				}
			}
		})
	}

	return FilterOptions{
		Areas:    sortedKeys(areas),
		Contexts: sortedKeys(contexts),
		Projects: sortedKeys(projects),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
