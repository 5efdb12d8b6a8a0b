package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskdash/internal/api"
	"taskdash/internal/render"
)

var (
	adaptive = func(light, dark string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: light, Dark: dark}
	}

	styleTitle      = lipgloss.NewStyle().Bold(true)
	styleFocusTitle = lipgloss.NewStyle().Bold(true).Foreground(adaptive("27", "75"))
	styleError      = lipgloss.NewStyle().Foreground(adaptive("160", "203"))
	styleHelp       = lipgloss.NewStyle().Faint(true)
	styleChecked    = lipgloss.NewStyle().Faint(true)
	styleCursorMark = lipgloss.NewStyle().Bold(true)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(styleError.Render(m.errMsg))
		b.WriteString("\n")
	}

	if m.mode == modeRaw {
		b.WriteString(m.raw.View())
		b.WriteString("\n\n")
		b.WriteString(m.status)
		return b.String()
	}

	b.WriteString(m.renderTaskPanel())
	b.WriteString("\n")
	b.WriteString(m.renderRecurringPanel())
	b.WriteString("\n")
	b.WriteString(m.renderStatisticsPanel())
	b.WriteString(m.renderListsPanel())
	b.WriteString(m.renderGoalsPanel())

	if m.mode == modeForm && m.form != nil {
		b.WriteString("\n")
		b.WriteString(m.renderFormBox())
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(styleHelp.Render(m.renderHelp()))
	return b.String()
}

func (m Model) renderHeader() string {
	title := styleTitle.Render("taskdash")
	if m.loadingTasks || m.loadingRecurring {
		return title + " " + m.spin.View()
	}
	return title
}

func (m Model) panelTitle(p panel, label string) string {
	if m.focus == p {
		return styleFocusTitle.Render("▍" + label)
	}
	return styleTitle.Render(" " + label)
}

func (m Model) filterSummary() string {
	var parts []string
	f := m.st.Filters
	if f.Area != "" {
		parts = append(parts, "&"+f.Area)
	}
	if f.Context != "" {
		parts = append(parts, "@"+f.Context)
	}
	if f.Project != "" {
		parts = append(parts, "+"+f.Project)
	}
	if m.st.TaskTypeFilter != "" && m.st.TaskTypeFilter != "all" {
		parts = append(parts, m.st.TaskTypeFilter)
	}
	if m.st.SortBy != "" && m.st.SortBy != "none" {
		parts = append(parts, "sort:"+m.st.SortBy)
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, " ") + "]"
}

func (m Model) renderTaskPanel() string {
	var b strings.Builder
	b.WriteString(m.panelTitle(panelTasks, "Tasks"+m.filterSummary()))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		if m.loadingTasks {
			b.WriteString(styleHelp.Render("  loading…"))
		} else {
			b.WriteString(styleHelp.Render("  No tasks. Press 'c' to create one."))
		}
		b.WriteString("\n")
		return b.String()
	}

	for i, r := range m.rows {
		selected := m.focus == panelTasks && m.cursor[panelTasks] == i
		b.WriteString(render.Line(r, m.width, selected))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRecurringPanel() string {
	var b strings.Builder
	label := "Recurring"
	if m.st.RecurringFilter != "" && m.st.RecurringFilter != "all" {
		label += " [" + m.st.RecurringFilter + "]"
	}
	b.WriteString(m.panelTitle(panelRecurring, label))
	b.WriteString("\n")

	if len(m.recurringRows) == 0 {
		if m.loadingRecurring {
			b.WriteString(styleHelp.Render("  loading…"))
		} else {
			b.WriteString(styleHelp.Render("  Nothing recurring today."))
		}
		b.WriteString("\n")
		return b.String()
	}

	for i, r := range m.recurringRows {
		selected := m.focus == panelRecurring && m.cursor[panelRecurring] == i
		b.WriteString(render.Line(r, m.width, selected))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStatisticsPanel() string {
	if !m.st.PanelStates.IsStatisticsExpanded && !m.st.PanelStates.IsTimeSeriesExpanded {
		return ""
	}
	var b strings.Builder
	if m.st.PanelStates.IsStatisticsExpanded {
		b.WriteString(styleTitle.Render(" Statistics"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  total:%d completed:%d pending:%d overdue:%d\n",
			m.stats.Total, m.stats.Completed, m.stats.Pending, m.stats.Overdue))
	}
	if m.st.PanelStates.IsTimeSeriesExpanded && len(m.series) > 0 {
		b.WriteString(styleTitle.Render(" Completions"))
		b.WriteString("\n")
		for _, pt := range tail(m.series, 14) {
			b.WriteString(fmt.Sprintf("  %s %s %d\n", pt.Date, strings.Repeat("▪", pt.Completed), pt.Completed))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderListsPanel() string {
	if !m.st.PanelStates.IsListsExpanded && m.focus != panelLists {
		return ""
	}
	var b strings.Builder
	label := "Lists"
	if m.st.ListsState.SelectedList != "" {
		label += ": " + m.st.ListsState.SelectedList
	}
	if len(m.listNames) > 1 {
		label += "  ([/] switch)"
	}
	b.WriteString(m.panelTitle(panelLists, label))
	b.WriteString("\n")
	b.WriteString(m.renderChecklist(m.list.Items, panelLists))
	return b.String()
}

func (m Model) renderGoalsPanel() string {
	if m.focus != panelGoals {
		return ""
	}
	var b strings.Builder
	label := "Goals"
	if m.goals.Name != "" {
		label += ": " + m.goals.Name
	}
	b.WriteString(m.panelTitle(panelGoals, label))
	b.WriteString("\n")
	b.WriteString(m.renderChecklist(m.goals.Items, panelGoals))
	return b.String()
}

func (m Model) renderChecklist(items []api.ListItem, p panel) string {
	if len(items) == 0 {
		return styleHelp.Render("  (empty)") + "\n"
	}
	var b strings.Builder
	for i, it := range items {
		cursor := " "
		if m.focus == p && m.cursor[p] == i {
			cursor = styleCursorMark.Render(">")
		}
		box := "[ ]"
		line := fmt.Sprintf("%s %s %s", cursor, box, it.Text)
		if it.Checked {
			line = fmt.Sprintf("%s %s %s", cursor, "[x]", it.Text)
			line = styleChecked.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFormBox() string {
	var b strings.Builder
	switch m.form.kind {
	case formCreate:
		b.WriteString(styleTitle.Render(" New task"))
	case formEdit:
		b.WriteString(styleTitle.Render(" Edit task"))
	case formAddSubtask:
		b.WriteString(styleTitle.Render(" New subtask"))
	case formFilter:
		b.WriteString(styleTitle.Render(" Filters"))
	}
	b.WriteString("\n")
	for i, fl := range m.form.fields {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := fl.value
		if i == m.form.index {
			val = m.input.View()
		} else if strings.TrimSpace(val) == "" {
			val = styleHelp.Render("(empty)")
		}
		b.WriteString(fmt.Sprintf("%s %-34s : %s\n", prefix, fl.label, val))
	}
	return b.String()
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	switch m.focus {
	case panelRecurring:
		return fmt.Sprintf("%s/%s move • %s/%s/%s done/missed/deferred • t filter • %s refresh • %s panel • %s quit",
			k.Up, k.Down, k.RecurDone, k.RecurMissed, k.RecurDeferred, k.Refresh, k.NextPanel, k.Quit)
	case panelLists:
		return fmt.Sprintf("%s/%s move • space toggle • [/] switch list • R reset • v edit raw • %s panel • %s quit",
			k.Up, k.Down, k.NextPanel, k.Quit)
	case panelGoals:
		return fmt.Sprintf("%s/%s move • space toggle • %s panel • %s quit",
			k.Up, k.Down, k.NextPanel, k.Quit)
	}
	return fmt.Sprintf("%s/%s move • space check • %s create • %s edit • %s subtask • %s filter • %s sort • t type • S/T/L panels • %s archive • %s refresh • %s panel • %s quit",
		k.Up, k.Down, k.Create, k.Edit, k.AddSubtask, k.Filter, k.Sort, k.Archive, k.Refresh, k.NextPanel, k.Quit)
}

func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
