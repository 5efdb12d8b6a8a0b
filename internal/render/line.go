package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// Styles mirror the terminal-friendly palette approach: adaptive colors so
// rows stay readable on light and dark backgrounds, faint for completed.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	styleGroupHeader = lipgloss.NewStyle().Bold(true).Foreground(ac("236", "252"))
	styleDone        = lipgloss.NewStyle().Faint(true)
	styleSubtask     = lipgloss.NewStyle().Foreground(ac("240", "248"))
	styleNote        = lipgloss.NewStyle().Italic(true).Foreground(ac("245", "243"))
	styleMeta        = lipgloss.NewStyle().Foreground(ac("94", "179"))
	styleTags        = lipgloss.NewStyle().Foreground(ac("25", "75"))
	styleSelected    = lipgloss.NewStyle().
				Foreground(ac("235", "255")).
				Background(ac("#e9e9e9", "#262626")).
				Bold(true)
	styleEditing = lipgloss.NewStyle().Foreground(ac("130", "214"))
)

// checkbox returns the leading marker. Recurring rows never get a
// checkbox; they show today's compliance instead and are acted on through
// the three status keys.
func checkbox(r Row) string {
	if r.Recurring {
		if r.Task.Done() {
			return " ✓ "
		}
		return " · "
	}
	if r.Task.Done() {
		return "[x]"
	}
	return "[ ]"
}

// PlainLine renders a row without selection styling.
func PlainLine(r Row) string {
	switch r.Kind {
	case RowGroupHeader:
		return styleGroupHeader.Render(r.GroupTitle)
	case RowNote:
		return Indent(r.Depth) + styleNote.Render("· "+r.Note.Content)
	}

	body := Indent(r.Depth) + checkbox(r) + " " + r.Task.Description
	meta := MetaString(r.Task)
	tags := TagString(r.Task, r.Depth)

	line := body
	if meta != "" {
		line += styleMeta.Render(meta)
	}
	if tags != "" {
		line += styleTags.Render(tags)
	}
	if r.Editing {
		line += styleEditing.Render(" [editing]")
	}
	if r.AddingSubtask {
		line += styleEditing.Render(" [+subtask]")
	}

	if r.Task.Done() {
		return styleDone.Render(line)
	}
	if r.Depth > 0 {
		return styleSubtask.Render(line)
	}
	return line
}

// Line renders a row padded or cut to width, with a full-row background
// highlight when selected.
func Line(r Row, width int, selected bool) string {
	if !selected {
		return fit(PlainLine(r), width)
	}

	// Rebuild the row text unstyled so the highlight covers it uniformly;
	// per-segment colors would reset the background mid-row.
	var plain string
	switch r.Kind {
	case RowGroupHeader:
		plain = r.GroupTitle
	case RowNote:
		plain = Indent(r.Depth) + "· " + r.Note.Content
	default:
		plain = Indent(r.Depth) + checkbox(r) + " " + r.Task.Description +
			MetaString(r.Task) + TagString(r.Task, r.Depth)
		if r.Editing {
			plain += " [editing]"
		}
		if r.AddingSubtask {
			plain += " [+subtask]"
		}
	}
	return styleSelected.Render(fitPlain(plain, width))
}

func fit(line string, width int) string {
	if width <= 0 {
		return line
	}
	w := xansi.StringWidth(line)
	if w > width {
		return xansi.Cut(line, 0, width)
	}
	return line
}

func fitPlain(line string, width int) string {
	if width <= 0 {
		return line
	}
	w := xansi.StringWidth(line)
	if w < width {
		return line + strings.Repeat(" ", width-w)
	}
	if w > width {
		return xansi.Cut(line, 0, width)
	}
	return line
}
