package home

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/atomicstack/unit-control/internal/action"
	"github.com/atomicstack/unit-control/internal/format/table"
	"github.com/atomicstack/unit-control/internal/theme"
)

const (
	listChromeRows = 4 // title, column header, status, footer
	logChromeRows  = 3 // title, status, footer
	descMaxWidth   = 60
)

var styles = theme.Default()

var listColumns = []string{"UNIT", "LOAD", "ACTIVE", "SUB", "ENABLED", "DESCRIPTION"}

// View renders the current mode. It must only be called from the dispatch
// loop.
func (h *Home) View() string {
	var lines []string
	switch h.mode.Kind {
	case action.ModeHelp:
		lines = h.viewHelp()
	case action.ModeLogs:
		lines = h.viewLogs()
	case action.ModeAddService:
		lines = h.viewForm()
	case action.ModeError:
		lines = h.viewError()
	default:
		lines = h.viewList()
	}
	if h.showLogger {
		lines = append(lines, h.viewLogger()...)
	}
	for i, line := range lines {
		lines[i] = h.fit(line)
	}
	return strings.Join(lines, "\n")
}

func (h *Home) fit(line string) string {
	if h.width <= 0 || lipgloss.Width(line) <= h.width {
		return line
	}
	return truncate.StringWithTail(line, uint(h.width), "…")
}

func (h *Home) listRows() int {
	height := h.height
	if height <= 0 {
		height = defaultHeight
	}
	rows := height - listChromeRows
	if h.filtering || h.list.Filter != "" {
		rows--
	}
	if h.showLogger {
		rows -= len(h.recent) + 1
	}
	if rows < 1 {
		return 1
	}
	return rows
}

func (h *Home) title(text string) string {
	out := styles.Title.Render(text)
	if h.task != nil {
		frame := spinnerStyle.Frames[h.spinnerFrame%len(spinnerStyle.Frames)]
		out += "  " + styles.Spinner.Render(frame) + " " + styles.Info.Render(h.task.Label)
	}
	return out
}

func (h *Home) viewList() []string {
	lines := []string{h.title(fmt.Sprintf("unit-control · %s units", h.scope))}
	items := h.list.Items
	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, listColumns)
	for _, u := range items {
		rows = append(rows, []string{u.Name, u.LoadState, u.ActiveState, u.SubState, u.EnabledState, u.Description})
	}
	formatted := table.Format(rows, nil, 0, 0, 0, 0, 0, descMaxWidth)
	lines = append(lines, "  "+styles.Header.Render(formatted[0]))

	visible := h.listRows()
	h.list.EnsureCursorVisible(visible)
	start := h.list.ViewportOffset
	end := start + visible
	if end > len(items) {
		end = len(items)
	}
	if len(items) == 0 {
		msg := "(no units)"
		if h.list.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", h.list.Filter)
		}
		lines = append(lines, styles.Info.Render(msg))
	}
	for i := start; i < end; i++ {
		text := formatted[i+1]
		if i == h.list.Cursor {
			lines = append(lines, styles.SelectedItemIndicator.Render("▌ ")+styles.SelectedItem.Render(text))
			continue
		}
		lines = append(lines, styles.ItemIndicator.Render("▌ ")+styles.ForActiveState(items[i].ActiveState).Render(text))
	}
	if h.filtering || h.list.Filter != "" {
		filter := styles.FilterPrompt.Render("/") + h.list.Filter
		if h.filtering {
			filter += styles.Cursor.Render(" ")
		} else if h.list.Filter == "" {
			filter += styles.FilterPlaceholder.Render("type to filter")
		}
		lines = append(lines, filter)
	}
	lines = append(lines, h.statusLine(fmt.Sprintf("%d/%d units", len(items), h.units.Len())))
	lines = append(lines, styles.Footer.Render("s start  S stop  r restart  R reload  e enable  d disable  enter logs  E edit  a add  / filter  ? help  q quit"))
	return lines
}

func (h *Home) statusLine(fallback string) string {
	if h.status != "" {
		return styles.Info.Render(h.status)
	}
	return styles.Info.Render(fallback)
}

func (h *Home) viewLogs() []string {
	unit := h.mode.Unit
	header := "Logs: " + unit.String()
	meta := ""
	if res, ok := h.paths[unit]; ok {
		if res.err != "" {
			meta = styles.Error.Render(res.err)
		} else {
			meta = styles.LogMeta.Render(res.path)
		}
	}
	title := h.title(header)
	if meta != "" {
		title += "  " + meta
	}
	lines := []string{title}

	all := h.logs.Lines(unit)
	visible := h.visibleLogRows()
	start := h.logOffset
	if start > len(all) {
		start = len(all)
	}
	end := start + visible
	if end > len(all) {
		end = len(all)
	}
	if len(all) == 0 {
		lines = append(lines, styles.Info.Render("(no log lines)"))
	}
	for _, line := range all[start:end] {
		lines = append(lines, styles.LogLine.Render(line))
	}
	position := fmt.Sprintf("lines %d-%d of %d", min(start+1, end), end, len(all))
	if h.logFollow {
		position += " (following)"
	}
	lines = append(lines, h.statusLine(position))
	lines = append(lines, styles.Footer.Render("↑/↓ scroll  pgup/pgdn page  g/G top/bottom  s/S/r/R act  E edit  c copy path  esc back"))
	return lines
}

func (h *Home) viewForm() []string {
	lines := []string{h.title("Add service"), ""}
	if h.form == nil {
		return lines
	}
	for i, input := range h.form.inputs {
		label := styles.FormLabel.Render(fmt.Sprintf("%-18s", fieldLabels[i]))
		if i == h.form.focus {
			label = styles.FormFocused.Render(fmt.Sprintf("%-18s", fieldLabels[i]))
		}
		lines = append(lines, label+input.View())
	}
	if err := h.form.Error(); err != "" {
		lines = append(lines, "", styles.Error.Render(err))
	}
	lines = append(lines, "", styles.Footer.Render("tab next field  enter submit  esc cancel"))
	return lines
}

func (h *Home) viewError() []string {
	lines := []string{styles.Error.Render("Error"), ""}
	for _, line := range strings.Split(h.mode.Message, "\n") {
		lines = append(lines, styles.Info.Render(line))
	}
	lines = append(lines, "", styles.Footer.Render("enter/esc return to the service list"))
	return lines
}

var helpRows = [][]string{
	{"↑/↓ j/k", "move"},
	{"pgup/pgdn home/end", "page, jump"},
	{"/", "filter units"},
	{"enter, l", "show logs"},
	{"s / S", "start / stop"},
	{"r / R", "restart / reload"},
	{"e / d", "enable / disable"},
	{"E", "edit unit file"},
	{"a", "add service"},
	{"c", "copy unit file path"},
	{"x", "cancel running task"},
	{"F5", "refresh"},
	{"ctrl+l", "toggle action log"},
	{"ctrl+z", "suspend"},
	{"q, ctrl+c", "quit"},
}

func (h *Home) viewHelp() []string {
	lines := []string{h.title("Keys"), ""}
	for _, row := range table.Format(helpRows, nil) {
		lines = append(lines, styles.Info.Render(row))
	}
	lines = append(lines, "", styles.Footer.Render("? or esc to close"))
	return lines
}

func (h *Home) viewLogger() []string {
	lines := []string{styles.Header.Render("Actions")}
	for _, desc := range h.recent {
		lines = append(lines, styles.Logger.Render(desc))
	}
	return lines
}
