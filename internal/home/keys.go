package home

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/unit-control/internal/action"
)

// handleKey routes terminal input through the keymap of the current mode.
func (h *Home) handleKey(msg tea.KeyMsg) action.Action {
	h.status = ""
	switch msg.String() {
	case "ctrl+c":
		return action.Quit{}
	case "ctrl+z":
		return action.Suspend{}
	}
	switch h.mode.Kind {
	case action.ModeLogs:
		return h.handleLogsKey(msg)
	case action.ModeAddService:
		return h.handleFormKey(msg)
	case action.ModeHelp:
		switch msg.String() {
		case "esc", "enter", "q", "?":
			return action.ToggleHelp{}
		}
		return nil
	case action.ModeError:
		switch msg.String() {
		case "esc", "enter", "q":
			return action.EnterMode{Mode: action.ServiceList()}
		}
		return nil
	}
	if h.filtering {
		return h.handleFilterKey(msg)
	}
	return h.handleListKey(msg)
}

func (h *Home) handleListKey(msg tea.KeyMsg) action.Action {
	rows := h.listRows()
	moved := false
	switch msg.String() {
	case "up", "k":
		moved = h.list.MoveCursorBy(-1)
	case "down", "j":
		moved = h.list.MoveCursorBy(1)
	case "pgup":
		moved = h.list.MoveCursorPageUp(rows)
	case "pgdown":
		moved = h.list.MoveCursorPageDown(rows)
	case "home", "g":
		moved = h.list.MoveCursorHome()
	case "end", "G":
		moved = h.list.MoveCursorEnd()
	case "/":
		h.filtering = true
		return action.Render{}
	case "esc":
		if h.list.Filter != "" {
			h.list.SetFilter("")
			return action.Render{}
		}
		return nil
	case "?":
		return action.ToggleHelp{}
	case "ctrl+l":
		return action.ToggleShowLogger{}
	case "q":
		return action.Quit{}
	case "f5":
		return action.RefreshServices{}
	case "a":
		return action.EnterMode{Mode: action.AddServiceForm()}
	case "x":
		return action.CancelTask{}
	default:
		return h.unitKey(msg)
	}
	if moved {
		h.list.EnsureCursorVisible(rows)
		return action.Render{}
	}
	return nil
}

// unitKey maps keys acting on the focused unit.
func (h *Home) unitKey(msg tea.KeyMsg) action.Action {
	unit, ok := h.focusUnit()
	if !ok {
		return nil
	}
	switch msg.String() {
	case "s":
		return action.StartService{Unit: unit}
	case "S":
		return action.StopService{Unit: unit}
	case "r":
		return action.RestartService{Unit: unit}
	case "R":
		return action.ReloadService{Unit: unit}
	case "E":
		if path := h.unitPath(unit); path != "" {
			return action.EditUnitFile{Unit: unit, Path: path}
		}
		h.lookupPath(unit, true)
		return nil
	case "c":
		return action.CopyUnitFilePath{}
	}
	if h.mode.Kind != action.ModeServiceList {
		return nil
	}
	switch msg.String() {
	case "e":
		return action.EnableService{Unit: unit}
	case "d":
		return action.DisableService{Unit: unit}
	case "enter", "l":
		return action.EnterMode{Mode: action.Logs(unit)}
	}
	return nil
}

func (h *Home) handleFilterKey(msg tea.KeyMsg) action.Action {
	rows := h.listRows()
	switch msg.Type {
	case tea.KeyEsc:
		h.filtering = false
		h.list.SetFilter("")
	case tea.KeyEnter:
		h.filtering = false
	case tea.KeyBackspace:
		h.list.DeleteFilterRuneBackward()
	case tea.KeyCtrlW:
		h.list.DeleteFilterWordBackward()
	case tea.KeyCtrlU:
		h.list.SetFilter("")
	case tea.KeyUp:
		h.list.MoveCursorBy(-1)
	case tea.KeyDown:
		h.list.MoveCursorBy(1)
	case tea.KeySpace:
		h.list.AppendFilter(" ")
	case tea.KeyRunes:
		h.list.AppendFilter(string(msg.Runes))
	default:
		return nil
	}
	h.list.EnsureCursorVisible(rows)
	return action.Render{}
}

func (h *Home) handleLogsKey(msg tea.KeyMsg) action.Action {
	page := h.visibleLogRows()
	switch msg.String() {
	case "up", "k":
		return action.ScrollUp{N: 1}
	case "down", "j":
		return action.ScrollDown{N: 1}
	case "pgup", "ctrl+b":
		return action.ScrollUp{N: page}
	case "pgdown", "ctrl+f", " ":
		return action.ScrollDown{N: page}
	case "home", "g":
		return action.ScrollToTop{}
	case "end", "G":
		return action.ScrollToBottom{}
	case "esc", "q", "h":
		return action.EnterMode{Mode: action.ServiceList()}
	case "?":
		return action.ToggleHelp{}
	case "ctrl+l":
		return action.ToggleShowLogger{}
	case "x":
		return action.CancelTask{}
	}
	return h.unitKey(msg)
}

func (h *Home) handleFormKey(msg tea.KeyMsg) action.Action {
	if h.form == nil {
		h.form = newServiceForm()
	}
	spec, done, cancel := h.form.Update(msg)
	switch {
	case cancel:
		h.form = nil
		h.mode = action.ServiceList()
		return action.Render{}
	case done:
		h.form = nil
		h.mode = action.ServiceList()
		return action.AddService{Spec: spec}
	}
	return action.Render{}
}
