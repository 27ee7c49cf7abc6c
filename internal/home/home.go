// Package home holds the dashboard view model. Home is owned by the dispatch
// loop: it is mutated only through Reduce and read through View, so it needs
// no locking. Background work started by Home reports back exclusively by
// sending actions.
package home

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/ansi"

	"github.com/atomicstack/unit-control/internal/action"
	"github.com/atomicstack/unit-control/internal/logging"
	"github.com/atomicstack/unit-control/internal/logging/events"
	"github.com/atomicstack/unit-control/internal/state"
	"github.com/atomicstack/unit-control/internal/systemd"
	uistate "github.com/atomicstack/unit-control/internal/ui/state"
)

const (
	defaultHeight  = 24
	defaultLogSize = 5000
	recentLimit    = 8
)

// Options configure a Home.
type Options struct {
	Directory systemd.Directory
	Sender    action.Sender
	Scope     systemd.Scope
	Units     []string
	// LogLimit caps the lines kept per unit; zero uses the default.
	LogLimit int
}

type pathResult struct {
	path string
	err  string
}

// Home is the single view model of the dashboard.
type Home struct {
	ctx   context.Context
	dir   systemd.Directory
	send  action.Sender
	scope systemd.Scope
	allow []string

	mode     action.Mode
	helpBack action.Mode

	units state.UnitStore
	logs  state.LogStore
	list  *uistate.List
	paths map[systemd.UnitID]pathResult

	filtering bool
	form      *serviceForm

	logOffset int
	logFollow bool

	width  int
	height int

	task     *Task
	tail     *Task
	tailUnit systemd.UnitID

	refreshSeq uint64
	appliedSeq uint64

	spinnerFrame int
	showLogger   bool
	showHelp     bool
	status       string
	recent       []string
}

// New builds a Home. ctx bounds every background task it starts.
func New(ctx context.Context, opts Options) *Home {
	limit := opts.LogLimit
	if limit <= 0 {
		limit = defaultLogSize
	}
	return &Home{
		ctx:   ctx,
		dir:   opts.Directory,
		send:  opts.Sender,
		scope: opts.Scope,
		allow: append([]string(nil), opts.Units...),
		mode:  action.ServiceList(),
		units: state.NewUnitStore(),
		logs:  state.NewLogStore(limit),
		list:  uistate.NewList(),
		paths: make(map[systemd.UnitID]pathResult),
	}
}

// Init loads the first unit snapshot synchronously.
func (h *Home) Init(ctx context.Context) error {
	units, err := h.dir.ListUnits(ctx, h.scope, h.allow)
	if err != nil {
		return err
	}
	h.setUnits(units)
	events.App.Units(h.scope.String(), len(units))
	return nil
}

// Mode returns the active mode.
func (h *Home) Mode() action.Mode { return h.mode }

// Units returns the current unit snapshot.
func (h *Home) Units() []systemd.UnitWithStatus { return h.units.Entries() }

// Logs returns the buffered lines for unit.
func (h *Home) Logs(unit systemd.UnitID) []string { return h.logs.Lines(unit) }

// LogOffset returns the first visible log line.
func (h *Home) LogOffset() int { return h.logOffset }

// Task returns the in-flight service operation, if any.
func (h *Home) Task() *Task { return h.task }

// Selected returns the unit under the list cursor.
func (h *Home) Selected() (systemd.UnitWithStatus, bool) { return h.list.Selected() }

// ShowLogger reports whether the action log panel is visible.
func (h *Home) ShowLogger() bool { return h.showLogger }

// ShowHelp reports whether the help screen is up.
func (h *Home) ShowHelp() bool { return h.showHelp }

// SetSize records the terminal geometry.
func (h *Home) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.clampLogOffset()
	h.list.EnsureCursorVisible(h.listRows())
}

// Note records a dispatched action for the logger panel.
func (h *Home) Note(desc string) {
	h.recent = append(h.recent, desc)
	if len(h.recent) > recentLimit {
		h.recent = append([]string(nil), h.recent[len(h.recent)-recentLimit:]...)
	}
}

// Shutdown cancels every background task Home started.
func (h *Home) Shutdown() {
	if h.task != nil {
		h.task.Cancel()
	}
	if h.tail != nil {
		h.tail.Cancel()
	}
}

// Reduce applies a to the view model and returns the follow-up action, or
// nil when there is none.
func (h *Home) Reduce(a action.Action) action.Action {
	h.reapTask()
	switch v := a.(type) {
	case action.RefreshServices:
		h.refresh()
		return nil
	case action.SetServices:
		if v.Seq != 0 {
			if v.Seq <= h.appliedSeq {
				logging.Errorf("dropping stale unit snapshot %d (have %d)", v.Seq, h.appliedSeq)
				return nil
			}
			h.appliedSeq = v.Seq
		}
		h.setUnits(v.Units)
		events.Unit.Refresh(len(v.Units))
		return action.Render{}
	case action.SetLogs:
		h.logs.Set(v.Unit, stripLines(v.Lines))
		events.Unit.Logs(v.Unit.String(), len(v.Lines))
		h.afterLogsChanged(v.Unit)
		return action.DebouncedRender{}
	case action.AppendLogLine:
		h.logs.Append(v.Unit, ansi.Strip(v.Line))
		h.afterLogsChanged(v.Unit)
		return action.DebouncedRender{}
	case action.EnterMode:
		return h.enterMode(v.Mode)
	case action.EnterError:
		return h.enterMode(action.Error(v.Message))
	case action.StartService:
		return h.runVerb(v.Unit, systemd.VerbStart)
	case action.StopService:
		return h.runVerb(v.Unit, systemd.VerbStop)
	case action.RestartService:
		return h.runVerb(v.Unit, systemd.VerbRestart)
	case action.ReloadService:
		return h.runVerb(v.Unit, systemd.VerbReload)
	case action.EnableService:
		return h.runVerb(v.Unit, systemd.VerbEnable)
	case action.DisableService:
		return h.runVerb(v.Unit, systemd.VerbDisable)
	case action.ScrollUp:
		h.logFollow = false
		h.scrollBy(-clampSteps(v.N))
		return action.Render{}
	case action.ScrollDown:
		h.scrollBy(clampSteps(v.N))
		h.logFollow = h.logOffset == h.maxLogOffset()
		return action.Render{}
	case action.ScrollToTop:
		h.logFollow = false
		h.logOffset = 0
		return action.Render{}
	case action.ScrollToBottom:
		h.logFollow = true
		h.logOffset = h.maxLogOffset()
		return action.Render{}
	case action.CancelTask:
		h.cancelTask()
		return action.Render{}
	case action.ToggleShowLogger:
		h.showLogger = !h.showLogger
		return action.Render{}
	case action.ToggleHelp:
		return h.toggleHelp()
	case action.SetUnitFilePath:
		h.paths[v.Unit] = pathResult{path: v.Path, err: v.Err}
		return action.Render{}
	case action.CopyUnitFilePath:
		return h.copyUnitFilePath()
	case action.SpinnerTick:
		if h.task == nil {
			return nil
		}
		h.spinnerFrame = (h.spinnerFrame + 1) % len(spinnerStyle.Frames)
		return action.Render{}
	case action.Key:
		return h.handleKey(v.Msg)
	}
	return nil
}

func (h *Home) setUnits(units []systemd.UnitWithStatus) {
	h.units.SetEntries(units)
	h.list.UpdateItems(h.units.Entries())
	h.list.EnsureCursorVisible(h.listRows())
}

func (h *Home) refresh() {
	h.refreshSeq++
	seq := h.refreshSeq
	ctx, dir, scope, allow, send := h.ctx, h.dir, h.scope, h.allow, h.send
	go func() {
		units, err := dir.ListUnits(ctx, scope, allow)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logging.Error(err)
			send.Send(action.EnterError{Message: fmt.Sprintf("Failed to refresh services: %v", err)})
			return
		}
		send.Send(action.SetServices{Units: units, Seq: seq})
	}()
}

func (h *Home) enterMode(mode action.Mode) action.Action {
	prev := h.mode
	h.mode = mode
	h.showHelp = mode.Kind == action.ModeHelp
	h.filtering = false
	switch mode.Kind {
	case action.ModeServiceList:
		h.releaseLogs()
		h.form = nil
	case action.ModeLogs:
		if prev.Kind != action.ModeLogs || prev.Unit != mode.Unit || h.tail == nil {
			h.startLogs(mode.Unit)
		}
	case action.ModeAddService:
		h.form = newServiceForm()
	}
	return action.Render{}
}

func (h *Home) startLogs(unit systemd.UnitID) {
	if h.tailUnit != unit {
		h.releaseLogs()
	}
	h.stopTail()
	h.logOffset = 0
	h.logFollow = true
	dir, send := h.dir, h.send
	h.tailUnit = unit
	h.tail = startTask(h.ctx, "logs "+unit.String(), func(ctx context.Context) {
		lines, err := dir.Logs(ctx, unit)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logging.Error(err)
			send.Send(action.EnterError{Message: fmt.Sprintf("Failed to read logs for `%s`: %v", unit.Name, err)})
			return
		}
		send.Send(action.SetLogs{Unit: unit, Lines: lines})
		err = dir.FollowLogs(ctx, unit, func(line string) {
			if ctx.Err() == nil {
				send.Send(action.AppendLogLine{Unit: unit, Line: line})
			}
		})
		if err != nil && ctx.Err() == nil {
			logging.Error(err)
		}
	})
	if _, ok := h.paths[unit]; !ok {
		h.lookupPath(unit, false)
	}
}

// lookupPath resolves the unit file path in the background. With edit set,
// a successful lookup continues into the editor.
func (h *Home) lookupPath(unit systemd.UnitID, edit bool) {
	ctx, dir, send := h.ctx, h.dir, h.send
	go func() {
		path, err := dir.UnitFilePath(ctx, unit)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logging.Error(err)
			send.Send(action.SetUnitFilePath{Unit: unit, Err: err.Error()})
			if edit {
				send.Send(action.EnterError{Message: fmt.Sprintf("Unable to find unit file for `%s`", unit.Name)})
			}
			return
		}
		send.Send(action.SetUnitFilePath{Unit: unit, Path: path})
		if edit {
			send.Send(action.EditUnitFile{Unit: unit, Path: path})
		}
	}()
}

func (h *Home) runVerb(unit systemd.UnitID, verb systemd.Verb) action.Action {
	if h.task != nil {
		h.task.Cancel()
	}
	dir, send := h.dir, h.send
	label := fmt.Sprintf("%s %s", verb, unit)
	events.Unit.State(unit.String(), string(verb))
	h.spinnerFrame = 0
	h.task = startTask(h.ctx, label, func(ctx context.Context) {
		err := dir.SetUnitState(ctx, unit, verb)
		events.Unit.StateResult(unit.String(), string(verb), err)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logging.Error(err)
			send.Send(action.EnterError{Message: fmt.Sprintf("Failed to %s service `%s`: %v", verb, unit.Name, err)})
			return
		}
		send.Send(action.RefreshServices{})
	})
	go tickSpinner(h.task, send)
	return action.Render{}
}

func (h *Home) reapTask() {
	if h.task != nil && h.task.finished() {
		events.Task.Done(h.task.ID.String(), h.task.Label)
		h.task = nil
	}
}

// cancelTask cancels the service operation in flight, or the log tail when
// nothing else is running.
func (h *Home) cancelTask() {
	if h.task != nil {
		h.task.Cancel()
		h.task = nil
		return
	}
	h.stopTail()
}

func (h *Home) stopTail() {
	if h.tail != nil {
		h.tail.Cancel()
		h.tail = nil
	}
}

// releaseLogs stops the log follow and frees the followed unit's buffer.
func (h *Home) releaseLogs() {
	h.stopTail()
	if h.tailUnit != (systemd.UnitID{}) {
		h.logs.Drop(h.tailUnit)
		h.tailUnit = systemd.UnitID{}
	}
}

func (h *Home) toggleHelp() action.Action {
	if h.mode.Kind == action.ModeHelp {
		back := h.helpBack
		h.helpBack = action.Mode{}
		if back.Kind == action.ModeHelp {
			back = action.ServiceList()
		}
		h.mode = back
		h.showHelp = false
		return action.Render{}
	}
	h.helpBack = h.mode
	h.mode = action.Help()
	h.showHelp = true
	h.filtering = false
	return action.Render{}
}

var writeClipboard = clipboard.WriteAll

func (h *Home) copyUnitFilePath() action.Action {
	unit, ok := h.focusUnit()
	if !ok {
		return nil
	}
	path := h.unitPath(unit)
	if path == "" {
		return action.EnterError{Message: fmt.Sprintf("No unit file path known for `%s`", unit.Name)}
	}
	if err := writeClipboard(path); err != nil {
		logging.Error(err)
		return action.EnterError{Message: fmt.Sprintf("Failed to copy `%s` to clipboard: %v", path, err)}
	}
	events.Unit.CopyPath(unit.String(), path)
	h.status = "Copied " + path
	return action.Render{}
}

// focusUnit is the unit the current mode acts on.
func (h *Home) focusUnit() (systemd.UnitID, bool) {
	if h.mode.Kind == action.ModeLogs {
		return h.mode.Unit, true
	}
	u, ok := h.list.Selected()
	if !ok {
		return systemd.UnitID{}, false
	}
	return u.ID(), true
}

func (h *Home) unitPath(unit systemd.UnitID) string {
	if res, ok := h.paths[unit]; ok && res.path != "" {
		return res.path
	}
	if u, ok := h.units.Find(unit); ok {
		return u.FilePath
	}
	return ""
}

func (h *Home) afterLogsChanged(unit systemd.UnitID) {
	if h.mode.Kind != action.ModeLogs || h.mode.Unit != unit {
		return
	}
	if h.logFollow {
		h.logOffset = h.maxLogOffset()
		return
	}
	h.clampLogOffset()
}

func (h *Home) visibleLogRows() int {
	height := h.height
	if height <= 0 {
		height = defaultHeight
	}
	rows := height - logChromeRows
	if h.showLogger {
		rows -= len(h.recent) + 1
	}
	if rows < 1 {
		return 1
	}
	return rows
}

func (h *Home) maxLogOffset() int {
	if h.mode.Kind != action.ModeLogs {
		return 0
	}
	limit := h.logs.Len(h.mode.Unit) - h.visibleLogRows()
	if limit < 0 {
		return 0
	}
	return limit
}

// clampSteps turns a scroll request into a non-negative step count.
func clampSteps(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// scrollBy moves the log offset by delta and clamps it without overflowing.
func (h *Home) scrollBy(delta int) {
	limit := h.maxLogOffset()
	switch {
	case delta > 0 && h.logOffset > limit-delta:
		h.logOffset = limit
	case delta < 0 && h.logOffset < -delta:
		h.logOffset = 0
	default:
		h.logOffset += delta
	}
	h.clampLogOffset()
}

func (h *Home) clampLogOffset() {
	if limit := h.maxLogOffset(); h.logOffset > limit {
		h.logOffset = limit
	}
	if h.logOffset < 0 {
		h.logOffset = 0
	}
}

func stripLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ansi.Strip(line)
	}
	return out
}
