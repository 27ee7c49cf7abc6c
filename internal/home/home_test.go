package home

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/atomicstack/unit-control/internal/action"
	"github.com/atomicstack/unit-control/internal/systemd"
)

type fakeDirectory struct {
	mu         sync.Mutex
	units      []systemd.UnitWithStatus
	listErr    error
	stateErr   error
	stateCalls []string
	logs       []string
	path       string
	pathErr    error
	followed   chan struct{}
	cancelled  chan struct{}
	// gate, when set, holds SetUnitState until it is closed or ctx ends.
	gate chan struct{}
}

func newFakeDirectory(units ...systemd.UnitWithStatus) *fakeDirectory {
	return &fakeDirectory{
		units:     units,
		followed:  make(chan struct{}, 1),
		cancelled: make(chan struct{}, 1),
	}
}

func (f *fakeDirectory) ListUnits(ctx context.Context, scope systemd.Scope, filter []string) ([]systemd.UnitWithStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]systemd.UnitWithStatus(nil), f.units...), nil
}

func (f *fakeDirectory) SetUnitState(ctx context.Context, unit systemd.UnitID, verb systemd.Verb) error {
	f.mu.Lock()
	f.stateCalls = append(f.stateCalls, fmt.Sprintf("%s %s", verb, unit.Name))
	gate, err := f.gate, f.stateErr
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeDirectory) UnitFilePath(ctx context.Context, unit systemd.UnitID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path, f.pathErr
}

func (f *fakeDirectory) Logs(ctx context.Context, unit systemd.UnitID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.logs...), nil
}

func (f *fakeDirectory) FollowLogs(ctx context.Context, unit systemd.UnitID, fn func(string)) error {
	f.followed <- struct{}{}
	<-ctx.Done()
	f.cancelled <- struct{}{}
	return nil
}

func (f *fakeDirectory) DaemonReload(ctx context.Context, scope systemd.Scope) error {
	return nil
}

type chanSender struct {
	ch chan action.Action
}

func newChanSender() *chanSender {
	return &chanSender{ch: make(chan action.Action, 1024)}
}

func (s *chanSender) Send(a action.Action) {
	select {
	case s.ch <- a:
	default:
	}
}

// waitFor returns the first sent action for which match is true.
func (s *chanSender) waitFor(t *testing.T, match func(action.Action) bool) action.Action {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case a := <-s.ch:
			if match(a) {
				return a
			}
		case <-deadline:
			t.Fatalf("timed out waiting for action")
			return nil
		}
	}
}

func unit(name, active string) systemd.UnitWithStatus {
	return systemd.UnitWithStatus{Name: name, LoadState: "loaded", ActiveState: active, SubState: "running", EnabledState: "enabled"}
}

func newTestHome(t *testing.T, dir *fakeDirectory) (*Home, *chanSender) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	sender := newChanSender()
	h := New(ctx, Options{Directory: dir, Sender: sender})
	if err := h.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(h.Shutdown)
	return h, sender
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func TestScrollOffsetStaysClamped(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active")))
	id := systemd.UnitID{Name: "a.service"}
	h.mode = action.Logs(id)
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	h.logs.Set(id, lines)
	h.SetSize(80, 24)
	maxOffset := 100 - h.visibleLogRows()

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := rng.Intn(60)
		switch rng.Intn(4) {
		case 0:
			h.Reduce(action.ScrollUp{N: n})
		case 1:
			h.Reduce(action.ScrollDown{N: n})
		case 2:
			h.Reduce(action.ScrollToTop{})
		default:
			h.Reduce(action.ScrollToBottom{})
		}
		if off := h.LogOffset(); off < 0 || off > maxOffset {
			t.Fatalf("step %d: offset %d outside [0, %d]", i, off, maxOffset)
		}
	}
}

func TestScrollWithShortLogStaysAtZero(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active")))
	id := systemd.UnitID{Name: "a.service"}
	h.mode = action.Logs(id)
	h.logs.Set(id, []string{"one", "two"})
	h.Reduce(action.ScrollDown{N: 10})
	if h.LogOffset() != 0 {
		t.Fatalf("expected offset 0, got %d", h.LogOffset())
	}
	h.Reduce(action.ScrollToBottom{})
	if h.LogOffset() != 0 {
		t.Fatalf("expected offset 0 at bottom, got %d", h.LogOffset())
	}
}

func TestSetServicesReplacesUnits(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active"), unit("b.service", "active")))
	next := []systemd.UnitWithStatus{unit("c.service", "failed")}
	if got := h.Reduce(action.SetServices{Units: next}); got != (action.Render{}) {
		t.Fatalf("expected Render, got %#v", got)
	}
	units := h.Units()
	if len(units) != 1 || units[0].Name != "c.service" {
		t.Fatalf("expected full replacement, got %#v", units)
	}
	next[0].Name = "mutated"
	if h.Units()[0].Name != "c.service" {
		t.Fatalf("store aliased the caller's slice")
	}
}

func TestSetServicesKeepsSelection(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active"), unit("b.service", "active")))
	h.Reduce(action.Key{Msg: runes("j")})
	h.Reduce(action.SetServices{Units: []systemd.UnitWithStatus{
		unit("0.service", "active"), unit("a.service", "active"), unit("b.service", "inactive"),
	}})
	sel, ok := h.Selected()
	if !ok || sel.Name != "b.service" {
		t.Fatalf("expected b.service selected, got %#v", sel)
	}
}

func TestLogsStripEscapes(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active")))
	id := systemd.UnitID{Name: "a.service"}
	if got := h.Reduce(action.SetLogs{Unit: id, Lines: []string{"\x1b[31mred\x1b[0m"}}); got != (action.DebouncedRender{}) {
		t.Fatalf("expected DebouncedRender, got %#v", got)
	}
	h.Reduce(action.AppendLogLine{Unit: id, Line: "\x1b[1mbold\x1b[0m"})
	lines := h.Logs(id)
	if len(lines) != 2 || lines[0] != "red" || lines[1] != "bold" {
		t.Fatalf("unexpected lines %#v", lines)
	}
}

func TestToggles(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active")))
	h.Reduce(action.ToggleShowLogger{})
	if !h.ShowLogger() {
		t.Fatalf("expected logger shown")
	}
	h.Reduce(action.ToggleShowLogger{})
	if h.ShowLogger() {
		t.Fatalf("expected logger hidden")
	}
	h.Reduce(action.ToggleHelp{})
	if !h.ShowHelp() || h.Mode().Kind != action.ModeHelp {
		t.Fatalf("expected help mode, got %v", h.Mode().Kind)
	}
	h.Reduce(action.ToggleHelp{})
	if h.ShowHelp() || h.Mode().Kind != action.ModeServiceList {
		t.Fatalf("expected service list after second toggle, got %v", h.Mode().Kind)
	}
}

func TestStartServiceRefreshesOnSuccess(t *testing.T) {
	dir := newFakeDirectory(unit("a.service", "inactive"))
	h, sender := newTestHome(t, dir)
	id := systemd.UnitID{Name: "a.service"}
	h.Reduce(action.StartService{Unit: id})
	task := h.Task()
	if task == nil {
		t.Fatalf("expected tracked task")
	}
	sender.waitFor(t, func(a action.Action) bool { _, ok := a.(action.RefreshServices); return ok })
	<-task.Done()
	h.Reduce(action.SpinnerTick{})
	if h.Task() != nil {
		t.Fatalf("expected finished task to be reaped")
	}
	dir.mu.Lock()
	calls := append([]string(nil), dir.stateCalls...)
	dir.mu.Unlock()
	if len(calls) != 1 || calls[0] != "start a.service" {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestServiceFailureEntersError(t *testing.T) {
	dir := newFakeDirectory(unit("a.service", "inactive"))
	dir.stateErr = errors.New("access denied")
	h, sender := newTestHome(t, dir)
	h.Reduce(action.RestartService{Unit: systemd.UnitID{Name: "a.service"}})
	got := sender.waitFor(t, func(a action.Action) bool { _, ok := a.(action.EnterError); return ok })
	msg := got.(action.EnterError).Message
	if !strings.Contains(msg, "restart") || !strings.Contains(msg, "access denied") {
		t.Fatalf("unexpected message %q", msg)
	}
	h.Reduce(got)
	if h.Mode().Kind != action.ModeError || h.Mode().Message != msg {
		t.Fatalf("expected error mode, got %#v", h.Mode())
	}
}

func TestRefreshFailureEntersError(t *testing.T) {
	dir := newFakeDirectory(unit("a.service", "active"))
	h, sender := newTestHome(t, dir)
	dir.mu.Lock()
	dir.listErr = errors.New("bus gone")
	dir.mu.Unlock()
	h.Reduce(action.RefreshServices{})
	got := sender.waitFor(t, func(a action.Action) bool { _, ok := a.(action.EnterError); return ok })
	if !strings.Contains(got.(action.EnterError).Message, "bus gone") {
		t.Fatalf("unexpected error %#v", got)
	}
}

func TestLogsModeStartsTailAndCancelStopsIt(t *testing.T) {
	dir := newFakeDirectory(unit("a.service", "active"))
	dir.logs = []string{"one", "two"}
	dir.path = "/etc/systemd/system/a.service"
	h, sender := newTestHome(t, dir)
	id := systemd.UnitID{Name: "a.service"}
	h.Reduce(action.EnterMode{Mode: action.Logs(id)})

	var sawLogs, sawPath bool
	sender.waitFor(t, func(a action.Action) bool {
		switch v := a.(type) {
		case action.SetLogs:
			h.Reduce(v)
			sawLogs = true
		case action.SetUnitFilePath:
			if v.Path != dir.path {
				t.Fatalf("unexpected path %#v", v)
			}
			sawPath = true
		}
		return sawLogs && sawPath
	})
	if lines := h.Logs(id); len(lines) != 2 {
		t.Fatalf("unexpected logs %v", lines)
	}
	<-dir.followed

	h.Reduce(action.CancelTask{})
	select {
	case <-dir.cancelled:
	case <-time.After(2 * time.Second):
		t.Fatalf("log tail was not cancelled")
	}
}

func TestLeavingLogsCancelsTail(t *testing.T) {
	dir := newFakeDirectory(unit("a.service", "active"))
	h, _ := newTestHome(t, dir)
	h.Reduce(action.EnterMode{Mode: action.Logs(systemd.UnitID{Name: "a.service"})})
	<-dir.followed
	h.Reduce(action.EnterMode{Mode: action.ServiceList()})
	select {
	case <-dir.cancelled:
	case <-time.After(2 * time.Second):
		t.Fatalf("log tail was not cancelled")
	}
}

func TestListKeymap(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active"), unit("b.service", "inactive")))
	a := systemd.UnitID{Name: "a.service"}
	cases := []struct {
		msg  tea.KeyMsg
		want action.Action
	}{
		{runes("s"), action.StartService{Unit: a}},
		{runes("S"), action.StopService{Unit: a}},
		{runes("r"), action.RestartService{Unit: a}},
		{runes("R"), action.ReloadService{Unit: a}},
		{runes("e"), action.EnableService{Unit: a}},
		{runes("d"), action.DisableService{Unit: a}},
		{key(tea.KeyEnter), action.EnterMode{Mode: action.Logs(a)}},
		{runes("?"), action.ToggleHelp{}},
		{key(tea.KeyCtrlL), action.ToggleShowLogger{}},
		{runes("q"), action.Quit{}},
		{key(tea.KeyCtrlC), action.Quit{}},
		{key(tea.KeyCtrlZ), action.Suspend{}},
		{key(tea.KeyF5), action.RefreshServices{}},
		{runes("a"), action.EnterMode{Mode: action.AddServiceForm()}},
		{runes("c"), action.CopyUnitFilePath{}},
	}
	for _, tc := range cases {
		if got := h.Reduce(action.Key{Msg: tc.msg}); got != tc.want {
			t.Fatalf("key %q: expected %#v, got %#v", tc.msg.String(), tc.want, got)
		}
	}
	h.Reduce(action.Key{Msg: runes("j")})
	if got := h.Reduce(action.Key{Msg: runes("s")}); got != (action.StartService{Unit: systemd.UnitID{Name: "b.service"}}) {
		t.Fatalf("expected start of b.service after moving, got %#v", got)
	}
}

func TestFilterKeys(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("nginx.service", "active"), unit("sshd.service", "active")))
	h.Reduce(action.Key{Msg: runes("/")})
	h.Reduce(action.Key{Msg: runes("ssh")})
	if got := h.Reduce(action.Key{Msg: runes("s")}); got != (action.Render{}) {
		t.Fatalf("expected typing to stay in the filter, got %#v", got)
	}
	sel, ok := h.Selected()
	if !ok || sel.Name != "sshd.service" {
		t.Fatalf("expected sshd selected, got %#v", sel)
	}
	h.Reduce(action.Key{Msg: key(tea.KeyEsc)})
	if len(h.list.Items) != 2 || h.list.Filter != "" {
		t.Fatalf("expected filter cleared, got %q with %d items", h.list.Filter, len(h.list.Items))
	}
}

func TestLogsKeymap(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active")))
	id := systemd.UnitID{Name: "a.service"}
	h.mode = action.Logs(id)
	cases := []struct {
		msg  tea.KeyMsg
		want action.Action
	}{
		{runes("k"), action.ScrollUp{N: 1}},
		{runes("j"), action.ScrollDown{N: 1}},
		{runes("g"), action.ScrollToTop{}},
		{runes("G"), action.ScrollToBottom{}},
		{key(tea.KeyEsc), action.EnterMode{Mode: action.ServiceList()}},
		{runes("q"), action.EnterMode{Mode: action.ServiceList()}},
		{runes("r"), action.RestartService{Unit: id}},
		{runes("x"), action.CancelTask{}},
	}
	for _, tc := range cases {
		if got := h.Reduce(action.Key{Msg: tc.msg}); got != tc.want {
			t.Fatalf("key %q: expected %#v, got %#v", tc.msg.String(), tc.want, got)
		}
	}
	if got := h.Reduce(action.Key{Msg: runes("d")}); got != nil {
		t.Fatalf("disable is not bound in logs mode, got %#v", got)
	}
}

func TestErrorAndHelpKeysReturn(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active")))
	h.Reduce(action.EnterError{Message: "boom"})
	if got := h.Reduce(action.Key{Msg: key(tea.KeyEnter)}); got != (action.EnterMode{Mode: action.ServiceList()}) {
		t.Fatalf("unexpected error-mode key result %#v", got)
	}
	h.Reduce(action.ToggleHelp{})
	if got := h.Reduce(action.Key{Msg: key(tea.KeyEsc)}); got != (action.ToggleHelp{}) {
		t.Fatalf("unexpected help-mode key result %#v", got)
	}
}

func TestEditKeyUsesKnownPath(t *testing.T) {
	u := unit("a.service", "active")
	u.FilePath = "/lib/systemd/system/a.service"
	h, _ := newTestHome(t, newFakeDirectory(u))
	got := h.Reduce(action.Key{Msg: runes("E")})
	want := action.EditUnitFile{Unit: u.ID(), Path: u.FilePath}
	if got != want {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestEditKeyLooksUpMissingPath(t *testing.T) {
	dir := newFakeDirectory(unit("a.service", "active"))
	dir.path = "/etc/systemd/system/a.service"
	h, sender := newTestHome(t, dir)
	if got := h.Reduce(action.Key{Msg: runes("E")}); got != nil {
		t.Fatalf("expected lookup without immediate follow-up, got %#v", got)
	}
	got := sender.waitFor(t, func(a action.Action) bool { _, ok := a.(action.EditUnitFile); return ok })
	if got.(action.EditUnitFile).Path != dir.path {
		t.Fatalf("unexpected edit action %#v", got)
	}
}

func TestCopyUnitFilePath(t *testing.T) {
	u := unit("a.service", "active")
	u.FilePath = "/etc/systemd/system/a.service"
	h, _ := newTestHome(t, newFakeDirectory(u))
	var copied string
	orig := writeClipboard
	writeClipboard = func(text string) error { copied = text; return nil }
	t.Cleanup(func() { writeClipboard = orig })

	if got := h.Reduce(action.CopyUnitFilePath{}); got != (action.Render{}) {
		t.Fatalf("expected Render, got %#v", got)
	}
	if copied != u.FilePath {
		t.Fatalf("expected %q copied, got %q", u.FilePath, copied)
	}

	writeClipboard = func(string) error { return errors.New("no clipboard") }
	got := h.Reduce(action.CopyUnitFilePath{})
	if e, ok := got.(action.EnterError); !ok || !strings.Contains(e.Message, "no clipboard") {
		t.Fatalf("expected EnterError, got %#v", got)
	}
}

func TestAddServiceForm(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active")))
	h.Reduce(action.EnterMode{Mode: action.AddServiceForm()})
	enter := action.Key{Msg: key(tea.KeyEnter)}

	for i := 0; i < fieldCount; i++ {
		h.Reduce(enter)
	}
	if h.form == nil || h.form.Error() != "Name is required" {
		t.Fatalf("expected name validation error")
	}
	if h.Mode().Kind != action.ModeAddService {
		t.Fatalf("expected to stay in the form")
	}

	h.Reduce(action.Key{Msg: key(tea.KeyTab)})
	h.Reduce(action.Key{Msg: runes("app")})
	h.Reduce(enter)
	h.Reduce(enter)
	h.Reduce(action.Key{Msg: runes("/srv/app")})
	h.Reduce(enter)
	h.Reduce(action.Key{Msg: runes("/srv/app/run")})
	got := h.Reduce(enter)
	add, ok := got.(action.AddService)
	if !ok {
		t.Fatalf("expected AddService, got %#v", got)
	}
	if add.Spec.Name != "app" || add.Spec.ExecStart != "/srv/app/run" {
		t.Fatalf("unexpected spec %#v", add.Spec)
	}
	if add.Spec.Description != nil {
		t.Fatalf("expected omitted description")
	}
	if add.Spec.WorkingDir == nil || *add.Spec.WorkingDir != "/srv/app" {
		t.Fatalf("unexpected working dir %v", add.Spec.WorkingDir)
	}
	if h.Mode().Kind != action.ModeServiceList {
		t.Fatalf("expected service list after submit")
	}
}

func TestAddServiceFormCancel(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active")))
	h.Reduce(action.EnterMode{Mode: action.AddServiceForm()})
	h.Reduce(action.Key{Msg: runes("app")})
	h.Reduce(action.Key{Msg: key(tea.KeyEsc)})
	if h.Mode().Kind != action.ModeServiceList || h.form != nil {
		t.Fatalf("expected form dismissed")
	}
}

func TestViewRendersModes(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("nginx.service", "active"), unit("sshd.service", "failed")))
	h.SetSize(120, 20)
	view := h.View()
	for _, want := range []string{"nginx.service", "sshd.service", "UNIT", "2/2 units"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in list view:\n%s", want, view)
		}
	}
	h.Reduce(action.EnterError{Message: "Failed to open editor `nope`"})
	if view := h.View(); !strings.Contains(view, "Failed to open editor `nope`") {
		t.Fatalf("expected error message in view:\n%s", view)
	}
	h.Note("StartService(nginx.service)")
	h.Reduce(action.ToggleShowLogger{})
	if view := h.View(); !strings.Contains(view, "StartService(nginx.service)") {
		t.Fatalf("expected action log in view:\n%s", view)
	}
}

func TestViewFitsWidth(t *testing.T) {
	u := unit("a-service-with-a-very-long-name.service", "active")
	u.Description = strings.Repeat("long description ", 10)
	h, _ := newTestHome(t, newFakeDirectory(u))
	h.SetSize(40, 10)
	for i, line := range strings.Split(h.View(), "\n") {
		if w := ansi.StringWidth(line); w > 40 {
			t.Fatalf("line %d is %d wide: %q", i, w, line)
		}
	}
}

func TestScrollExtremeStepsClamp(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active")))
	id := systemd.UnitID{Name: "a.service"}
	h.mode = action.Logs(id)
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	h.logs.Set(id, lines)
	h.SetSize(80, 24)
	maxOffset := 100 - h.visibleLogRows()

	h.Reduce(action.ScrollDown{N: 10})
	h.Reduce(action.ScrollDown{N: math.MaxInt})
	if h.LogOffset() != maxOffset {
		t.Fatalf("expected offset %d after huge scroll down, got %d", maxOffset, h.LogOffset())
	}
	h.Reduce(action.ScrollUp{N: math.MaxInt})
	if h.LogOffset() != 0 {
		t.Fatalf("expected offset 0 after huge scroll up, got %d", h.LogOffset())
	}
	h.Reduce(action.ScrollDown{N: 10})
	h.Reduce(action.ScrollUp{N: -5})
	h.Reduce(action.ScrollDown{N: -5})
	if h.LogOffset() != 10 {
		t.Fatalf("negative steps must not move the offset, got %d", h.LogOffset())
	}
}

func TestLeavingLogsKeepsServiceOperation(t *testing.T) {
	dir := newFakeDirectory(unit("a.service", "inactive"))
	dir.gate = make(chan struct{})
	h, sender := newTestHome(t, dir)
	id := systemd.UnitID{Name: "a.service"}
	h.Reduce(action.EnterMode{Mode: action.Logs(id)})
	<-dir.followed
	h.Reduce(action.SetLogs{Unit: id, Lines: []string{"one"}})

	h.Reduce(action.StartService{Unit: id})
	h.Reduce(action.EnterMode{Mode: action.ServiceList()})
	select {
	case <-dir.cancelled:
	case <-time.After(2 * time.Second):
		t.Fatalf("log tail was not cancelled")
	}
	if lines := h.Logs(id); len(lines) != 0 {
		t.Fatalf("expected log buffer released, got %v", lines)
	}
	if h.Task() == nil {
		t.Fatalf("service operation dropped when leaving logs")
	}

	close(dir.gate)
	sender.waitFor(t, func(a action.Action) bool { _, ok := a.(action.RefreshServices); return ok })
	dir.mu.Lock()
	calls := append([]string(nil), dir.stateCalls...)
	dir.mu.Unlock()
	if len(calls) != 1 || calls[0] != "start a.service" {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestCancelTaskAbortsServiceOperation(t *testing.T) {
	dir := newFakeDirectory(unit("a.service", "inactive"))
	dir.gate = make(chan struct{})
	defer close(dir.gate)
	h, sender := newTestHome(t, dir)
	h.Reduce(action.StopService{Unit: systemd.UnitID{Name: "a.service"}})
	task := h.Task()
	if task == nil {
		t.Fatalf("expected tracked task")
	}
	h.Reduce(action.CancelTask{})
	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("task did not stop after CancelTask")
	}
	if h.Task() != nil {
		t.Fatalf("expected task cleared")
	}
	for {
		select {
		case a := <-sender.ch:
			if _, ok := a.(action.RefreshServices); ok {
				t.Fatalf("cancelled operation must not refresh")
			}
		default:
			return
		}
	}
}

func TestStaleSnapshotIsDropped(t *testing.T) {
	h, _ := newTestHome(t, newFakeDirectory(unit("a.service", "active")))
	if got := h.Reduce(action.SetServices{Units: []systemd.UnitWithStatus{unit("new.service", "active")}, Seq: 2}); got != (action.Render{}) {
		t.Fatalf("expected Render, got %#v", got)
	}
	if got := h.Reduce(action.SetServices{Units: []systemd.UnitWithStatus{unit("old.service", "active")}, Seq: 1}); got != nil {
		t.Fatalf("expected stale snapshot ignored, got %#v", got)
	}
	if units := h.Units(); len(units) != 1 || units[0].Name != "new.service" {
		t.Fatalf("stale snapshot replaced units: %#v", units)
	}
	h.Reduce(action.SetServices{Units: []systemd.UnitWithStatus{unit("manual.service", "active")}})
	if units := h.Units(); len(units) != 1 || units[0].Name != "manual.service" {
		t.Fatalf("unsequenced snapshot must apply, got %#v", units)
	}
}

func TestRefreshesCarryIncreasingSequence(t *testing.T) {
	h, sender := newTestHome(t, newFakeDirectory(unit("a.service", "active")))
	h.Reduce(action.RefreshServices{})
	h.Reduce(action.RefreshServices{})
	seen := map[uint64]bool{}
	sender.waitFor(t, func(a action.Action) bool {
		if v, ok := a.(action.SetServices); ok {
			seen[v.Seq] = true
		}
		return len(seen) == 2
	})
	if !seen[1] || !seen[2] {
		t.Fatalf("expected sequences 1 and 2, got %v", seen)
	}
}
