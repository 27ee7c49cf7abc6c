// Package app runs the dispatch loop: one goroutine that takes actions off
// the queue in FIFO order, applies them to the view model and drives the
// terminal through suspend, editor and quit transitions.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/unit-control/internal/action"
	"github.com/atomicstack/unit-control/internal/backend"
	"github.com/atomicstack/unit-control/internal/debounce"
	"github.com/atomicstack/unit-control/internal/home"
	"github.com/atomicstack/unit-control/internal/logging"
	"github.com/atomicstack/unit-control/internal/logging/events"
	"github.com/atomicstack/unit-control/internal/systemd"
	"github.com/atomicstack/unit-control/internal/ui"
)

// ErrTerminal wraps failures to hand the terminal over or take it back.
var ErrTerminal = errors.New("terminal")

// Config describes user-provided application options.
type Config struct {
	Scope systemd.Scope
	Units []string
	// EditorEnv names the environment variable holding the editor command.
	EditorEnv string
	Editor    string
	UnitDir   string
	Debounce  time.Duration
	Refresh   time.Duration
	LogLimit  int
}

// Terminal is the render pipeline.
type Terminal interface {
	Input() <-chan tea.Msg
	Draw(frame string)
	Clear()
	Release() error
	Restore() error
	Suspend() error
	Stop()
	Wait() error
}

// Listener forwards terminal input to the queue.
type Listener interface {
	Stop()
	Wait() error
}

// App owns the queue, the view model and the terminal pair.
type App struct {
	cfg   Config
	dir   systemd.Directory
	queue *action.Queue
	home  *home.Home

	coordinator *debounce.Coordinator
	watcher     *backend.Watcher

	terminal Terminal
	listener Listener

	shouldQuit    bool
	shouldSuspend bool

	newTerminal func() Terminal
	newListener func(ctx context.Context, input <-chan tea.Msg, send action.Sender) Listener
	runEditor   func(editor, path string) error
	getenv      func(string) string
	observe     func(action.Action)
}

// New wires an App against dir.
func New(cfg Config, dir systemd.Directory) *App {
	return &App{
		cfg: cfg,
		dir: dir,
		newTerminal: func() Terminal {
			return ui.NewTerminal(ui.Options{AltScreen: true, StdInput: true})
		},
		newListener: func(ctx context.Context, input <-chan tea.Msg, send action.Sender) Listener {
			return ui.NewListener(ctx, input, send)
		},
		runEditor: runEditor,
		getenv:    os.Getenv,
	}
}

// Run starts the dashboard against the local service manager.
func Run(cfg Config) error {
	return New(cfg, systemd.NewClient()).Run(context.Background())
}

// Run executes the dispatch loop until Quit or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.queue = action.NewQueue()
	defer a.queue.Close()

	a.coordinator = debounce.New(a.cfg.Debounce, a.queue.Send)
	go a.coordinator.Run(ctx)
	defer a.coordinator.Stop()

	a.watcher = backend.NewWatcher(a.queue, a.cfg.Refresh)
	defer a.watcher.Stop()

	a.home = home.New(ctx, home.Options{
		Directory: a.dir,
		Sender:    a.queue,
		Scope:     a.cfg.Scope,
		Units:     a.cfg.Units,
		LogLimit:  a.cfg.LogLimit,
	})
	defer a.home.Shutdown()
	if err := a.home.Init(ctx); err != nil {
		logging.Error(err)
		return fmt.Errorf("unable to get services; check that systemd is running and try running this tool with sudo: %w", err)
	}

	a.startUI(ctx)
	a.render()

	for {
		act, ok := a.queue.Recv(ctx)
		if !ok {
			return a.stopUI()
		}
		if err := a.dispatch(ctx, act); err != nil {
			events.Action.Error(err)
			a.stopUI()
			return err
		}
		if a.shouldSuspend {
			if err := a.suspend(ctx); err != nil {
				return err
			}
		} else if a.shouldQuit {
			return a.quit()
		}
	}
}

func (a *App) dispatch(ctx context.Context, act action.Action) error {
	name := action.Name(act)
	events.Action.Dispatch(name, action.Describe(act))
	if a.observe != nil {
		a.observe(act)
	}
	if noted(act) {
		a.home.Note(action.Describe(act))
	}

	switch v := act.(type) {
	case action.Render:
		a.render()
	case action.DebouncedRender:
		a.coordinator.Request()
	case action.Noop:
	case action.Quit:
		a.shouldQuit = true
	case action.Suspend:
		a.shouldSuspend = true
	case action.Resume:
		a.shouldSuspend = false
		events.Lifecycle.Resume()
		a.watcher.Trigger()
	case action.Resize:
		a.home.SetSize(v.Width, v.Height)
		a.render()
	case action.EditUnitFile:
		return a.editUnitFile(ctx, v.Unit, v.Path)
	case action.AddService:
		return a.addService(ctx, v.Spec)
	default:
		if next := a.home.Reduce(act); next != nil {
			events.Action.Followup(name, action.Name(next))
			a.queue.Send(next)
		}
	}
	return nil
}

// noted filters out the actions too frequent to be worth showing in the
// action log panel.
func noted(act action.Action) bool {
	switch act.(type) {
	case action.Render, action.DebouncedRender, action.SpinnerTick, action.Key, action.AppendLogLine:
		return false
	}
	return true
}

func (a *App) render() {
	start := time.Now()
	a.terminal.Draw(a.home.View())
	events.Render.Frame(time.Since(start))
}
