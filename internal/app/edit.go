package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/atomicstack/unit-control/internal/action"
	"github.com/atomicstack/unit-control/internal/logging"
	"github.com/atomicstack/unit-control/internal/logging/events"
	"github.com/atomicstack/unit-control/internal/systemd"
	"github.com/atomicstack/unit-control/internal/unitfile"
)

const (
	defaultEditorEnv = "EDITOR"
	defaultEditor    = "vim"
)

// runEditor runs editor on path attached to the controlling terminal. An
// editor that starts but exits non-zero is not a launch failure.
func runEditor(editor, path string) error {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return errors.New("empty editor command")
	}
	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logging.Errorf("editor %s exited: %v", editor, err)
		return nil
	}
	return err
}

func (a *App) editor() string {
	name := a.cfg.EditorEnv
	if name == "" {
		name = defaultEditorEnv
	}
	if v := strings.TrimSpace(a.getenv(name)); v != "" {
		return v
	}
	if a.cfg.Editor != "" {
		return a.cfg.Editor
	}
	return defaultEditor
}

func readUnitFile(path string) string {
	contents, err := unitfile.ReadOrEmpty(path)
	if err != nil {
		logging.Errorf("failed to read unit file `%s`: %v", path, err)
	}
	return contents
}

// editUnitFile opens path in the editor and reloads the unit when the file
// changed. No other action is processed while the editor runs.
func (a *App) editUnitFile(ctx context.Context, unit systemd.UnitID, path string) error {
	if err := a.releaseForSubprocess(); err != nil {
		return err
	}
	before := readUnitFile(path)
	editor := a.editor()
	events.Lifecycle.EditStart(unit.String(), path, editor)
	editErr := a.runEditor(editor, path)

	if err := a.reclaimTerminal(ctx); err != nil {
		return err
	}
	if editErr != nil {
		logging.Error(editErr)
		events.Lifecycle.Abort("editor", editErr)
		a.queue.Send(action.EnterError{Message: fmt.Sprintf("Failed to open editor `%s`: %v", editor, editErr)})
		return nil
	}
	changed := readUnitFile(path) != before
	events.Lifecycle.EditDone(unit.String(), changed)
	if changed {
		a.queue.Send(action.ReloadService{Unit: unit})
	}
	a.queue.Send(action.EnterMode{Mode: action.ServiceList()})
	return nil
}

func (a *App) unitDir() string {
	if a.cfg.UnitDir != "" {
		return a.cfg.UnitDir
	}
	return "/etc/systemd/system"
}

// addService writes a unit file for spec, enables it, lets the user edit it
// and starts it. Each failure aborts the remaining steps.
func (a *App) addService(ctx context.Context, spec action.ServiceSpec) error {
	if err := a.releaseForSubprocess(); err != nil {
		return err
	}
	followup := a.createService(ctx, spec)
	if err := a.reclaimTerminal(ctx); err != nil {
		return err
	}
	a.queue.Send(followup)
	return nil
}

func (a *App) createService(ctx context.Context, spec action.ServiceSpec) action.Action {
	path := unitfile.Path(a.unitDir(), spec.Name)
	name := systemd.NormalizeName(spec.Name)
	unit := systemd.UnitID{Name: name, Scope: a.serviceScope()}
	events.Lifecycle.AddService(name, path)

	if unitfile.Exists(path) {
		if bak, err := unitfile.Backup(path); err != nil {
			return a.abort("backup", err, fmt.Sprintf("Failed to create bak file `%s`", bak))
		}
	}
	if err := unitfile.Write(path, unitfile.Render(spec)); err != nil {
		return a.abort("write", err, fmt.Sprintf("Failed to create unit file `%s`", path))
	}
	if err := a.dir.SetUnitState(ctx, unit, systemd.VerbEnable); err != nil {
		return a.abort("enable", err, fmt.Sprintf("Failed to enable service `%s`", spec.Name))
	}
	editor := a.editor()
	if err := a.runEditor(editor, path); err != nil {
		return a.abort("editor", err, fmt.Sprintf("Failed to open editor `%s`: %v", editor, err))
	}
	if err := a.dir.DaemonReload(ctx, unit.Scope); err != nil {
		return a.abort("daemon-reload", err, fmt.Sprintf("Failed to start service `%s`", spec.Name))
	}
	if err := a.dir.SetUnitState(ctx, unit, systemd.VerbStart); err != nil {
		return a.abort("start", err, fmt.Sprintf("Failed to start service `%s`", spec.Name))
	}
	return action.RefreshServices{}
}

func (a *App) abort(step string, err error, message string) action.Action {
	logging.Error(err)
	events.Lifecycle.Abort(step, err)
	return action.EnterError{Message: message}
}

// serviceScope is where new units are created. ScopeAll creates system units.
func (a *App) serviceScope() systemd.Scope {
	if a.cfg.Scope == systemd.ScopeUser {
		return systemd.ScopeUser
	}
	return systemd.ScopeSystem
}
