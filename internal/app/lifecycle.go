package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/unit-control/internal/action"
	"github.com/atomicstack/unit-control/internal/logging/events"
)

func (a *App) startUI(ctx context.Context) {
	a.terminal = a.newTerminal()
	a.listener = a.newListener(ctx, a.terminal.Input(), a.queue)
}

// stopUI stops the terminal and listener and joins both.
func (a *App) stopUI() error {
	if a.terminal == nil {
		return nil
	}
	terminal, listener := a.terminal, a.listener
	a.terminal, a.listener = nil, nil
	listener.Stop()
	terminal.Stop()
	var g errgroup.Group
	g.Go(terminal.Wait)
	g.Go(listener.Wait)
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: join: %v", ErrTerminal, err)
	}
	return nil
}

// suspend hands the terminal back to the shell, then rebuilds the terminal
// and listener once the process is continued.
func (a *App) suspend(ctx context.Context) error {
	events.Lifecycle.Suspend()
	a.shouldSuspend = false
	if err := a.terminal.Suspend(); err != nil {
		a.stopUI()
		return fmt.Errorf("%w: suspend: %v", ErrTerminal, err)
	}
	if err := a.stopUI(); err != nil {
		return err
	}
	a.startUI(ctx)
	a.queue.Send(action.Resume{})
	a.queue.Send(action.Render{})
	return nil
}

func (a *App) quit() error {
	events.Lifecycle.Quit()
	return a.stopUI()
}

// releaseForSubprocess stops input and hands the terminal to a child
// process.
func (a *App) releaseForSubprocess() error {
	a.listener.Stop()
	if err := a.listener.Wait(); err != nil {
		return fmt.Errorf("%w: listener: %v", ErrTerminal, err)
	}
	if err := a.terminal.Release(); err != nil {
		return fmt.Errorf("%w: %v", ErrTerminal, err)
	}
	return nil
}

// reclaimTerminal takes the terminal back after a child process exits and
// starts a fresh listener.
func (a *App) reclaimTerminal(ctx context.Context) error {
	if err := a.terminal.Restore(); err != nil {
		return fmt.Errorf("%w: %v", ErrTerminal, err)
	}
	a.terminal.Clear()
	a.listener = a.newListener(ctx, a.terminal.Input(), a.queue)
	return nil
}
