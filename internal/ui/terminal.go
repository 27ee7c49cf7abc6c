package ui

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

const inputBuffer = 256

type frameMsg string

// bridge is the tea.Model run by Terminal. Its view is whatever frame was
// drawn last.
type bridge struct {
	frame string
	input chan<- tea.Msg
}

func (b *bridge) Init() tea.Cmd { return nil }

func (b *bridge) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case frameMsg:
		b.frame = string(m)
	case tea.KeyMsg, tea.WindowSizeMsg:
		select {
		case b.input <- m:
		default:
		}
	}
	return b, nil
}

func (b *bridge) View() string { return b.frame }

// Options configure a Terminal. Nil Input disables keyboard input; nil
// Output uses stdout.
type Options struct {
	AltScreen bool
	Input     io.Reader
	Output    io.Writer
	// StdInput reads from the process stdin. It takes precedence over Input.
	StdInput bool
}

// Terminal is the render pipeline.
type Terminal struct {
	program *tea.Program
	input   chan tea.Msg
	done    chan struct{}
	err     error
}

// NewTerminal starts a program in its own goroutine.
func NewTerminal(opts Options) *Terminal {
	input := make(chan tea.Msg, inputBuffer)
	progOpts := []tea.ProgramOption{tea.WithoutSignalHandler()}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if !opts.StdInput {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	t := &Terminal{
		program: tea.NewProgram(&bridge{input: input}, progOpts...),
		input:   input,
		done:    make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *Terminal) run() {
	defer close(t.done)
	_, err := t.program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		t.err = fmt.Errorf("terminal: %w", err)
	}
}

// Input carries decoded key and resize messages.
func (t *Terminal) Input() <-chan tea.Msg { return t.input }

// Draw replaces the frame on screen.
func (t *Terminal) Draw(frame string) {
	t.program.Send(frameMsg(frame))
}

// Clear wipes the screen before the next frame.
func (t *Terminal) Clear() {
	t.program.Send(tea.ClearScreen())
}

// Release leaves raw mode and the alternate screen so another program can
// use the terminal.
func (t *Terminal) Release() error {
	if err := t.program.ReleaseTerminal(); err != nil {
		return fmt.Errorf("release terminal: %w", err)
	}
	return nil
}

// Restore re-enters raw mode after Release.
func (t *Terminal) Restore() error {
	if err := t.program.RestoreTerminal(); err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	return nil
}

// Suspend releases the terminal and stops the process until it is resumed
// by the shell.
func (t *Terminal) Suspend() error {
	if err := t.Release(); err != nil {
		return err
	}
	return suspendProcess()
}

// Stop asks the program to exit. Wait blocks until it has.
func (t *Terminal) Stop() {
	t.program.Quit()
}

func (t *Terminal) Wait() error {
	<-t.done
	return t.err
}
