package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/unit-control/internal/action"
)

// Listener turns terminal input into actions.
type Listener struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewListener starts forwarding messages from input to send until Stop is
// called or input is closed.
func NewListener(ctx context.Context, input <-chan tea.Msg, send action.Sender) *Listener {
	ctx, cancel := context.WithCancel(ctx)
	l := &Listener{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(l.done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}
				if a := Translate(msg); a != nil {
					send.Send(a)
				}
			}
		}
	}()
	return l
}

// Translate maps a terminal message to its action, or nil.
func Translate(msg tea.Msg) action.Action {
	switch m := msg.(type) {
	case tea.KeyMsg:
		return action.Key{Msg: m}
	case tea.WindowSizeMsg:
		return action.Resize{Width: m.Width, Height: m.Height}
	}
	return nil
}

func (l *Listener) Stop() { l.cancel() }

func (l *Listener) Wait() error {
	<-l.done
	return nil
}
