package ui

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/unit-control/internal/action"
)

func TestBridgeForwardsInputAndKeepsFrame(t *testing.T) {
	input := make(chan tea.Msg, 2)
	b := &bridge{input: input}
	b.Update(frameMsg("hello"))
	if b.View() != "hello" {
		t.Fatalf("expected frame to be stored, got %q", b.View())
	}
	key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
	b.Update(key)
	b.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := <-input; got.(tea.KeyMsg).String() != "q" {
		t.Fatalf("unexpected first message %#v", got)
	}
	if got := <-input; got != (tea.WindowSizeMsg{Width: 80, Height: 24}) {
		t.Fatalf("unexpected second message %#v", got)
	}
	select {
	case got := <-input:
		t.Fatalf("expected overflow to be dropped, got %#v", got)
	default:
	}
}

func TestTranslate(t *testing.T) {
	if got := Translate(tea.WindowSizeMsg{Width: 10, Height: 5}); got != (action.Resize{Width: 10, Height: 5}) {
		t.Fatalf("unexpected resize translation %#v", got)
	}
	got, ok := Translate(tea.KeyMsg{Type: tea.KeyCtrlC}).(action.Key)
	if !ok || got.Msg.String() != "ctrl+c" {
		t.Fatalf("unexpected key translation %#v", got)
	}
	if Translate(frameMsg("x")) != nil {
		t.Fatalf("expected nil for unrelated messages")
	}
}

type recordingSender struct {
	mu      sync.Mutex
	actions []action.Action
}

func (r *recordingSender) Send(a action.Action) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
}

func (r *recordingSender) snapshot() []action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]action.Action(nil), r.actions...)
}

func TestListenerForwardsUntilStopped(t *testing.T) {
	input := make(chan tea.Msg, 4)
	sender := &recordingSender{}
	l := NewListener(context.Background(), input, sender)
	input <- tea.WindowSizeMsg{Width: 100, Height: 30}
	input <- tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}

	deadline := time.Now().Add(2 * time.Second)
	for len(sender.snapshot()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("listener did not forward input")
		}
		time.Sleep(5 * time.Millisecond)
	}
	l.Stop()
	if err := l.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	got := sender.snapshot()
	if got[0] != (action.Resize{Width: 100, Height: 30}) {
		t.Fatalf("unexpected first action %#v", got[0])
	}
	if k, ok := got[1].(action.Key); !ok || k.Msg.String() != "j" {
		t.Fatalf("unexpected second action %#v", got[1])
	}
}

func TestListenerExitsWhenInputCloses(t *testing.T) {
	input := make(chan tea.Msg)
	l := NewListener(context.Background(), input, &recordingSender{})
	close(input)
	done := make(chan struct{})
	go func() {
		l.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("listener did not exit")
	}
}

func TestTerminalDrawsAndStops(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(Options{Output: &syncWriter{buf: &out}})
	term.Draw("frame one")
	term.Stop()
	if err := term.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

type syncWriter struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
