package home

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/google/uuid"

	"github.com/atomicstack/unit-control/internal/action"
	"github.com/atomicstack/unit-control/internal/logging/events"
)

var spinnerStyle = spinner.Dot

// Task is a cancellable background operation. The function it runs must
// watch its ctx and stop sending actions once it is cancelled.
type Task struct {
	ID    uuid.UUID
	Label string

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func startTask(parent context.Context, label string, fn func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		ID:     uuid.New(),
		Label:  label,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	events.Task.Start(t.ID.String(), label)
	go func() {
		defer close(t.done)
		fn(ctx)
	}()
	return t
}

// Cancel signals the task to stop. It does not wait.
func (t *Task) Cancel() {
	t.once.Do(func() {
		events.Task.Cancel(t.ID.String(), t.Label)
		t.cancel()
	})
}

// Done is closed once the task function returns.
func (t *Task) Done() <-chan struct{} { return t.done }

func (t *Task) finished() bool {
	select {
	case <-t.Done():
		return true
	default:
		return false
	}
}

// tickSpinner emits SpinnerTick at the spinner frame rate until the task
// finishes, then one last tick so the reducer can reap it.
func tickSpinner(t *Task, send action.Sender) {
	ticker := time.NewTicker(spinnerStyle.FPS)
	defer ticker.Stop()
	for {
		select {
		case <-t.Done():
			send.Send(action.SpinnerTick{})
			return
		case <-ticker.C:
			send.Send(action.SpinnerTick{})
		}
	}
}
