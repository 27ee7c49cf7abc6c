// Package debounce coalesces bursts of render requests into one trailing
// Render action.
package debounce

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atomicstack/unit-control/internal/action"
	"github.com/atomicstack/unit-control/internal/logging/events"
)

// Coordinator owns the debouncing flag. At most one delayed render is
// pending at any time; requests that arrive while one is pending are dropped
// because the pending render observes their state anyway.
type Coordinator struct {
	interval time.Duration
	emit     func(action.Action)
	requests chan struct{}
	stop     chan struct{}
	stopOnce sync.Once

	debouncing atomic.Bool
}

// New creates a coordinator that calls emit with action.Render once the
// quiet interval has elapsed. A zero interval still defers the render
// through the scheduler.
func New(interval time.Duration, emit func(action.Action)) *Coordinator {
	if interval < 0 {
		interval = 0
	}
	return &Coordinator{
		interval: interval,
		emit:     emit,
		requests: make(chan struct{}, 64),
		stop:     make(chan struct{}),
	}
}

// Request asks for a render. It never blocks; when the request buffer is
// full a render is already guaranteed to follow.
func (c *Coordinator) Request() {
	select {
	case c.requests <- struct{}{}:
	default:
	}
}

// Pending reports whether a delayed render is outstanding.
func (c *Coordinator) Pending() bool {
	return c.debouncing.Load()
}

// Stop ends Run and discards a pending render. It is safe to call more
// than once.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Run consumes requests until ctx is done or Stop is called.
func (c *Coordinator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-c.requests:
			if !c.debouncing.CompareAndSwap(false, true) {
				events.Render.Debounced(true)
				continue
			}
			events.Render.Debounced(false)
			go c.fire(ctx)
		}
	}
}

func (c *Coordinator) fire(ctx context.Context) {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		c.debouncing.Store(false)
		return
	case <-c.stop:
		c.debouncing.Store(false)
		return
	case <-timer.C:
	}
	c.emit(action.Render{})
	c.debouncing.Store(false)
}
