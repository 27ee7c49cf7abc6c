package debounce

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atomicstack/unit-control/internal/action"
)

func startCoordinator(t *testing.T, interval time.Duration) (*Coordinator, *atomic.Int32) {
	t.Helper()
	var renders atomic.Int32
	c := New(interval, func(a action.Action) {
		if _, ok := a.(action.Render); ok {
			renders.Add(1)
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go c.Run(ctx)
	return c, &renders
}

func waitIdle(t *testing.T, c *Coordinator) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.Pending() || len(c.requests) > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("coordinator never settled")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRapidRequestsYieldOneRender(t *testing.T) {
	c, renders := startCoordinator(t, 50*time.Millisecond)
	c.Request()
	c.Request()
	time.Sleep(150 * time.Millisecond)
	waitIdle(t, c)
	if got := renders.Load(); got != 1 {
		t.Fatalf("expected exactly one render, got %d", got)
	}
}

func TestSeparatedRequestsYieldSeparateRenders(t *testing.T) {
	c, renders := startCoordinator(t, 10*time.Millisecond)
	c.Request()
	time.Sleep(60 * time.Millisecond)
	waitIdle(t, c)
	c.Request()
	time.Sleep(60 * time.Millisecond)
	waitIdle(t, c)
	if got := renders.Load(); got != 2 {
		t.Fatalf("expected two renders, got %d", got)
	}
}

func TestZeroIntervalStillRenders(t *testing.T) {
	c, renders := startCoordinator(t, 0)
	c.Request()
	deadline := time.Now().Add(time.Second)
	for renders.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("zero interval render never fired")
		}
		time.Sleep(time.Millisecond)
	}
	waitIdle(t, c)
	if got := renders.Load(); got != 1 {
		t.Fatalf("expected one render, got %d", got)
	}
}

func TestCancelledContextClearsFlag(t *testing.T) {
	var renders atomic.Int32
	c := New(time.Hour, func(action.Action) { renders.Add(1) })
	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)
	c.Request()
	deadline := time.Now().Add(time.Second)
	for !c.Pending() {
		if time.Now().After(deadline) {
			t.Fatalf("request was never picked up")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	deadline = time.Now().Add(time.Second)
	for c.Pending() {
		if time.Now().After(deadline) {
			t.Fatalf("flag not cleared after cancel")
		}
		time.Sleep(time.Millisecond)
	}
	if renders.Load() != 0 {
		t.Fatalf("expected no render after cancel")
	}
}

func TestStopEndsRunAndDropsPendingRender(t *testing.T) {
	var renders atomic.Int32
	c := New(time.Hour, func(action.Action) { renders.Add(1) })
	returned := make(chan struct{})
	go func() {
		c.Run(context.Background())
		close(returned)
	}()
	c.Request()
	deadline := time.Now().Add(time.Second)
	for !c.Pending() {
		if time.Now().After(deadline) {
			t.Fatalf("request was never picked up")
		}
		time.Sleep(time.Millisecond)
	}
	c.Stop()
	c.Stop()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after Stop")
	}
	deadline = time.Now().Add(time.Second)
	for c.Pending() {
		if time.Now().After(deadline) {
			t.Fatalf("flag not cleared after Stop")
		}
		time.Sleep(time.Millisecond)
	}
	if renders.Load() != 0 {
		t.Fatalf("expected no render after Stop")
	}
}
