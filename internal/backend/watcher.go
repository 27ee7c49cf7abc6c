// Package backend schedules background refreshes of the unit list.
package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/unit-control/internal/action"
)

const minRefreshGap = 250 * time.Millisecond

// Watcher asks the dispatcher for a fresh unit snapshot every interval and
// whenever Trigger is called. It only sends RefreshServices; the listing
// itself runs in the view model.
type Watcher struct {
	send     action.Sender
	interval time.Duration
	gap      refreshGap

	ctx     context.Context
	cancel  context.CancelFunc
	trigger chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher starts a watcher. A non-positive interval disables the periodic
// refresh; Trigger still works.
func NewWatcher(send action.Sender, interval time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		send:     send,
		interval: interval,
		gap:      refreshGap{gap: minRefreshGap},
		ctx:      ctx,
		cancel:   cancel,
		trigger:  make(chan struct{}, 1),
	}
	w.wg.Add(1)
	go w.poll()
	return w
}

// Trigger requests an immediate refresh. Calls made while one is already
// pending are merged.
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the watcher. Use Wait if a clean drain is required.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the poller goroutine has exited.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) poll() {
	defer w.wg.Done()

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-tick:
		case <-w.trigger:
		}
		if !w.gap.wait(w.ctx) {
			return
		}
		w.send.Send(action.RefreshServices{})
	}
}
