package backend

import (
	"context"
	"time"
)

// refreshGap keeps consecutive RefreshServices at least gap apart. It is
// only used from the poll goroutine.
type refreshGap struct {
	gap  time.Duration
	last time.Time
}

// wait blocks until gap has passed since the previous refresh. It returns
// false when ctx ends first.
func (r *refreshGap) wait(ctx context.Context) bool {
	if r.gap > 0 && !r.last.IsZero() {
		if remaining := r.gap - time.Since(r.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return false
			case <-timer.C:
			}
		}
	}
	r.last = time.Now()
	return ctx.Err() == nil
}
