package action

import (
	"context"
	"sync"
)

// Sender accepts actions for later dispatch.
type Sender interface {
	Send(Action)
}

// Queue is an unbounded FIFO of actions. Send never blocks; Recv blocks
// until an action is available, the queue is closed, or ctx is done.
type Queue struct {
	mu     sync.Mutex
	items  []Action
	closed bool
	notify chan struct{}
}

func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Send appends a to the queue. Sends after Close are dropped.
func (q *Queue) Send(a Action) {
	if a == nil {
		return
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, a)
	q.mu.Unlock()
	q.wake()
}

func (q *Queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Recv returns the oldest queued action.
func (q *Queue) Recv(ctx context.Context) (Action, bool) {
	for {
		if a, ok := q.TryRecv(); ok {
			return a, true
		}
		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false
		}
		select {
		case <-ctx.Done():
			return nil, false
		case <-q.notify:
		}
	}
}

// TryRecv pops the oldest action without blocking.
func (q *Queue) TryRecv() (Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	a := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return a, true
}

// Len reports the number of queued actions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue accepting new actions. Already queued actions can
// still be received.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}
