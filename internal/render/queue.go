// Package render implements spec §5's render command queue: a FIFO of
// thunks pushed by the UI loop and the Searcher, drained serially by
// one goroutine (T3) that is the only caller of internal/screen.
//
// Grounded on the *absence* of a queue in
// github.com/dshills/keystorm's internal/renderer.Renderer, which
// draws synchronously from the single editor goroutine — generalized
// here into an explicit queue because swiftpick genuinely has two
// producers (T4's row/cursor updates and T2's status-line/progress
// publishes) that must serialize onto one screen without either one
// touching the driver directly (spec §5: "Screen output order matches
// render-queue enqueue order").
package render

import (
	"sync"

	"github.com/dshills/swiftpick/internal/screen"
)

// Command is one unit of drawing work, applied to the screen.Driver by
// the drain goroutine.
type Command func(d screen.Driver)

// Queue is an unbounded FIFO guarded by a mutex and condition
// variable.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Command
	closed bool
}

// New creates an empty Queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues cmd and wakes the drain goroutine.
func (q *Queue) Push(cmd Command) {
	q.mu.Lock()
	q.items = append(q.items, cmd)
	q.mu.Unlock()
	q.cond.Signal()
}

// Pop blocks until a command is available or the queue is closed. ok
// is false only when the queue was closed with nothing left to drain.
func (q *Queue) Pop() (cmd Command, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	cmd = q.items[0]
	q.items = q.items[1:]
	return cmd, true
}

// Close unblocks any pending Pop once the queue drains, used during
// shutdown.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Drain runs f for every command until the queue closes and empties.
// This is T3's whole body.
func (q *Queue) Drain(f func(Command)) {
	for {
		cmd, ok := q.Pop()
		if !ok {
			return
		}
		f(cmd)
	}
}
