// Package bus implements spec §9's event bus: "a mutex-protected map
// event_kind -> value with a condition variable. Events are idempotent
// (only the most recent value per kind is retained between pickups).
// Producers call emit(kind){ value }; the consumer atomically takes and
// clears the whole map."
//
// Grounded on the coalescing-wake idea in
// github.com/dshills/keystorm's internal/event/dispatch.AsyncDispatcher
// (a worker drains a bounded channel under a wait/wake pattern), but
// deliberately not built on that package's full Registry/topic-pattern
// subscription machinery: spec §4.3/§9 calls for exactly one consumer
// (the Searcher) and exactly one coalescing map, not a general pub/sub
// bus, so reusing the heavier type would add generality nothing in
// this repo exercises.
package bus

import "sync"

// Kind identifies one event class. The bus retains at most one pending
// payload per Kind between pickups.
type Kind int

const (
	// KindNewLines signals the Reader appended at least one line to the
	// pending buffer since the last pickup (spec §4.3 `new`).
	KindNewLines Kind = iota
	// KindLoaded signals the Reader hit EOF. Delivered at-most-once.
	KindLoaded
	// KindKey signals the UI loop recorded a keystroke/query change that
	// should pre-empt an in-flight match pass (spec §4.4 step/pre-emption).
	KindKey
	// KindResize signals the terminal size changed.
	KindResize
	// KindResults names a fresh-result-set notification. The Searcher
	// does not emit it; it reports publishes through Worker.OnPublish.
	KindResults
)

// Bus is the mutex+condvar coalescing map described in spec §9. The
// zero value is not usable; construct with New.
type Bus struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending map[Kind]any
	closed  bool
}

// New creates an empty, ready-to-use Bus.
func New() *Bus {
	b := &Bus{pending: make(map[Kind]any)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Emit posts value under kind, overwriting any value already pending
// for that kind (coalescing: only the most recent survives) and wakes
// one waiter.
func (b *Bus) Emit(kind Kind, value any) {
	b.mu.Lock()
	b.pending[kind] = value
	b.mu.Unlock()
	b.cond.Signal()
}

// Wait blocks until at least one event is pending, then atomically
// takes and clears the whole pending map. It returns nil if the bus
// was closed while waiting and nothing was pending.
func (b *Bus) Wait() map[Kind]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.pending) == 0 && !b.closed {
		b.cond.Wait()
	}
	if len(b.pending) == 0 {
		return nil
	}
	taken := b.pending
	b.pending = make(map[Kind]any)
	return taken
}

// Peek reports whether kind currently has a pending value, without
// consuming anything. The Searcher's pre-emption check (spec §4.4:
// "re-check the event bus; if a fresher key arrived, abort") uses this
// to poll between batches without disturbing other pending kinds.
func (b *Bus) Peek(kind Kind) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.pending[kind]
	return v, ok
}

// Close wakes any blocked Wait call with an empty read, used to unblock
// a consumer during shutdown.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cond.Broadcast()
}
