package capture

import (
	"context"
	"sync/atomic"
)

// ChangeKind names the kind of UI change an external watchdog observed.
type ChangeKind string

const (
	ChangeFocus     ChangeKind = "focus"
	ChangeStructure ChangeKind = "structure"
)

// Invalidation is one event from a focus/structure watchdog stream.
type Invalidation struct {
	Handle uintptr
	Kind   ChangeKind
}

// Generation is a monotonic capture-generation counter. External watchdogs
// bump it when the UI changes; callers compare the value stamped on a
// TreeState against the current one to decide whether to re-capture. The
// counter is the hook for cache invalidation, not a cache policy itself.
type Generation struct {
	counter atomic.Int64
}

// Current returns the latest generation value.
func (g *Generation) Current() int64 { return g.counter.Load() }

// Bump advances the generation and returns the new value.
func (g *Generation) Bump() int64 { return g.counter.Add(1) }

// Consume reads invalidation events until the stream closes or ctx is done,
// bumping the generation once per event. Events arrive as messages on a
// channel rather than as callbacks into shared mutable state, so no field
// is ever written from the watchdog's thread.
func (g *Generation) Consume(ctx context.Context, events <-chan Invalidation) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			g.Bump()
		}
	}
}
