package capture

import (
	"runtime"
	"time"
)

const (
	// DefaultMaxDepth caps traversal depth. Real accessibility trees rarely
	// exceed a few dozen levels; 200 leaves headroom while still terminating
	// on pathological self-embedding trees.
	DefaultMaxDepth = 200

	// DefaultMaxWorkers bounds the capture pool. The dominant cost per
	// window is one blocking cross-process fetch, so parallelism beyond a
	// handful of windows buys nothing.
	DefaultMaxWorkers = 8

	// staleRetries is how many times a stale child fetch is retried before
	// the node's subtree is skipped.
	staleRetries = 3
)

// Options configures one Capture call.
type Options struct {
	// MaxDepth bounds traversal depth; 0 means DefaultMaxDepth.
	MaxDepth int
	// MaxWorkers bounds the worker pool; 0 means DefaultMaxWorkers. The
	// effective cap never exceeds the machine's parallelism.
	MaxWorkers int
	// DOMMode narrows browser windows to their document content element and
	// collects informative text nodes inside it.
	DOMMode bool
	// Timeout bounds the whole call; 0 means no deadline. On expiry the
	// call returns the fragments that completed in time plus timeout
	// records for the rest.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = DefaultMaxWorkers
	}
	if n := runtime.NumCPU(); o.MaxWorkers > n {
		o.MaxWorkers = n
	}
	return o
}
