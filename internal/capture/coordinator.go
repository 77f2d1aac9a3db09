package capture

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/mj1618/uitree/internal/model"
	"github.com/mj1618/uitree/internal/platform"
)

// Coordinator fans capture out across a bounded worker pool, one window per
// worker, and merges the fragments into a single immutable TreeState. Each
// worker acquires its own platform connection on its own goroutine; the
// coordinator only ever sees the plain values a worker sends back.
type Coordinator struct {
	newConn func() (platform.Conn, error)
	log     *zap.Logger
	gen     *Generation

	// latest is published by a single atomic swap after a capture completes.
	// It is never written to field-by-field.
	latest atomic.Pointer[model.TreeState]
}

// NewCoordinator builds a Coordinator around a connection factory. Pass
// platform.NewConn for the real backend. A nil logger disables logging.
func NewCoordinator(newConn func() (platform.Conn, error), gen *Generation, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	if gen == nil {
		gen = &Generation{}
	}
	return &Coordinator{newConn: newConn, log: log, gen: gen}
}

// Generation returns the coordinator's capture-generation counter.
func (c *Coordinator) Generation() *Generation { return c.gen }

// Latest returns the most recently published TreeState, or nil before the
// first capture.
func (c *Coordinator) Latest() *model.TreeState { return c.latest.Load() }

// windowResult is the only value that crosses a worker boundary. It carries
// plain data; provider handles and raw nodes stay on the worker's thread.
type windowResult struct {
	elements []model.Element
	err      error
}

// Capture walks every window in the given order and returns one snapshot.
//
// Per-window platform flakiness never fails the call; affected windows get
// an empty fragment plus an error record. The call fails only on an empty
// window list (ErrInvalidInput). When a timeout expires, fragments that
// completed in time are returned and the rest of the windows are recorded
// with ErrFetchTimeout; outstanding workers are abandoned.
func (c *Coordinator) Capture(ctx context.Context, windows []model.Window, opts Options) (*model.TreeState, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: at least one window handle is required", ErrInvalidInput)
	}
	opts = opts.withDefaults()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	sem := semaphore.NewWeighted(int64(opts.MaxWorkers))
	results := make([]chan windowResult, len(windows))

	for i, win := range windows {
		results[i] = make(chan windowResult, 1)
		go c.captureWindow(ctx, win, opts, sem, results[i])
	}

	// Merge in caller order regardless of completion order. Fragments are
	// only read after their worker has fully built them.
	var elements []model.Element
	var windowErrs []model.WindowError
	for i, win := range windows {
		select {
		case res := <-results[i]:
			elements, windowErrs = c.merge(win, res, elements, windowErrs)
		case <-ctx.Done():
			// Deadline passed: take whatever already finished, abandon the
			// rest. Abandoned workers drain into their buffered channels
			// and are collected as garbage.
			select {
			case res := <-results[i]:
				elements, windowErrs = c.merge(win, res, elements, windowErrs)
			default:
				windowErrs = append(windowErrs, model.WindowError{
					Handle: win.Handle,
					Title:  win.Title,
					Err:    ErrFetchTimeout.Error(),
				})
			}
		}
	}

	// Sequence ids are assigned after the merge so they are unique across
	// the whole snapshot and follow window order.
	for i := range elements {
		elements[i].ID = i + 1
	}

	state := &model.TreeState{
		Generation: c.gen.Current(),
		Elements:   elements,
		Errors:     windowErrs,
	}
	c.latest.Store(state)

	c.log.Info("capture complete",
		zap.Int("windows", len(windows)),
		zap.Int("elements", len(elements)),
		zap.Int("window_errors", len(windowErrs)),
		zap.Duration("took", time.Since(start)))
	return state, nil
}

func (c *Coordinator) merge(win model.Window, res windowResult, elements []model.Element, windowErrs []model.WindowError) ([]model.Element, []model.WindowError) {
	if res.err != nil {
		windowErrs = append(windowErrs, model.WindowError{
			Handle: win.Handle,
			Title:  win.Title,
			Err:    res.err.Error(),
		})
		return elements, windowErrs
	}
	return append(elements, res.elements...), windowErrs
}

// captureWindow runs on its own goroutine. The connection it acquires is
// thread-affine and is released before the goroutine exits; only the plain
// values inside windowResult leave this function.
func (c *Coordinator) captureWindow(ctx context.Context, win model.Window, opts Options, sem *semaphore.Weighted, out chan<- windowResult) {
	if err := sem.Acquire(ctx, 1); err != nil {
		out <- windowResult{err: fmt.Errorf("%w: %v", ErrFetchTimeout, err)}
		return
	}
	defer sem.Release(1)

	conn, err := c.newConn()
	if err != nil {
		out <- windowResult{err: fmt.Errorf("%w: %v", platform.ErrConnectionUnavailable, err)}
		return
	}
	defer conn.Release()

	elements, err := walkWindow(ctx, conn, win, opts, c.log)
	if err != nil {
		out <- windowResult{err: err}
		return
	}
	out <- windowResult{elements: elements}
}
