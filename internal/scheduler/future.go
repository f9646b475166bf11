package scheduler

import "context"

// Future is the caller-visible handle for a submitted task. Every caller
// coalesced onto the same key holds the same Future and observes the same
// terminal result. Abandoning a Future does not cancel the underlying task.
type Future struct {
	done chan struct{}
	val  any
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve settles the future exactly once. Callers (the owning worker or the
// drain path) must never resolve the same task twice.
func (f *Future) resolve(val any, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Done returns a channel closed when the task reaches a terminal state.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the task settles or ctx is cancelled. A cancelled wait
// abandons the Future only; the task still completes for coalesced waiters.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.val, f.err
	}
}
