// Package scheduler provides a bounded-concurrency, priority-ordered task
// runner with per-key coalescing and bounded retry/backoff. It serializes
// outbound remote operations: tasks sharing a key never run concurrently,
// and a small worker pool throttles the remote store.
package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	sdkerrors "github.com/autolot/autolot-client/internal/errors"
)

// Op is a unit of remote work. It is invoked once per attempt and must be
// safe to re-run (the remote store is expected to be upsert-idempotent).
type Op func(ctx context.Context) (any, error)

type task struct {
	key         string
	priority    int
	seq         uint64
	maxAttempts int
	op          Op
	fut         *Future
	ctx         context.Context

	index   int // heap index, -1 once popped
	running bool
}

// taskQueue orders by descending priority; ties resolve FIFO by sequence.
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }
func (q taskQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}
func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}
func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler runs tasks on a fixed worker pool. It owns no persistence: a
// process restart loses queued retries (failed writes survive separately in
// the sync-retry queue).
type Scheduler struct {
	cfg Config

	mu       sync.Mutex
	cond     *sync.Cond
	queue    taskQueue
	byKey    map[string]*task    // newest task per key, queued or running
	inflight map[string]struct{} // keys currently executing on a worker
	seq      uint64

	closed bool
	done   chan struct{} // closed in Stop()
	wg     sync.WaitGroup
}

// New constructs the scheduler and starts its workers.
func New(cfg Config) *Scheduler {
	// Apply zero-value defaults.
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.MaxQueued <= 0 {
		cfg.MaxQueued = 1024
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 20 * time.Second
	}

	s := &Scheduler{
		cfg:      cfg,
		byKey:    make(map[string]*task),
		inflight: make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	for i := 0; i < cfg.Workers; i++ {
		s.wg.Add(1)
		go s.runWorker(i)
	}
	return s
}

// Submit enqueues op under key, returning the Future that settles with its
// terminal result.
//
//   - If a task with the same key is already queued or running, the new
//     caller receives that task's Future and no duplicate work is created.
//   - Returns ErrSchedulerClosed if the scheduler is stopped.
//   - Returns ErrQueueFull (wrapped in *QueueFullError) when at capacity.
//
// maxAttempts ≤ 0 falls back to cfg.MaxAttempts.
func (s *Scheduler) Submit(ctx context.Context, key string, priority, maxAttempts int, op Op) (*Future, error) {
	return s.submit(ctx, key, priority, maxAttempts, op, false)
}

// SubmitLatest behaves like Submit, except that when a task for key is still
// queued the queued operation is replaced by op (latest submission wins).
// Used by the write path, where the newest state supersedes a pending write.
// When the key's task is already running, op is queued as a successor behind
// it (with its own Future) rather than merged into the in-flight run, so op
// is guaranteed to execute even though the running attempt carries the
// older payload. Successors of the same key never run concurrently.
func (s *Scheduler) SubmitLatest(ctx context.Context, key string, priority, maxAttempts int, op Op) (*Future, error) {
	return s.submit(ctx, key, priority, maxAttempts, op, true)
}

func (s *Scheduler) submit(ctx context.Context, key string, priority, maxAttempts int, op Op, replace bool) (*Future, error) {
	if op == nil {
		return nil, fmt.Errorf("scheduler: nil op for key %q", key)
	}
	if maxAttempts <= 0 {
		maxAttempts = s.cfg.MaxAttempts
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSchedulerClosed
	}

	if existing, ok := s.byKey[key]; ok {
		if !replace || !existing.running {
			if replace {
				existing.op = op
				existing.maxAttempts = maxAttempts
				if existing.priority != priority {
					existing.priority = priority
					heap.Fix(&s.queue, existing.index)
				}
			}
			coalescedTotal.Inc()
			return existing.fut, nil
		}
		// replace requested but the task is mid-flight with the older op:
		// fall through and queue a successor. byKey moves to the successor,
		// so a further SubmitLatest replaces the successor in place.
	}

	if len(s.queue) >= s.cfg.MaxQueued {
		queueFullTotal.Inc()
		return nil, &QueueFullError{Length: len(s.queue), Capacity: s.cfg.MaxQueued}
	}

	s.seq++
	t := &task{
		key:         key,
		priority:    priority,
		seq:         s.seq,
		maxAttempts: maxAttempts,
		op:          op,
		fut:         newFuture(),
		ctx:         ctx,
	}
	heap.Push(&s.queue, t)
	s.byKey[key] = t
	submissionsTotal.Inc()
	queueDepth.Set(float64(len(s.queue)))
	s.cond.Signal()
	return t.fut, nil
}

// Pending returns the Future for key's queued or in-flight task, if any.
func (s *Scheduler) Pending(key string) (*Future, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byKey[key]
	if !ok {
		return nil, false
	}
	return t.fut, true
}

// Stop signals the workers to drain the remaining queue (each task runs once
// more, without further retries) and waits for them to terminate. It is
// idempotent and safe for concurrent use.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	remaining := len(s.queue)
	s.mu.Unlock()

	log.Debug().Int("queued", remaining).Msg("scheduler: stopping, draining queue")
	close(s.done)
	s.cond.Broadcast()
	s.wg.Wait()
	log.Debug().Msg("scheduler: stopped, queue drained")
}

// Close lets Scheduler satisfy io.Closer.
func (s *Scheduler) Close() error {
	s.Stop()
	return nil
}

// ------------------------- internals -------------------------

func (s *Scheduler) runWorker(id int) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		var t *task
		for {
			if len(s.queue) == 0 && s.closed {
				// closed and drained
				s.mu.Unlock()
				return
			}
			if t = s.popRunnable(); t != nil {
				break
			}
			// Empty, or every queued task waits on an in-flight key;
			// finish() wakes us.
			s.cond.Wait()
		}
		t.running = true
		s.inflight[t.key] = struct{}{}
		queueDepth.Set(float64(len(s.queue)))
		s.mu.Unlock()

		s.execute(id, t)
	}
}

// popRunnable removes and returns the highest-priority task whose key has no
// in-flight predecessor, or nil when none is runnable. Blocked tasks go back
// on the heap. Caller holds s.mu.
func (s *Scheduler) popRunnable() *task {
	var blocked []*task
	var t *task
	for len(s.queue) > 0 {
		cand := heap.Pop(&s.queue).(*task)
		if _, busy := s.inflight[cand.key]; busy {
			blocked = append(blocked, cand)
			continue
		}
		t = cand
		break
	}
	for _, b := range blocked {
		heap.Push(&s.queue, b)
	}
	return t
}

// execute runs t to a terminal state, retrying transient failures with
// exponential backoff, then resolves its Future exactly once.
func (s *Scheduler) execute(workerID int, t *task) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("scheduler: task %q panic: %v", t.key, r)
			log.Error().Int("worker", workerID).Str("key", t.key).Msgf("%v", err)
			s.finish(t, nil, err)
		}
	}()

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0 // deterministic, non-decreasing delays
	exp.MaxInterval = s.cfg.MaxInterval
	exp.Reset()

	// Detached from the submitter's context (values survive, cancellation
	// does not): an abandoned Future must not abort work that coalesced
	// waiters still depend on.
	opCtx := context.WithoutCancel(t.ctx)

	var (
		val      any
		err      error
		attempts int
	)

loop:
	for {
		start := time.Now()
		val, err = t.op(opCtx)
		runDuration.Observe(time.Since(start).Seconds())
		attempts++

		if err == nil {
			break
		}
		// NotFound and Permanent fail fast; only Transient feeds the retry loop.
		if !sdkerrors.IsTransient(err) {
			break
		}
		if attempts >= t.maxAttempts {
			break
		}

		retriesTotal.Inc()
		select {
		case <-time.After(exp.NextBackOff()):
		case <-s.done:
			// Draining: give up on further retries, settle with the last error.
			break loop
		}
	}

	s.finish(t, val, err)
	if err != nil {
		s.safeHandleError(err)
	}
}

func (s *Scheduler) finish(t *task, val any, err error) {
	s.mu.Lock()
	delete(s.inflight, t.key)
	if cur, ok := s.byKey[t.key]; ok && cur == t {
		delete(s.byKey, t.key)
	}
	// Wake workers parked behind this key (and drain waiters on Stop).
	s.cond.Broadcast()
	s.mu.Unlock()
	t.fut.resolve(val, err)
}

func (s *Scheduler) safeHandleError(err error) {
	if err == nil || s.cfg.ErrorHandler == nil {
		return
	}
	func() {
		// Guard against panics in the user-supplied handler.
		defer func() {
			if r := recover(); r != nil {
				log.Error().Msgf("scheduler: error handler panic: %v", r)
			}
		}()
		s.cfg.ErrorHandler(err)
	}()
}
