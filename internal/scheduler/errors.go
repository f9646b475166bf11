package scheduler

import (
	"errors"
	"fmt"
)

// ErrQueueFull reports transient back-pressure: the queue was at capacity
// when Submit tried to enqueue a task.
var ErrQueueFull = errors.New("scheduler queue full")

// ErrSchedulerClosed reports a permanent condition: the scheduler has been
// stopped and will accept no further work.
var ErrSchedulerClosed = errors.New("scheduler closed")

// QueueFullError carries diagnostics while satisfying errors.Is(_, ErrQueueFull).
type QueueFullError struct {
	Length   int // queued tasks at rejection time
	Capacity int // cfg.MaxQueued
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("scheduler queue full (len=%d cap=%d)", e.Length, e.Capacity)
}

func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }
