package syncq

import (
	"context"
	"sync"
)

// MemQueue is an in-memory Queue for tests and ephemeral clients.
type MemQueue struct {
	mu     sync.Mutex
	writes []PendingWrite
}

// NewMemQueue returns an empty in-memory queue.
func NewMemQueue() *MemQueue { return &MemQueue{} }

func (q *MemQueue) Append(w PendingWrite) error {
	q.mu.Lock()
	q.writes = append(q.writes, w)
	q.mu.Unlock()
	return nil
}

func (q *MemQueue) Drain(ctx context.Context, replay ReplayFunc) (int, error) {
	replayed := 0
	for {
		q.mu.Lock()
		if len(q.writes) == 0 {
			q.mu.Unlock()
			return replayed, nil
		}
		head := q.writes[0]
		q.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return replayed, err
		}
		if err := replay(ctx, head); err != nil {
			q.mu.Lock()
			if len(q.writes) > 0 && q.writes[0].ID == head.ID {
				q.writes[0].Attempts++
			}
			q.mu.Unlock()
			return replayed, err
		}

		q.mu.Lock()
		if len(q.writes) > 0 && q.writes[0].ID == head.ID {
			q.writes = q.writes[1:]
		}
		q.mu.Unlock()
		replayed++
	}
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.writes)
}
