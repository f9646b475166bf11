// Package syncq provides the sync-retry queue: a durable, append-only list
// of remote writes that failed terminally and await replay. Replay is
// at-least-once; the remote store's upsert-by-id semantics make repeats safe.
package syncq

import (
	"context"
	"encoding/json"
	"time"
)

// Write ops recorded for replay.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// PendingWrite is one queued remote write.
type PendingWrite struct {
	ID        string          `json:"id"`
	Key       string          `json:"key"` // logical cache key, for diagnostics
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId"`
	Op        string          `json:"op"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ReplayFunc re-executes one pending write against the remote store.
type ReplayFunc func(ctx context.Context, w PendingWrite) error

// Queue is the sync-retry collaborator. Drain walks entries oldest-first and
// removes each one only after replay succeeds; the first failure stops the
// drain so same-key writes keep their order, leaving the entry (with an
// incremented attempt count) for a later pass.
type Queue interface {
	Append(w PendingWrite) error
	Drain(ctx context.Context, replay ReplayFunc) (replayed int, err error)
	Len() int
}
