// Package remote defines the authoritative-store capability the SDK
// reconciles against. The store is key-addressed per entity type; Update
// accepts partial field sets and must be upsert-safe so at-least-once
// replays from the sync-retry queue stay idempotent.
package remote

import (
	"context"
	"encoding/json"
)

// Store is the remote CRUD capability. Errors are classified by the
// internal/errors taxonomy: a 404-style miss surfaces as NotFound (no data,
// not a failure), 5xx/network as Transient, remaining 4xx as Permanent.
type Store interface {
	Create(ctx context.Context, entity, id string, payload any) error
	Read(ctx context.Context, entity, id string) (json.RawMessage, error)
	Update(ctx context.Context, entity, id string, fields map[string]any) error
	Delete(ctx context.Context, entity, id string) error
}
