package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	sdkerrors "github.com/autolot/autolot-client/internal/errors"
	"github.com/autolot/autolot-client/internal/syncq"
)

// This file implements the dual-persistence policy: the order of truth
// between local cache and remote store for every read and write.
//
//   - Synchronous reads return the cached value immediately; they never
//     touch the network.
//   - Reconciled reads attempt a scheduler-mediated remote fetch, overwrite
//     the cache on success, and fall back to the cached (or a synthesized
//     default) value when the remote has nothing or is unreachable.
//   - Writes hit the cache first and unconditionally; the remote write runs
//     asynchronously, and a terminal failure lands in the durable sync-retry
//     queue instead of being dropped.

// Scheduler priorities. Reads outrank background writes so interactive
// fetches are not stuck behind sync traffic.
const (
	priorityRead  = 5
	priorityWrite = 1
)

// writeKeySuffix derives the scheduler key for a logical key's remote write
// leg, keeping it distinct from the read coalescing key.
const writeKeySuffix = "#write"

// cacheGet unmarshals the cached value for key. A decode failure counts as
// a miss: the entry is stale garbage, not an error the caller can act on.
func cacheGet[T any](c *Client, key string) (T, bool) {
	var v T
	raw, ok := c.cache.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("client: undecodable cache entry, treating as miss")
		return v, false
	}
	return v, true
}

func cacheSet(c *Client, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("client: value not cacheable")
		return
	}
	c.cache.Set(key, b)
}

// reconciledRead fetches the authoritative value for key through the
// scheduler (so concurrent readers of the same key coalesce onto one remote
// call), decodes it with decode, and overwrites the cache on success.
//
// Fallback order on remote trouble: cached value, then def() (which is
// persisted so later synchronous reads agree). A 404-class miss and an
// exhausted transient retry both resolve to the fallback with a nil error;
// a Permanent classification returns the fallback alongside the error.
// def may be nil for entities with no meaningful default, in which case an
// empty fallback yields ErrNotFound.
func reconciledRead[T any](ctx context.Context, c *Client, key, entity, id string, decode func([]byte) (T, error), def func() T) (T, error) {
	// Same-key operations are sequential: a pending write must reach the
	// remote before we fetch, or the fetch would return the pre-write state
	// and clobber the fresher local value.
	if wfut, ok := c.sched.Pending(key + writeKeySuffix); ok {
		if _, werr := wfut.Wait(ctx); werr != nil {
			// The write failed (it is queued for replay) or the caller gave
			// up waiting; the remote is behind the local view either way.
			return fallbackRead(c, key, def, nil)
		}
	}

	fut, serr := c.sched.Submit(ctx, key, priorityRead, 0, func(ctx context.Context) (any, error) {
		raw, err := c.remote.Read(ctx, entity, id)
		if err != nil {
			return nil, err
		}
		return raw, nil
	})
	if serr != nil {
		// Scheduler closed or saturated: degrade to the local view.
		return fallbackRead(c, key, def, fmt.Errorf("%w: %v", ErrBackPressure, serr))
	}

	res, err := fut.Wait(ctx)
	if err == nil {
		raw := res.(json.RawMessage)
		v, derr := decode(raw)
		if derr != nil {
			// Corrupt remote payload: surface it, serve the local view.
			return fallbackRead(c, key, def, derr)
		}
		c.cache.Set(key, raw)
		return v, nil
	}

	switch {
	case sdkerrors.IsNotFound(err):
		// No remote data yet; not an error.
		return fallbackRead(c, key, def, nil)
	case sdkerrors.IsPermanent(err):
		return fallbackRead(c, key, def, err)
	default:
		// Transient exhaustion, context cancellation, and the like: the
		// caller keeps working against the local view.
		log.Debug().Err(err).Str("key", key).Msg("client: remote read failed, serving local view")
		return fallbackRead(c, key, def, nil)
	}
}

func fallbackRead[T any](c *Client, key string, def func() T, err error) (T, error) {
	if v, ok := cacheGet[T](c, key); ok {
		return v, err
	}
	if def == nil {
		var zero T
		if err == nil {
			err = ErrNotFound
		}
		return zero, err
	}
	d := def()
	cacheSet(c, key, d)
	return d, err
}

// writeThrough is the single write path: cache eagerly, replicate
// asynchronously. It returns once the local write is durable; the remote
// leg never blocks the caller.
func (c *Client) writeThrough(ctx context.Context, key, entity, id string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", entity, id, err)
	}
	c.cache.Set(key, payload)
	c.asyncRemoteWrite(ctx, key, entity, id, syncq.OpUpdate, payload)
	return nil
}

// asyncRemoteWrite submits the remote leg of a write. A same-key write still
// queued is replaced by this one (its payload is already stale); one that is
// mid-flight gets this write queued behind it, so the newest payload always
// reaches the remote. A terminal failure is appended to the sync-retry queue
// for later replay.
func (c *Client) asyncRemoteWrite(ctx context.Context, key, entity, id, op string, payload json.RawMessage) {
	// The write must not die with the caller's request context.
	bg := context.WithoutCancel(ctx)

	c.pending.Add(1)
	fut, err := c.sched.SubmitLatest(bg, key+writeKeySuffix, priorityWrite, 0, func(ctx context.Context) (any, error) {
		return nil, c.doRemoteWrite(ctx, entity, id, op, payload)
	})
	if err != nil {
		defer c.pending.Done()
		writesFailedTotal.Inc()
		c.enqueueRetry(key, entity, id, op, payload, err)
		return
	}
	writesEnqueuedTotal.Inc()

	go func() {
		defer c.pending.Done()
		if _, werr := fut.Wait(context.Background()); werr != nil {
			writesFailedTotal.Inc()
			c.enqueueRetry(key, entity, id, op, payload, werr)
		}
	}()
}

// doRemoteWrite executes one remote mutation. Used by both the live write
// path and sync-retry replay so the two cannot drift.
func (c *Client) doRemoteWrite(ctx context.Context, entity, id, op string, payload json.RawMessage) error {
	switch op {
	case syncq.OpCreate:
		return c.remote.Create(ctx, entity, id, payload)
	case syncq.OpDelete:
		err := c.remote.Delete(ctx, entity, id)
		if sdkerrors.IsNotFound(err) {
			return nil // already gone
		}
		return err
	default:
		var fields map[string]any
		if err := json.Unmarshal(payload, &fields); err != nil {
			return fmt.Errorf("decode %s %s for update: %w", entity, id, err)
		}
		return c.remote.Update(ctx, entity, id, fields)
	}
}

func (c *Client) enqueueRetry(key, entity, id, op string, payload json.RawMessage, cause error) {
	w := syncq.PendingWrite{
		ID:        uuid.NewString(),
		Key:       key,
		Entity:    entity,
		EntityID:  id,
		Op:        op,
		Payload:   payload,
		CreatedAt: c.clock.Now(),
	}
	if err := c.retry.Append(w); err != nil {
		log.Error().Err(err).Str("key", key).Msg("client: failed write could not be queued for replay")
		return
	}
	log.Warn().Err(cause).Str("key", key).Str("op", op).Msg("client: remote write failed, queued for replay")
}

// MergeMetadata merges a partial update into an existing metadata bag with
// key-wise overwrite. Keys present in existing and absent from update are
// preserved; dropping one is a correctness bug, since optional fields live
// only in the bag.
func MergeMetadata(existing, update map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(update))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range update {
		merged[k] = v
	}
	return merged
}

func jsonDecode[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}
