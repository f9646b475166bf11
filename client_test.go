package client

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/autolot/autolot-client/internal/errors"
	"github.com/autolot/autolot-client/internal/types"
	"github.com/autolot/autolot-client/lifecycle"
)

// fakeRemote is an in-memory remote.Store with failure injection. Update is
// a plain upsert, matching the idempotence the replay path relies on.
type fakeRemote struct {
	mu       sync.Mutex
	data     map[string]json.RawMessage
	readErr  error
	writeErr error
	onUpdate func(entity, id string) // runs before Update applies, outside the lock
	reads    int
	writes   int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{data: make(map[string]json.RawMessage)}
}

func rkey(entity, id string) string { return entity + "/" + id }

func (f *fakeRemote) put(t *testing.T, entity, id string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[rkey(entity, id)] = b
}

func (f *fakeRemote) get(entity, id string) (json.RawMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[rkey(entity, id)]
	return raw, ok
}

func (f *fakeRemote) setReadErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

func (f *fakeRemote) setWriteErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

func (f *fakeRemote) setUpdateHook(h func(entity, id string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onUpdate = h
}

func (f *fakeRemote) Create(ctx context.Context, entity, id string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.data[rkey(entity, id)] = b
	return nil
}

func (f *fakeRemote) Read(ctx context.Context, entity, id string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	raw, ok := f.data[rkey(entity, id)]
	if !ok {
		return nil, sdkerrors.NewHTTPError(404, "", "read "+entity)
	}
	return raw, nil
}

func (f *fakeRemote) Update(ctx context.Context, entity, id string, fields map[string]any) error {
	f.mu.Lock()
	hook := f.onUpdate
	f.mu.Unlock()
	if hook != nil {
		hook(entity, id)
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.data[rkey(entity, id)] = b
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, entity, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.data[rkey(entity, id)]; !ok {
		return sdkerrors.NewHTTPError(404, "", "delete "+entity)
	}
	delete(f.data, rkey(entity, id))
	return nil
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// newTestClient builds a Client over the fake remote with a single-attempt
// retry policy so read failures resolve quickly, and a pinned clock.
func newTestClient(t *testing.T, fr *fakeRemote, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithRemoteStore(fr),
		WithRetryPolicy(1, time.Millisecond, 5*time.Millisecond),
		WithWorkers(2),
		WithClock(lifecycle.FixedClock{T: testNow}),
	}
	c := New("http://autolot.test", "test-key", append(base, opts...)...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew_PanicsOnMissingArgs(t *testing.T) {
	assert.Panics(t, func() { New("", "key") })
	assert.Panics(t, func() { New("http://x", "") })
}

func TestNew_PanicsOnBadOption(t *testing.T) {
	assert.Panics(t, func() {
		New("http://x", "key", WithWorkers(0))
	})
}

func TestClose_Idempotent(t *testing.T) {
	c := New("http://autolot.test", "test-key", WithRemoteStore(newFakeRemote()))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestFlush_WaitsForAsyncWrites(t *testing.T) {
	fr := newFakeRemote()
	c := newTestClient(t, fr)
	ctx := context.Background()

	l := Listing{ID: "l1", SellerID: "s1", Status: types.ListingPublished, CreatedAt: testNow}
	require.NoError(t, c.SaveListing(ctx, l))
	require.NoError(t, c.Flush(ctx))

	raw, ok := fr.get("listing", "l1")
	require.True(t, ok, "remote should hold the listing after Flush")
	var got types.Listing
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "l1", got.ID)
	assert.Equal(t, "s1", got.SellerID)
}

func TestWriteFailure_QueuedAndReplayed(t *testing.T) {
	fr := newFakeRemote()
	c := newTestClient(t, fr)
	ctx := context.Background()

	fr.setWriteErr(sdkerrors.NewHTTPError(503, "unavailable", "update"))
	require.NoError(t, c.SaveListing(ctx, Listing{ID: "l1", SellerID: "s1", Status: types.ListingDraft, CreatedAt: testNow}))
	require.NoError(t, c.Flush(ctx))

	// Terminal failure must land in the retry queue, not vanish.
	require.Equal(t, 1, c.PendingWrites())
	_, ok := fr.get("listing", "l1")
	assert.False(t, ok)

	// Local view kept the write regardless.
	require.NotNil(t, c.ListingSync("l1"))

	fr.setWriteErr(nil)
	replayed, err := c.ReplayPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)
	assert.Equal(t, 0, c.PendingWrites())

	_, ok = fr.get("listing", "l1")
	assert.True(t, ok, "replay should have reached the remote")
}

// A write issued while the previous same-key write is still in flight must
// still reach the remote: the in-flight attempt carries the older payload,
// so merging into it would be a silent zero-times delivery.
func TestWriteDuringInFlightWrite_NewPayloadDelivered(t *testing.T) {
	fr := newFakeRemote()
	c := newTestClient(t, fr)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	var gated int32
	fr.setUpdateHook(func(entity, id string) {
		if atomic.CompareAndSwapInt32(&gated, 0, 1) {
			close(entered)
			<-release
		}
	})

	require.NoError(t, c.SaveListing(ctx, Listing{ID: "l1", SellerID: "s1", Status: types.ListingDraft, CreatedAt: testNow}))
	<-entered // first write is mid-flight with the s1 payload

	require.NoError(t, c.SaveListing(ctx, Listing{ID: "l1", SellerID: "s2", Status: types.ListingDraft, CreatedAt: testNow}))
	close(release)

	require.NoError(t, c.Flush(ctx))
	require.Equal(t, 0, c.PendingWrites())

	raw, ok := fr.get("listing", "l1")
	require.True(t, ok)
	var got types.Listing
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "s2", got.SellerID, "the second write must win on the remote")
}

func TestReplayPending_StopsOnFirstFailure(t *testing.T) {
	fr := newFakeRemote()
	c := newTestClient(t, fr)
	ctx := context.Background()

	fr.setWriteErr(sdkerrors.NewHTTPError(503, "unavailable", "update"))
	require.NoError(t, c.SaveListing(ctx, Listing{ID: "l1", Status: types.ListingDraft, CreatedAt: testNow}))
	require.NoError(t, c.Flush(ctx))
	require.NoError(t, c.SaveListing(ctx, Listing{ID: "l2", Status: types.ListingDraft, CreatedAt: testNow}))
	require.NoError(t, c.Flush(ctx))
	require.Equal(t, 2, c.PendingWrites())

	// Remote still down: the pass stops at the first entry and removes nothing.
	replayed, err := c.ReplayPending(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, replayed)
	assert.Equal(t, 2, c.PendingWrites())

	fr.setWriteErr(nil)
	replayed, err = c.ReplayPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, replayed)
	assert.Equal(t, 0, c.PendingWrites())
}

func TestIsBackPressure(t *testing.T) {
	assert.True(t, IsBackPressure(ErrBackPressure))
	assert.False(t, IsBackPressure(ErrNotFound))
	assert.False(t, IsBackPressure(nil))
}
