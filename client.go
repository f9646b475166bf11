// Package client is the Autolot marketplace SDK. Every entity is written to
// a fast local cache immediately and reconciled with the authoritative
// remote store asynchronously, so the SDK stays responsive when the backend
// is slow, rate-limited, or unreachable.
package client

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autolot/autolot-client/internal/cache"
	"github.com/autolot/autolot-client/internal/remote"
	"github.com/autolot/autolot-client/internal/scheduler"
	"github.com/autolot/autolot-client/internal/syncq"
	"github.com/autolot/autolot-client/lifecycle"
)

// Client is the SDK entry point. Construct with New; zero value is not usable.
type Client struct {
	baseURL string
	apiKey  string // API key for bearer authentication (must be explicitly configured)
	http    *http.Client

	sched  *scheduler.Scheduler
	cache  cache.Store
	remote remote.Store
	retry  syncq.Queue

	clock lifecycle.Clock
	lc    *lifecycle.Engine

	// staged by options, consumed once in New
	storagePath string
	schedCfg    scheduler.Config
	lcCfg       *lifecycle.Config

	pending    sync.WaitGroup // outstanding async remote writes
	closedOnce uint32         // ensures Close is idempotent
}

// New constructs a Client with the specified baseURL and apiKey.
// Additional options can be provided via functional arguments.
func New(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}
	if apiKey == "" {
		panic("apiKey cannot be empty")
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}

	// Wrap HTTP transport to automatically add the Authorization header.
	c.wrapTransportWithAPIKey()

	if c.clock == nil {
		c.clock = lifecycle.SystemClock()
	}
	if c.lcCfg == nil {
		cfg, err := lifecycle.LoadConfig()
		if err != nil {
			log.Warn().Err(err).Msg("client: bad lifecycle env config, using defaults")
		}
		c.lcCfg = &cfg
	}
	c.lc = lifecycle.NewEngine(*c.lcCfg, c.clock)

	if c.cache == nil || c.retry == nil {
		c.initStorage()
	}
	if c.remote == nil {
		c.remote = remote.NewHTTPStore(c.http, c.baseURL)
	}
	c.sched = scheduler.New(c.schedCfg)

	return c
}

// initStorage builds the default cache and retry queue: sqlite-backed when a
// storage path was configured, in-memory otherwise. Storage trouble degrades
// to in-memory rather than failing construction.
func (c *Client) initStorage() {
	if c.storagePath != "" {
		sq, err := cache.OpenSQLite(c.storagePath)
		if err == nil {
			if c.cache == nil {
				c.cache = sq
			}
			if c.retry == nil {
				if q, qerr := syncq.NewSQLiteQueue(sq.DB()); qerr == nil {
					c.retry = q
				} else {
					log.Warn().Err(qerr).Msg("client: retry queue schema failed, falling back to memory")
				}
			}
		} else {
			log.Warn().Err(err).Str("path", c.storagePath).Msg("client: sqlite unavailable, falling back to memory")
		}
	}
	if c.cache == nil {
		c.cache = cache.NewMemStore()
	}
	if c.retry == nil {
		c.retry = syncq.NewMemQueue()
	}
}

// wrapTransportWithAPIKey wraps the HTTP client's transport to automatically
// add the Authorization header to all requests using the configured API key.
func (c *Client) wrapTransportWithAPIKey() {
	baseTransport := c.http.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	c.http.Transport = &apiKeyTransport{
		base:   baseTransport,
		apiKey: c.apiKey,
	}
}

// apiKeyTransport wraps an http.RoundTripper to automatically add the
// Authorization header.
type apiKeyTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original.
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+t.apiKey)
	return t.base.RoundTrip(cloned)
}

// Lifecycle exposes the listing lifecycle engine bound to this client's
// clock and configuration.
func (c *Client) Lifecycle() *lifecycle.Engine { return c.lc }

// Close stops the background scheduler, draining queued work. Safe to call
// multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.sched != nil {
		c.sched.Stop()
	}
	return nil
}

// Barrier blocks until the queued or in-flight task for key (if any) has
// settled, guaranteeing earlier operations on that key are visible remotely.
func (c *Client) Barrier(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fut, ok := c.sched.Pending(key)
	if !ok {
		return nil
	}
	_, err := fut.Wait(ctx)
	return err
}

// Flush blocks until every previously accepted asynchronous write has
// reached a terminal state (succeeded, or failed and been queued for
// replay). Intended for tests and graceful shutdown.
func (c *Client) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// PendingWrites reports how many failed writes await replay.
func (c *Client) PendingWrites() int { return c.retry.Len() }

// ReplayPending replays queued failed writes against the remote store,
// oldest first. An entry is removed only after its replay succeeds; the
// first failure stops the pass, leaving the remainder for a later attempt.
func (c *Client) ReplayPending(ctx context.Context) (int, error) {
	replayed, err := c.retry.Drain(ctx, func(ctx context.Context, w syncq.PendingWrite) error {
		if rerr := c.doRemoteWrite(ctx, w.Entity, w.EntityID, w.Op, w.Payload); rerr != nil {
			return rerr
		}
		writesReplayedTotal.Inc()
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Int("replayed", replayed).Int("left", c.retry.Len()).Msg("client: replay pass stopped")
	}
	return replayed, err
}
