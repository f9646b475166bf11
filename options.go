package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"time"

	"github.com/autolot/autolot-client/lifecycle"
)

// Option configures a Client during construction in New.
//
// Options are applied before the authorization transport wrapper is installed,
// so transport-related options (like debug logging) will be placed underneath
// the API-key wrapper. Options must be deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP
// request. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true. Do not enable in production; dumps include
// headers and bodies.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &debugTransport{base: c.http.Transport}
		}
		return nil
	}
}

// WithStoragePath persists the local cache and the sync-retry queue in a
// sqlite database at path, so the local-first view and queued replays
// survive restarts. Without it both are in-memory.
func WithStoragePath(path string) Option {
	return func(c *Client) error {
		if path == "" {
			return fmt.Errorf("storage path must not be empty")
		}
		c.storagePath = path
		return nil
	}
}

// WithLocalCache injects a custom cache collaborator.
func WithLocalCache(s LocalCache) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("local cache must not be nil")
		}
		c.cache = s
		return nil
	}
}

// WithRemoteStore injects a custom remote store collaborator (e.g. a fake
// for tests). The default talks HTTP to the configured base URL.
func WithRemoteStore(s RemoteStore) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("remote store must not be nil")
		}
		c.remote = s
		return nil
	}
}

// WithRetryQueue injects a custom sync-retry queue collaborator.
func WithRetryQueue(q RetryQueue) Option {
	return func(c *Client) error {
		if q == nil {
			return fmt.Errorf("retry queue must not be nil")
		}
		c.retry = q
		return nil
	}
}

// WithClock injects the clock used by the lifecycle engine and for
// timestamps on SDK-created records. Defaults to the system clock.
func WithClock(clk lifecycle.Clock) Option {
	return func(c *Client) error {
		if clk == nil {
			return fmt.Errorf("clock must not be nil")
		}
		c.clock = clk
		return nil
	}
}

// WithLifecycleConfig overrides the lifecycle constants (listing expiry and
// auto-refresh windows) instead of reading them from the environment.
func WithLifecycleConfig(cfg lifecycle.Config) Option {
	return func(c *Client) error {
		c.lcCfg = &cfg
		return nil
	}
}

// WithWorkers bounds the number of simultaneously in-flight remote
// operations. Keep it small; the remote store is rate-limited.
func WithWorkers(n int) Option {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("workers must be > 0")
		}
		c.schedCfg.Workers = n
		return nil
	}
}

// WithRetryPolicy tunes the scheduler's retry behavior for transient remote
// failures: up to maxAttempts attempts with exponential backoff starting at
// base and capped at max.
func WithRetryPolicy(maxAttempts int, base, max time.Duration) Option {
	return func(c *Client) error {
		if maxAttempts <= 0 {
			return fmt.Errorf("maxAttempts must be > 0")
		}
		c.schedCfg.MaxAttempts = maxAttempts
		c.schedCfg.BaseBackoff = base
		c.schedCfg.MaxInterval = max
		return nil
	}
}
