package client

// Functional options applied during construction in New. Keeping them in a
// standalone file makes the available knobs easy to discover at a glance.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rbsteinm/SmartMap2/remote"
	"github.com/rbsteinm/SmartMap2/store"
)

// Option configures a Client during construction in New. Options must be
// deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPClient replaces the http.Client used for API calls.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) error {
		if h == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.http = h
		return nil
	}
}

// WithHTTPTimeout sets the underlying http.Client Timeout.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net bounding the total time of a single HTTP request.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the transport so each request/response pair is
// dumped at debug level. Do not enable in production, dumps include bodies.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &remote.DebugTransport{Base: c.http.Transport}
		}
		return nil
	}
}

// WithLogger sets the logger shared by all subsystems.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// WithDBPath sets the sqlite file used when no store is injected.
func WithDBPath(path string) Option {
	return func(c *Client) error {
		if path == "" {
			return fmt.Errorf("db path cannot be empty")
		}
		c.dbPath = path
		return nil
	}
}

// WithStore injects a store, bypassing the default sqlite one. The caller
// keeps ownership and closes it.
func WithStore(st store.Store) Option {
	return func(c *Client) error {
		if st == nil {
			return fmt.Errorf("store cannot be nil")
		}
		c.store = st
		return nil
	}
}

// WithRemote injects a remote service, bypassing the default HTTP client.
func WithRemote(rc remote.Service) Option {
	return func(c *Client) error {
		if rc == nil {
			return fmt.Errorf("remote cannot be nil")
		}
		c.remote = rc
		return nil
	}
}

// WithoutExecutor disables the background executor. Async operations run
// inline on the caller's goroutine; meant for tests and one-shot tools.
func WithoutExecutor() Option {
	return func(c *Client) error {
		c.exec = noExecutor{}
		return nil
	}
}

// WithSearchTTL overrides how long online search results are memoized.
func WithSearchTTL(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("search ttl must be > 0")
		}
		c.searchTTL = d
		return nil
	}
}

// WithNearThreshold overrides the drift distance for nearby-event reuse.
func WithNearThreshold(metres float64) Option {
	return func(c *Client) error {
		if metres < 0 {
			return fmt.Errorf("near threshold must be >= 0")
		}
		c.nearTh = metres
		return nil
	}
}
