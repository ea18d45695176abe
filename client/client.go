// Package client is the composition root of the SmartMap client core. It
// wires the local store, the network client, the cache, the query engine
// and the background executor into one object the application talks to.
package client

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rbsteinm/SmartMap2/cache"
	"github.com/rbsteinm/SmartMap2/internal/shardqueue"
	"github.com/rbsteinm/SmartMap2/remote"
	"github.com/rbsteinm/SmartMap2/search"
	"github.com/rbsteinm/SmartMap2/store"
	"github.com/rbsteinm/SmartMap2/store/sqlite"
)

// Client owns all client-core subsystems. Synchronous reads go straight to
// the cache; writes that need the network run through the shard executor so
// the UI thread never blocks on I/O.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger

	store  store.Store
	remote remote.Service
	cache  *cache.Cache
	search *search.Engine
	exec   executor

	ownStore  bool   // store was opened here and is closed here
	closed    uint32 // ensures Close is idempotent
	searchTTL time.Duration
	nearTh    float64
	dbPath    string
}

// New constructs a Client for the SmartMap API at baseURL. Unless options
// say otherwise it opens a sqlite store, builds an HTTP remote and starts a
// shard executor.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("client: baseURL cannot be empty")
	}

	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 15 * time.Second},
		log:       zerolog.Nop(),
		dbPath:    "smartmap.db",
		searchTTL: search.DefaultTTL,
		nearTh:    search.DefaultNearThreshold,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.store == nil {
		st, err := sqlite.New(c.dbPath)
		if err != nil {
			return nil, fmt.Errorf("client: open store: %w", err)
		}
		c.store = st
		c.ownStore = true
	}
	if c.remote == nil {
		c.remote = remote.NewClient(baseURL, c.http)
	}

	c.cache = cache.New(c.store, c.remote, c.log)
	c.search = search.New(c.cache, c.remote, c.log,
		search.WithTTL(c.searchTTL),
		search.WithNearThreshold(c.nearTh),
	)
	if c.exec == nil {
		c.exec = newDefaultExecutor(c.log)
	}
	return c, nil
}

// newDefaultExecutor constructs the shardqueue executor with sane defaults.
// Remote failures are retried when the error taxonomy marks them transient.
func newDefaultExecutor(log zerolog.Logger) *shardqueue.ShardExecutor {
	cfg := shardqueue.Config{
		Shards:    4,
		QueueSize: 1000,
		Retryable: remote.IsRetryable,
		ErrorHandler: func(err error) {
			jobsFailedTotal.Inc()
			log.Error().Err(err).Msg("background job failed")
		},
	}
	return shardqueue.NewShardExecutor(cfg, log)
}

// Warm pre-fills the cache from the local store.
func (c *Client) Warm(ctx context.Context) error {
	return c.cache.Warm(ctx)
}

// Cache exposes the entity cache for reads and subscriptions.
func (c *Client) Cache() *cache.Cache { return c.cache }

// Search exposes the query engine.
func (c *Client) Search() *search.Engine { return c.search }

// AwaitIdle blocks until every job previously submitted for key has run,
// by pushing a barrier through the key's shard.
func (c *Client) AwaitIdle(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.exec.Barrier(ctx, key); err != nil {
		return mapExecErr(err)
	}
	return nil
}

// Close stops the background executor and, if this client opened the
// store, closes it. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closed, 0, 1) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	if c.ownStore {
		return c.store.Close()
	}
	return nil
}

// submit pushes a job onto the executor, mapping queue-full to the
// public back-pressure error.
func (c *Client) submit(ctx context.Context, key string, fn func(context.Context) error) error {
	if err := c.exec.Submit(ctx, key, shardqueue.JobFunc(fn)); err != nil {
		return mapExecErr(err)
	}
	jobsEnqueuedTotal.WithLabelValues(shardLabel(key)).Inc()
	return nil
}
