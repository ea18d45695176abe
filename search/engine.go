// Package search answers user queries over the cached social graph and,
// for strangers and public events, over the network. Online results are
// memoized with a TTL so repeating a query does not hammer the server.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rbsteinm/SmartMap2/cache"
	"github.com/rbsteinm/SmartMap2/entity"
	"github.com/rbsteinm/SmartMap2/remote"
)

// Scope selects which result families a query runs against.
type Scope int

const (
	// All concatenates the Friends, Events and Tags results, in that order.
	All Scope = iota
	// Friends matches cached friends by name.
	Friends
	// Events matches cached events by name.
	Events
	// Tags is reserved; it currently yields nothing.
	Tags
)

const (
	// DefaultTTL bounds how long an online query result is reused.
	DefaultTTL = 5 * time.Minute
	// DefaultNearThreshold is how far (metres) a new position may drift from
	// a memoized query before the events around it are fetched again.
	DefaultNearThreshold = 500.0
)

// Engine runs queries against the cache and the remote service.
type Engine struct {
	cache  *cache.Cache
	remote remote.Service
	log    zerolog.Logger

	ttl           time.Duration
	nearThreshold float64
	now           func() time.Time

	mu          sync.Mutex
	userQueries map[string]userQuery
	nearQueries []nearQuery
}

type userQuery struct {
	ids     []int64
	expires time.Time
}

type nearQuery struct {
	pos     entity.Position
	radius  float64
	ids     []int64
	expires time.Time
}

// Option tunes an Engine.
type Option func(*Engine)

// WithTTL overrides how long online results are memoized.
func WithTTL(d time.Duration) Option {
	return func(e *Engine) { e.ttl = d }
}

// WithNearThreshold overrides the drift distance, in metres, under which a
// nearby-events query reuses the previous answer.
func WithNearThreshold(metres float64) Option {
	return func(e *Engine) { e.nearThreshold = metres }
}

// New builds an Engine over the given cache and remote service.
func New(c *cache.Cache, rc remote.Service, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		cache:         c,
		remote:        rc,
		log:           log.With().Str("component", "search").Logger(),
		ttl:           DefaultTTL,
		nearThreshold: DefaultNearThreshold,
		now:           time.Now,
		userQueries:   make(map[string]userQuery),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search matches term against cached entities, case-insensitively. An
// empty term matches everything in scope. No I/O happens here.
func (e *Engine) Search(term string, scope Scope) []entity.Displayable {
	needle := strings.ToLower(strings.TrimSpace(term))

	var out []entity.Displayable
	if scope == All || scope == Friends {
		for _, u := range e.cache.AllFriends() {
			if matches(u.Name(), needle) {
				out = append(out, u)
			}
		}
	}
	if scope == All || scope == Events {
		for _, ev := range e.cache.AllEvents() {
			if matches(ev.Name(), needle) {
				out = append(out, ev)
			}
		}
	}
	// Tags: no tag source yet, contributes nothing.
	return out
}

func matches(name, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), needle)
}

// FindUsers searches strangers on the server by name. Results for the
// same case-folded query are reused until the TTL expires; every returned
// user is a live cache instance.
func (e *Engine) FindUsers(ctx context.Context, query string) ([]*entity.User, error) {
	key := strings.ToLower(strings.TrimSpace(query))

	e.mu.Lock()
	memo, ok := e.userQueries[key]
	fresh := ok && e.now().Before(memo.expires)
	e.mu.Unlock()

	if fresh {
		return e.cache.ResolveUsers(ctx, memo.ids)
	}

	snaps, err := e.remote.FindUsers(ctx, query)
	if err != nil {
		return nil, err
	}
	e.cache.PutStrangers(snaps)

	ids := make([]int64, len(snaps))
	for i, s := range snaps {
		ids[i] = s.ID
	}

	e.mu.Lock()
	e.userQueries[key] = userQuery{ids: ids, expires: e.now().Add(e.ttl)}
	e.mu.Unlock()

	return e.cache.ResolveUsers(ctx, ids)
}

// NearEvents lists public events around pos within radius metres. A recent
// query whose position lies within the drift threshold and whose radius
// covers the request is answered from memory; otherwise the server is
// asked for ids and the events are batch-resolved. Fresh results replace
// the NearEvents collection.
func (e *Engine) NearEvents(ctx context.Context, pos entity.Position, radius float64) ([]*entity.Event, error) {
	e.mu.Lock()
	now := e.now()
	var hit *nearQuery
	live := e.nearQueries[:0]
	for i := range e.nearQueries {
		q := e.nearQueries[i]
		if now.After(q.expires) {
			continue
		}
		live = append(live, q)
		if hit == nil && q.radius >= radius && pos.DistanceTo(q.pos) <= e.nearThreshold {
			hit = &live[len(live)-1]
		}
	}
	e.nearQueries = live
	var memoIDs []int64
	if hit != nil {
		memoIDs = hit.ids
	}
	e.mu.Unlock()

	if hit != nil {
		return e.cache.ResolveEvents(ctx, memoIDs)
	}

	ids, err := e.remote.PublicEvents(ctx, pos.Latitude, pos.Longitude, radius)
	if err != nil {
		return nil, err
	}
	events, err := e.cache.ResolveEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	snaps := make([]entity.EventSnapshot, len(events))
	for i, ev := range events {
		snaps[i] = ev.Snapshot()
	}
	e.cache.SetNearEvents(ctx, snaps)

	e.mu.Lock()
	e.nearQueries = append(e.nearQueries, nearQuery{
		pos:     pos,
		radius:  radius,
		ids:     ids,
		expires: e.now().Add(e.ttl),
	})
	e.mu.Unlock()

	e.log.Debug().Int("events", len(events)).Float64("radius", radius).Msg("nearby events fetched")
	return events, nil
}
