// Package cache holds the canonical in-memory view of the social graph:
// one live instance per friend, stranger and event, membership collections,
// display filters and a change-notification bus. All reads and writes go
// through a single monitor; listeners are invoked after the monitor is
// released so handlers may call back into the cache.
package cache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rbsteinm/SmartMap2/entity"
	"github.com/rbsteinm/SmartMap2/remote"
	"github.com/rbsteinm/SmartMap2/store"
)

// ErrNotFound is returned by the resolvers when an entity does not exist
// anywhere: not live, not in the local store and unknown to the server.
var ErrNotFound = remote.ErrNotFound

// Cache is the single source of truth for entity instances. Every lookup
// for a given (kind, id) pair yields the same pointer for the lifetime of
// the process; updates merge into that instance rather than replacing it.
type Cache struct {
	mu        sync.RWMutex
	friends   map[int64]*entity.User
	strangers map[int64]*entity.User
	events    map[int64]*entity.Event
	cols      map[Collection][]int64
	filters   map[int64]*entity.Filter

	registry *registry
	store    store.Store
	remote   remote.Service
	sf       singleflight.Group
	log      zerolog.Logger
}

// New builds an empty cache backed by the given local store and remote
// service. Call Warm to pre-fill it from the store.
func New(st store.Store, rc remote.Service, log zerolog.Logger) *Cache {
	return &Cache{
		friends:   make(map[int64]*entity.User),
		strangers: make(map[int64]*entity.User),
		events:    make(map[int64]*entity.Event),
		cols: map[Collection][]int64{
			Friends:        nil,
			PendingFriends: nil,
			InvitingUsers:  nil,
			NearEvents:     nil,
			GoingEvents:    nil,
			OwnEvents:      nil,
		},
		filters:  make(map[int64]*entity.Filter),
		registry: newRegistry(log),
		store:    st,
		remote:   rc,
		log:      log.With().Str("component", "cache").Logger(),
	}
}

// Warm loads friends, events and filters persisted by a previous session
// so the UI has something to show before the first network round trip.
func (c *Cache) Warm(ctx context.Context) error {
	friends, err := c.store.Friends(ctx)
	if err != nil {
		return err
	}
	events, err := c.store.Events(ctx)
	if err != nil {
		return err
	}
	filters, err := c.store.Filters(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	for _, s := range friends {
		c.putUserLocked(s, entity.KindFriend)
		c.cols[Friends] = appendID(c.cols[Friends], s.ID)
	}
	for _, s := range events {
		c.putEventLocked(s)
	}
	for _, f := range filters {
		ff := f
		c.filters[f.ID] = &ff
	}
	c.mu.Unlock()

	c.log.Info().
		Int("friends", len(friends)).
		Int("events", len(events)).
		Int("filters", len(filters)).
		Msg("cache warmed from local store")

	if len(friends) > 0 {
		c.notify(ChangeFriends)
	}
	return nil
}

// Subscribe registers a listener for change notifications and returns a
// token for Unsubscribe. Listeners run synchronously, in subscription
// order, after the triggering mutation has committed.
func (c *Cache) Subscribe(fn Listener) SubscriptionID {
	return c.registry.subscribe(fn)
}

// Unsubscribe removes a listener. Unknown tokens are ignored.
func (c *Cache) Unsubscribe(id SubscriptionID) bool {
	return c.registry.unsubscribe(id)
}

func (c *Cache) notify(changes ...Change) {
	for _, ch := range changes {
		notificationsTotal.WithLabelValues(ch.String()).Inc()
		c.registry.notify(ch)
	}
}

// PutFriend inserts or merges a friend snapshot. It reports whether a new
// live instance was created. If the user was previously held as a
// stranger, the stranger instance is dropped and a fresh friend instance
// takes its place.
func (c *Cache) PutFriend(s entity.UserSnapshot) bool {
	c.mu.Lock()
	inserted := c.putUserLocked(s, entity.KindFriend)
	c.mu.Unlock()

	c.notify(ChangeEntity)
	return inserted
}

// PutStranger inserts or merges a stranger snapshot. Snapshots for ids
// already cached as friends are merged into the friend instance instead;
// a friend never degrades back to a stranger.
func (c *Cache) PutStranger(s entity.UserSnapshot) bool {
	c.mu.Lock()
	inserted := c.putUserLocked(s, entity.KindStranger)
	c.mu.Unlock()

	c.notify(ChangeEntity)
	return inserted
}

// PutEvent inserts or merges an event snapshot.
func (c *Cache) PutEvent(s entity.EventSnapshot) bool {
	c.mu.Lock()
	inserted := c.putEventLocked(s)
	c.mu.Unlock()

	c.notify(ChangeEntity)
	return inserted
}

// PutFriends applies a batch of friend snapshots with a single
// notification at the end, however many instances were touched.
func (c *Cache) PutFriends(snaps []entity.UserSnapshot) {
	if len(snaps) == 0 {
		return
	}
	c.mu.Lock()
	for _, s := range snaps {
		c.putUserLocked(s, entity.KindFriend)
	}
	c.mu.Unlock()

	c.notify(ChangeEntity)
}

// PutStrangers applies a batch of stranger snapshots with a single
// notification. Ids already cached as friends merge into the friend
// instances.
func (c *Cache) PutStrangers(snaps []entity.UserSnapshot) {
	if len(snaps) == 0 {
		return
	}
	c.mu.Lock()
	for _, s := range snaps {
		c.putUserLocked(s, entity.KindStranger)
	}
	c.mu.Unlock()

	c.notify(ChangeEntity)
}

// PutEvents applies a batch of event snapshots with a single notification.
func (c *Cache) PutEvents(snaps []entity.EventSnapshot) {
	if len(snaps) == 0 {
		return
	}
	c.mu.Lock()
	for _, s := range snaps {
		c.putEventLocked(s)
	}
	c.mu.Unlock()

	c.notify(ChangeEntity)
}

// putUserLocked merges a snapshot into the live instance for its id,
// creating one when absent. Caller holds the write lock.
func (c *Cache) putUserLocked(s entity.UserSnapshot, kind entity.UserKind) bool {
	if u, ok := c.friends[s.ID]; ok {
		u.Update(s)
		return false
	}
	if u, ok := c.strangers[s.ID]; ok {
		if kind == entity.KindFriend {
			// Promotion: the stranger instance is abandoned, anyone
			// still holding it keeps a frozen view.
			delete(c.strangers, s.ID)
			c.friends[s.ID] = entity.NewFriend(s)
			return true
		}
		u.Update(s)
		return false
	}
	if kind == entity.KindFriend {
		c.friends[s.ID] = entity.NewFriend(s)
	} else {
		c.strangers[s.ID] = entity.NewStranger(s)
	}
	return true
}

func (c *Cache) putEventLocked(s entity.EventSnapshot) bool {
	if e, ok := c.events[s.ID]; ok {
		e.Update(s)
		return false
	}
	c.events[s.ID] = entity.NewEvent(s)
	return true
}

// userLocked returns the live instance for id in either user map.
func (c *Cache) userLocked(id int64) (*entity.User, bool) {
	if u, ok := c.friends[id]; ok {
		return u, true
	}
	u, ok := c.strangers[id]
	return u, ok
}

// Friend returns the live friend instance for id if one is cached.
func (c *Cache) Friend(id int64) (*entity.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.friends[id]
	return u, ok
}

// Stranger returns the live stranger instance for id if one is cached.
func (c *Cache) Stranger(id int64) (*entity.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.strangers[id]
	return u, ok
}

// User returns the live instance for id regardless of kind.
func (c *Cache) User(id int64) (*entity.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userLocked(id)
}

// Event returns the live event instance for id if one is cached.
func (c *Cache) Event(id int64) (*entity.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.events[id]
	return e, ok
}

// AllFriends returns every cached friend instance in unspecified order.
func (c *Cache) AllFriends() []*entity.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*entity.User, 0, len(c.friends))
	for _, u := range c.friends {
		out = append(out, u)
	}
	return out
}

// AllEvents returns every cached event instance in unspecified order.
func (c *Cache) AllEvents() []*entity.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*entity.Event, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e)
	}
	return out
}
