package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/rbsteinm/SmartMap2/entity"
)

// Resolution walks three tiers and stops at the first hit: the live
// instance tables, the persistent store, then the network. A store read
// error is logged and treated as a miss so a corrupt local database never
// blocks resolution. Network snapshots are written back to the store.

// ResolveFriend returns the live friend instance for id, fetching it
// through the store or the network when necessary. A cached stranger with
// this id is promoted to a friend.
func (c *Cache) ResolveFriend(ctx context.Context, id int64) (*entity.User, error) {
	return c.resolveUser(ctx, id, entity.KindFriend)
}

// ResolveStranger returns the live instance for id with stranger
// semantics. An existing friend instance is returned as is.
func (c *Cache) ResolveStranger(ctx context.Context, id int64) (*entity.User, error) {
	return c.resolveUser(ctx, id, entity.KindStranger)
}

// ResolveUser resolves id without changing its kind: a cached friend
// stays a friend, anything fetched arrives as a stranger.
func (c *Cache) ResolveUser(ctx context.Context, id int64) (*entity.User, error) {
	return c.resolveUser(ctx, id, entity.KindStranger)
}

func (c *Cache) resolveUser(ctx context.Context, id int64, kind entity.UserKind) (*entity.User, error) {
	c.mu.RLock()
	u, ok := c.userLocked(id)
	c.mu.RUnlock()
	if ok && (kind != entity.KindFriend || u.Kind() == entity.KindFriend) {
		resolvesTotal.WithLabelValues("user", tierLive).Inc()
		return u, nil
	}

	if snap, ok := c.storeUser(ctx, id); ok {
		resolvesTotal.WithLabelValues("user", tierStore).Inc()
		// The store only holds friends, so the snapshot re-enters as one.
		c.PutFriend(snap)
		return c.mustUser(id)
	}

	snap, err := c.fetchUser(ctx, id)
	if err != nil {
		return nil, err
	}
	resolvesTotal.WithLabelValues("user", tierNetwork).Inc()

	if kind == entity.KindFriend {
		c.PutFriend(snap)
		c.writeBackFriend(ctx, snap)
	} else {
		c.PutStranger(snap)
	}
	return c.mustUser(id)
}

// ResolveEvent returns the live event instance for id, walking the tiers.
func (c *Cache) ResolveEvent(ctx context.Context, id int64) (*entity.Event, error) {
	c.mu.RLock()
	e, ok := c.events[id]
	c.mu.RUnlock()
	if ok {
		resolvesTotal.WithLabelValues("event", tierLive).Inc()
		return e, nil
	}

	if snap, ok := c.storeEvent(ctx, id); ok {
		resolvesTotal.WithLabelValues("event", tierStore).Inc()
		c.PutEvent(snap)
		return c.mustEvent(id)
	}

	snap, err := c.fetchEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	resolvesTotal.WithLabelValues("event", tierNetwork).Inc()

	c.PutEvent(snap)
	c.writeBackEvent(ctx, snap)
	return c.mustEvent(id)
}

// ResolveUsers resolves a batch with at most one network round trip. Live
// and store hits are served locally; the remaining ids go out in a single
// UsersInfo call and land in one Put batch, so listeners see one
// notification for the whole batch. Ids unknown to the server are logged
// and omitted from the result.
func (c *Cache) ResolveUsers(ctx context.Context, ids []int64) ([]*entity.User, error) {
	var missing []int64

	c.mu.RLock()
	for _, id := range ids {
		if _, ok := c.userLocked(id); !ok {
			missing = append(missing, id)
		}
	}
	c.mu.RUnlock()

	var fromStore []entity.UserSnapshot
	var fetch []int64
	for _, id := range missing {
		if snap, ok := c.storeUser(ctx, id); ok {
			fromStore = append(fromStore, snap)
		} else {
			fetch = append(fetch, id)
		}
	}
	c.PutFriends(fromStore)

	if len(fetch) > 0 {
		snaps, err := c.remote.UsersInfo(ctx, fetch)
		if err != nil {
			resolveFailuresTotal.WithLabelValues("user", "network").Inc()
			return nil, fmt.Errorf("resolve %d users: %w", len(fetch), err)
		}
		resolvesTotal.WithLabelValues("user", tierNetwork).Add(float64(len(snaps)))
		c.PutStrangers(snaps)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		u, ok := c.userLocked(id)
		if !ok {
			c.log.Warn().Int64("id", id).Msg("user absent after batch resolve")
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// ResolveEvents is the event counterpart of ResolveUsers.
func (c *Cache) ResolveEvents(ctx context.Context, ids []int64) ([]*entity.Event, error) {
	var missing []int64

	c.mu.RLock()
	for _, id := range ids {
		if _, ok := c.events[id]; !ok {
			missing = append(missing, id)
		}
	}
	c.mu.RUnlock()

	var fromStore []entity.EventSnapshot
	var fetch []int64
	for _, id := range missing {
		if snap, ok := c.storeEvent(ctx, id); ok {
			fromStore = append(fromStore, snap)
		} else {
			fetch = append(fetch, id)
		}
	}
	c.PutEvents(fromStore)

	if len(fetch) > 0 {
		snaps, err := c.remote.EventsInfo(ctx, fetch)
		if err != nil {
			resolveFailuresTotal.WithLabelValues("event", "network").Inc()
			return nil, fmt.Errorf("resolve %d events: %w", len(fetch), err)
		}
		resolvesTotal.WithLabelValues("event", tierNetwork).Add(float64(len(snaps)))
		c.PutEvents(snaps)
		for _, s := range snaps {
			c.writeBackEvent(ctx, s)
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*entity.Event, 0, len(ids))
	for _, id := range ids {
		e, ok := c.events[id]
		if !ok {
			c.log.Warn().Int64("id", id).Msg("event absent after batch resolve")
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// storeUser reads a friend snapshot from the persistent store. Errors are
// demoted to a miss.
func (c *Cache) storeUser(ctx context.Context, id int64) (entity.UserSnapshot, bool) {
	snap, err := c.store.Friend(ctx, id)
	if err != nil {
		c.log.Warn().Err(err).Int64("id", id).Msg("store read failed, treating as miss")
		return entity.UserSnapshot{}, false
	}
	if snap == nil {
		return entity.UserSnapshot{}, false
	}
	return *snap, true
}

func (c *Cache) storeEvent(ctx context.Context, id int64) (entity.EventSnapshot, bool) {
	snap, err := c.store.Event(ctx, id)
	if err != nil {
		c.log.Warn().Err(err).Int64("id", id).Msg("store read failed, treating as miss")
		return entity.EventSnapshot{}, false
	}
	if snap == nil {
		return entity.EventSnapshot{}, false
	}
	return *snap, true
}

// fetchUser hits the network, deduplicating concurrent fetches for the
// same id through singleflight.
func (c *Cache) fetchUser(ctx context.Context, id int64) (entity.UserSnapshot, error) {
	v, err, _ := c.sf.Do(fmt.Sprintf("user/%d", id), func() (any, error) {
		return c.remote.UserInfo(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			resolveFailuresTotal.WithLabelValues("user", "not-found").Inc()
			return entity.UserSnapshot{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		resolveFailuresTotal.WithLabelValues("user", "network").Inc()
		return entity.UserSnapshot{}, fmt.Errorf("resolve user %d: %w", id, err)
	}
	return *v.(*entity.UserSnapshot), nil
}

func (c *Cache) fetchEvent(ctx context.Context, id int64) (entity.EventSnapshot, error) {
	v, err, _ := c.sf.Do(fmt.Sprintf("event/%d", id), func() (any, error) {
		return c.remote.EventInfo(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			resolveFailuresTotal.WithLabelValues("event", "not-found").Inc()
			return entity.EventSnapshot{}, fmt.Errorf("event %d: %w", id, ErrNotFound)
		}
		resolveFailuresTotal.WithLabelValues("event", "network").Inc()
		return entity.EventSnapshot{}, fmt.Errorf("resolve event %d: %w", id, err)
	}
	return *v.(*entity.EventSnapshot), nil
}

func (c *Cache) writeBackFriend(ctx context.Context, s entity.UserSnapshot) {
	if err := c.store.SaveFriend(ctx, s); err != nil {
		c.log.Error().Err(err).Int64("id", s.ID).Msg("write back friend")
	}
}

func (c *Cache) writeBackEvent(ctx context.Context, s entity.EventSnapshot) {
	if err := c.store.SaveEvent(ctx, s); err != nil {
		c.log.Error().Err(err).Int64("id", s.ID).Msg("write back event")
	}
}

func (c *Cache) mustUser(id int64) (*entity.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.userLocked(id)
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, nil
}

func (c *Cache) mustEvent(id int64) (*entity.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.events[id]
	if !ok {
		return nil, fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	return e, nil
}
