package cache

import (
	"context"
	"fmt"

	"github.com/rbsteinm/SmartMap2/entity"
)

// Collection names an ordered id list maintained by the cache. The ids
// reference live instances in the entity tables; membership and entity
// data change independently.
type Collection int

const (
	// Friends holds the ids of the principal's confirmed friends.
	Friends Collection = iota
	// PendingFriends holds users the principal invited, not yet answered.
	PendingFriends
	// InvitingUsers holds users who invited the principal.
	InvitingUsers
	// NearEvents holds public events around the last known position.
	NearEvents
	// GoingEvents holds events the principal attends.
	GoingEvents
	// OwnEvents holds events the principal created.
	OwnEvents
)

func (col Collection) String() string {
	switch col {
	case Friends:
		return "friends"
	case PendingFriends:
		return "pending-friends"
	case InvitingUsers:
		return "inviting-users"
	case NearEvents:
		return "near-events"
	case GoingEvents:
		return "going-events"
	case OwnEvents:
		return "own-events"
	default:
		return fmt.Sprintf("Collection(%d)", int(col))
	}
}

// change maps a collection to the notification tag fired on membership moves.
func (col Collection) change() Change {
	switch col {
	case Friends:
		return ChangeFriends
	case PendingFriends:
		return ChangePendingFriends
	case InvitingUsers:
		return ChangeInvitingUsers
	case NearEvents:
		return ChangeNearEvents
	case GoingEvents:
		return ChangeGoingEvents
	case OwnEvents:
		return ChangeOwnEvents
	default:
		return ChangeEntity
	}
}

// holdsEvents reports whether the collection references events rather
// than users.
func (col Collection) holdsEvents() bool {
	switch col {
	case NearEvents, GoingEvents, OwnEvents:
		return true
	default:
		return false
	}
}

func appendID(ids []int64, id int64) []int64 {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []int64, id int64) ([]int64, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return ids, false
}

// Add resolves id and appends it to the collection. Adding to Friends
// resolves with friend semantics, so a cached stranger is promoted. An id
// already present is left alone and no notification fires.
func (c *Cache) Add(ctx context.Context, col Collection, id int64) error {
	if col.holdsEvents() {
		if _, err := c.ResolveEvent(ctx, id); err != nil {
			return err
		}
	} else if col == Friends {
		if _, err := c.ResolveFriend(ctx, id); err != nil {
			return err
		}
	} else {
		if _, err := c.ResolveUser(ctx, id); err != nil {
			return err
		}
	}

	c.mu.Lock()
	before := len(c.cols[col])
	c.cols[col] = appendID(c.cols[col], id)
	added := len(c.cols[col]) != before
	c.mu.Unlock()

	if added {
		c.notify(col.change())
	}
	return nil
}

// Remove drops id from the collection. Removing an absent id is a no-op
// and triggers no notification. The live instance stays cached.
func (c *Cache) Remove(col Collection, id int64) bool {
	c.mu.Lock()
	ids, removed := removeID(c.cols[col], id)
	c.cols[col] = ids
	c.mu.Unlock()

	if removed {
		c.notify(col.change())
	}
	return removed
}

// Contains reports membership without resolving anything.
func (c *Cache) Contains(col Collection, id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.cols[col] {
		if v == id {
			return true
		}
	}
	return false
}

// CollectionIDs returns a copy of the collection's id list in order.
func (c *Cache) CollectionIDs(col Collection) []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int64, len(c.cols[col]))
	copy(out, c.cols[col])
	return out
}

// Collection maps the collection's ids to live instances, preserving
// order. Ids without a live instance are skipped and logged; they can
// appear transiently when an entity was evicted underneath a membership
// list.
func (c *Cache) Collection(col Collection) []entity.Displayable {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]entity.Displayable, 0, len(c.cols[col]))
	for _, id := range c.cols[col] {
		if col.holdsEvents() {
			if e, ok := c.events[id]; ok {
				out = append(out, e)
				continue
			}
		} else if u, ok := c.userLocked(id); ok {
			out = append(out, u)
			continue
		}
		c.log.Warn().Int64("id", id).Stringer("collection", col).Msg("dangling collection id")
	}
	return out
}

func (c *Cache) userCollection(col Collection) []*entity.User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*entity.User, 0, len(c.cols[col]))
	for _, id := range c.cols[col] {
		u, ok := c.userLocked(id)
		if !ok {
			c.log.Warn().Int64("id", id).Stringer("collection", col).Msg("dangling collection id")
			continue
		}
		out = append(out, u)
	}
	return out
}

func (c *Cache) eventCollection(col Collection) []*entity.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*entity.Event, 0, len(c.cols[col]))
	for _, id := range c.cols[col] {
		e, ok := c.events[id]
		if !ok {
			c.log.Warn().Int64("id", id).Stringer("collection", col).Msg("dangling collection id")
			continue
		}
		out = append(out, e)
	}
	return out
}

// FriendList returns the confirmed friends in collection order.
func (c *Cache) FriendList() []*entity.User { return c.userCollection(Friends) }

// PendingFriendList returns users invited by the principal.
func (c *Cache) PendingFriendList() []*entity.User { return c.userCollection(PendingFriends) }

// InvitingUserList returns users who invited the principal.
func (c *Cache) InvitingUserList() []*entity.User { return c.userCollection(InvitingUsers) }

// NearEventList returns public events around the last known position.
func (c *Cache) NearEventList() []*entity.Event { return c.eventCollection(NearEvents) }

// GoingEventList returns events the principal attends.
func (c *Cache) GoingEventList() []*entity.Event { return c.eventCollection(GoingEvents) }

// OwnEventList returns events the principal created.
func (c *Cache) OwnEventList() []*entity.Event { return c.eventCollection(OwnEvents) }

// AddFriend resolves id with friend semantics and records the friendship.
func (c *Cache) AddFriend(ctx context.Context, id int64) error {
	return c.Add(ctx, Friends, id)
}

// RemoveFriend forgets a friendship: the id leaves the Friends collection,
// the live instance is dropped and the store row is deleted.
func (c *Cache) RemoveFriend(ctx context.Context, id int64) error {
	c.mu.Lock()
	ids, removed := removeID(c.cols[Friends], id)
	c.cols[Friends] = ids
	delete(c.friends, id)
	c.mu.Unlock()

	if err := c.store.DeleteFriend(ctx, id); err != nil {
		c.log.Error().Err(err).Int64("id", id).Msg("delete friend from store")
	}
	if removed {
		c.notify(ChangeFriends)
	}
	return nil
}

// setUsers bulk-replaces a user collection from snapshots and fires a
// single notification. Friend snapshots are written through to the store.
func (c *Cache) setUsers(ctx context.Context, col Collection, kind entity.UserKind, snaps []entity.UserSnapshot) {
	ids := make([]int64, 0, len(snaps))

	c.mu.Lock()
	for _, s := range snaps {
		c.putUserLocked(s, kind)
		ids = appendID(ids, s.ID)
	}
	c.cols[col] = ids
	c.mu.Unlock()

	if kind == entity.KindFriend {
		for _, s := range snaps {
			if err := c.store.SaveFriend(ctx, s); err != nil {
				c.log.Error().Err(err).Int64("id", s.ID).Msg("persist friend")
			}
		}
	}
	c.notify(col.change())
}

// setEvents bulk-replaces an event collection and fires one notification.
func (c *Cache) setEvents(ctx context.Context, col Collection, snaps []entity.EventSnapshot) {
	ids := make([]int64, 0, len(snaps))

	c.mu.Lock()
	for _, s := range snaps {
		c.putEventLocked(s)
		ids = appendID(ids, s.ID)
	}
	c.cols[col] = ids
	c.mu.Unlock()

	for _, s := range snaps {
		if err := c.store.SaveEvent(ctx, s); err != nil {
			c.log.Error().Err(err).Int64("id", s.ID).Msg("persist event")
		}
	}
	c.notify(col.change())
}

// SetFriends replaces the Friends collection with the given snapshots.
// The position refresher calls this on every poll.
func (c *Cache) SetFriends(ctx context.Context, snaps []entity.UserSnapshot) {
	c.setUsers(ctx, Friends, entity.KindFriend, snaps)
}

// SetPendingFriends replaces the outgoing-invitation list.
func (c *Cache) SetPendingFriends(ctx context.Context, snaps []entity.UserSnapshot) {
	c.setUsers(ctx, PendingFriends, entity.KindStranger, snaps)
}

// SetInvitingUsers replaces the incoming-invitation list.
func (c *Cache) SetInvitingUsers(ctx context.Context, snaps []entity.UserSnapshot) {
	c.setUsers(ctx, InvitingUsers, entity.KindStranger, snaps)
}

// SetNearEvents replaces the list of nearby public events.
func (c *Cache) SetNearEvents(ctx context.Context, snaps []entity.EventSnapshot) {
	c.setEvents(ctx, NearEvents, snaps)
}

// SetGoingEvents replaces the list of attended events.
func (c *Cache) SetGoingEvents(ctx context.Context, snaps []entity.EventSnapshot) {
	c.setEvents(ctx, GoingEvents, snaps)
}

// SetOwnEvents replaces the list of events the principal created.
func (c *Cache) SetOwnEvents(ctx context.Context, snaps []entity.EventSnapshot) {
	c.setEvents(ctx, OwnEvents, snaps)
}

// PutFilter inserts or replaces a display filter and persists it.
func (c *Cache) PutFilter(ctx context.Context, f entity.Filter) {
	c.mu.Lock()
	ff := f
	c.filters[f.ID] = &ff
	c.mu.Unlock()

	if err := c.store.SaveFilter(ctx, f); err != nil {
		c.log.Error().Err(err).Int64("id", f.ID).Msg("persist filter")
	}
	c.notify(ChangeFriends)
}

// Filters returns a copy of the known display filters.
func (c *Cache) Filters() []entity.Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entity.Filter, 0, len(c.filters))
	for _, f := range c.filters {
		out = append(out, *f)
	}
	return out
}

// SetFilterActive toggles a filter. Visibility may change, so listeners
// get a friends notification.
func (c *Cache) SetFilterActive(ctx context.Context, id int64, active bool) bool {
	c.mu.Lock()
	f, ok := c.filters[id]
	var snapshot entity.Filter
	if ok {
		f.Active = active
		snapshot = *f
	}
	c.mu.Unlock()
	if !ok {
		return false
	}

	if err := c.store.SaveFilter(ctx, snapshot); err != nil {
		c.log.Error().Err(err).Int64("id", id).Msg("persist filter")
	}
	c.notify(ChangeFriends)
	return true
}

// VisibleFriends returns the friend list with active filters applied.
// With no active filter every friend is visible; otherwise a friend must
// be a member of at least one active filter.
func (c *Cache) VisibleFriends() []*entity.User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var active []*entity.Filter
	for _, f := range c.filters {
		if f.Active {
			active = append(active, f)
		}
	}

	out := make([]*entity.User, 0, len(c.cols[Friends]))
	for _, id := range c.cols[Friends] {
		u, ok := c.friends[id]
		if !ok {
			continue
		}
		if len(active) == 0 {
			out = append(out, u)
			continue
		}
		for _, f := range active {
			if f.Contains(id) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
