package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbsteinm/SmartMap2/entity"
)

func TestAddResolvesBeforeAppending(t *testing.T) {
	c, _, rc := newTestCache(t)
	ctx := context.Background()

	rc.users[5] = entity.UserSnapshot{ID: 5, Name: "Nina"}

	var changes []Change
	c.Subscribe(func(ch Change) { changes = append(changes, ch) })

	require.NoError(t, c.Add(ctx, Friends, 5))
	require.True(t, c.Contains(Friends, 5))
	u, ok := c.Friend(5)
	require.True(t, ok)
	require.Equal(t, "Nina", u.Name())
	require.Contains(t, changes, ChangeFriends)
}

func TestAddUnknownIDFails(t *testing.T) {
	c, _, _ := newTestCache(t)

	err := c.Add(context.Background(), Friends, 404)
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, c.Contains(Friends, 404))
}

func TestAddDuplicateDoesNotNotify(t *testing.T) {
	c, _, rc := newTestCache(t)
	ctx := context.Background()

	rc.users[5] = entity.UserSnapshot{ID: 5}
	require.NoError(t, c.Add(ctx, Friends, 5))

	var changes []Change
	c.Subscribe(func(ch Change) { changes = append(changes, ch) })
	require.NoError(t, c.Add(ctx, Friends, 5))
	require.NotContains(t, changes, ChangeFriends)
}

func TestRemoveIsIdempotent(t *testing.T) {
	c, _, rc := newTestCache(t)
	ctx := context.Background()

	rc.users[5] = entity.UserSnapshot{ID: 5}
	require.NoError(t, c.Add(ctx, Friends, 5))

	var notified int
	c.Subscribe(func(ch Change) {
		if ch == ChangeFriends {
			notified++
		}
	})

	require.True(t, c.Remove(Friends, 5))
	require.Equal(t, 1, notified)

	// Absent id: no-op, no notification.
	require.False(t, c.Remove(Friends, 5))
	require.Equal(t, 1, notified)

	// The live instance survives removal from the collection.
	_, ok := c.Friend(5)
	require.True(t, ok)
}

func TestRemoveFriendDropsInstanceAndRow(t *testing.T) {
	c, st, rc := newTestCache(t)
	ctx := context.Background()

	rc.users[5] = entity.UserSnapshot{ID: 5, Name: "Nina"}
	require.NoError(t, c.AddFriend(ctx, 5))
	require.Contains(t, st.friends, int64(5))

	require.NoError(t, c.RemoveFriend(ctx, 5))
	require.False(t, c.Contains(Friends, 5))
	_, ok := c.Friend(5)
	require.False(t, ok)
	require.NotContains(t, st.friends, int64(5))
}

func TestSetFriendsReplacesWithSingleNotification(t *testing.T) {
	c, st, _ := newTestCache(t)
	ctx := context.Background()

	c.SetFriends(ctx, []entity.UserSnapshot{{ID: 1, Name: "Old"}})

	var notified int
	c.Subscribe(func(ch Change) {
		if ch == ChangeFriends {
			notified++
		}
	})

	c.SetFriends(ctx, []entity.UserSnapshot{
		{ID: 2, Name: "New"},
		{ID: 3, Name: "Newer"},
	})

	require.Equal(t, 1, notified)
	ids := c.CollectionIDs(Friends)
	require.Equal(t, []int64{2, 3}, ids)

	// Replaced membership does not evict the old live instance.
	_, ok := c.Friend(1)
	require.True(t, ok)

	// Write-through persisted the new friends.
	require.Contains(t, st.friends, int64(2))
	require.Contains(t, st.friends, int64(3))
}

func TestCollectionSkipsDanglingIDs(t *testing.T) {
	c, _, rc := newTestCache(t)
	ctx := context.Background()

	rc.events[1] = entity.EventSnapshot{ID: 1, Name: "Party"}
	require.NoError(t, c.Add(ctx, NearEvents, 1))

	// Force a dangle by clearing the entity table underneath the list.
	c.mu.Lock()
	delete(c.events, 1)
	c.mu.Unlock()

	require.Empty(t, c.NearEventList())
	require.Equal(t, []int64{1}, c.CollectionIDs(NearEvents))
}

func TestCollectionPreservesOrder(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()

	c.SetOwnEvents(ctx, []entity.EventSnapshot{
		{ID: 3, Name: "c"},
		{ID: 1, Name: "a"},
		{ID: 2, Name: "b"},
	})

	got := c.Collection(OwnEvents)
	require.Len(t, got, 3)
	require.Equal(t, int64(3), got[0].ID())
	require.Equal(t, int64(1), got[1].ID())
	require.Equal(t, int64(2), got[2].ID())
}

func TestVisibleFriendsAppliesActiveFilters(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()

	c.SetFriends(ctx, []entity.UserSnapshot{{ID: 1}, {ID: 2}, {ID: 3}})

	// No filter active: everyone is visible.
	require.Len(t, c.VisibleFriends(), 3)

	c.PutFilter(ctx, entity.Filter{ID: 10, Name: "Close", Members: []int64{1, 3}, Active: true})
	visible := c.VisibleFriends()
	require.Len(t, visible, 2)
	require.Equal(t, int64(1), visible[0].ID())
	require.Equal(t, int64(3), visible[1].ID())

	require.True(t, c.SetFilterActive(ctx, 10, false))
	require.Len(t, c.VisibleFriends(), 3)

	require.False(t, c.SetFilterActive(ctx, 99, true))
}
