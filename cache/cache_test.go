package cache

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rbsteinm/SmartMap2/entity"
)

func newTestCache(t *testing.T) (*Cache, *fakeStore, *fakeRemote) {
	t.Helper()
	st := newFakeStore()
	rc := newFakeRemote()
	return New(st, rc, zerolog.Nop()), st, rc
}

func TestPutFriendSingleInstance(t *testing.T) {
	c, _, _ := newTestCache(t)

	require.True(t, c.PutFriend(entity.UserSnapshot{ID: 1, Name: "Alice"}))
	first, ok := c.Friend(1)
	require.True(t, ok)

	// A second snapshot merges into the existing instance.
	require.False(t, c.PutFriend(entity.UserSnapshot{ID: 1, Name: "Alice B"}))
	second, ok := c.Friend(1)
	require.True(t, ok)
	require.Same(t, first, second)
	require.Equal(t, "Alice B", first.Name())
}

func TestPutStrangerNeverDegradesFriend(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.PutFriend(entity.UserSnapshot{ID: 1, Name: "Alice"})
	friend, _ := c.Friend(1)

	require.False(t, c.PutStranger(entity.UserSnapshot{ID: 1, Name: "Alice B"}))

	_, ok := c.Stranger(1)
	require.False(t, ok)
	got, ok := c.User(1)
	require.True(t, ok)
	require.Same(t, friend, got)
	require.Equal(t, "Alice B", got.Name())
	require.Equal(t, entity.KindFriend, got.Kind())
}

func TestPutFriendPromotesStranger(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.PutStranger(entity.UserSnapshot{ID: 7, Name: "Sam"})
	stranger, _ := c.Stranger(7)

	require.True(t, c.PutFriend(entity.UserSnapshot{ID: 7, Name: "Sam"}))

	_, ok := c.Stranger(7)
	require.False(t, ok)
	friend, ok := c.Friend(7)
	require.True(t, ok)
	require.NotSame(t, stranger, friend)
	require.Equal(t, entity.KindFriend, friend.Kind())
}

func TestBatchPutSingleNotification(t *testing.T) {
	c, _, _ := newTestCache(t)

	var got []Change
	c.Subscribe(func(ch Change) { got = append(got, ch) })

	c.PutFriends([]entity.UserSnapshot{{ID: 1}, {ID: 2}, {ID: 3}})
	require.Equal(t, []Change{ChangeEntity}, got)

	got = nil
	c.PutFriends(nil)
	require.Empty(t, got)
}

func TestNotifyOrderAndPanicIsolation(t *testing.T) {
	c, _, _ := newTestCache(t)

	var order []string
	c.Subscribe(func(Change) { order = append(order, "a") })
	c.Subscribe(func(Change) { panic("listener bug") })
	c.Subscribe(func(Change) { order = append(order, "c") })

	c.PutFriend(entity.UserSnapshot{ID: 1})
	require.Equal(t, []string{"a", "c"}, order)
}

func TestListenerMayCallBackIntoCache(t *testing.T) {
	c, _, _ := newTestCache(t)

	done := make(chan struct{})
	c.Subscribe(func(Change) {
		// Must not deadlock: dispatch happens after the monitor is released.
		c.FriendList()
		close(done)
	})

	go c.PutFriend(entity.UserSnapshot{ID: 1})
	<-done
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	c, _, _ := newTestCache(t)

	var calls int
	id := c.Subscribe(func(Change) { calls++ })
	c.PutFriend(entity.UserSnapshot{ID: 1})
	require.Equal(t, 1, calls)

	require.True(t, c.Unsubscribe(id))
	require.False(t, c.Unsubscribe(id))
	c.PutFriend(entity.UserSnapshot{ID: 2})
	require.Equal(t, 1, calls)
}

func TestWarmLoadsStoreContents(t *testing.T) {
	st := newFakeStore()
	rc := newFakeRemote()
	st.friends[1] = entity.UserSnapshot{ID: 1, Name: "Alice"}
	st.events[9] = entity.EventSnapshot{ID: 9, Name: "Ballet"}
	st.filters[3] = entity.Filter{ID: 3, Name: "Family", Members: []int64{1}}

	c := New(st, rc, zerolog.Nop())
	require.NoError(t, c.Warm(context.Background()))

	friends := c.FriendList()
	require.Len(t, friends, 1)
	require.Equal(t, "Alice", friends[0].Name())
	_, ok := c.Event(9)
	require.True(t, ok)
	require.Len(t, c.Filters(), 1)
}
