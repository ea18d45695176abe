package cache

import "fmt"

// Change tags a cache mutation for listener dispatch. Subscribers receive
// every change and filter on the tag.
type Change int

const (
	// ChangeFriends fires when the friend list or a friend's data changed.
	ChangeFriends Change = iota
	// ChangePendingFriends fires for the pending (outgoing) friend list.
	ChangePendingFriends
	// ChangeInvitingUsers fires for the list of users who invited us.
	ChangeInvitingUsers
	// ChangeNearEvents fires for the list of events near the user.
	ChangeNearEvents
	// ChangeGoingEvents fires for the list of events the user attends.
	ChangeGoingEvents
	// ChangeOwnEvents fires for the list of events the user created.
	ChangeOwnEvents
	// ChangeEntity fires for updates to a single entity outside any list.
	ChangeEntity
)

func (c Change) String() string {
	switch c {
	case ChangeFriends:
		return "friends"
	case ChangePendingFriends:
		return "pending-friends"
	case ChangeInvitingUsers:
		return "inviting-users"
	case ChangeNearEvents:
		return "near-events"
	case ChangeGoingEvents:
		return "going-events"
	case ChangeOwnEvents:
		return "own-events"
	case ChangeEntity:
		return "entity"
	default:
		return fmt.Sprintf("Change(%d)", int(c))
	}
}
