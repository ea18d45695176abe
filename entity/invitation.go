package entity

import (
	"fmt"
	"time"
)

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus int

const (
	StatusUnread InvitationStatus = iota
	StatusRead
	StatusAccepted
	StatusRefused
)

func (s InvitationStatus) String() string {
	switch s {
	case StatusUnread:
		return "unread"
	case StatusRead:
		return "read"
	case StatusAccepted:
		return "accepted"
	case StatusRefused:
		return "refused"
	default:
		return fmt.Sprintf("InvitationStatus(%d)", int(s))
	}
}

// Answered reports whether the invitation no longer needs user action.
func (s InvitationStatus) Answered() bool {
	return s == StatusAccepted || s == StatusRefused
}

// InvitationKind distinguishes friend requests from event invitations.
type InvitationKind int

const (
	FriendInvitation InvitationKind = iota
	EventInvitation
)

func (k InvitationKind) String() string {
	switch k {
	case FriendInvitation:
		return "friend"
	case EventInvitation:
		return "event"
	default:
		return fmt.Sprintf("InvitationKind(%d)", int(k))
	}
}

// Invitation is a pending friend request or event invitation. SubjectID is
// the inviting user for friend invitations and the event id otherwise.
type Invitation struct {
	ID        int64            `json:"id"`
	Kind      InvitationKind   `json:"kind"`
	SubjectID int64            `json:"subjectId"`
	Status    InvitationStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}
