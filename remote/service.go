// Package remote talks to the SmartMap server. It exposes the Service
// contract the cache core consumes and an HTTP implementation of it.
//
// Every call fails with an error satisfying errors.Is(err, ErrAccess) on
// transport or protocol failure; absence of a result is reported as
// ErrNotFound (single lookups) or an empty slice (list calls).
package remote

import (
	"context"

	"github.com/rbsteinm/SmartMap2/entity"
)

// Service is the network client contract consumed by the cache core.
type Service interface {
	// UserInfo fetches a single user by id.
	UserInfo(ctx context.Context, id int64) (*entity.UserSnapshot, error)
	// UsersInfo fetches a batch of users in one round trip. Unknown ids are
	// silently absent from the result.
	UsersInfo(ctx context.Context, ids []int64) ([]entity.UserSnapshot, error)
	// FindUsers searches users by display name.
	FindUsers(ctx context.Context, query string) ([]entity.UserSnapshot, error)
	// FriendsPositions lists the caller's friends with their last positions.
	FriendsPositions(ctx context.Context) ([]entity.UserSnapshot, error)

	// EventInfo fetches a single event by id.
	EventInfo(ctx context.Context, id int64) (*entity.EventSnapshot, error)
	// EventsInfo fetches a batch of events in one round trip.
	EventsInfo(ctx context.Context, ids []int64) ([]entity.EventSnapshot, error)
	// PublicEvents lists ids of public events within radius metres.
	PublicEvents(ctx context.Context, lat, lon, radius float64) ([]int64, error)

	// InviteFriend sends a friend request to the given user.
	InviteFriend(ctx context.Context, id int64) error
	// AcceptInvitation accepts the friend request from the given user.
	AcceptInvitation(ctx context.Context, id int64) error
	// DeclineInvitation declines the friend request from the given user.
	DeclineInvitation(ctx context.Context, id int64) error
}
