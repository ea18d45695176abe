// Package store defines the persistent-store contract consumed by the cache
// core. Read paths report absence as (nil, nil) rather than an error; an
// error means the store itself failed and the caller should treat the read
// as a transient miss.
package store

import (
	"context"

	"github.com/rbsteinm/SmartMap2/entity"
)

// Store is the local persistence contract.
type Store interface {
	Friend(ctx context.Context, id int64) (*entity.UserSnapshot, error)
	Friends(ctx context.Context) ([]entity.UserSnapshot, error)
	SaveFriend(ctx context.Context, s entity.UserSnapshot) error
	DeleteFriend(ctx context.Context, id int64) error

	Event(ctx context.Context, id int64) (*entity.EventSnapshot, error)
	Events(ctx context.Context) ([]entity.EventSnapshot, error)
	SaveEvent(ctx context.Context, s entity.EventSnapshot) error
	DeleteEvent(ctx context.Context, id int64) error

	UnansweredInvitations(ctx context.Context) ([]entity.Invitation, error)
	SaveInvitation(ctx context.Context, inv entity.Invitation) (int64, error)
	UpdateInvitation(ctx context.Context, inv entity.Invitation) error

	Filters(ctx context.Context) ([]entity.Filter, error)
	SaveFilter(ctx context.Context, f entity.Filter) error

	Close() error
}
