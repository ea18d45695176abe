package client

import (
	"context"
	"fmt"
	"time"

	"github.com/rbsteinm/SmartMap2/cache"
	"github.com/rbsteinm/SmartMap2/entity"
)

// invitationsKey serialises all invitation jobs on one shard, so an accept
// can never overtake the invitation it answers.
const invitationsKey = "invitations"

// Invitations lists invitations that still await an answer.
func (c *Client) Invitations(ctx context.Context) ([]entity.Invitation, error) {
	return c.store.UnansweredInvitations(ctx)
}

// RecordInvitation stores an incoming friend invitation and surfaces the
// inviting user in the cache.
func (c *Client) RecordInvitation(ctx context.Context, fromUserID int64) (entity.Invitation, error) {
	inv := entity.Invitation{
		Kind:      entity.FriendInvitation,
		SubjectID: fromUserID,
		Status:    entity.StatusUnread,
		CreatedAt: time.Now(),
	}
	id, err := c.store.SaveInvitation(ctx, inv)
	if err != nil {
		return entity.Invitation{}, fmt.Errorf("record invitation: %w", err)
	}
	inv.ID = id

	if err := c.cache.Add(ctx, cache.InvitingUsers, fromUserID); err != nil {
		c.log.Warn().Err(err).Int64("user", fromUserID).Msg("inviting user not resolvable")
	}
	return inv, nil
}

// MarkInvitationRead flips an unread invitation to read. Answered
// invitations are left alone.
func (c *Client) MarkInvitationRead(ctx context.Context, inv entity.Invitation) error {
	if inv.Status != entity.StatusUnread {
		return nil
	}
	inv.Status = entity.StatusRead
	return c.store.UpdateInvitation(ctx, inv)
}

// AcceptInvitation answers an invitation positively. The network call,
// the store update and the cache mutations run on the executor; the call
// returns as soon as the job is enqueued.
func (c *Client) AcceptInvitation(ctx context.Context, inv entity.Invitation) error {
	return c.submit(ctx, invitationsKey, func(jctx context.Context) error {
		if err := c.remote.AcceptInvitation(jctx, inv.SubjectID); err != nil {
			return fmt.Errorf("accept invitation from %d: %w", inv.SubjectID, err)
		}
		if err := c.cache.AddFriend(jctx, inv.SubjectID); err != nil {
			return err
		}
		c.cache.Remove(cache.InvitingUsers, inv.SubjectID)

		inv.Status = entity.StatusAccepted
		return c.store.UpdateInvitation(jctx, inv)
	})
}

// DeclineInvitation answers an invitation negatively, asynchronously.
func (c *Client) DeclineInvitation(ctx context.Context, inv entity.Invitation) error {
	return c.submit(ctx, invitationsKey, func(jctx context.Context) error {
		if err := c.remote.DeclineInvitation(jctx, inv.SubjectID); err != nil {
			return fmt.Errorf("decline invitation from %d: %w", inv.SubjectID, err)
		}
		c.cache.Remove(cache.InvitingUsers, inv.SubjectID)

		inv.Status = entity.StatusRefused
		return c.store.UpdateInvitation(jctx, inv)
	})
}

// InviteFriend sends a friend request and tracks the user as pending,
// asynchronously.
func (c *Client) InviteFriend(ctx context.Context, userID int64) error {
	return c.submit(ctx, invitationsKey, func(jctx context.Context) error {
		if err := c.remote.InviteFriend(jctx, userID); err != nil {
			return fmt.Errorf("invite user %d: %w", userID, err)
		}
		return c.cache.Add(jctx, cache.PendingFriends, userID)
	})
}
