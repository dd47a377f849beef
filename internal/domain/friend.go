package domain

import (
	"context"
	"database/sql"
	"errors"

	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/events"
	"github.com/drazan344/chat-core/internal/hub"
	"github.com/drazan344/chat-core/internal/store"
)

// AddFriend starts or revives a friendship with the given user. A fresh
// pair gets a new record in status "adding"; a previously deleted pair is
// revived to "adding" rather than duplicated. An existing "adding" or
// "accepted" pair is rejected. The addressee is notified on their
// personal room so every device sees the incoming request.
func (h *Handlers) AddFriend(ctx context.Context, client *hub.Client, req events.AddFriendRequest) error {
	if req.FriendID == client.UserID() {
		return core.Validationf("cannot add yourself as a friend")
	}

	fs, err := h.Store.Friends.Get(ctx, client.UserID(), req.FriendID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		fs, err = h.Store.Friends.Create(ctx, client.UserID(), req.FriendID)
		if err != nil {
			return core.StoreFailure(err)
		}
	case err != nil:
		return core.StoreFailure(err)
	case fs.Status == core.FriendDeleted:
		if err := h.Store.Friends.Update(ctx, client.UserID(), req.FriendID); err != nil {
			return core.StoreFailure(err)
		}
		fs.Status = core.FriendAdding
	default:
		return core.FriendStatus("a friend request already exists between these users")
	}

	if err := emit(client, events.OutAddFriend, events.AddFriendResponse{Friend: friendInfoFor(req.FriendID, fs)}); err != nil {
		return err
	}

	return notify(ctx, h.Hub, []int64{req.FriendID}, events.OutAddFriend, events.AddFriendResponse{
		Friend: friendInfoFor(client.UserID(), fs),
	})
}

// AcceptFriend requires a pending "adding" request addressed to the
// caller, flips it to "accepted", seats both users in the shared private
// room, and tells both sides.
func (h *Handlers) AcceptFriend(ctx context.Context, client *hub.Client, req events.AcceptFriendRequest) error {
	fs, err := h.Store.Friends.Get(ctx, client.UserID(), req.FriendID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NotFound("no pending friend request")
	}
	if err != nil {
		return core.StoreFailure(err)
	}
	if fs.Status != core.FriendAdding {
		return core.FriendStatus("friend request is not pending")
	}

	fs, err = h.Store.Friends.Accept(ctx, client.UserID(), req.FriendID)
	if err != nil {
		return core.StoreFailure(err)
	}

	room, err := h.Store.Rooms.GetByID(ctx, fs.RoomID)
	if err != nil {
		return core.StoreFailure(err)
	}

	h.Hub.AddMembers(ctx, fs.RoomID, []int64{client.UserID(), req.FriendID})

	if err := emit(client, events.OutAcceptFriend, events.AcceptFriendResponse{
		Friend: friendInfoFor(req.FriendID, fs),
		Room:   room,
	}); err != nil {
		return err
	}

	return notify(ctx, h.Hub, []int64{req.FriendID}, events.OutAcceptFriend, events.AcceptFriendResponse{
		Friend: friendInfoFor(client.UserID(), fs),
		Room:   room,
	})
}

// RefuseFriend requires a pending "adding" request, marks it deleted
// without ever seating room members, and tells the original requester.
func (h *Handlers) RefuseFriend(ctx context.Context, client *hub.Client, req events.RefuseFriendRequest) error {
	fs, err := h.Store.Friends.Get(ctx, client.UserID(), req.FriendID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NotFound("no pending friend request")
	}
	if err != nil {
		return core.StoreFailure(err)
	}
	if fs.Status != core.FriendAdding {
		return core.FriendStatus("friend request is not pending")
	}

	if err := h.Store.Friends.Refuse(ctx, client.UserID(), req.FriendID); err != nil {
		return core.StoreFailure(err)
	}

	if err := emit(client, events.OutRefuseFriend, events.RefuseFriendResponse{FriendID: req.FriendID}); err != nil {
		return err
	}

	return notify(ctx, h.Hub, []int64{req.FriendID}, events.OutRefuseFriend, events.RefuseFriendResponse{
		FriendID: client.UserID(),
	})
}

// DeleteFriend requires an accepted friendship, marks it deleted, tears
// down the shared private room in the Hub entirely (not just the two
// memberships — nothing else can ever subscribe to a deleted friend's
// private room), and tells both sides.
func (h *Handlers) DeleteFriend(ctx context.Context, client *hub.Client, req events.DeleteFriendRequest) error {
	fs, err := h.Store.Friends.Get(ctx, client.UserID(), req.FriendID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NotFound("no friendship between these users")
	}
	if err != nil {
		return core.StoreFailure(err)
	}
	if fs.Status != core.FriendAccepted {
		return core.FriendStatus("friendship is not accepted")
	}

	fs, err = h.Store.Friends.Delete(ctx, client.UserID(), req.FriendID)
	if err != nil {
		return core.StoreFailure(err)
	}

	h.Hub.DeleteRoom(fs.RoomID, []int64{client.UserID(), req.FriendID})

	if err := emit(client, events.OutDeleteFriend, events.DeleteFriendResponse{FriendID: req.FriendID, RoomID: fs.RoomID}); err != nil {
		return err
	}

	return notify(ctx, h.Hub, []int64{req.FriendID}, events.OutDeleteFriend, events.DeleteFriendResponse{
		FriendID: client.UserID(),
		RoomID:   fs.RoomID,
	})
}

// friendInfoFor projects a friendship row from counterpartID's point of
// view, without a round trip to the user store: the caller already has
// enough on hand (id and room) for the event payload, and Initialize
// remains the source of truth for display fields.
func friendInfoFor(counterpartID int64, fs *store.FriendShip) *store.FriendInfo {
	return &store.FriendInfo{
		FriendID: counterpartID,
		Status:   fs.Status,
		RoomID:   fs.RoomID,
	}
}
