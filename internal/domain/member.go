package domain

import (
	"context"

	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/events"
	"github.com/drazan344/chat-core/internal/hub"
)

// AddMembers requires the caller to be the room's owner, persists the new
// memberships, registers the additions in the Hub, and broadcasts the
// updated roster to the room.
func (h *Handlers) AddMembers(ctx context.Context, client *hub.Client, req events.AddMembersRequest) error {
	rank, ok, err := h.Store.Members.GetRank(ctx, client.UserID(), req.RoomID)
	if err != nil {
		return core.StoreFailure(err)
	}
	if !ok || rank != core.RankOwner {
		return core.Forbidden("only the room owner may add members")
	}

	added, err := h.Store.Members.Add(ctx, req.RoomID, req.MemberIDs)
	if err != nil {
		return core.StoreFailure(err)
	}

	h.Hub.AddMembers(ctx, req.RoomID, req.MemberIDs)

	return broadcast(ctx, h.Hub, req.RoomID, events.OutAddMembers, events.AddMembersResponse{
		RoomID:  req.RoomID,
		Members: added,
	})
}

// DeleteMembers requires the caller to be the room's owner and to not name
// themselves among the removed members (use DeleteRoom instead), removes
// the given members, drops them from the Hub's room roster, tells each
// removed member their room is gone, and broadcasts the roster change to
// what remains of the room.
func (h *Handlers) DeleteMembers(ctx context.Context, client *hub.Client, req events.DeleteMembersRequest) error {
	rank, ok, err := h.Store.Members.GetRank(ctx, client.UserID(), req.RoomID)
	if err != nil {
		return core.StoreFailure(err)
	}
	if !ok || rank != core.RankOwner {
		return core.Forbidden("only the room owner may remove members")
	}
	for _, id := range req.MemberIDs {
		if id == client.UserID() {
			return core.Forbidden("owner cannot remove themselves, delete the room instead")
		}
	}

	removed, err := h.Store.Members.Delete(ctx, req.RoomID, req.MemberIDs)
	if err != nil {
		return core.StoreFailure(err)
	}

	h.Hub.RemoveMembers(ctx, req.RoomID, removed)

	if err := notify(ctx, h.Hub, removed, events.OutDeleteRoom, events.DeleteRoomResponse{RoomID: req.RoomID}); err != nil {
		return err
	}

	return broadcast(ctx, h.Hub, req.RoomID, events.OutDeleteMembers, events.DeleteMembersResponse{
		RoomID:    req.RoomID,
		MemberIDs: removed,
	})
}
