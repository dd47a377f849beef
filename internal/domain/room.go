package domain

import (
	"context"

	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/events"
	"github.com/drazan344/chat-core/internal/hub"
)

// CreateRoom requires the caller's id to be the first entry of
// member_ids (the owner position), persists the room and its initial
// membership, registers every member in the Hub, and broadcasts the new
// room to its members.
func (h *Handlers) CreateRoom(ctx context.Context, client *hub.Client, req events.NewRoomRequest) error {
	if len(req.MemberIDs) == 0 || req.MemberIDs[0] != client.UserID() {
		return core.Forbidden("caller must be the first member (owner)")
	}

	room, err := h.Store.Rooms.Create(ctx, req.Name, req.MemberIDs)
	if err != nil {
		return core.StoreFailure(err)
	}

	h.Hub.AddMembers(ctx, room.RoomID, req.MemberIDs)

	return broadcast(ctx, h.Hub, room.RoomID, events.OutNewRoom, events.NewRoomResponse{Room: room})
}

// UpdateRoom requires the caller to be the room's owner, persists the new
// name, and broadcasts the change to the room.
func (h *Handlers) UpdateRoom(ctx context.Context, client *hub.Client, req events.UpdateRoomRequest) error {
	rank, ok, err := h.Store.Members.GetRank(ctx, client.UserID(), req.RoomID)
	if err != nil {
		return core.StoreFailure(err)
	}
	if !ok || rank != core.RankOwner {
		return core.Forbidden("only the room owner may update it")
	}

	if err := h.Store.Rooms.Update(ctx, req.RoomID, req.Name); err != nil {
		return core.StoreFailure(err)
	}

	return broadcast(ctx, h.Hub, req.RoomID, events.OutUpdateRoom, events.UpdateRoomResponse{
		RoomID: req.RoomID,
		Name:   req.Name,
	})
}

// DeleteRoom requires the caller to be the room's owner, deletes the
// room, notifies every former member on their personal room, and tears
// down the room's Hub state.
func (h *Handlers) DeleteRoom(ctx context.Context, client *hub.Client, req events.DeleteRoomRequest) error {
	rank, ok, err := h.Store.Members.GetRank(ctx, client.UserID(), req.RoomID)
	if err != nil {
		return core.StoreFailure(err)
	}
	if !ok || rank != core.RankOwner {
		return core.Forbidden("only the room owner may delete it")
	}

	memberIDs, err := h.Store.Rooms.Delete(ctx, req.RoomID)
	if err != nil {
		return core.StoreFailure(err)
	}

	if err := notify(ctx, h.Hub, memberIDs, events.OutDeleteRoom, events.DeleteRoomResponse{RoomID: req.RoomID}); err != nil {
		return err
	}

	h.Hub.DeleteRoom(req.RoomID, memberIDs)
	return nil
}

// LeaveRoom forbids the owner from leaving (they must delete the room
// instead), removes the caller's membership, notifies the caller on
// their own personal room, and tells the remaining members who left.
func (h *Handlers) LeaveRoom(ctx context.Context, client *hub.Client, req events.LeaveRoomRequest) error {
	rank, ok, err := h.Store.Members.GetRank(ctx, client.UserID(), req.RoomID)
	if err != nil {
		return core.StoreFailure(err)
	}
	if ok && rank == core.RankOwner {
		return core.Forbidden("room owner cannot leave, delete the room instead")
	}

	removed, err := h.Store.Members.Delete(ctx, req.RoomID, []int64{client.UserID()})
	if err != nil {
		return core.StoreFailure(err)
	}

	h.Hub.RemoveMembers(ctx, req.RoomID, removed)

	if err := tell(ctx, h.Hub, client.UserID(), events.OutDeleteRoom, events.DeleteRoomResponse{RoomID: req.RoomID}); err != nil {
		return err
	}

	return broadcast(ctx, h.Hub, req.RoomID, events.OutDeleteMembers, events.DeleteMembersResponse{
		RoomID:    req.RoomID,
		MemberIDs: removed,
	})
}
