package domain

import (
	"context"

	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/events"
	"github.com/drazan344/chat-core/internal/hub"
)

// Initialize reads the caller's rooms (with recent messages) and friend
// list, registers the client against those rooms in the Hub, and replies
// with the combined view — to the caller only.
func (h *Handlers) Initialize(ctx context.Context, client *hub.Client, req events.InitializeRequest) error {
	rooms, err := h.Store.Rooms.GetUserRooms(ctx, client.UserID())
	if err != nil {
		return core.StoreFailure(err)
	}

	friends, err := h.Store.Friends.GetUserFriends(ctx, client.UserID())
	if err != nil {
		return core.StoreFailure(err)
	}

	roomIDs := make([]int64, len(rooms))
	for i, r := range rooms {
		roomIDs[i] = r.RoomID
	}
	h.Hub.Connect(ctx, client, roomIDs)

	return emit(client, events.OutInitialize, events.InitializeResponse{Rooms: rooms, Friends: friends})
}

// SendMessage requires the caller to already be a room subscriber,
// persists the message (resolving the author's display info at write
// time), caches it for the room's recent-message window, and broadcasts
// it to the whole room — including the sender (self-echo).
func (h *Handlers) SendMessage(ctx context.Context, client *hub.Client, req events.NewMessageRequest) error {
	if !h.Hub.IsUserIn(client.UserID(), req.RoomID) {
		return core.Forbidden("not a member of this room")
	}

	msg, err := h.Store.Messages.Append(ctx, client.UserID(), req.RoomID, req.Content, req.Kind)
	if err != nil {
		return core.StoreFailure(err)
	}

	if h.Cache != nil {
		if payload, err := marshalCached(msg); err == nil {
			_ = h.Cache.PushMessage(ctx, req.RoomID, payload)
		}
	}

	return broadcast(ctx, h.Hub, req.RoomID, events.OutNewMessage, events.NewMessageResponse{
		RoomID:  req.RoomID,
		Message: msg,
	})
}
