// Package domain implements the twelve event handlers: short
// orchestrations over the store and the hub, one per action in the wire
// protocol. Grounded method-for-method on user_socket.rs of the
// distilled system, translated onto this module's own hub.Hub API.
package domain

import (
	"context"
	"encoding/json"

	"github.com/drazan344/chat-core/internal/cache"
	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/events"
	"github.com/drazan344/chat-core/internal/hub"
	"github.com/drazan344/chat-core/internal/store"
)

// marshalCached serializes a value for storage in the Redis-backed
// recent-message window.
func marshalCached(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Handlers wires the store, the hub, and the cache together. It
// implements events.Handlers.
type Handlers struct {
	Store store.Storage
	Hub   *hub.Hub
	Cache *cache.Cache
}

func New(s store.Storage, h *hub.Hub, c *cache.Cache) *Handlers {
	return &Handlers{Store: s, Hub: h, Cache: c}
}

// emit encodes an event and sends it directly to one client — used for
// responses the spec scopes "to the caller only" (initialize and a
// friend request's addressee-side echo).
func emit(client *hub.Client, action string, payload any) error {
	env, err := events.New(action, payload)
	if err != nil {
		return core.SerializeFailure()
	}
	data, err := env.Encode()
	if err != nil {
		return core.SerializeFailure()
	}
	if err := client.Send(data); err != nil {
		return core.SendFailure()
	}
	return nil
}

// broadcast encodes an event and hands it to the hub for delivery to
// every subscriber of a room.
func broadcast(ctx context.Context, h *hub.Hub, roomID int64, action string, payload any) error {
	env, err := events.New(action, payload)
	if err != nil {
		return core.SerializeFailure()
	}
	data, err := env.Encode()
	if err != nil {
		return core.SerializeFailure()
	}
	h.Broadcast(ctx, roomID, data)
	return nil
}

// notify encodes an event and hands it to the hub for delivery to each
// user's personal room (cross-device notification).
func notify(ctx context.Context, h *hub.Hub, userIDs []int64, action string, payload any) error {
	env, err := events.New(action, payload)
	if err != nil {
		return core.SerializeFailure()
	}
	data, err := env.Encode()
	if err != nil {
		return core.SerializeFailure()
	}
	h.Notify(ctx, userIDs, data)
	return nil
}

// tell encodes an event and hands it to the hub for delivery to one
// user's personal room.
func tell(ctx context.Context, h *hub.Hub, userID int64, action string, payload any) error {
	env, err := events.New(action, payload)
	if err != nil {
		return core.SerializeFailure()
	}
	data, err := env.Encode()
	if err != nil {
		return core.SerializeFailure()
	}
	h.Tell(ctx, userID, data)
	return nil
}
