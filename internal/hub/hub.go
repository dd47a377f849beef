package hub

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UserEntry is the Hub's per-user state: every live client of that user,
// the user's personal room (for cross-device delivery), and the set of
// rooms the Hub currently believes the user belongs to. A user id appears
// in the Hub iff it has at least one Client; the entry is destroyed when
// its client map becomes empty.
type UserEntry struct {
	clients        map[uuid.UUID]*Client
	personalRoomID int64
	rooms          map[int64]struct{}
}

// Hub is the global registry of users and rooms. Every operation acquires
// its coordination primitive in read mode (routing) or write mode
// (structural change); read operations may run concurrently, write
// operations are exclusive.
type Hub struct {
	mu            sync.RWMutex
	users         map[int64]*UserEntry
	rooms         map[int64]*RoomActor
	inboxCapacity int
}

func New(inboxCapacity int) *Hub {
	return &Hub{
		users:         make(map[int64]*UserEntry),
		rooms:         make(map[int64]*RoomActor),
		inboxCapacity: inboxCapacity,
	}
}

// getOrCreateRoom atomically inserts a fresh RoomActor if absent. Callers
// must already hold mu (read or write — a missing room still needs the
// map write, so callers from read paths must re-acquire write mode; every
// caller in this file that can create a room holds write mode).
func (h *Hub) getOrCreateRoom(roomID int64) *RoomActor {
	if ra, ok := h.rooms[roomID]; ok {
		return ra
	}
	ra := newRoomActor(h.inboxCapacity)
	h.rooms[roomID] = ra
	return ra
}

// Connect registers a newly authenticated client against its initial room
// set. If the user is new to the Hub, a fresh UserEntry is created with
// initialRooms as its known room set; otherwise the client is appended to
// the existing entry and the room set is left untouched (it is tracked
// per-user, not per-device).
func (h *Hub) Connect(ctx context.Context, client *Client, initialRooms []int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, roomID := range initialRooms {
		ra := h.getOrCreateRoom(roomID)
		ra.enqueue(ctx, joinCmd{client: client})
	}

	entry, ok := h.users[client.UserID()]
	if !ok {
		rooms := make(map[int64]struct{}, len(initialRooms))
		for _, roomID := range initialRooms {
			rooms[roomID] = struct{}{}
		}
		h.users[client.UserID()] = &UserEntry{
			clients:        map[uuid.UUID]*Client{client.ID(): client},
			personalRoomID: client.PersonalRoomID(),
			rooms:          rooms,
		}
		return
	}

	entry.clients[client.ID()] = client
}

// Disconnect unwinds a client: leaves every room the user is known to be
// in, removes the client from its user entry, and drops the entry
// entirely once its client map is empty. Rooms are never destroyed here.
func (h *Hub) Disconnect(ctx context.Context, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.users[client.UserID()]
	if !ok {
		return
	}

	for roomID := range entry.rooms {
		if ra, ok := h.rooms[roomID]; ok {
			ra.enqueue(ctx, leaveCmd{userID: client.UserID(), clientID: client.ID()})
		}
	}

	delete(entry.clients, client.ID())
	if len(entry.clients) == 0 {
		delete(h.users, client.UserID())
	}
}

// Broadcast enqueues msg for delivery to every subscriber of room_id. A
// missing room is a silent no-op (no listeners).
func (h *Hub) Broadcast(ctx context.Context, roomID int64, msg []byte) {
	h.mu.RLock()
	ra, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	ra.enqueue(ctx, sendCmd{msg: msg})
}

// Tell delivers msg to every device of one user by resolving their
// personal room and broadcasting there.
func (h *Hub) Tell(ctx context.Context, userID int64, msg []byte) {
	h.mu.RLock()
	entry, ok := h.users[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.Broadcast(ctx, entry.personalRoomID, msg)
}

// Notify delivers the same payload to each user's personal room.
func (h *Hub) Notify(ctx context.Context, userIDs []int64, msg []byte) {
	for _, userID := range userIDs {
		h.Tell(ctx, userID, msg)
	}
}

// AddMembers installs every currently-online user id as a subscriber of
// room_id, cloning that user's live client map onto the room. Users who
// are not online are left alone — they attach via Connect when they next
// authenticate.
func (h *Hub) AddMembers(ctx context.Context, roomID int64, userIDs []int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ra := h.getOrCreateRoom(roomID)
	for _, userID := range userIDs {
		entry, ok := h.users[userID]
		if !ok {
			continue
		}
		clients := make(map[uuid.UUID]*Client, len(entry.clients))
		for id, c := range entry.clients {
			clients[id] = c
		}
		ra.enqueue(ctx, addUserCmd{userID: userID, clients: clients})
		entry.rooms[roomID] = struct{}{}
	}
}

// RemoveMembers drops each user id's subscription to room_id, if the room
// exists, and removes room_id from their known room set.
func (h *Hub) RemoveMembers(ctx context.Context, roomID int64, userIDs []int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ra, ok := h.rooms[roomID]
	if !ok {
		return
	}
	for _, userID := range userIDs {
		ra.enqueue(ctx, removeUserCmd{userID: userID})
		if entry, ok := h.users[userID]; ok {
			delete(entry.rooms, roomID)
		}
	}
}

// DeleteRoom hard-cancels the room's actor, discarding anything still
// queued on its inbox, and removes room_id from every given user's known
// room set.
func (h *Hub) DeleteRoom(roomID int64, userIDs []int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, userID := range userIDs {
		if entry, ok := h.users[userID]; ok {
			delete(entry.rooms, roomID)
		}
	}

	if ra, ok := h.rooms[roomID]; ok {
		ra.Stop()
		delete(h.rooms, roomID)
	}
}

// IsUserIn is a read-mode membership query against the Hub's view of a
// user's room set.
func (h *Hub) IsUserIn(userID, roomID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entry, ok := h.users[userID]
	if !ok {
		return false
	}
	_, in := entry.rooms[roomID]
	return in
}

// Status reports (#users, #clients, #rooms), used by an admin endpoint.
func (h *Hub) Status() (numUsers, numClients, numRooms int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	numUsers = len(h.users)
	numRooms = len(h.rooms)
	for _, entry := range h.users {
		numClients += len(entry.clients)
	}
	return
}

// DisconnectElsewhere is invoked by the duplicate-login policy: it sends a
// best-effort close payload to every other live client of a user before
// the new one registers, so stale devices see "logged in elsewhere". The
// other clients are not closed or unregistered: they stay connected and
// keep their room subscriptions.
func (h *Hub) DisconnectElsewhere(userID int64, exceptClient uuid.UUID, closePayload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entry, ok := h.users[userID]
	if !ok {
		return
	}
	for id, client := range entry.clients {
		if id == exceptClient {
			continue
		}
		if err := client.Send(closePayload); err != nil {
			log.Debug().Err(err).Int64("user_id", userID).Msg("duplicate-login notice dropped")
		}
	}
}
