// Package hub implements the in-memory fan-out fabric: per-socket
// Clients, per-room RoomActors, and the Hub that ties user and room
// registries together. Grounded on the three-file conn package of the
// system this was distilled from (Client/ChatRoom/HubState), generalized
// from Rust's ownership model onto Go channels and a sync.RWMutex.
package hub

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Client is a single live socket: identity plus a bounded outbound queue.
// It is a value-like handle — copying the pointer shares the queue.
type Client struct {
	id             uuid.UUID
	userID         int64
	personalRoomID int64
	out            chan []byte
	closed         atomic.Bool
}

// NewClient creates a Client with a freshly generated id and a bounded
// outbound queue of the given capacity (≈100 per the ambient default).
func NewClient(userID, personalRoomID int64, queueCapacity int) *Client {
	return &Client{
		id:             uuid.New(),
		userID:         userID,
		personalRoomID: personalRoomID,
		out:            make(chan []byte, queueCapacity),
	}
}

func (c *Client) ID() uuid.UUID           { return c.id }
func (c *Client) UserID() int64           { return c.userID }
func (c *Client) PersonalRoomID() int64   { return c.personalRoomID }
func (c *Client) Outbound() <-chan []byte { return c.out }

// Send makes a non-blocking enqueue attempt onto the outbound queue. If
// the queue is full, the message is dropped for this client only — other
// clients are never stalled by one slow consumer. Send only reports
// failure once the client's session has closed the queue.
func (c *Client) Send(msg []byte) error {
	if c.closed.Load() {
		return ErrQueueClosed
	}
	select {
	case c.out <- msg:
		return nil
	default:
		return nil
	}
}

// Close marks the client's queue as gone. Called exactly once by the
// owning session when its Writer task exits.
func (c *Client) Close() {
	c.closed.Store(true)
}
