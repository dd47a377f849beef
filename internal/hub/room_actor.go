package hub

import (
	"context"

	"github.com/google/uuid"
)

// roomCommand is the closed set accepted on a RoomActor's inbox, processed
// strictly in arrival order by the actor's single draining goroutine —
// this defines the room's linearization point.
type roomCommand interface{ apply(subs map[int64]map[uuid.UUID]*Client) }

type sendCmd struct{ msg []byte }

func (c sendCmd) apply(subs map[int64]map[uuid.UUID]*Client) {
	for _, clients := range subs {
		for _, client := range clients {
			_ = client.Send(c.msg)
		}
	}
}

type joinCmd struct{ client *Client }

func (c joinCmd) apply(subs map[int64]map[uuid.UUID]*Client) {
	clients, ok := subs[c.client.UserID()]
	if !ok {
		clients = make(map[uuid.UUID]*Client)
		subs[c.client.UserID()] = clients
	}
	clients[c.client.ID()] = c.client
}

type leaveCmd struct {
	userID   int64
	clientID uuid.UUID
}

func (c leaveCmd) apply(subs map[int64]map[uuid.UUID]*Client) {
	clients, ok := subs[c.userID]
	if !ok {
		return
	}
	delete(clients, c.clientID)
	if len(clients) == 0 {
		delete(subs, c.userID)
	}
}

type addUserCmd struct {
	userID  int64
	clients map[uuid.UUID]*Client
}

func (c addUserCmd) apply(subs map[int64]map[uuid.UUID]*Client) {
	subs[c.userID] = c.clients
}

type removeUserCmd struct{ userID int64 }

func (c removeUserCmd) apply(subs map[int64]map[uuid.UUID]*Client) {
	delete(subs, c.userID)
}

// RoomActor owns one room's subscriber table exclusively: every mutation
// flows through its bounded inbox, drained by a single goroutine.
type RoomActor struct {
	inbox  chan roomCommand
	cancel context.CancelFunc
}

func newRoomActor(capacity int) *RoomActor {
	ctx, cancel := context.WithCancel(context.Background())
	ra := &RoomActor{
		inbox:  make(chan roomCommand, capacity),
		cancel: cancel,
	}
	go ra.drain(ctx)
	return ra
}

func (ra *RoomActor) drain(ctx context.Context) {
	subscribers := make(map[int64]map[uuid.UUID]*Client)
	for {
		select {
		case cmd := <-ra.inbox:
			cmd.apply(subscribers)
		case <-ctx.Done():
			return
		}
	}
}

// enqueue hands a command to the inbox, suspending if it is full — this is
// the source of the room's backpressure, bounded by the inbox capacity.
func (ra *RoomActor) enqueue(ctx context.Context, cmd roomCommand) {
	select {
	case ra.inbox <- cmd:
	case <-ctx.Done():
	}
}

// Stop hard-cancels the drain loop; any commands still queued on the
// inbox are discarded, matching Hub.delete_room's teardown contract.
func (ra *RoomActor) Stop() {
	ra.cancel()
}
