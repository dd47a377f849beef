// Package session runs the three cooperating loops that own one socket:
// Reader, Writer, and Heartbeat. Grounded on the teacher's readPump/
// writePump pair, generalized into a three-task supervision matching the
// tokio::select! structure of the distilled system's ws/handler.rs.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/events"
	"github.com/drazan344/chat-core/internal/hub"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub is the subset of *hub.Hub the pump needs — just enough to run
// disconnect exactly once on teardown.
type Hub interface {
	Disconnect(ctx context.Context, client *hub.Client)
}

// Pump owns one socket for its lifetime: it reads frames into the
// dispatcher, writes the client's outbound queue to the socket, and sends
// periodic heartbeats. Any one of its three loops exiting triggers
// cancellation of the other two and a single Hub.disconnect call.
type Pump struct {
	conn       *websocket.Conn
	client     *hub.Client
	hub        Hub
	dispatcher *events.Dispatcher
}

func New(conn *websocket.Conn, client *hub.Client, h Hub, dispatcher *events.Dispatcher) *Pump {
	return &Pump{conn: conn, client: client, hub: h, dispatcher: dispatcher}
}

// Run blocks until the session ends, running Reader/Writer/Heartbeat
// concurrently and tearing down the socket and Hub registration exactly
// once regardless of which loop triggers the exit.
func (p *Pump) Run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var once sync.Once
	disconnect := func() {
		once.Do(func() {
			p.hub.Disconnect(context.Background(), p.client)
		})
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		defer cancel()
		p.readLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		p.writeLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		p.heartbeatLoop(ctx)
	}()

	wg.Wait()
	disconnect()
	p.conn.Close()
}

func (p *Pump) readLoop(ctx context.Context) {
	p.conn.SetReadLimit(core.MaxMessageBytes)
	p.conn.SetReadDeadline(time.Now().Add(core.PongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(core.PongWait))
		return nil
	})

	for {
		_, message, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("client_id", p.client.ID().String()).Msg("websocket read error")
			}
			return
		}

		// Cooperative cancellation: let the in-flight handler finish its
		// current Store call and Hub command before checking ctx again.
		if err := p.dispatcher.Dispatch(ctx, p.client, message); err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (p *Pump) writeLoop(ctx context.Context) {
	defer p.client.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-p.client.Outbound():
			if !ok {
				p.conn.SetWriteDeadline(time.Now().Add(core.WriteWait))
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			p.conn.SetWriteDeadline(time.Now().Add(core.WriteWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}
}

func (p *Pump) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(core.HeartbeatInterval)
	defer ticker.Stop()

	ping, err := events.New(events.OutPing, struct{}{})
	if err != nil {
		return
	}
	pingBytes, err := ping.Encode()
	if err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.client.Send(pingBytes); err != nil {
				return
			}
		}
	}
}
