package main

import (
	"context"
	"net/http"

	"github.com/drazan344/chat-core/internal/auth"
	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/events"
	"github.com/drazan344/chat-core/internal/hub"
	"github.com/drazan344/chat-core/internal/session"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks are a deployment concern; allow all here and let a
	// reverse proxy enforce an allowlist in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// websocketHandler upgrades an authenticated connection and hands it to a
// session.Pump for its lifetime. The access token travels as a query
// parameter ("token") since browsers cannot set request headers during
// the WebSocket handshake.
// GET /v1/ws?token=...
func (app *application) websocketHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "missing token parameter")
		return
	}

	claims, err := auth.ValidateToken(tokenString, app.config.auth.jwtSecret)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(claims.UserID, claims.PersonalRoomID, core.ChanCapacity)

	// Duplicate-login notice: tell any other live client of this user it
	// has been superseded before the new one registers. Those clients are
	// not disconnected.
	if env, err := events.New(events.OutToast, events.ToastResponse{Message: "logged in elsewhere"}); err == nil {
		if payload, err := env.Encode(); err == nil {
			app.hub.DisconnectElsewhere(claims.UserID, client.ID(), payload)
		}
	}

	pump := session.New(conn, client, app.hub, app.dispatcher)

	log.Info().Int64("user_id", claims.UserID).Str("client_id", client.ID().String()).Msg("websocket connection established")
	// The pump outlives this request: it is cancelled by its own read/
	// write/heartbeat loops exiting, not by the HTTP handler returning.
	go pump.Run(context.Background())
}
