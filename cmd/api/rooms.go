package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/events"
	"github.com/google/uuid"
)

// maxUploadBytes bounds a file message's attachment per spec.md §6.
const maxUploadBytes = 150 << 20

// listRoomsHandler returns every room the caller belongs to, each
// hydrated with its member roster and recent messages.
// GET /v1/rooms
func (app *application) listRoomsHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	rooms, err := app.store.Rooms.GetUserRooms(r.Context(), claims.UserID)
	if err != nil {
		writeCoreError(w, core.StoreFailure(err))
		return
	}

	writeJSON(w, http.StatusOK, rooms)
}

// getRoomHandler returns one room, refusing callers who aren't members.
// GET /v1/rooms/{roomID}
func (app *application) getRoomHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	roomID, err := extractIDFromURL(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roomID parameter")
		return
	}

	isMember, err := app.store.Members.IsUserInRoom(r.Context(), roomID, claims.UserID)
	if err != nil {
		writeCoreError(w, core.StoreFailure(err))
		return
	}
	if !isMember {
		writeCoreError(w, core.Forbidden("not a member of this room"))
		return
	}

	room, err := app.store.Rooms.GetByID(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeCoreError(w, core.NotFound("room not found"))
			return
		}
		writeCoreError(w, core.StoreFailure(err))
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// getRoomMessagesHandler retrieves message history since an optional
// "since" RFC3339 query parameter (defaulting to the epoch).
// GET /v1/rooms/{roomID}/messages
func (app *application) getRoomMessagesHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	roomID, err := extractIDFromURL(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roomID parameter")
		return
	}

	isMember, err := app.store.Members.IsUserInRoom(r.Context(), roomID, claims.UserID)
	if err != nil {
		writeCoreError(w, core.StoreFailure(err))
		return
	}
	if !isMember {
		writeCoreError(w, core.Forbidden("not a member of this room"))
		return
	}

	since := time.Unix(0, 0)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		since = parsed
	}

	messages, err := app.store.Messages.GetSince(r.Context(), roomID, since)
	if err != nil {
		writeCoreError(w, core.StoreFailure(err))
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// uploadFileHandler accepts a multipart file attachment, persists it to
// the local upload directory, appends a "file" kind message, and
// broadcasts it to the room exactly like a socket-originated message.
// POST /v1/message/file
func (app *application) uploadFileHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "file exceeds the 150MiB limit or is malformed")
		return
	}

	roomID, err := strconv.ParseInt(r.FormValue("room_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "room_id is required")
		return
	}

	isMember, err := app.store.Members.IsUserInRoom(r.Context(), roomID, claims.UserID)
	if err != nil {
		writeCoreError(w, core.StoreFailure(err))
		return
	}
	if !isMember {
		writeCoreError(w, core.Forbidden("not a member of this room"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	uploadDir := "./web/uploads"
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to prepare upload directory")
		return
	}

	storedName := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(header.Filename))
	dstPath := filepath.Join(uploadDir, storedName)

	dst, err := os.Create(dstPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	url := "/uploads/" + storedName
	msg, err := app.store.Messages.Append(r.Context(), claims.UserID, roomID, url, core.KindFile)
	if err != nil {
		writeCoreError(w, core.StoreFailure(err))
		return
	}

	if app.cache != nil {
		if payload, err := json.Marshal(msg); err == nil {
			_ = app.cache.PushMessage(r.Context(), roomID, payload)
		}
	}

	env, err := events.New(events.OutNewMessage, events.NewMessageResponse{RoomID: roomID, Message: msg})
	if err == nil {
		if data, err := env.Encode(); err == nil {
			app.hub.Broadcast(r.Context(), roomID, data)
		}
	}

	writeJSON(w, http.StatusCreated, msg)
}
