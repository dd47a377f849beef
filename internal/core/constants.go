// Package core holds constants and the shared error type used across the
// chat core: Hub, RoomActor, event dispatcher, and domain handlers.
package core

import "time"

// Room categories.
const (
	CategoryPublic   = "public"
	CategoryPrivate  = "private"
	CategoryPersonal = "personal"
)

// Member ranks within a room.
const (
	RankOwner  = "owner"
	RankMember = "member"
)

// Global user roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Friendship states.
const (
	FriendNone     = "none"
	FriendAdding   = "adding"
	FriendAccepted = "accepted"
	FriendDeleted  = "deleted"
)

// Message kinds.
const (
	KindText  = "text"
	KindImage = "image"
	KindFile  = "file"
)

// Ambient defaults. CHAN_CAPACITY (read in cmd/api) overrides ChanCapacity
// for the Hub's room inboxes only; client outbound queues and every other
// value here are fixed.
const (
	ChanCapacity      = 100
	MaxCachedMessages = 60
	HeartbeatInterval = 15 * time.Second
	WriteWait         = 10 * time.Second
	PongWait          = 60 * time.Second
	MaxMessageBytes   = 1 << 20

	PersonalRoomName = "My Device"
	PrivateRoomName  = "My Friend"
	DefaultAvatar    = "/avatar/default"
)
