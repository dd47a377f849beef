package store

import (
	"context"
	"database/sql"
	"time"
)

// Storage aggregates all store interfaces. This follows the repository
// pattern, providing a clean abstraction over data access that domain
// handlers depend on without knowing about Postgres.
type Storage struct {
	// Users store handles account management: find-by-username for login,
	// get-by-id for hydrating a connected client, and account creation.
	Users interface {
		Create(ctx context.Context, username, hashedPassword, role string) (*User, error)
		GetByUsername(ctx context.Context, username string) (*User, error)
		GetByID(ctx context.Context, id int64) (*User, error)
	}

	// Rooms store handles chat room lifecycle and room-level reads.
	Rooms interface {
		Create(ctx context.Context, name string, memberIDs []int64) (*RoomInfo, error)
		GetByID(ctx context.Context, id int64) (*RoomInfo, error)
		Update(ctx context.Context, roomID int64, name string) error
		Delete(ctx context.Context, id int64) ([]int64, error)
		GetUserRooms(ctx context.Context, userID int64) ([]*RoomInfo, error)
	}

	// Members store handles room membership and rank queries.
	Members interface {
		Add(ctx context.Context, roomID int64, memberIDs []int64) ([]*MemberInfo, error)
		Delete(ctx context.Context, roomID int64, memberIDs []int64) ([]int64, error)
		GetRank(ctx context.Context, userID, roomID int64) (rank string, ok bool, err error)
		IsUserInRoom(ctx context.Context, roomID, userID int64) (bool, error)
	}

	// Messages store handles chat message persistence.
	Messages interface {
		Append(ctx context.Context, senderID, roomID int64, content, kind string) (*Message, error)
		GetSince(ctx context.Context, roomID int64, since time.Time) ([]*Message, error)
	}

	// Friends store handles the friendship state machine.
	Friends interface {
		Get(ctx context.Context, userID, friendID int64) (*FriendShip, error)
		Create(ctx context.Context, userID, friendID int64) (*FriendShip, error)
		Update(ctx context.Context, userID, friendID int64) error
		Accept(ctx context.Context, userID, friendID int64) (*FriendShip, error)
		Refuse(ctx context.Context, userID, friendID int64) error
		Delete(ctx context.Context, userID, friendID int64) (*FriendShip, error)
		GetUserFriends(ctx context.Context, userID int64) ([]*FriendInfo, error)
	}
}

// NewPostgresStorage creates a new Storage instance with PostgreSQL
// implementations. All stores share the same connection pool.
func NewPostgresStorage(db *sql.DB) Storage {
	return Storage{
		Users:    &UserStore{db},
		Rooms:    &RoomStore{db},
		Members:  &MemberStore{db},
		Messages: &MessageStore{db},
		Friends:  &FriendStore{db},
	}
}
