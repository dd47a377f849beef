package store

import (
	"context"
	"database/sql"
	"time"
)

// User is the durable account row, including the bcrypt hash. Never
// serialized directly to clients — see UserInfo for the public view.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Password       string    `json:"-"`
	Nickname       string    `json:"nickname"`
	Avatar         string    `json:"avatar"`
	Bio            string    `json:"bio"`
	Role           string    `json:"role"`
	Deleted        bool      `json:"deleted"`
	PersonalRoomID int64     `json:"personal_room_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserInfo is the public projection of a User, safe to hand back over the
// wire (to peers resolving a friend, a room member, or a message sender).
type UserInfo struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Nickname       string `json:"nickname"`
	Avatar         string `json:"avatar"`
	Bio            string `json:"bio"`
	Role           string `json:"role"`
	PersonalRoomID int64  `json:"personal_room_id"`
}

func (u *User) Info() *UserInfo {
	return &UserInfo{
		ID:             u.ID,
		Username:       u.Username,
		Nickname:       u.Nickname,
		Avatar:         u.Avatar,
		Bio:            u.Bio,
		Role:           u.Role,
		PersonalRoomID: u.PersonalRoomID,
	}
}

// UserStore handles database operations for user accounts.
type UserStore struct {
	db *sql.DB
}

// Create inserts a new user and its personal room in one transaction: every
// account gets a single-owner room for cross-device delivery (tell/notify).
func (s *UserStore) Create(ctx context.Context, username, hashedPassword, role string) (*User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user := &User{Username: username, Password: hashedPassword, Role: role, Avatar: "/avatar/default"}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, password, nickname, avatar, role)
		VALUES ($1, $2, $1, $3, $4)
		RETURNING id, nickname, bio, deleted, created_at
	`, username, hashedPassword, user.Avatar, role).Scan(
		&user.ID, &user.Nickname, &user.Bio, &user.Deleted, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	var roomID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO rooms (name, category) VALUES ($1, 'personal') RETURNING id
	`, "My Device").Scan(&roomID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO members (room_id, user_id, rank) VALUES ($1, $2, 'owner')
	`, roomID, user.ID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET personal_room_id = $1 WHERE id = $2
	`, roomID, user.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	user.PersonalRoomID = roomID
	return user, nil
}

// GetByUsername finds a user row by username, including the hashed password
// for login verification. Returns sql.ErrNoRows when absent.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password, nickname, avatar, bio, role, deleted, personal_room_id, created_at
		FROM users WHERE username = $1 AND NOT deleted
	`, username).Scan(
		&user.ID, &user.Username, &user.Password, &user.Nickname, &user.Avatar,
		&user.Bio, &user.Role, &user.Deleted, &user.PersonalRoomID, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by id, used to hydrate the authenticated caller
// and to resolve member/friend display info.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password, nickname, avatar, bio, role, deleted, personal_room_id, created_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Username, &user.Password, &user.Nickname, &user.Avatar,
		&user.Bio, &user.Role, &user.Deleted, &user.PersonalRoomID, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
