package store

import (
	"context"
	"database/sql"
	"time"
)

// FriendShip is the directed-but-symmetric relationship row between two
// users. It is stored once per unordered pair (user_id < friend_id) and
// carries the private room created to back their direct messages.
type FriendShip struct {
	UserID    int64     `json:"user_id"`
	FriendID  int64     `json:"friend_id"`
	Status    string    `json:"status"`
	RoomID    int64     `json:"room_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FriendInfo is a friendship projected for one side of the pair: the
// counterpart's display info, the relationship status, and the private
// room id shared by both sides.
type FriendInfo struct {
	FriendID int64  `json:"friend_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status"`
	RoomID   int64  `json:"room_id"`
}

// FriendStore handles database operations for friendships.
type FriendStore struct {
	db *sql.DB
}

func friendPairKey(a, b int64) (lo, hi int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// Get loads the friendship row between two users, if any.
func (s *FriendStore) Get(ctx context.Context, userID, friendID int64) (*FriendShip, error) {
	lo, hi := friendPairKey(userID, friendID)
	fs := &FriendShip{}
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, friend_id, status, room_id, created_at
		FROM friendships WHERE user_id = $1 AND friend_id = $2
	`, lo, hi).Scan(&fs.UserID, &fs.FriendID, &fs.Status, &fs.RoomID, &fs.CreatedAt)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// Create starts a new friendship in status "adding": it allocates a
// private room for the pair (no members yet — those attach on accept).
func (s *FriendStore) Create(ctx context.Context, userID, friendID int64) (*FriendShip, error) {
	lo, hi := friendPairKey(userID, friendID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var roomID int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO rooms (name, category) VALUES ('My Friend', 'private') RETURNING id
	`).Scan(&roomID); err != nil {
		return nil, err
	}

	fs := &FriendShip{UserID: lo, FriendID: hi, Status: "adding", RoomID: roomID}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO friendships (user_id, friend_id, status, room_id)
		VALUES ($1, $2, 'adding', $3) RETURNING created_at
	`, lo, hi, roomID).Scan(&fs.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return fs, nil
}

// updateStatus sets a friendship's status, keyed by the canonical pair.
func (s *FriendStore) updateStatus(ctx context.Context, userID, friendID int64, status string) error {
	lo, hi := friendPairKey(userID, friendID)
	_, err := s.db.ExecContext(ctx, `
		UPDATE friendships SET status = $1 WHERE user_id = $2 AND friend_id = $3
	`, status, lo, hi)
	return err
}

// Update revives a deleted friendship back to "adding".
func (s *FriendStore) Update(ctx context.Context, userID, friendID int64) error {
	return s.updateStatus(ctx, userID, friendID, "adding")
}

// Accept flips the friendship to "accepted" and seats both users as plain
// members of the shared private room.
func (s *FriendStore) Accept(ctx context.Context, userID, friendID int64) (*FriendShip, error) {
	fs, err := s.Get(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE friendships SET status = 'accepted' WHERE user_id = $1 AND friend_id = $2
	`, fs.UserID, fs.FriendID); err != nil {
		return nil, err
	}

	for _, uid := range []int64{userID, friendID} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO members (room_id, user_id, rank) VALUES ($1, $2, 'member')
			ON CONFLICT (room_id, user_id) DO NOTHING
		`, fs.RoomID, uid); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	fs.Status = "accepted"
	return fs, nil
}

// Refuse sets a pending friendship to "deleted" without touching room
// membership (none exists yet at the "adding" stage).
func (s *FriendStore) Refuse(ctx context.Context, userID, friendID int64) error {
	return s.updateStatus(ctx, userID, friendID, "deleted")
}

// Delete sets an accepted friendship to "deleted" and removes both users'
// memberships from the shared private room.
func (s *FriendStore) Delete(ctx context.Context, userID, friendID int64) (*FriendShip, error) {
	fs, err := s.Get(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE friendships SET status = 'deleted' WHERE user_id = $1 AND friend_id = $2
	`, fs.UserID, fs.FriendID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM members WHERE room_id = $1 AND user_id IN ($2, $3)
	`, fs.RoomID, userID, friendID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	fs.Status = "deleted"
	return fs, nil
}

// GetUserFriends returns every friendship (both directions) a user
// participates in with status "adding" or "accepted", projected from the
// counterpart's point of view.
func (s *FriendStore) GetUserFriends(ctx context.Context, userID int64) ([]*FriendInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END AS friend_id,
			u.username, u.nickname, u.avatar, f.status, f.room_id
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		WHERE (f.user_id = $1 OR f.friend_id = $1) AND f.status IN ('adding', 'accepted')
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	friends := make([]*FriendInfo, 0)
	for rows.Next() {
		fi := &FriendInfo{}
		if err := rows.Scan(&fi.FriendID, &fi.Username, &fi.Nickname, &fi.Avatar, &fi.Status, &fi.RoomID); err != nil {
			return nil, err
		}
		friends = append(friends, fi)
	}
	return friends, rows.Err()
}
