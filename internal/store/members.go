package store

import (
	"context"
	"database/sql"
	"time"
)

// Member is the many-to-many row joining a user to a room, carrying the
// member's rank within that room (owner or member).
type Member struct {
	RoomID   int64     `json:"room_id"`
	UserID   int64     `json:"user_id"`
	Rank     string    `json:"rank"`
	JoinedAt time.Time `json:"joined_at"`
}

// MemberInfo is a member row joined with the user's display fields, as
// handed back in a room roster.
type MemberInfo struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Rank     string `json:"rank"`
}

// MemberStore handles database operations for room membership.
type MemberStore struct {
	db *sql.DB
}

// Add inserts each user id into the room as a plain member (owners are
// only ever created via RoomStore.Create) and returns their display info.
func (s *MemberStore) Add(ctx context.Context, roomID int64, memberIDs []int64) ([]*MemberInfo, error) {
	added := make([]*MemberInfo, 0, len(memberIDs))
	for _, userID := range memberIDs {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO members (room_id, user_id, rank) VALUES ($1, $2, 'member')
			ON CONFLICT (room_id, user_id) DO NOTHING
		`, roomID, userID)
		if err != nil {
			return nil, err
		}

		info := &MemberInfo{UserID: userID, Rank: "member"}
		err = s.db.QueryRowContext(ctx, `
			SELECT username, nickname, avatar FROM users WHERE id = $1
		`, userID).Scan(&info.Username, &info.Nickname, &info.Avatar)
		if err != nil {
			return nil, err
		}
		added = append(added, info)
	}
	return added, nil
}

// Delete removes the given user ids from a room, refusing to remove the
// owner. It returns the ids actually removed.
func (s *MemberStore) Delete(ctx context.Context, roomID int64, memberIDs []int64) ([]int64, error) {
	removed := make([]int64, 0, len(memberIDs))
	for _, userID := range memberIDs {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM members WHERE room_id = $1 AND user_id = $2 AND rank <> 'owner'
		`, roomID, userID)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			removed = append(removed, userID)
		}
	}
	return removed, nil
}

// GetRank returns the caller's rank in a room, or ok=false if not a member.
func (s *MemberStore) GetRank(ctx context.Context, userID, roomID int64) (rank string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT rank FROM members WHERE room_id = $1 AND user_id = $2
	`, roomID, userID).Scan(&rank)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rank, true, nil
}

// IsUserInRoom reports whether a user currently belongs to a room.
func (s *MemberStore) IsUserInRoom(ctx context.Context, roomID, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM members WHERE room_id = $1 AND user_id = $2)
	`, roomID, userID).Scan(&exists)
	return exists, err
}
