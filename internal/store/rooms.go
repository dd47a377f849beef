package store

import (
	"context"
	"database/sql"
	"time"
)

// Room is a chat room: public/private/personal. Private rooms back a
// friendship; personal rooms back a single user's cross-device delivery.
type Room struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Cover     string    `json:"cover"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomInfo is the room view handed back to clients: the room plus its
// current member roster and a bounded window of recent messages.
type RoomInfo struct {
	RoomID   int64         `json:"room_id"`
	Name     string        `json:"name"`
	Cover    string        `json:"cover"`
	Category string        `json:"category"`
	Members  []*MemberInfo `json:"members"`
	Messages []*Message    `json:"messages,omitempty"`
}

// RoomStore handles database operations for rooms and their membership.
type RoomStore struct {
	db *sql.DB
}

// Create persists a new room and its initial membership: memberIDs[0] is
// the owner, the rest join as plain members.
func (s *RoomStore) Create(ctx context.Context, name string, memberIDs []int64) (*RoomInfo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	room := &Room{Name: name, Category: "public"}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO rooms (name, category) VALUES ($1, 'public') RETURNING id, cover, created_at
	`, name).Scan(&room.ID, &room.Cover, &room.CreatedAt); err != nil {
		return nil, err
	}

	for i, userID := range memberIDs {
		rank := RankMember(i)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO members (room_id, user_id, rank) VALUES ($1, $2, $3)
		`, room.ID, userID, rank); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	members, err := s.membersOf(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	return &RoomInfo{RoomID: room.ID, Name: room.Name, Cover: room.Cover, Category: room.Category, Members: members}, nil
}

// RankMember returns "owner" for the first member (index 0) and "member"
// for every other position, matching create_room's ordering contract.
func RankMember(index int) string {
	if index == 0 {
		return "owner"
	}
	return "member"
}

func (s *RoomStore) membersOf(ctx context.Context, roomID int64) ([]*MemberInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.user_id, u.username, u.nickname, u.avatar, m.rank
		FROM members m JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1
		ORDER BY m.joined_at ASC
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*MemberInfo, 0)
	for rows.Next() {
		m := &MemberInfo{}
		if err := rows.Scan(&m.UserID, &m.Username, &m.Nickname, &m.Avatar, &m.Rank); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetByID retrieves a room with its current member roster.
func (s *RoomStore) GetByID(ctx context.Context, id int64) (*RoomInfo, error) {
	room := &Room{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, cover, category, created_at FROM rooms WHERE id = $1
	`, id).Scan(&room.ID, &room.Name, &room.Cover, &room.Category, &room.CreatedAt)
	if err != nil {
		return nil, err
	}

	members, err := s.membersOf(ctx, id)
	if err != nil {
		return nil, err
	}

	return &RoomInfo{RoomID: room.ID, Name: room.Name, Cover: room.Cover, Category: room.Category, Members: members}, nil
}

// Update renames a room. Only the owner may call this (enforced upstream).
func (s *RoomStore) Update(ctx context.Context, roomID int64, name string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE rooms SET name = $1 WHERE id = $2`, name, roomID)
	return err
}

// Delete removes a room and returns the ids of every member it had, so the
// caller can notify each one and tear down the Hub's room state.
func (s *RoomStore) Delete(ctx context.Context, id int64) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT user_id FROM members WHERE room_id = $1`, id)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]int64, 0)
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			rows.Close()
			return nil, err
		}
		memberIDs = append(memberIDs, userID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return memberIDs, nil
}

// GetUserRooms returns every room a user belongs to, each hydrated with its
// member roster and up to 16 recent messages, ordered newest room first.
func (s *RoomStore) GetUserRooms(ctx context.Context, userID int64) ([]*RoomInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.cover, r.category
		FROM rooms r
		INNER JOIN members m ON r.id = m.room_id
		WHERE m.user_id = $1
		ORDER BY r.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}

	type roomRow struct {
		id                     int64
		name, cover, category string
	}
	roomRows := make([]roomRow, 0)
	for rows.Next() {
		var rr roomRow
		if err := rows.Scan(&rr.id, &rr.name, &rr.cover, &rr.category); err != nil {
			rows.Close()
			return nil, err
		}
		roomRows = append(roomRows, rr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	infos := make([]*RoomInfo, 0, len(roomRows))
	for _, rr := range roomRows {
		members, err := s.membersOf(ctx, rr.id)
		if err != nil {
			return nil, err
		}
		messages, err := s.recentMessages(ctx, rr.id, 16)
		if err != nil {
			return nil, err
		}
		infos = append(infos, &RoomInfo{
			RoomID: rr.id, Name: rr.name, Cover: rr.cover, Category: rr.category,
			Members: members, Messages: messages,
		})
	}

	return infos, nil
}

func (s *RoomStore) recentMessages(ctx context.Context, roomID int64, limit int) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, sender_id, sender_name, sender_avatar, content, kind, created_at
		FROM messages WHERE room_id = $1 ORDER BY created_at DESC LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*Message, 0, limit)
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.SenderName, &m.SenderAvatar, &m.Content, &m.Kind, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
