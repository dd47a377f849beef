package store

import (
	"context"
	"database/sql"
	"time"
)

// Message is a persisted chat message. SenderName/SenderAvatar are
// denormalized at write time so history reads never need a join back to
// a user row that may since have changed its nickname or avatar.
type Message struct {
	ID           int64     `json:"id"`
	RoomID       int64     `json:"room_id"`
	SenderID     int64     `json:"sender_id"`
	SenderName   string    `json:"sender_name"`
	SenderAvatar string    `json:"sender_avatar"`
	Content      string    `json:"content"`
	Kind         string    `json:"kind"`
	CreatedAt    time.Time `json:"created_at"`
}

// MessageStore handles database operations for messages.
type MessageStore struct {
	db *sql.DB
}

// Append inserts a new message, resolving the sender's current display
// name and avatar at write time, and returns the persisted row.
func (s *MessageStore) Append(ctx context.Context, senderID, roomID int64, content, kind string) (*Message, error) {
	msg := &Message{RoomID: roomID, SenderID: senderID, Content: content, Kind: kind}

	err := s.db.QueryRowContext(ctx, `
		WITH sender AS (SELECT nickname, avatar FROM users WHERE id = $1)
		INSERT INTO messages (room_id, sender_id, sender_name, sender_avatar, content, kind)
		SELECT $2, $1, sender.nickname, sender.avatar, $3, $4 FROM sender
		RETURNING id, sender_name, sender_avatar, created_at
	`, senderID, roomID, content, kind).Scan(&msg.ID, &msg.SenderName, &msg.SenderAvatar, &msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// GetSince retrieves messages in a room created after the given timestamp,
// oldest first — used to let a reconnecting client catch up.
func (s *MessageStore) GetSince(ctx context.Context, roomID int64, since time.Time) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, sender_id, sender_name, sender_avatar, content, kind, created_at
		FROM messages WHERE room_id = $1 AND created_at > $2 ORDER BY created_at ASC
	`, roomID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*Message, 0)
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.SenderName, &m.SenderAvatar, &m.Content, &m.Kind, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
