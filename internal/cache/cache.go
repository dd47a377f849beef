// Package cache wraps the Redis collaborator: refresh-session storage and
// a per-room cached message list, trimmed to a bounded window.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/drazan344/chat-core/internal/core"
	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb        *redis.Client
	sessionTTL time.Duration
}

func New(addr string, sessionTTL time.Duration) *Cache {
	return &Cache{
		rdb:        redis.NewClient(&redis.Options{Addr: addr}),
		sessionTTL: sessionTTL,
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// CreateSession stores a refresh token under the session uuid, bounded by
// the configured session TTL.
func (c *Cache) CreateSession(ctx context.Context, sessionID, refreshToken string) error {
	if err := c.rdb.Set(ctx, sessionKey(sessionID), refreshToken, c.sessionTTL).Err(); err != nil {
		return core.CacheFailure(err)
	}
	return nil
}

// GetSession returns the refresh token for a session, or core.KindNotFound
// if the session has expired or never existed.
func (c *Cache) GetSession(ctx context.Context, sessionID string) (string, error) {
	token, err := c.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return "", core.NotFound("session not found")
	}
	if err != nil {
		return "", core.CacheFailure(err)
	}
	return token, nil
}

// DeleteSession removes a session, used by logout.
func (c *Cache) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return core.CacheFailure(err)
	}
	return nil
}

func roomMessagesKey(roomID int64) string {
	return fmt.Sprintf("room:%d:messages", roomID)
}

// PushMessage appends a serialized message to a room's cached list and
// trims the list to core.MaxCachedMessages, keeping the cache bounded
// regardless of room activity.
func (c *Cache) PushMessage(ctx context.Context, roomID int64, payload []byte) error {
	pipe := c.rdb.TxPipeline()
	pipe.RPush(ctx, roomMessagesKey(roomID), payload)
	pipe.LTrim(ctx, roomMessagesKey(roomID), -core.MaxCachedMessages, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return core.CacheFailure(err)
	}
	return nil
}

// RecentMessages returns the cached message window for a room, oldest
// first, as raw JSON payloads.
func (c *Cache) RecentMessages(ctx context.Context, roomID int64) ([][]byte, error) {
	vals, err := c.rdb.LRange(ctx, roomMessagesKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, core.CacheFailure(err)
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}
