package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func snapshotKey(gameID string) string { return "game:" + gameID + ":snapshot" }

// SaveSnapshot stores the serialized game snapshot with a TTL so
// abandoned games age out on their own.
func (c *Client) SaveSnapshot(ctx context.Context, gameID string, snapshot []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, snapshotKey(gameID), snapshot, ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot retrieves the latest snapshot, or (nil, nil) if none
// exists.
func (c *Client) LoadSnapshot(ctx context.Context, gameID string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return data, nil
}

// Clear removes a finished game's snapshot.
func (c *Client) Clear(ctx context.Context, gameID string) error {
	if err := c.rdb.Del(ctx, snapshotKey(gameID)).Err(); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
