package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

// NewClientFromExisting wraps an already-configured go-redis client.
// Tests use it to point the wrapper at a miniredis instance.
func NewClientFromExisting(client *redis.Client) *Client {
	return &Client{client}
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// EventChannel is the pub/sub channel carrying one player's events.
func EventChannel(playerID string) string {
	return fmt.Sprintf("events:%s", playerID)
}

// Mirror key layout. The in-memory stores stay authoritative; these keys
// are a read-only reflection for external observers.
const QueueByLatencyKey = "mm:queue:latency"

func QueueEntryKey(playerID string) string {
	return fmt.Sprintf("mm:queue:entry:%s", playerID)
}

func MatchKey(matchID string) string {
	return fmt.Sprintf("mm:match:%s", matchID)
}
