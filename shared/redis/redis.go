package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"sellerlift/backend/pkg/config"
)

// Client wraps the go-redis client with the small surface the chat
// feature needs: TTL key-value for presence leases and pub/sub for
// change-notification feeds.
type Client struct {
	client *redis.Client
}

// FeedEvent is one message delivered on a subscribed channel
type FeedEvent struct {
	Channel string
	Payload string
}

// Nil is returned by Get when the key does not exist or has expired
var Nil = redis.Nil

// NewClient creates a client from application configuration
func NewClient() *Client {
	cfg := config.Get()
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return &Client{client: client}
}

// Ping verifies the connection
func (r *Client) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Set stores a value under key with the given expiration (0 = no expiry)
func (r *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Get returns the value stored under key, or Nil if absent/expired
func (r *Client) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// GetOptional returns the value stored under key and whether it was
// present. Missing or expired keys are not an error.
func (r *Client) GetOptional(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Del removes a key
func (r *Client) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Expire refreshes the TTL of an existing key. Returns false when the
// key no longer exists (the lease already lapsed).
func (r *Client) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return r.client.Expire(ctx, key, expiration).Result()
}

// Publish sends a payload on a channel
func (r *Client) Publish(ctx context.Context, channel string, payload interface{}) error {
	return r.client.Publish(ctx, channel, payload).Err()
}

// Subscribe subscribes to one or more channel patterns and returns a
// stream of events plus a cancel function. The stream is closed when
// the context ends or cancel is called.
func (r *Client) Subscribe(ctx context.Context, patterns ...string) (<-chan FeedEvent, func()) {
	sub := r.client.PSubscribe(ctx, patterns...)
	events := make(chan FeedEvent, 64)

	go func() {
		defer close(events)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case events <- FeedEvent{Channel: msg.Channel, Payload: msg.Payload}:
				default:
					// Slow consumer; drop rather than block the feed.
				}
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return events, cancel
}

// Close releases the underlying connection pool
func (r *Client) Close() error {
	return r.client.Close()
}
