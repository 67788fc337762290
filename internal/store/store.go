package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"summit-push-go/internal/models"
)

const broadcastChannel = "broadcast_events"

// BroadcastLog persists finished broadcasts (PostgreSQL)
type BroadcastLog interface {
	Record(ctx context.Context, origin string, report models.DispatchReport) error
	RecentBroadcasts(ctx context.Context, limit int) ([]models.BroadcastRecord, error)
}

// EventFeed publishes finished broadcasts to live listeners (Redis)
type EventFeed interface {
	Record(ctx context.Context, origin string, report models.DispatchReport) error
	Subscribe(ctx context.Context) *redis.PubSub
}

// BroadcastEvent is the message published on the feed.
type BroadcastEvent struct {
	Origin string                `json:"origin"`
	Report models.DispatchReport `json:"report"`
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(opts *redis.Options) *RedisStore {
	rdb := redis.NewClient(opts)
	return &RedisStore{client: rdb}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Record publishes the report for SSE listeners.
func (s *RedisStore) Record(ctx context.Context, origin string, report models.DispatchReport) error {
	data, err := json.Marshal(BroadcastEvent{Origin: origin, Report: report})
	if err != nil {
		return fmt.Errorf("encode broadcast event: %w", err)
	}
	if err := s.client.Publish(ctx, broadcastChannel, data).Err(); err != nil {
		return fmt.Errorf("publish broadcast event: %w", err)
	}
	return nil
}

func (s *RedisStore) Subscribe(ctx context.Context) *redis.PubSub {
	return s.client.Subscribe(ctx, broadcastChannel)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
