package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"resqlink-backend/internal/models"
)

// RedisRefreshStore keeps refresh tokens in Redis with their TTL.
type RedisRefreshStore struct {
	redis *redis.Client
}

func NewRedisRefreshStore(redisClient *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{redis: redisClient}
}

func (s *RedisRefreshStore) Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return s.redis.Set(ctx, "refresh:"+token, userID.String(), ttl).Err()
}

func (s *RedisRefreshStore) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	userIDStr, err := s.redis.Get(ctx, "refresh:"+token).Result()
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(userIDStr)
}

func (s *RedisRefreshStore) Delete(ctx context.Context, token string) error {
	return s.redis.Del(ctx, "refresh:"+token).Err()
}

// EventPublisher fans events out to a user's realtime channel. The
// websocket hub subscribes to the same channel, so every connected client
// of that user sees the event regardless of which client caused it.
type EventPublisher struct {
	redis *redis.Client
}

func NewEventPublisher(redisClient *redis.Client) *EventPublisher {
	return &EventPublisher{redis: redisClient}
}

func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_events:%s", userID.String())
}

func (p *EventPublisher) PublishMessage(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, _ := json.Marshal(msg)
	p.redis.Publish(ctx, UserChannel(userID), string(data))
}

// Publish implements the auth-state-change feed.
func (p *EventPublisher) Publish(ctx context.Context, userID uuid.UUID, event string) {
	p.PublishMessage(ctx, userID, models.WSMessage{
		Type:    models.WSAuthStateChanged,
		Payload: models.AuthEvent{Event: event, UserID: userID.String()},
	})
}
