package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients splits the two ways the service uses Redis: Queue carries
// refresh tokens, job locks, reminder markers, and the alert queue; PubSub
// carries the realtime feed. Separate connections keep a blocked queue pop
// from contending with subscription traffic.
type RedisClients struct {
	Queue  *redis.Client
	PubSub *redis.Client
}

func NewRedisClients(redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.DialTimeout = 5 * time.Second
	opt.MaxRetries = 3

	queue, err := connectRedis(opt, "queue")
	if err != nil {
		return nil, err
	}

	pubsubOpt := *opt
	pubsub, err := connectRedis(&pubsubOpt, "pubsub")
	if err != nil {
		queue.Close()
		return nil, err
	}

	return &RedisClients{
		Queue:  queue,
		PubSub: pubsub,
	}, nil
}

func connectRedis(opt *redis.Options, role string) (*redis.Client, error) {
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis (%s): %w", role, err)
	}

	return client, nil
}

func (r *RedisClients) Close() {
	r.Queue.Close()
	r.PubSub.Close()
}
