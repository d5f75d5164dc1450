package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	redis "github.com/redis/go-redis/v9"
)

// Generation is a monotonically increasing version of the rule set. Every
// administrative mutation bumps it.
type Generation interface {
	Current(ctx context.Context) (int64, error)
	Bump(ctx context.Context) (int64, error)
}

// LocalGeneration keeps the counter in process memory.
type LocalGeneration struct {
	n atomic.Int64
}

func NewLocalGeneration() *LocalGeneration {
	return &LocalGeneration{}
}

func (g *LocalGeneration) Current(_ context.Context) (int64, error) {
	return g.n.Load(), nil
}

func (g *LocalGeneration) Bump(_ context.Context) (int64, error) {
	return g.n.Add(1), nil
}

// DefaultGenerationKey is the Redis key holding the shared rule generation.
const DefaultGenerationKey = "grosir:markup_rules:generation"

// RedisGeneration shares the counter between instances through a Redis key.
type RedisGeneration struct {
	client *redis.Client
	key    string
}

func NewRedisGeneration(client *redis.Client, key string) *RedisGeneration {
	if key == "" {
		key = DefaultGenerationKey
	}
	return &RedisGeneration{client: client, key: key}
}

func (g *RedisGeneration) Current(ctx context.Context) (int64, error) {
	val, err := g.client.Get(ctx, g.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rule generation: %w", err)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed rule generation %q: %w", val, err)
	}
	return n, nil
}

func (g *RedisGeneration) Bump(ctx context.Context) (int64, error) {
	n, err := g.client.Incr(ctx, g.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to bump rule generation: %w", err)
	}
	return n, nil
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr string, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
