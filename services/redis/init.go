package redis

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// InitRedis initializes the Redis connection and checks it with a PING.
// flush clears the selected DB, which is only meant for local development.
func InitRedis(ctx context.Context, Addr string, DB int, flush bool) (*RedisClient, error) {
	rc, err := NewRedisClient(Addr, DB)
	if err != nil {
		return nil, err
	}

	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Msg("[REDIS] Successfully connected to Redis")

	if flush {
		log.Warn().Int("db", DB).Msg("[REDIS] Flushing Redis DB")
		if err := rc.client.FlushDB(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to flush Redis DB: %w", err)
		}
	}

	return rc, nil
}

// CloseRedis gracefully closes the Redis connection
func CloseRedis(rc *RedisClient) error {
	if err := rc.client.Close(); err != nil {
		return fmt.Errorf("error closing Redis connection: %w", err)
	}
	return nil
}
