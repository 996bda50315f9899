package config

import (
	"Wordrush/services/redis"
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ConnectRedis connects to Redis
func ConnectRedis(cfg *Config) (*redis.RedisClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	redisClient, err := redis.InitRedis(ctx, cfg.RedisURL, cfg.RedisDB, cfg.RedisFlushOnStart)
	if err != nil {
		log.Error().Err(err).Msg("[REDIS-ERROR] Error connecting to Redis")
		return nil, err
	}
	log.Info().Msg("[REDIS] Redis connection established")
	return redisClient, nil
}
