package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrKeyNotFound is returned by Get when the key is absent or expired
var ErrKeyNotFound = errors.New("key not found")

// RedisClient is the TTL store adapter every repository goes through
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client instance. Addresses with a
// scheme (redis://, rediss://) are parsed as URLs.
func NewRedisClient(Addr string, DB int) (*RedisClient, error) {
	if Addr == "" {
		Addr = "localhost:6379"
	}
	if !strings.Contains(Addr, "://") {
		return &RedisClient{client: redis.NewClient(&redis.Options{Addr: Addr, DB: DB})}, nil
	}

	log.Info().Msg("[REDIS] Connecting to remote Redis...")
	opt, err := redis.ParseURL(Addr)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %w", err)
	}
	return &RedisClient{client: redis.NewClient(opt)}, nil
}

// NewRedisClientFrom wraps an existing go-redis client
func NewRedisClientFrom(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

func (rc *RedisClient) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := rc.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("error setting key %s: %w", key, err)
	}
	return nil
}

func (rc *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("error getting key %s: %w", key, err)
	}
	return data, nil
}

func (rc *RedisClient) Del(ctx context.Context, keys ...string) error {
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("error deleting keys %v: %w", keys, err)
	}
	return nil
}

func (rc *RedisClient) Exists(ctx context.Context, key string) (bool, error) {
	n, err := rc.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("error checking key %s: %w", key, err)
	}
	return n > 0, nil
}

func (rc *RedisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := rc.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("error refreshing ttl of %s: %w", key, err)
	}
	return nil
}

func (rc *RedisClient) SAdd(ctx context.Context, setKey string, members ...string) error {
	if err := rc.client.SAdd(ctx, setKey, toArgs(members)...).Err(); err != nil {
		return fmt.Errorf("error adding to set %s: %w", setKey, err)
	}
	return nil
}

func (rc *RedisClient) SRem(ctx context.Context, setKey string, members ...string) error {
	if err := rc.client.SRem(ctx, setKey, toArgs(members)...).Err(); err != nil {
		return fmt.Errorf("error removing from set %s: %w", setKey, err)
	}
	return nil
}

func (rc *RedisClient) SMembers(ctx context.Context, setKey string) ([]string, error) {
	members, err := rc.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing set %s: %w", setKey, err)
	}
	return members, nil
}

// PushCapped appends value to the list and trims it to the newest maxLen
// entries, refreshing its TTL, all in one MULTI/EXEC.
func (rc *RedisClient) PushCapped(ctx context.Context, key string, value []byte, maxLen int, ttl time.Duration) error {
	_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, value)
		pipe.LTrim(ctx, key, int64(-maxLen), -1)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error pushing to list %s: %w", key, err)
	}
	return nil
}

// LastN returns up to n entries from the tail of the list, oldest first
func (rc *RedisClient) LastN(ctx context.Context, key string, n int) ([][]byte, error) {
	values, err := rc.client.LRange(ctx, key, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading list %s: %w", key, err)
	}
	out := make([][]byte, 0, len(values))
	for _, v := range values {
		out = append(out, []byte(v))
	}
	return out, nil
}

// ScanKeys walks the keyspace with SCAN, never KEYS
func (rc *RedisClient) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := rc.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", pattern, err)
	}
	return keys, nil
}

// TryLock takes a short-lived lock with SET NX. token identifies the holder
// and must be passed to Unlock.
func (rc *RedisClient) TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := rc.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("error acquiring lock %s: %w", key, err)
	}
	return ok, nil
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Unlock releases the lock only if it is still held with token
func (rc *RedisClient) Unlock(ctx context.Context, key, token string) error {
	if err := unlockScript.Run(ctx, rc.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("error releasing lock %s: %w", key, err)
	}
	return nil
}

func toArgs(members []string) []interface{} {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return args
}
