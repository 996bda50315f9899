package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Batch queues writes that are applied together in one MULTI/EXEC
type Batch interface {
	Set(key string, value []byte, ttl time.Duration)
	Del(keys ...string)
	SAdd(setKey string, members ...string)
	SRem(setKey string, members ...string)
	Expire(key string, ttl time.Duration)
}

type txBatch struct {
	ctx  context.Context
	pipe redis.Pipeliner
}

func (b *txBatch) Set(key string, value []byte, ttl time.Duration) {
	b.pipe.Set(b.ctx, key, value, ttl)
}

func (b *txBatch) Del(keys ...string) {
	b.pipe.Del(b.ctx, keys...)
}

func (b *txBatch) SAdd(setKey string, members ...string) {
	b.pipe.SAdd(b.ctx, setKey, toArgs(members)...)
}

func (b *txBatch) SRem(setKey string, members ...string) {
	b.pipe.SRem(b.ctx, setKey, toArgs(members)...)
}

func (b *txBatch) Expire(key string, ttl time.Duration) {
	b.pipe.Expire(b.ctx, key, ttl)
}

// Atomic runs every write queued by fn inside MULTI/EXEC. Either all
// commands are applied or the returned error reports the failure.
func (rc *RedisClient) Atomic(ctx context.Context, fn func(b Batch)) error {
	_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fn(&txBatch{ctx: ctx, pipe: pipe})
		return nil
	})
	if err != nil {
		return fmt.Errorf("error executing batch: %w", err)
	}
	return nil
}
