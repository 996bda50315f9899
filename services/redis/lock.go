package redis

import (
	"Wordrush/utils/apperrors"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Locker serialises load-mutate-save sequences on the same entity id with
// a SET NX lock, so two concurrent events on one room cannot overwrite each
// other's changes.
type Locker struct {
	store   *RedisClient
	ttl     time.Duration
	retry   time.Duration
	attempt int
}

func NewLocker(store *RedisClient) *Locker {
	return &Locker{
		store:   store,
		ttl:     5 * time.Second,
		retry:   20 * time.Millisecond,
		attempt: 100,
	}
}

// WithLock runs fn while holding the lock for key. It gives up with a
// conflict error once the retries are exhausted or ctx is done.
func (l *Locker) WithLock(ctx context.Context, key string, fn func() error) error {
	token := uuid.NewString()
	acquired := false
	for i := 0; i < l.attempt; i++ {
		ok, err := l.store.TryLock(ctx, key, token, l.ttl)
		if err != nil {
			return err
		}
		if ok {
			acquired = true
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retry):
		}
	}
	if !acquired {
		log.Warn().Str("lock", key).Msg("[LOCK] Lock still busy, giving up")
		return apperrors.Conflict("Resource busy, try again")
	}

	defer func() {
		if err := l.store.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			log.Error().Err(err).Str("lock", key).Msg("[LOCK] Error releasing lock")
		}
	}()
	return fn()
}
