package repository

import (
	redis_models "Wordrush/models/redis"
	"Wordrush/services/redis"
	"Wordrush/utils/apperrors"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Store is the subset of the TTL store adapter the repositories need
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	SMembers(ctx context.Context, setKey string) ([]string, error)
	SAdd(ctx context.Context, setKey string, members ...string) error
	SRem(ctx context.Context, setKey string, members ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	Atomic(ctx context.Context, fn func(b redis.Batch)) error
	PushCapped(ctx context.Context, key string, value []byte, maxLen int, ttl time.Duration) error
	LastN(ctx context.Context, key string, n int) ([][]byte, error)
	Del(ctx context.Context, keys ...string) error
}

// entityRepository stores one JSON record per entity plus an active-id
// index set. P is the pointer type of T.
type entityRepository[T any, P interface {
	*T
	redis_models.Entity
}] struct {
	store     Store
	name      string
	prefix    string
	activeKey string
	ttl       time.Duration
	// validID rejects ids that cannot name a record of this kind
	validID func(id string) bool
}

// plainID is a non-empty id without key separators
func plainID(id string) bool {
	return id != "" && !strings.Contains(id, ":")
}

func newEntityRepository[T any, P interface {
	*T
	redis_models.Entity
}](store Store, name, prefix, activeKey string, ttl time.Duration) *entityRepository[T, P] {
	return &entityRepository[T, P]{
		store:     store,
		name:      name,
		prefix:    prefix,
		activeKey: activeKey,
		ttl:       ttl,
		validID:   plainID,
	}
}

func (r *entityRepository[T, P]) key(id string) string {
	return r.prefix + id
}

// Save writes the record with its TTL, indexes it and refreshes the index
// TTL in a single MULTI/EXEC.
func (r *entityRepository[T, P]) Save(ctx context.Context, entity P) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("error marshaling %s data: %w", strings.ToLower(r.name), err)
	}
	id := entity.StoreID()
	err = r.store.Atomic(ctx, func(b redis.Batch) {
		b.Set(r.key(id), data, r.ttl)
		b.SAdd(r.activeKey, id)
		b.Expire(r.activeKey, r.ttl)
	})
	if err != nil {
		return fmt.Errorf("error saving %s %s: %w", strings.ToLower(r.name), id, err)
	}
	return nil
}

// Get returns nil when the record is absent or cannot be decoded. An id
// that cannot name a record is absent without touching the store.
func (r *entityRepository[T, P]) Get(ctx context.Context, id string) (P, error) {
	if !r.validID(id) {
		return nil, nil
	}
	data, err := r.store.Get(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entity T
	if err := json.Unmarshal(data, &entity); err != nil {
		log.Warn().Err(err).Str("key", r.key(id)).Msgf("[%s] Corrupt record treated as absent", strings.ToUpper(r.name))
		return nil, nil
	}
	return P(&entity), nil
}

// MustGet is Get with absence reported as a NotFound error
func (r *entityRepository[T, P]) MustGet(ctx context.Context, id string) (P, error) {
	entity, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, apperrors.NotFound(r.name)
	}
	return entity, nil
}

// Delete unindexes and removes the record in a single MULTI/EXEC
func (r *entityRepository[T, P]) Delete(ctx context.Context, id string) error {
	err := r.store.Atomic(ctx, func(b redis.Batch) {
		b.SRem(r.activeKey, id)
		b.Del(r.key(id))
	})
	if err != nil {
		return fmt.Errorf("error deleting %s %s: %w", strings.ToLower(r.name), id, err)
	}
	return nil
}

// ListActive resolves every indexed id, skipping the ones whose record has
// expired or is corrupt.
func (r *entityRepository[T, P]) ListActive(ctx context.Context) ([]P, error) {
	ids, err := r.store.SMembers(ctx, r.activeKey)
	if err != nil {
		return nil, err
	}
	entities := make([]P, 0, len(ids))
	for _, id := range ids {
		entity, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if entity != nil {
			entities = append(entities, entity)
		}
	}
	return entities, nil
}

// Index describes an active-id index so it can be reconciled with the
// records it points to.
type Index interface {
	Name() string
	ActiveKey() string
	RecordKey(id string) string
	RecordPattern() string
	IDFromKey(key string) (string, bool)
	TTL() time.Duration
}

func (r *entityRepository[T, P]) Name() string {
	return r.name
}

func (r *entityRepository[T, P]) ActiveKey() string {
	return r.activeKey
}

func (r *entityRepository[T, P]) RecordKey(id string) string {
	return r.key(id)
}

func (r *entityRepository[T, P]) RecordPattern() string {
	return r.prefix + "*"
}

// IDFromKey rejects keys that share the prefix but belong to another kind
// of record, like chat lists ("room:<id>:team:<id>:chat").
func (r *entityRepository[T, P]) IDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, r.prefix) {
		return "", false
	}
	id := strings.TrimPrefix(key, r.prefix)
	if !r.validID(id) {
		return "", false
	}
	return id, true
}

func (r *entityRepository[T, P]) TTL() time.Duration {
	return r.ttl
}
