package session

import (
	redis_models "Wordrush/models/redis"
	"Wordrush/services/redis"
	redis_utils "Wordrush/services/redis/utils"
	"Wordrush/utils/apperrors"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store is the part of the TTL store adapter sessions need
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
}

// Identity is the user snapshot captured when a session is created
type Identity struct {
	UserID       string
	Email        string
	Username     string
	RoleName     string
	RolePriority int
}

// Manager issues opaque session tokens. A session is valid exactly as long
// as its key exists in the store.
type Manager struct {
	store      Store
	defaultTTL time.Duration
}

func NewManager(store Store, defaultTTL time.Duration) *Manager {
	return &Manager{store: store, defaultTTL: defaultTTL}
}

func (m *Manager) DefaultTTL() time.Duration {
	return m.defaultTTL
}

// CreateSession stores the identity under a fresh random token. A zero ttl
// uses the default.
func (m *Manager) CreateSession(ctx context.Context, identity Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	token := uuid.NewString()
	data := redis_models.SessionData{
		UserID:   identity.UserID,
		Email:    identity.Email,
		Username: identity.Username,
		Role: redis_models.SessionRole{
			Name:     identity.RoleName,
			Priority: identity.RolePriority,
		},
		CreatedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("error marshaling session data: %w", err)
	}
	if err := m.store.Set(ctx, redis_utils.FormatSessionKey(token), raw, ttl); err != nil {
		return "", err
	}
	log.Info().Str("user_id", identity.UserID).Dur("ttl", ttl).Msg("[SESSION] Session created")
	return token, nil
}

// GetSession returns nil for missing or malformed sessions. Only store
// failures are reported as errors.
func (m *Manager) GetSession(ctx context.Context, token string) (*redis_models.SessionData, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := m.store.Get(ctx, redis_utils.FormatSessionKey(token))
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var data redis_models.SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Warn().Err(err).Msg("[SESSION] Malformed session data treated as absent")
		return nil, nil
	}
	if data.UserID == "" {
		log.Warn().Msg("[SESSION] Session without user treated as absent")
		return nil, nil
	}
	return &data, nil
}

// VerifyAndExtend is the single gate for HTTP requests and socket
// events. It re-saves the unchanged data with a fresh default TTL.
func (m *Manager) VerifyAndExtend(ctx context.Context, token string) (*redis_models.SessionData, error) {
	data, err := m.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, apperrors.ErrUnauthorized
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshaling session data: %w", err)
	}
	if err := m.store.Set(ctx, redis_utils.FormatSessionKey(token), raw, m.defaultTTL); err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Manager) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Del(ctx, redis_utils.FormatSessionKey(token))
}

// HasMinPriority reports whether the session role is at least as privileged
// as minPriority (lower values are more privileged).
func HasMinPriority(data *redis_models.SessionData, minPriority int) bool {
	return data != nil && data.Role.Priority <= minPriority
}
