package session

import (
	redis_models "Wordrush/models/redis"
	"Wordrush/services/redis"
	"Wordrush/utils/apperrors"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := redis.NewRedisClientFrom(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	return NewManager(store, time.Hour), mr
}

var alice = Identity{UserID: "u1", Email: "alice@example.com", Username: "alice", RoleName: "player", RolePriority: 10}

func TestCreateAndGetSession(t *testing.T) {
	m, mr := newManager(t)
	ctx := context.Background()

	token, err := m.CreateSession(ctx, alice, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, time.Hour, mr.TTL("session:"+token))

	other, err := m.CreateSession(ctx, alice, 10*time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
	assert.Equal(t, 10*time.Minute, mr.TTL("session:"+other))

	data, err := m.GetSession(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "u1", data.UserID)
	assert.Equal(t, "player", data.Role.Name)
}

func TestGetSessionFailsSoft(t *testing.T) {
	m, mr := newManager(t)
	ctx := context.Background()

	data, err := m.GetSession(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, mr.Set("session:broken", "{{{"))
	data, err = m.GetSession(ctx, "broken")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = m.GetSession(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestVerifyAndExtendSlidesTTL(t *testing.T) {
	m, mr := newManager(t)
	ctx := context.Background()

	token, err := m.CreateSession(ctx, alice, 0)
	require.NoError(t, err)

	mr.FastForward(50 * time.Minute)
	assert.Equal(t, 10*time.Minute, mr.TTL("session:"+token))

	data, err := m.VerifyAndExtend(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", data.Email)
	assert.Equal(t, time.Hour, mr.TTL("session:"+token))
}

func TestVerifyAndExtendRejectsDeletedOrExpired(t *testing.T) {
	m, mr := newManager(t)
	ctx := context.Background()

	token, err := m.CreateSession(ctx, alice, 0)
	require.NoError(t, err)
	require.NoError(t, m.DeleteSession(ctx, token))
	require.NoError(t, m.DeleteSession(ctx, token))

	_, err = m.VerifyAndExtend(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	expiring, err := m.CreateSession(ctx, alice, time.Minute)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = m.VerifyAndExtend(ctx, expiring)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerifyAndExtendPropagatesStoreErrors(t *testing.T) {
	m, mr := newManager(t)
	mr.SetError("LOADING")

	_, err := m.VerifyAndExtend(context.Background(), "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestHasMinPriority(t *testing.T) {
	admin := &redis_models.SessionData{Role: redis_models.SessionRole{Name: "admin", Priority: 1}}
	player := &redis_models.SessionData{Role: redis_models.SessionRole{Name: "player", Priority: 10}}

	assert.True(t, HasMinPriority(admin, 1))
	assert.False(t, HasMinPriority(player, 1))
	assert.True(t, HasMinPriority(player, 10))
	assert.False(t, HasMinPriority(nil, 10))
}
