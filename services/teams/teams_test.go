package teams

import (
	redis_models "Wordrush/models/redis"
	"Wordrush/services/redis"
	"Wordrush/services/repository"
	socketio_types "Wordrush/services/socket_io/types"
	"Wordrush/services/socket_io/types/typestest"
	"Wordrush/utils/apperrors"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, maxMessages int) (*Service, *typestest.Recorder, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := redis.NewRedisClientFrom(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	recorder := typestest.NewRecorder()
	svc := NewService(
		repository.NewTeamRepository(store, time.Hour),
		repository.NewTeamChatRepository(store, maxMessages, time.Hour),
		redis.NewLocker(store),
		socketio_types.NewBroadcaster(socketio_types.NewConnectionRegistry(), recorder),
	)
	return svc, recorder, mr
}

func TestTeamLifecycle(t *testing.T) {
	svc, recorder, mr := newService(t, 500)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, "Night owls", "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, team.Members)
	assert.Equal(t, "alice", team.HostID)
	assert.Len(t, recorder.Named("team:created"), 1)

	joined, err := svc.Join(ctx, team.ID, "bob", "Bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, joined.Members)

	_, err = svc.Join(ctx, team.ID, "bob", "Bob")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInTeam)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	left, err := svc.Leave(ctx, team.ID, "alice", "Alice")
	require.NoError(t, err)
	require.NotNil(t, left)
	assert.Equal(t, "bob", left.HostID)

	history, err := svc.History(ctx, team.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "Alice created the team.", history[0].Text)
	assert.Equal(t, "Bob joined the team.", history[1].Text)
	assert.Equal(t, "Alice left the team.", history[2].Text)

	gone, err := svc.Leave(ctx, team.ID, "bob", "Bob")
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.False(t, mr.Exists("team:"+team.ID))
	assert.False(t, mr.Exists("team:"+team.ID+":messages"))
	assert.Len(t, recorder.Named("team:deleted"), 1)

	_, err = svc.Get(ctx, team.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSendMessage(t *testing.T) {
	svc, recorder, _ := newService(t, 500)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, "Chatters", "alice", "Alice")
	require.NoError(t, err)
	recorder.Reset()

	msg, err := svc.SendMessage(ctx, "", team.ID, "alice", "Alice", "hello")
	require.NoError(t, err)
	require.NotNil(t, msg.AuthorID)
	assert.Equal(t, "alice", *msg.AuthorID)

	emitted := recorder.Named("team:message")
	require.Len(t, emitted, 1)
	assert.Equal(t, "team:"+team.ID, emitted[0].Group)

	_, err = svc.SendMessage(ctx, "", team.ID, "mallory", "Mallory", "let me in")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.SendMessage(ctx, "", team.ID, "alice", "Alice", strings.Repeat("a", 2001))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestChatKeepsOnlyLatestMessages(t *testing.T) {
	svc, _, mr := newService(t, 500)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, "Spammers", "alice", "Alice")
	require.NoError(t, err)
	// The creation notice is the first entry, so 509 more make 510
	for i := 0; i < 509; i++ {
		_, err := svc.SendMessage(ctx, "", team.ID, "alice", "Alice", fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, team.ID, 200)
	require.NoError(t, err)
	require.Len(t, history, 200)
	assert.Equal(t, "message 508", history[199].Text)
	assert.Equal(t, "message 309", history[0].Text)

	stored, err := mr.List("team:" + team.ID + ":messages")
	require.NoError(t, err)
	assert.Len(t, stored, 500)
	assert.Contains(t, stored[0], "message 9")
}

func TestHistoryLimitValidation(t *testing.T) {
	svc, _, _ := newService(t, 500)
	ctx := context.Background()
	team, err := svc.CreateTeam(ctx, "Readers", "alice", "Alice")
	require.NoError(t, err)

	for _, limit := range []int{-1, 201} {
		_, err := svc.History(ctx, team.ID, limit)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "limit %d", limit)
	}
	_, err = svc.History(ctx, "missing", 10)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRoomTeamsAreHidden(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redis.NewRedisClientFrom(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	teams := repository.NewTeamRepository(store, time.Hour)
	svc := NewService(teams, repository.NewTeamChatRepository(store, 500, time.Hour), redis.NewLocker(store),
		socketio_types.NewBroadcaster(socketio_types.NewConnectionRegistry(), typestest.NewRecorder()))
	ctx := context.Background()

	roomTeam, err := redis_models.NewTeam("t1", "Room team", "alice", "r1")
	require.NoError(t, err)
	require.NoError(t, teams.Save(ctx, roomTeam))

	_, err = svc.Join(ctx, "t1", "bob", "Bob")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
