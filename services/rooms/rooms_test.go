package rooms

import (
	redis_models "Wordrush/models/redis"
	"Wordrush/services/redis"
	"Wordrush/services/repository"
	"Wordrush/services/socket_io/events"
	socketio_types "Wordrush/services/socket_io/types"
	"Wordrush/services/socket_io/types/typestest"
	"Wordrush/utils/apperrors"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	rooms    *repository.RoomRepository
	teams    *repository.TeamRepository
	chat     *repository.RoomTeamChatRepository
	recorder *typestest.Recorder
	mr       *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	store := redis.NewRedisClientFrom(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	f := &fixture{
		rooms:    repository.NewRoomRepository(store, time.Hour),
		teams:    repository.NewTeamRepository(store, time.Hour),
		chat:     repository.NewRoomTeamChatRepository(store, 50, time.Hour),
		recorder: typestest.NewRecorder(),
		mr:       mr,
	}
	broadcaster := socketio_types.NewBroadcaster(socketio_types.NewConnectionRegistry(), f.recorder)
	f.svc = NewService(f.rooms, f.teams, f.chat, redis.NewLocker(store), broadcaster)
	return f
}

func smallConfig(maxPlayers int) *redis_models.RoomConfig {
	cfg := redis_models.DefaultRoomConfig()
	cfg.MinPlayers = 2
	cfg.MaxPlayers = maxPlayers
	return &cfg
}

func TestCreateRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, "host", "  Friday night  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Friday night", room.Name)
	assert.Equal(t, []string{"host"}, room.PlayerIDs)
	assert.Equal(t, "waiting", room.Status)
	assert.Equal(t, time.Hour, f.mr.TTL("room:"+room.ID))

	created := f.recorder.Named("room:created")
	require.Len(t, created, 1)
	assert.Equal(t, "", created[0].Group)

	t.Run("invalid input is rejected", func(t *testing.T) {
		_, err := f.svc.CreateRoom(ctx, "host", "ab", nil)
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		bad := redis_models.DefaultRoomConfig()
		bad.Rounds = 0
		_, err = f.svc.CreateRoom(ctx, "host", "Valid name", &bad)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestJoinRoomUntilFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, "p1", "Tiny room", smallConfig(2))
	require.NoError(t, err)

	joined, err := f.svc.JoinRoom(ctx, room.ID, "p2")
	require.NoError(t, err)
	assert.Equal(t, "locked", joined.Status)
	assert.True(t, joined.IsFull)

	_, err = f.svc.JoinRoom(ctx, room.ID, "p3")
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)

	stored, err := f.svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, stored.PlayerIDs)

	_, err = f.svc.JoinRoom(ctx, room.ID, "p2")
	assert.ErrorIs(t, err, apperrors.ErrPlayerAlreadyInRoom)

	_, err = f.svc.JoinRoom(ctx, "missing", "p2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	joinedEvents := f.recorder.Named("room:joined")
	require.Len(t, joinedEvents, 1)
	assert.Equal(t, room.ID, joinedEvents[0].Group)

	available, err := f.svc.ListAvailableRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)
	all, err := f.svc.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestConcurrentJoinsAreNotLost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, "host", "Busy room", smallConfig(10))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.JoinRoom(ctx, room.ID, fmt.Sprintf("p%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := f.svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, stored.PlayerIDs, 7)
}

func TestLeaveRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, "p1", "Tiny room", smallConfig(2))
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, room.ID, "p2")
	require.NoError(t, err)

	t.Run("host leaving hands over and unlocks", func(t *testing.T) {
		left, err := f.svc.LeaveRoom(ctx, room.ID, "p1")
		require.NoError(t, err)
		require.NotNil(t, left)
		assert.Equal(t, "p2", left.HostID)
		assert.Equal(t, "waiting", left.Status)

		events := f.recorder.Named("room:left")
		require.Len(t, events, 1)
		assert.Equal(t, room.ID, events[0].Group)
	})

	t.Run("leaving twice is a no-op", func(t *testing.T) {
		again, err := f.svc.LeaveRoom(ctx, room.ID, "p1")
		require.NoError(t, err)
		require.NotNil(t, again)
		assert.Equal(t, []string{"p2"}, again.PlayerIDs)
		assert.Len(t, f.recorder.Named("room:left"), 1)
	})

	t.Run("last player deletes the room", func(t *testing.T) {
		left, err := f.svc.LeaveRoom(ctx, room.ID, "p2")
		require.NoError(t, err)
		assert.Nil(t, left)
		assert.False(t, f.mr.Exists("room:"+room.ID))
		assert.False(t, f.mr.Exists("rooms:active"))
		assert.Len(t, f.recorder.Named("room:deleted"), 1)
	})

	t.Run("unknown room", func(t *testing.T) {
		left, err := f.svc.LeaveRoom(ctx, "missing", "p1")
		require.NoError(t, err)
		assert.Nil(t, left)
	})
}

func TestDeleteRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, "host", "Doomed room", nil)
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, room.ID, "guest")
	require.NoError(t, err)
	team, err := f.svc.JoinTeam(ctx, room.ID, "", "Red team", "guest", "Guest")
	require.NoError(t, err)

	err = f.svc.DeleteRoom(ctx, room.ID, "guest")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.svc.DeleteRoom(ctx, room.ID, "host"))
	assert.False(t, f.mr.Exists("room:"+room.ID))
	assert.False(t, f.mr.Exists("team:"+team.Team.ID))
	assert.False(t, f.mr.Exists(fmt.Sprintf("room:%s:team:%s:chat", room.ID, team.Team.ID)))

	_, err = f.svc.GetRoom(ctx, room.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRenameRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, "host", "Old name", nil)
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, room.ID, "guest")
	require.NoError(t, err)

	_, err = f.svc.RenameRoom(ctx, room.ID, "guest", "Guest room")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.svc.RenameRoom(ctx, room.ID, "host", " ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	renamed, err := f.svc.RenameRoom(ctx, room.ID, "host", "  New name ")
	require.NoError(t, err)
	assert.Equal(t, "New name", renamed.Name)
	stored, err := f.svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "New name", stored.Name)
	require.Len(t, f.recorder.Named(string(events.RoomUpdated)), 1)

	playing, err := f.rooms.MustGet(ctx, room.ID)
	require.NoError(t, err)
	playing.Status = redis_models.RoomPlaying
	require.NoError(t, f.rooms.Save(ctx, playing))
	_, err = f.svc.RenameRoom(ctx, room.ID, "host", "Too late")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotWaiting)
}

func TestDeleteRoomRefusedOnceStarted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, "host", "Running room", nil)
	require.NoError(t, err)
	stored, err := f.rooms.MustGet(ctx, room.ID)
	require.NoError(t, err)
	stored.Status = redis_models.RoomPlaying
	require.NoError(t, f.rooms.Save(ctx, stored))

	err = f.svc.DeleteRoom(ctx, room.ID, "host")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotWaiting)
}

func TestRoomTeams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, "alice", "Team room", nil)
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, room.ID, "bob")
	require.NoError(t, err)

	t.Run("only room players can join teams", func(t *testing.T) {
		_, err := f.svc.JoinTeam(ctx, room.ID, "", "Red team", "mallory", "Mallory")
		assert.ErrorIs(t, err, apperrors.ErrNotInRoom)
	})

	red, err := f.svc.JoinTeam(ctx, room.ID, "", "Red team", "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Red team", red.Team.Name)
	assert.Equal(t, room.ID, red.Team.RoomID)
	assert.Empty(t, red.Left)

	t.Run("unknown team ids are not created", func(t *testing.T) {
		_, err := f.svc.JoinTeam(ctx, room.ID, "blue", "", "bob", "Bob")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		_, err = f.svc.JoinTeam(ctx, room.ID, red.Team.ID+":chat", "", "bob", "Bob")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.False(t, f.mr.Exists("team:blue"))
	})

	blue, err := f.svc.JoinTeam(ctx, room.ID, "", "", "bob", "Bob")
	require.NoError(t, err)
	assert.NotEqual(t, red.Team.ID, blue.Team.ID)
	assert.Equal(t, "Team 2", blue.Team.Name)

	stored, err := f.svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{red.Team.ID, blue.Team.ID}, stored.TeamIDs)

	t.Run("joining twice conflicts", func(t *testing.T) {
		_, err := f.svc.JoinTeam(ctx, room.ID, blue.Team.ID, "", "bob", "Bob")
		assert.ErrorIs(t, err, apperrors.ErrAlreadyInTeam)
	})

	t.Run("switching team leaves the previous one", func(t *testing.T) {
		switched, err := f.svc.JoinTeam(ctx, room.ID, red.Team.ID, "", "bob", "Bob")
		require.NoError(t, err)
		assert.Equal(t, []string{blue.Team.ID}, switched.Left)
		assert.ElementsMatch(t, []string{"alice", "bob"}, switched.Team.Members)

		// blue became empty and was removed from the room
		assert.False(t, f.mr.Exists("team:"+blue.Team.ID))
		stored, err := f.svc.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{red.Team.ID}, stored.TeamIDs)
		assert.NotEmpty(t, f.recorder.Named(string(events.TeamDeleted)))
	})

	t.Run("chat", func(t *testing.T) {
		msg, err := f.svc.SendTeamMessage(ctx, "", room.ID, red.Team.ID, "alice", "Alice", "  hello team ")
		require.NoError(t, err)
		assert.Equal(t, "hello team", msg.Text)
		assert.Equal(t, "user", msg.Type)

		_, err = f.svc.SendTeamMessage(ctx, "", room.ID, red.Team.ID, "alice", "Alice", "   ")
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = f.svc.SendTeamMessage(ctx, "", room.ID, "blue", "alice", "Alice", "hi")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		history, err := f.svc.TeamHistory(ctx, room.ID, red.Team.ID, 0)
		require.NoError(t, err)
		// alice joined, bob joined, alice's message
		require.Len(t, history, 3)
		assert.Equal(t, "system", history[0].Type)
		assert.Nil(t, history[0].AuthorID)
		assert.Equal(t, "hello team", history[2].Text)

		messages := f.recorder.Named("team:message")
		require.NotEmpty(t, messages)
		assert.Equal(t, room.ID+":"+red.Team.ID, messages[len(messages)-1].Group)
	})

	t.Run("leave team", func(t *testing.T) {
		require.NoError(t, f.svc.LeaveTeam(ctx, room.ID, red.Team.ID, "bob", "Bob"))
		require.NoError(t, f.svc.LeaveTeam(ctx, room.ID, red.Team.ID, "bob", "Bob"))

		_, err := f.svc.SendTeamMessage(ctx, "", room.ID, red.Team.ID, "bob", "Bob", "still here?")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)

		err = f.svc.LeaveTeam(ctx, room.ID, "ghost", "bob", "Bob")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("leaving the room leaves the team", func(t *testing.T) {
		_, err := f.svc.LeaveRoom(ctx, room.ID, "alice")
		require.NoError(t, err)
		assert.False(t, f.mr.Exists("team:"+red.Team.ID))
		stored, err := f.svc.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.TeamIDs)
	})
}

func TestTeamsFrozenOnceStarted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, "alice", "Started room", nil)
	require.NoError(t, err)
	stored, err := f.rooms.MustGet(ctx, room.ID)
	require.NoError(t, err)
	stored.Status = redis_models.RoomPlaying
	require.NoError(t, f.rooms.Save(ctx, stored))

	_, err = f.svc.JoinTeam(ctx, room.ID, "", "Late team", "alice", "Alice")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotWaiting)
}
