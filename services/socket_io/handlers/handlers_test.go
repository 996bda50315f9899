package handlers

import (
	redis_models "Wordrush/models/redis"
	"Wordrush/services/games"
	"Wordrush/services/redis"
	"Wordrush/services/repository"
	"Wordrush/services/rooms"
	"Wordrush/services/scores"
	"Wordrush/services/session"
	"Wordrush/services/socket_io/events"
	socketio_types "Wordrush/services/socket_io/types"
	"Wordrush/services/socket_io/types/typestest"
	socketio_utils "Wordrush/services/socket_io/utils"
	"Wordrush/services/teams"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zishang520/socket.io/v2/socket"
)

// fakeClient records emissions and the socket.io rooms it listens to
type fakeClient struct {
	*typestest.Conn

	mutex        sync.Mutex
	joined       map[socket.Room]bool
	disconnected bool
}

func newClient(id string) *fakeClient {
	return &fakeClient{Conn: typestest.NewConn(id), joined: make(map[socket.Room]bool)}
}

func (c *fakeClient) Join(rooms ...socket.Room) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, room := range rooms {
		c.joined[room] = true
	}
}

func (c *fakeClient) Leave(room socket.Room) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.joined, room)
}

func (c *fakeClient) Disconnect(bool) *socket.Socket {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.disconnected = true
	return nil
}

func (c *fakeClient) Disconnected() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.disconnected
}

func (c *fakeClient) In(group string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.joined[socket.Room(group)]
}

type fixture struct {
	rooms    *rooms.Service
	teams    *teams.Service
	games    *games.Service
	scores   *scores.Service
	sessions *session.Manager
	registry *socketio_types.ConnectionRegistry
	recorder *typestest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	store := redis.NewRedisClientFrom(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	locker := redis.NewLocker(store)
	recorder := typestest.NewRecorder()
	registry := socketio_types.NewConnectionRegistry()
	broadcaster := socketio_types.NewBroadcaster(registry, recorder)

	roomRepo := repository.NewRoomRepository(store, time.Hour)
	teamRepo := repository.NewTeamRepository(store, time.Hour)
	scoreSvc := scores.NewService(repository.NewScoreTeamRepository(store, time.Hour), teamRepo, nil, locker, broadcaster)
	return &fixture{
		rooms: rooms.NewService(roomRepo, teamRepo, repository.NewRoomTeamChatRepository(store, 50, time.Hour),
			locker, broadcaster),
		teams:    teams.NewService(teamRepo, repository.NewTeamChatRepository(store, 500, time.Hour), locker, broadcaster),
		games:    games.NewService(repository.NewGameRepository(store, time.Hour), roomRepo, teamRepo, scoreSvc, locker, broadcaster, redis_models.ScoreAlways),
		scores:   scoreSvc,
		sessions: session.NewManager(store, time.Hour),
		registry: registry,
		recorder: recorder,
	}
}

func user(id string) *redis_models.SessionData {
	return &redis_models.SessionData{UserID: id, Username: id, Role: redis_models.SessionRole{Name: "player", Priority: 10}}
}

func admin(id string) *redis_models.SessionData {
	return &redis_models.SessionData{UserID: id, Username: id, Role: redis_models.SessionRole{Name: "admin", Priority: 1}}
}

func lastError(t *testing.T, client *fakeClient) (string, events.ErrorPayload) {
	t.Helper()
	name, payload := client.Last()
	errPayload, ok := payload.(events.ErrorPayload)
	require.True(t, ok, "last emission %q is not an error", name)
	return name, errPayload
}

func TestRoomHandlersManageGroups(t *testing.T) {
	f := newFixture(t)
	host, guest := newClient("s1"), newClient("s2")

	HandleCreateRoom(f.rooms, host, user("alice"))(map[string]any{"name": "Lobby"})
	created := f.recorder.Named("room:created")
	require.Len(t, created, 1)
	roomID := created[0].Payload.(events.RoomCreatedPayload).Room.ID
	assert.True(t, host.In(socketio_types.RoomGroup(roomID)))

	// Every connection of the joiner hears about the join
	otherTab := newClient("s3")
	f.registry.AddConnection(guest, "bob")
	f.registry.AddConnection(otherTab, "bob")
	HandleJoinRoom(f.rooms, guest, user("bob"))(`{"room_id":"` + roomID + `"}`)
	assert.True(t, guest.In(socketio_types.RoomGroup(roomID)))
	name, payload := guest.Last()
	assert.Equal(t, "room:joined", name)
	assert.Equal(t, []string{"alice", "bob"}, payload.(events.RoomJoinedPayload).Room.PlayerIDs)
	name, _ = otherTab.Last()
	assert.Equal(t, "room:joined", name)
	assert.False(t, otherTab.In(socketio_types.RoomGroup(roomID)))

	HandleRenameRoom(f.rooms, guest, user("bob"))(map[string]any{"room_id": roomID, "name": "Bob's room"})
	_, errPayload := lastError(t, guest)
	assert.Equal(t, 403, errPayload.StatusCode)

	HandleRenameRoom(f.rooms, host, user("alice"))(map[string]any{"room_id": roomID, "name": "Friday lobby"})
	updated := f.recorder.Named("room:updated")
	require.NotEmpty(t, updated)
	assert.Equal(t, "Friday lobby", updated[len(updated)-1].Payload.(events.RoomUpdatedPayload).Room.Name)
	assert.Equal(t, socketio_types.RoomGroup(roomID), updated[len(updated)-1].Group)

	HandleRenameRoom(f.rooms, host, user("alice"))(map[string]any{"room_id": roomID, "name": ""})
	_, errPayload = lastError(t, host)
	assert.Equal(t, 400, errPayload.StatusCode)

	HandleTeamJoin(f.rooms, f.teams, guest, user("bob"))(map[string]any{"room_id": roomID, "team_name": "Blue team"})
	room, err := f.rooms.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	require.Len(t, room.TeamIDs, 1)
	assert.True(t, guest.In(socketio_types.RoomTeamGroup(roomID, room.TeamIDs[0])))
	name, _ = guest.Last()
	assert.Equal(t, "team:history", name)

	HandleLeaveRoom(f.rooms, guest, user("bob"))(map[string]any{"room_id": roomID})
	assert.False(t, guest.In(socketio_types.RoomGroup(roomID)))
	assert.False(t, guest.In(socketio_types.RoomTeamGroup(roomID, room.TeamIDs[0])))
}

func TestRoomHandlerErrors(t *testing.T) {
	f := newFixture(t)
	client := newClient("s1")

	HandleJoinRoom(f.rooms, client, user("bob"))()
	name, payload := lastError(t, client)
	assert.Equal(t, "room:error", name)
	assert.Equal(t, 400, payload.StatusCode)

	HandleJoinRoom(f.rooms, client, user("bob"))(map[string]any{"room_id": "missing"})
	name, payload = lastError(t, client)
	assert.Equal(t, "room:error", name)
	assert.Equal(t, 404, payload.StatusCode)
	assert.False(t, client.In(socketio_types.RoomGroup("missing")))

	HandleCreateRoom(f.rooms, client, user("alice"))(map[string]any{"name": "Lobby"})
	roomID := f.recorder.Named("room:created")[0].Payload.(events.RoomCreatedPayload).Room.ID
	HandleDeleteRoom(f.rooms, newClient("s2"), user("bob"))(map[string]any{"room_id": roomID})
	assert.Len(t, f.recorder.Named("room:deleted"), 0)

	// Team ids are generated by the server and never name other keys
	HandleTeamJoin(f.rooms, f.teams, client, user("alice"))(map[string]any{"room_id": roomID, "team_id": "abc:messages"})
	name, payload = lastError(t, client)
	assert.Equal(t, "team:error", name)
	assert.Equal(t, 400, payload.StatusCode)
	assert.Equal(t, "teamID", payload.Fields[0].Field)
	room, err := f.rooms.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	assert.Empty(t, room.TeamIDs)
}

func TestEventsRequireALiveSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := newClient("s1")
	token, err := f.sessions.CreateSession(ctx, session.Identity{UserID: "alice", Username: "alice", RolePriority: 10}, 0)
	require.NoError(t, err)
	alice, err := f.sessions.VerifyAndExtend(ctx, token)
	require.NoError(t, err)

	gate := NewSessionGate(f.sessions, token, alice, client)
	create := gate.Guard(HandleCreateRoom(f.rooms, client, alice))

	create(map[string]any{"name": "First room"})
	assert.Len(t, f.recorder.Named("room:created"), 1)
	assert.False(t, client.Disconnected())

	require.NoError(t, f.sessions.DeleteSession(ctx, token))
	create(map[string]any{"name": "Second room"})
	assert.Len(t, f.recorder.Named("room:created"), 1)
	name, payload := lastError(t, client)
	assert.Equal(t, "error", name)
	assert.Equal(t, 401, payload.StatusCode)
	assert.True(t, client.Disconnected())

	list, err := f.rooms.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSessionGateSlidesExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redis.NewRedisClientFrom(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	sessions := session.NewManager(store, time.Minute)
	ctx := context.Background()
	token, err := sessions.CreateSession(ctx, session.Identity{UserID: "alice"}, 0)
	require.NoError(t, err)
	alice, err := sessions.GetSession(ctx, token)
	require.NoError(t, err)

	calls := 0
	handler := NewSessionGate(sessions, token, alice, newClient("s1")).Guard(func(args ...interface{}) { calls++ })
	for i := 0; i < 3; i++ {
		mr.FastForward(40 * time.Second)
		handler()
	}
	assert.Equal(t, 3, calls)
	assert.True(t, mr.Exists("session:"+token))
}

func TestGenericTeamHandlers(t *testing.T) {
	f := newFixture(t)
	alice, bob := newClient("s1"), newClient("s2")

	HandleTeamJoin(f.rooms, f.teams, alice, user("alice"))(map[string]any{"team_name": "Readers"})
	created := f.recorder.Named("team:created")
	require.Len(t, created, 1)
	teamID := created[0].Payload.(events.TeamCreatedPayload).Team.ID
	assert.True(t, alice.In(socketio_types.TeamGroup(teamID)))

	HandleTeamJoin(f.rooms, f.teams, bob, user("bob"))(map[string]any{"team_id": teamID})
	assert.True(t, bob.In(socketio_types.TeamGroup(teamID)))

	// Joining again only re-subscribes
	reconnected := newClient("s3")
	HandleTeamJoin(f.rooms, f.teams, reconnected, user("bob"))(map[string]any{"team_id": teamID})
	assert.True(t, reconnected.In(socketio_types.TeamGroup(teamID)))
	name, _ := reconnected.Last()
	assert.Equal(t, "team:history", name)

	limiter := socketio_utils.NewChatLimiter(0, 1)
	f.registry.AddConnection(bob, "bob")
	HandleTeamMessage(f.rooms, f.teams, limiter, bob, user("bob"))(map[string]any{"team_id": teamID, "text": "hello"})
	messages := f.recorder.Named("team:message")
	require.NotEmpty(t, messages)
	last := messages[len(messages)-1]
	assert.Equal(t, socketio_types.TeamGroup(teamID), last.Group)
	assert.Equal(t, bob.Id(), last.Except)
	assert.Equal(t, "hello", last.Payload.(events.TeamMessagePayload).Message.Text)
	// The sender gets its own message back directly
	name, payload := bob.Last()
	assert.Equal(t, "team:message", name)
	assert.Equal(t, "hello", payload.(events.TeamMessagePayload).Message.Text)

	HandleTeamHistory(f.rooms, f.teams, bob, user("bob"))(map[string]any{"team_id": teamID, "limit": 1})
	name, payload = bob.Last()
	assert.Equal(t, "team:history", name)
	require.Len(t, payload.(events.TeamHistoryPayload).Messages, 1)
	assert.Equal(t, "hello", payload.(events.TeamHistoryPayload).Messages[0].Text)

	HandleTeamHistory(f.rooms, f.teams, bob, user("bob"))(map[string]any{"team_id": teamID, "limit": 500})
	name, _ = lastError(t, bob)
	assert.Equal(t, "team:error", name)

	HandleTeamLeave(f.rooms, f.teams, bob, user("bob"))(map[string]any{"team_id": teamID})
	assert.False(t, bob.In(socketio_types.TeamGroup(teamID)))

	HandleTeamJoin(f.rooms, f.teams, bob, user("bob"))(map[string]any{})
	_, errPayload := lastError(t, bob)
	assert.Equal(t, 400, errPayload.StatusCode)
}

func TestTeamMessageIsThrottled(t *testing.T) {
	f := newFixture(t)
	client := newClient("s1")

	HandleTeamJoin(f.rooms, f.teams, client, user("alice"))(map[string]any{"team_name": "Readers"})
	teamID := f.recorder.Named("team:created")[0].Payload.(events.TeamCreatedPayload).Team.ID
	f.recorder.Reset()

	limiter := socketio_utils.NewChatLimiter(0.001, 2)
	send := HandleTeamMessage(f.rooms, f.teams, limiter, client, user("alice"))
	for i := 0; i < 3; i++ {
		send(map[string]any{"team_id": teamID, "text": "spam"})
	}
	assert.Len(t, f.recorder.Named("team:message"), 2)
	name, payload := lastError(t, client)
	assert.Equal(t, "team:error", name)
	assert.Equal(t, "Too many messages", payload.Message)
}

func TestGameHandlers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, guest := newClient("s1"), newClient("s2")

	room, err := f.rooms.CreateRoom(ctx, "alice", "Game room", nil)
	require.NoError(t, err)
	_, err = f.rooms.JoinRoom(ctx, room.ID, "bob")
	require.NoError(t, err)
	red, err := f.rooms.JoinTeam(ctx, room.ID, "", "Red team", "alice", "Alice")
	require.NoError(t, err)
	_, err = f.rooms.JoinTeam(ctx, room.ID, "", "Blue team", "bob", "Bob")
	require.NoError(t, err)

	HandleStartGame(f.games, guest, user("bob"))(map[string]any{"room_id": room.ID})
	name, payload := lastError(t, guest)
	assert.Equal(t, "game:error", name)
	assert.Equal(t, 403, payload.StatusCode)

	HandleStartGame(f.games, host, user("alice"))(map[string]any{"room_id": room.ID})
	started := f.recorder.Named("game:started")
	require.Len(t, started, 1)
	gameID := started[0].Payload.(events.GameStartedPayload).Game.ID

	HandleGuess(f.games, host, user("alice"))(map[string]any{"game_id": gameID, "word_id": "w1"})
	guessed := f.recorder.Named("game:word-guessed")
	require.Len(t, guessed, 1)
	assert.Equal(t, red.Team.ID, guessed[0].Payload.(events.GameWordGuessedPayload).TeamID)

	HandleSkip(f.games, host, user("alice"))(map[string]any{"game_id": gameID})
	_, payload = lastError(t, host)
	assert.Equal(t, 400, payload.StatusCode)

	HandleGameAction(f.games.NextTurn, "TURN", host, user("alice"))(map[string]any{"game_id": gameID})
	assert.Len(t, f.recorder.Named("game:turn-started"), 1)

	HandleGameAction(f.games.Pause, "PAUSE", guest, user("carol"))(map[string]any{"game_id": gameID})
	_, payload = lastError(t, guest)
	assert.Equal(t, 403, payload.StatusCode)

	HandleGameAction(f.games.EndGame, "END", host, user("alice"))(map[string]any{"game_id": gameID})
	ended := f.recorder.Named("game:ended")
	require.Len(t, ended, 1)
	assert.Equal(t, []string{red.Team.ID}, ended[0].Payload.(events.GameEndedPayload).Winners)
}

func TestScoreUpdateRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := newClient("s1")
	require.NoError(t, f.scores.InitRoom(ctx, "r1", []string{"t1"}))

	HandleScoreUpdate(f.scores, 1, client, user("bob"))(map[string]any{"room_id": "r1", "team_id": "t1", "wins": 3})
	_, payload := lastError(t, client)
	assert.Equal(t, 403, payload.StatusCode)

	HandleScoreUpdate(f.scores, 1, client, admin("root"))(map[string]any{"room_id": "r1", "team_id": "t1", "wins": -1})
	_, payload = lastError(t, client)
	assert.Equal(t, 400, payload.StatusCode)

	HandleScoreUpdate(f.scores, 1, client, admin("root"))(map[string]any{"room_id": "r1", "team_id": "t1", "wins": 3})
	score, err := f.scores.GetTeamScore(ctx, "r1", "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, score.Wins)
}

func TestHandleDisconnecting(t *testing.T) {
	f := newFixture(t)
	client := newClient("s1")
	limiter := socketio_utils.NewChatLimiter(1, 1)
	f.registry.AddConnection(client, "alice")
	require.True(t, limiter.Allow(client.Id()))

	HandleDisconnecting(f.registry, limiter, client)("transport close")

	assert.False(t, f.registry.IsUserConnected("alice"))
	assert.Equal(t, 0, f.registry.Count())
	assert.True(t, limiter.Allow(client.Id()))
}
