package socket_io

import (
	"Wordrush/services/games"
	"Wordrush/services/rooms"
	"Wordrush/services/scores"
	"Wordrush/services/session"
	"Wordrush/services/socket_io/events"
	"Wordrush/services/socket_io/handlers"
	socketio_types "Wordrush/services/socket_io/types"
	socketio_utils "Wordrush/services/socket_io/utils"
	"Wordrush/services/teams"
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type Options struct {
	// Allowed origins, "*" when empty
	Origins        []string
	CookieName     string
	AdminPriority  int
	ChatRatePerSec float64
	ChatRateBurst  int
}

// Services are the orchestration services inbound events are routed to
type Services struct {
	Rooms    *rooms.Service
	Teams    *teams.Service
	Games    *games.Service
	Scores   *scores.Service
	Sessions *session.Manager
}

// SocketServer owns the socket.io server together with the connection
// registry and the broadcaster built on top of it. One instance is created
// at startup.
type SocketServer struct {
	Server      *socket.Server
	Registry    *socketio_types.ConnectionRegistry
	Broadcaster *socketio_types.Broadcaster
	limiter     *socketio_utils.ChatLimiter
	options     Options
}

func NewSocketServer(options Options) *SocketServer {
	server := socket.NewServer(nil, nil)
	registry := socketio_types.NewConnectionRegistry()
	return &SocketServer{
		Server:      server,
		Registry:    registry,
		Broadcaster: socketio_types.NewBroadcaster(registry, &socketio_types.SioTransport{Server: server}),
		limiter:     socketio_utils.NewChatLimiter(options.ChatRatePerSec, options.ChatRateBurst),
		options:     options,
	}
}

func (sio *SocketServer) serverOptions() *socket.ServerOptions {
	c := socket.DefaultServerOptions()
	c.SetServeClient(false)
	// NOTE: generous ping values so slow networks keep their connection
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))

	var origin any = "*"
	if len(sio.options.Origins) > 0 {
		origin = sio.options.Origins
	}
	c.SetCors(&types.Cors{
		Origin:      origin,
		Credentials: true,
	})
	return c
}

// Start authenticates every new connection, binds the inbound events and
// mounts the socket.io endpoint on the router
func (sio *SocketServer) Start(router *gin.Engine, services Services) {
	sio.Server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		user, token, err := socketio_utils.VerifyUserConnection(ctx, client, services.Sessions, sio.options.CookieName)
		cancel()
		if err != nil {
			payload := events.NewError(events.Error, err)
			client.Emit(string(payload.EventName()), payload)
			client.Disconnect(true)
			return
		}

		sio.Registry.AddConnection(client, user.UserID)
		log.Info().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).
			Int("connections", sio.Registry.Count()).Msg("[CONNECT] Client connected")

		// Every inbound event re-checks the session
		gate := handlers.NewSessionGate(services.Sessions, token, user, client)
		on := func(event string, handler func(args ...interface{})) {
			client.On(event, gate.Guard(handler))
		}

		on("room:create", handlers.HandleCreateRoom(services.Rooms, client, user))
		on("room:join", handlers.HandleJoinRoom(services.Rooms, client, user))
		on("room:rename", handlers.HandleRenameRoom(services.Rooms, client, user))
		on("room:leave", handlers.HandleLeaveRoom(services.Rooms, client, user))
		on("room:delete", handlers.HandleDeleteRoom(services.Rooms, client, user))

		on("team:join", handlers.HandleTeamJoin(services.Rooms, services.Teams, client, user))
		on("team:leave", handlers.HandleTeamLeave(services.Rooms, services.Teams, client, user))
		on("team:message", handlers.HandleTeamMessage(services.Rooms, services.Teams, sio.limiter, client, user))
		on("team:history", handlers.HandleTeamHistory(services.Rooms, services.Teams, client, user))

		on("game:start", handlers.HandleStartGame(services.Games, client, user))
		on("game:next-turn", handlers.HandleGameAction(services.Games.NextTurn, "TURN", client, user))
		on("game:next-round", handlers.HandleGameAction(services.Games.NextRound, "ROUND", client, user))
		on("game:pause", handlers.HandleGameAction(services.Games.Pause, "PAUSE", client, user))
		on("game:resume", handlers.HandleGameAction(services.Games.Resume, "RESUME", client, user))
		on("game:end", handlers.HandleGameAction(services.Games.EndGame, "END", client, user))
		on("game:guess", handlers.HandleGuess(services.Games, client, user))
		on("game:skip", handlers.HandleSkip(services.Games, client, user))
		on("score:update", handlers.HandleScoreUpdate(services.Scores, sio.options.AdminPriority, client, user))

		// NOTE: will remove the connection from the registry
		client.On("disconnecting", handlers.HandleDisconnecting(sio.Registry, sio.limiter, client))
	})

	c := sio.serverOptions()
	router.POST("/socket.io/*f", gin.WrapH(sio.Server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Server.ServeHandler(c)))

	log.Info().Msg("[SOCKET] Socket server started")
}

// Close disconnects every client
func (sio *SocketServer) Close() {
	sio.Server.Close(nil)
}
