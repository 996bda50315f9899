package handlers

import (
	socketio_types "Wordrush/services/socket_io/types"
	socketio_utils "Wordrush/services/socket_io/utils"

	"github.com/rs/zerolog/log"
)

// HandleDisconnecting forgets a closing connection. Room and team
// membership is left untouched so a reconnecting client keeps its seat.
func HandleDisconnecting(registry *socketio_types.ConnectionRegistry, limiter *socketio_utils.ChatLimiter,
	client Client) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("socket_id", string(client.Id())).Interface("reason", args).Msg("[DISCONNECT] Client disconnecting")
		registry.RemoveConnection(client)
		limiter.Forget(client.Id())
	}
}
