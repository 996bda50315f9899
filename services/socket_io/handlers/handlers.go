package handlers

/**
 * Handlers for the events clients send over socket.io. Each handler is a
 * closure bound to one connection and its authenticated session: it decodes
 * and validates the payload, calls the orchestration service and manages
 * the socket.io rooms the connection listens to. Failures are answered to
 * the caller only, on the error event of the domain.
 */

import (
	"Wordrush/services/socket_io/events"
	"Wordrush/utils/apperrors"
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/v2/socket"
)

// Client is the connection a handler is bound to. *socket.Socket
// satisfies it.
type Client interface {
	Id() socket.SocketId
	Emit(ev string, args ...any) error
	Join(rooms ...socket.Room)
	Leave(room socket.Room)
}

const eventTimeout = 10 * time.Second

func eventContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), eventTimeout)
}

// emitError answers a failed action to the caller. Unexpected errors are
// logged in full and masked in the payload.
func emitError(client Client, name events.Name, tag string, err error) {
	logEvent := log.Info()
	if apperrors.KindOf(err) == apperrors.KindUnexpected {
		logEvent = log.Error()
	}
	logEvent.Err(err).Str("socket_id", string(client.Id())).Msgf("[%s-ERROR] Action failed", tag)

	payload := events.NewError(name, err)
	if emitErr := client.Emit(string(payload.EventName()), payload); emitErr != nil {
		log.Error().Err(emitErr).Str("socket_id", string(client.Id())).Msg("[EMIT-ERROR] Error answering client")
	}
}

// reply sends an event to the caller only
func reply(client Client, ev events.Event) {
	if err := client.Emit(string(ev.EventName()), ev); err != nil {
		log.Error().Err(err).Str("socket_id", string(client.Id())).Msg("[EMIT-ERROR] Error answering client")
	}
}

var errForbiddenScore = apperrors.ErrForbidden.WithMessage("Only admins can update scores")
