package handlers

import (
	redis_models "Wordrush/models/redis"
	"Wordrush/services/socket_io/events"
	"Wordrush/utils/apperrors"
	"context"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/v2/socket"
)

// SessionVerifier is satisfied by *session.Manager
type SessionVerifier interface {
	VerifyAndExtend(ctx context.Context, token string) (*redis_models.SessionData, error)
}

// ClosableClient is a connection the server can drop
type ClosableClient interface {
	Client
	Disconnect(status bool) *socket.Socket
}

// SessionGate re-checks the handshake session before every inbound event,
// so a socket stops acting once its session is gone and an active socket
// keeps its session alive.
type SessionGate struct {
	sessions SessionVerifier
	token    string
	userID   string
	client   ClosableClient
}

func NewSessionGate(sessions SessionVerifier, token string, user *redis_models.SessionData, client ClosableClient) *SessionGate {
	return &SessionGate{sessions: sessions, token: token, userID: user.UserID, client: client}
}

// Guard runs handler only while the session is still valid. An invalid
// session closes the connection.
func (g *SessionGate) Guard(handler func(args ...interface{})) func(args ...interface{}) {
	return func(args ...interface{}) {
		ctx, cancel := eventContext()
		data, err := g.sessions.VerifyAndExtend(ctx, g.token)
		cancel()
		if err == nil && data.UserID != g.userID {
			err = apperrors.ErrUnauthorized
		}
		if err != nil {
			emitError(g.client, events.Error, "AUTH", err)
			if apperrors.KindOf(err) == apperrors.KindUnauthorized {
				log.Info().Str("user_id", g.userID).Str("socket_id", string(g.client.Id())).
					Msg("[AUTH] Session gone, closing connection")
				g.client.Disconnect(true)
			}
			return
		}
		handler(args...)
	}
}
