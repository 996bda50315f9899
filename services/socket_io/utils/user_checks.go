package socketio_utils

import (
	redis_models "Wordrush/models/redis"
	"Wordrush/services/session"
	"Wordrush/utils/apperrors"
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/v2/socket"
)

// TokenFromHandshake looks for the session token in the handshake auth
// object ("token", or "authorization" with an optional Bearer prefix) and
// falls back to the session cookie.
func TokenFromHandshake(handshake *socket.Handshake, cookieName string) string {
	if handshake == nil {
		return ""
	}
	if authData, ok := handshake.Auth.(map[string]any); ok {
		if token, ok := authData["token"].(string); ok && token != "" {
			return token
		}
		if token, ok := authData["authorization"].(string); ok && token != "" {
			return strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
		}
	}

	// Header names are kept as the client sent them
	header := http.Header{}
	for name, values := range handshake.Headers {
		if strings.EqualFold(name, "cookie") {
			header["Cookie"] = append(header["Cookie"], values...)
		}
	}
	cookie, err := (&http.Request{Header: header}).Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// VerifyUserConnection authenticates a socket.io client with its session
// token, sliding the session expiry like any HTTP request does. The token
// is returned so later events can be checked against the same session.
func VerifyUserConnection(ctx context.Context, client *socket.Socket, sessions *session.Manager, cookieName string) (*redis_models.SessionData, string, error) {
	token := TokenFromHandshake(client.Handshake(), cookieName)
	if token == "" {
		log.Warn().Str("socket_id", string(client.Id())).Msg("[AUTH-ERROR] No session token provided in handshake")
		return nil, "", apperrors.ErrUnauthorized
	}
	data, err := sessions.VerifyAndExtend(ctx, token)
	if err != nil {
		log.Warn().Err(err).Str("socket_id", string(client.Id())).Msg("[AUTH-ERROR] Session rejected")
		return nil, "", err
	}
	return data, token, nil
}
