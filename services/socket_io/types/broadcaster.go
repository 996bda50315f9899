package socketio_types

import (
	"Wordrush/services/socket_io/events"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/v2/socket"
)

// Transport delivers events to groups. Group membership itself is kept by
// the transport (socket.io rooms).
type Transport interface {
	EmitToGroup(group string, event string, payload any) error
	EmitToGroupExcept(group string, except socket.SocketId, event string, payload any) error
	EmitToAll(event string, payload any) error
}

// SioTransport adapts a socket.io server. Every socket is automatically a
// member of the room named after its id, which is what Except relies on.
type SioTransport struct {
	Server *socket.Server
}

func (t *SioTransport) EmitToGroup(group string, event string, payload any) error {
	return t.Server.To(socket.Room(group)).Emit(event, payload)
}

func (t *SioTransport) EmitToGroupExcept(group string, except socket.SocketId, event string, payload any) error {
	return t.Server.To(socket.Room(group)).Except(socket.Room(except)).Emit(event, payload)
}

func (t *SioTransport) EmitToAll(event string, payload any) error {
	t.Server.Emit(event, payload)
	return nil
}

// Broadcaster fans typed events out. Emission is fire-and-forget: failures
// are logged, never returned.
type Broadcaster struct {
	registry  *ConnectionRegistry
	transport Transport
}

func NewBroadcaster(registry *ConnectionRegistry, transport Transport) *Broadcaster {
	return &Broadcaster{registry: registry, transport: transport}
}

func (b *Broadcaster) Registry() *ConnectionRegistry {
	return b.registry
}

// EmitToClient drops the event when the connection is gone
func (b *Broadcaster) EmitToClient(id socket.SocketId, ev events.Event) {
	conn, ok := b.registry.GetConnection(id)
	if !ok {
		log.Warn().Str("socket_id", string(id)).Str("event", string(ev.EventName())).
			Msg("[BROADCAST] Connection not found, dropping event")
		return
	}
	if err := conn.Emit(string(ev.EventName()), ev); err != nil {
		log.Error().Err(err).Str("socket_id", string(id)).Msg("[BROADCAST] Error emitting to client")
	}
}

func (b *Broadcaster) EmitToUser(userID string, ev events.Event) {
	conns := b.registry.ConnectionsOf(userID)
	if len(conns) == 0 {
		log.Debug().Str("user_id", userID).Str("event", string(ev.EventName())).
			Msg("[BROADCAST] User has no live connections")
		return
	}
	for _, conn := range conns {
		if err := conn.Emit(string(ev.EventName()), ev); err != nil {
			log.Error().Err(err).Str("user_id", userID).Str("socket_id", string(conn.Id())).
				Msg("[BROADCAST] Error emitting to user")
		}
	}
}

func (b *Broadcaster) EmitToGroup(group string, ev events.Event) {
	log.Debug().Str("group", group).Msg("[BROADCAST] " + events.Describe(ev))
	if err := b.transport.EmitToGroup(group, string(ev.EventName()), ev); err != nil {
		log.Error().Err(err).Str("group", group).Msg("[BROADCAST] Error emitting to group")
	}
}

func (b *Broadcaster) EmitToGroupExcept(group string, except socket.SocketId, ev events.Event) {
	log.Debug().Str("group", group).Str("except", string(except)).Msg("[BROADCAST] " + events.Describe(ev))
	if err := b.transport.EmitToGroupExcept(group, except, string(ev.EventName()), ev); err != nil {
		log.Error().Err(err).Str("group", group).Msg("[BROADCAST] Error emitting to group")
	}
}

// EmitToGroupFrom sends ev to a group on behalf of the origin connection.
// The origin always gets ev, even when it does not listen to the group.
// An empty origin is a plain group emit.
func (b *Broadcaster) EmitToGroupFrom(group string, origin socket.SocketId, ev events.Event) {
	if origin == "" {
		b.EmitToGroup(group, ev)
		return
	}
	b.EmitToGroupExcept(group, origin, ev)
	b.EmitToClient(origin, ev)
}

func (b *Broadcaster) EmitToAll(ev events.Event) {
	if err := b.transport.EmitToAll(string(ev.EventName()), ev); err != nil {
		log.Error().Err(err).Msg("[BROADCAST] Error emitting to all")
	}
}
