package socketio_types

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// Conn is a live client connection. *socket.Socket satisfies it.
type Conn interface {
	Id() socket.SocketId
	Emit(ev string, args ...any) error
}

// ConnectionRegistry tracks live connections by id, plus the connections of
// every authenticated user (one user may have several tabs open). One
// instance is created at startup and shared by every consumer.
type ConnectionRegistry struct {
	// Map to track socket id -> connection
	connections map[socket.SocketId]Conn
	// Map to track user id -> socket ids
	userConnections map[string]map[socket.SocketId]struct{}
	mutex           sync.RWMutex
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		connections:     make(map[socket.SocketId]Conn),
		userConnections: make(map[string]map[socket.SocketId]struct{}),
	}
}

// AddConnection registers conn. An empty userID registers an anonymous
// connection.
func (s *ConnectionRegistry) AddConnection(conn Conn, userID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.connections[conn.Id()] = conn
	if userID == "" {
		return
	}
	ids, ok := s.userConnections[userID]
	if !ok {
		ids = make(map[socket.SocketId]struct{})
		s.userConnections[userID] = ids
	}
	ids[conn.Id()] = struct{}{}
}

// RemoveConnection forgets conn and prunes it from every user entry,
// dropping users left without connections.
func (s *ConnectionRegistry) RemoveConnection(conn Conn) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	id := conn.Id()
	delete(s.connections, id)
	for userID, ids := range s.userConnections {
		if _, ok := ids[id]; !ok {
			continue
		}
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.userConnections, userID)
		}
	}
}

func (s *ConnectionRegistry) GetConnection(id socket.SocketId) (Conn, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	conn, exists := s.connections[id]
	return conn, exists
}

// ConnectionsOf returns the live connections of a user
func (s *ConnectionRegistry) ConnectionsOf(userID string) []Conn {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	ids := s.userConnections[userID]
	conns := make([]Conn, 0, len(ids))
	for id := range ids {
		if conn, ok := s.connections[id]; ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

func (s *ConnectionRegistry) IsUserConnected(userID string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.userConnections[userID]) > 0
}

func (s *ConnectionRegistry) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.connections)
}

func (s *ConnectionRegistry) UserCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.userConnections)
}
