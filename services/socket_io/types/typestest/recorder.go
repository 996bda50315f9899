// Package typestest provides an in-memory transport that records every
// emission, for tests of code that broadcasts events.
package typestest

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// Emission is one recorded call. Group is empty for server-wide emits.
type Emission struct {
	Group   string
	Except  socket.SocketId
	Event   string
	Payload any
}

type Recorder struct {
	mutex     sync.Mutex
	emissions []Emission
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(e Emission) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.emissions = append(r.emissions, e)
	return nil
}

func (r *Recorder) EmitToGroup(group string, event string, payload any) error {
	return r.record(Emission{Group: group, Event: event, Payload: payload})
}

func (r *Recorder) EmitToGroupExcept(group string, except socket.SocketId, event string, payload any) error {
	return r.record(Emission{Group: group, Except: except, Event: event, Payload: payload})
}

func (r *Recorder) EmitToAll(event string, payload any) error {
	return r.record(Emission{Event: event, Payload: payload})
}

func (r *Recorder) Emissions() []Emission {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]Emission(nil), r.emissions...)
}

// Named returns the emissions of one event, in order
func (r *Recorder) Named(event string) []Emission {
	var out []Emission
	for _, e := range r.Emissions() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.emissions = nil
}

// Conn is a fake connection that keeps what was emitted to it
type Conn struct {
	ID socket.SocketId

	mutex  sync.Mutex
	events []string
	args   [][]any
}

func NewConn(id string) *Conn {
	return &Conn{ID: socket.SocketId(id)}
}

func (c *Conn) Id() socket.SocketId {
	return c.ID
}

func (c *Conn) Emit(ev string, args ...any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.events = append(c.events, ev)
	c.args = append(c.args, args)
	return nil
}

func (c *Conn) Events() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]string(nil), c.events...)
}

// Last returns the first argument of the last emitted event
func (c *Conn) Last() (string, any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.events) == 0 {
		return "", nil
	}
	args := c.args[len(c.args)-1]
	if len(args) == 0 {
		return c.events[len(c.events)-1], nil
	}
	return c.events[len(c.events)-1], args[0]
}
