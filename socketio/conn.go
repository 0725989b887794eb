package socketio

import (
	"github.com/zishang520/socket.io/v2/socket"
)

// Conn adapts one socket.io socket to the hub's connection surface.
type Conn struct {
	socket *socket.Socket
}

func NewConn(s *socket.Socket) Conn {
	return Conn{socket: s}
}

func (c Conn) ID() string {
	return string(c.socket.Id())
}

func (c Conn) Emit(event string, data ...any) {
	c.socket.Emit(event, data...)
}

func (c Conn) JoinRoom(room string) {
	c.socket.Join(socket.Room(room))
}

func (c Conn) LeaveRoom(room string) {
	c.socket.Leave(socket.Room(room))
}

// BroadcastTo emits to every member of a room except this connection.
func (c Conn) BroadcastTo(room string, event string, data ...any) {
	c.socket.To(socket.Room(room)).Emit(event, data...)
}

// Broadcaster emits to whole rooms, sender included.
type Broadcaster struct {
	server *socket.Server
}

func NewBroadcaster(s *socket.Server) Broadcaster {
	return Broadcaster{server: s}
}

func (b Broadcaster) ToRoom(room string, event string, data ...any) {
	b.server.To(socket.Room(room)).Emit(event, data...)
}
