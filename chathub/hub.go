package chathub

import (
	"context"
	"sync"
	"time"

	"chat-service/config"
	"chat-service/model"
	"chat-service/presence"
	"chat-service/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Minimum interval between accepted messages on one connection.
const sendInterval = 250 * time.Millisecond

// Conn is one live client connection as the hub sees it. The socket.io
// socket satisfies it in production; tests substitute a mock.
type Conn interface {
	ID() string
	// Emit sends an event to this connection only.
	Emit(event string, data ...any)
	JoinRoom(room string)
	LeaveRoom(room string)
	// BroadcastTo sends an event to every other member of a room.
	BroadcastTo(room string, event string, data ...any)
}

// Broadcaster sends an event to every member of a room, sender included.
type Broadcaster interface {
	ToRoom(room string, event string, data ...any)
}

// Federation is the hub's view of the bridge to the external network.
type Federation interface {
	Room() string
	Users(ctx context.Context, force bool) []model.Profile
	IngestMessages(ctx context.Context)
	Push(ctx context.Context, msg model.Message) bool
}

// session binds one connection to a user and a room. The hub owns these
// exclusively; one exists per active connection and dies with it.
type session struct {
	user    model.Profile
	room    config.Room
	limiter *rate.Limiter
}

// Hub is the session router: it tracks connection-to-identity-to-room
// bindings, dispatches protocol events, and fans state changes out to
// room members. Handlers for different connections run concurrently;
// events on one connection arrive one at a time.
type Hub struct {
	store       *store.Service
	presence    *presence.Registry
	federation  Federation
	broadcaster Broadcaster
	rooms       []config.Room
	log         *zap.SugaredLogger

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewHub(st *store.Service, reg *presence.Registry, fed Federation, bc Broadcaster, rooms []config.Room, log *zap.SugaredLogger) *Hub {
	return &Hub{
		store:       st,
		presence:    reg,
		federation:  fed,
		broadcaster: bc,
		rooms:       rooms,
		log:         log,
		sessions:    make(map[string]*session),
	}
}

func (h *Hub) session(connID string) *session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[connID]
}

func (h *Hub) takeSession(connID string) *session {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess := h.sessions[connID]
	delete(h.sessions, connID)
	return sess
}

func (h *Hub) normalizeRoom(key string) config.Room {
	for _, room := range h.rooms {
		if room.Key == key {
			return room
		}
	}
	return h.rooms[0]
}

func newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(sendInterval), 1)
}

func systemMessage(text, server string) model.SystemMessage {
	return model.SystemMessage{
		ID:        uuid.NewString(),
		System:    true,
		Text:      text,
		Server:    server,
		CreatedAt: time.Now().UnixMilli(),
	}
}
