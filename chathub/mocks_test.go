package chathub_test

import (
	"context"
	"sync"
	"testing"

	"chat-service/chathub"
	"chat-service/config"
	"chat-service/database"
	"chat-service/model"
	"chat-service/presence"
	"chat-service/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type emit struct {
	room  string
	event string
	data  []any
}

// mockConn records everything the hub sends through one connection.
type mockConn struct {
	id string

	mu         sync.Mutex
	emits      []emit
	broadcasts []emit
	rooms      map[string]bool
}

func newMockConn(id string) *mockConn {
	return &mockConn{id: id, rooms: make(map[string]bool)}
}

func (c *mockConn) ID() string { return c.id }

func (c *mockConn) Emit(event string, data ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emits = append(c.emits, emit{event: event, data: data})
}

func (c *mockConn) JoinRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room] = true
}

func (c *mockConn) LeaveRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, room)
}

func (c *mockConn) BroadcastTo(room string, event string, data ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcasts = append(c.broadcasts, emit{room: room, event: event, data: data})
}

func (c *mockConn) emitted(event string) []emit {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []emit
	for _, e := range c.emits {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func (c *mockConn) broadcast(event string) []emit {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []emit
	for _, e := range c.broadcasts {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

// mockBroadcaster records whole-room emits.
type mockBroadcaster struct {
	mu    sync.Mutex
	emits []emit
}

func (b *mockBroadcaster) ToRoom(room string, event string, data ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emits = append(b.emits, emit{room: room, event: event, data: data})
}

func (b *mockBroadcaster) sent(room, event string) []emit {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []emit
	for _, e := range b.emits {
		if e.room == room && e.event == event {
			out = append(out, e)
		}
	}
	return out
}

// mockFederation stands in for the vortex bridge.
type mockFederation struct {
	room   string
	users  []model.Profile
	pushOK bool

	mu      sync.Mutex
	pushed  []model.Message
	ingests int
}

func newMockFederation() *mockFederation {
	return &mockFederation{room: "vortex", pushOK: true}
}

func (f *mockFederation) Room() string { return f.room }

func (f *mockFederation) Users(ctx context.Context, force bool) []model.Profile {
	return f.users
}

func (f *mockFederation) IngestMessages(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ingests++
}

func (f *mockFederation) Push(ctx context.Context, msg model.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, msg)
	return f.pushOK
}

func (f *mockFederation) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushed)
}

func (f *mockFederation) ingestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ingests
}

var testRooms = []config.Room{
	{Key: "deblocked", Label: "Deblocked Realm"},
	{Key: "vortex", Label: "Vortex Realm"},
}

func newTestHub(t *testing.T, fed *mockFederation) (*chathub.Hub, *store.Service, *presence.Registry, *mockBroadcaster) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.Migrate(db)

	st := store.NewService(db)
	reg := presence.NewRegistry()
	bc := &mockBroadcaster{}
	hub := chathub.NewHub(st, reg, fed, bc, testRooms, zap.NewNop().Sugar())
	return hub, st, reg, bc
}
