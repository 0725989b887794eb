package federation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"chat-service/database"
	"chat-service/model"
	"chat-service/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memCache is an in-process Cache for tests.
type memCache struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{blobs: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	blob, ok := c.blobs[key]
	if !ok {
		return nil, nil
	}
	return blob, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blobs[key] = value
	return nil
}

func newTestStore(t *testing.T) *store.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.Migrate(db)
	return store.NewService(db)
}

func newTestBridge(t *testing.T, base string) *Bridge {
	t.Helper()
	return NewBridge(NewClient(base), newMemCache(), newTestStore(t), "vortex", zap.NewNop().Sugar())
}

func TestUsersServedFromCacheWithinWindow(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		serveJSON(t, w, []map[string]any{{"id": "a1", "name": "Alpha"}})
	}))
	defer server.Close()

	bridge := newTestBridge(t, server.URL)

	users := bridge.Users(context.Background(), false)
	require.Len(t, users, 1)
	users = bridge.Users(context.Background(), false)
	require.Len(t, users, 1)
	assert.EqualValues(t, 1, hits.Load())

	// force bypasses the window
	bridge.Users(context.Background(), true)
	assert.EqualValues(t, 2, hits.Load())
}

func TestUsersFailureFallsBackToLastKnownGood(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		serveJSON(t, w, []map[string]any{{"id": "a1", "name": "Alpha"}})
	}))
	defer server.Close()

	bridge := newTestBridge(t, server.URL)
	require.Len(t, bridge.Users(context.Background(), true), 1)

	fail.Store(true)
	users := bridge.Users(context.Background(), true)
	require.Len(t, users, 1) // stale beats empty
	assert.Equal(t, "a1", users[0].ID)
}

func TestUsersFailureWithEmptyCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	bridge := newTestBridge(t, server.URL)
	assert.Empty(t, bridge.Users(context.Background(), true))
}

func TestMessagesFailureFallsBackToLastKnownGood(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		serveJSON(t, w, []map[string]any{{"id": "m1", "text": "hi"}})
	}))
	defer server.Close()

	bridge := newTestBridge(t, server.URL)
	require.Len(t, bridge.Messages(context.Background(), true), 1)

	fail.Store(true)
	msgs := bridge.Messages(context.Background(), true)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}

func TestIngestMessagesIsIdempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveJSON(t, w, []map[string]any{
			{"id": "m1", "userId": "a1", "name": "Alpha", "text": "one"},
			{"id": "m2", "userId": "a1", "name": "Alpha", "text": "two"},
		})
	}))
	defer server.Close()

	st := newTestStore(t)
	bridge := NewBridge(NewClient(server.URL), newMemCache(), st, "vortex", zap.NewNop().Sugar())

	bridge.IngestMessages(context.Background())
	bridge.IngestMessages(context.Background())

	var count int64
	require.NoError(t, st.DB.Model(&model.Message{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	saved, err := st.MessageByID("m1")
	require.NoError(t, err)
	assert.Equal(t, model.SourceVortexRemote, saved.Source)
	assert.Equal(t, "vortex", saved.Server)

	var author model.User
	require.NoError(t, st.DB.First(&author, "id = ?", "a1").Error)
	assert.Equal(t, "Alpha", author.Name)
}
