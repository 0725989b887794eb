package store_test

import (
	"testing"
	"time"

	"chat-service/database"
	"chat-service/model"
	"chat-service/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *store.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.Migrate(db)
	return store.NewService(db)
}

func TestUpsertUserRefreshesProfile(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertUser(model.User{ID: "u1", Server: "deblocked", Name: "Ada", Color: "#111"}))
	require.NoError(t, s.UpsertUser(model.User{ID: "u1", Server: "vortex", Name: "Ada L", Color: "#222"}))

	users, err := s.UsersByIDs([]string{"u1"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ada L", users[0].Name)
	assert.Equal(t, "vortex", users[0].Server)
	assert.Equal(t, "#222", users[0].Color)
}

func TestSaveMessageRoundTrip(t *testing.T) {
	s := newTestStore(t)

	msg := model.Message{
		ID:         "m1",
		Server:     "deblocked",
		Source:     "deblocked",
		UserID:     "u1",
		Name:       "Ada",
		Color:      "#7b61ff",
		Avatar:     "/uploads/a.png",
		Text:       "hello",
		Attachment: "/uploads/pic.png",
		ReplyTo:    "m0",
		Synced:     true,
		CreatedAt:  time.Now().UnixMilli(),
	}
	require.NoError(t, s.SaveMessage(&msg))

	got, err := s.MessageByID("m1")
	require.NoError(t, err)
	assert.Equal(t, msg.Text, got.Text)
	assert.Equal(t, msg.Attachment, got.Attachment)
	assert.Equal(t, msg.ReplyTo, got.ReplyTo)
	assert.Equal(t, msg.Author(), got.Author())
}

func TestIngestMessageIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	msg := model.Message{ID: "r1", Server: "vortex", Source: model.SourceVortexRemote, Text: "hi", CreatedAt: 100}
	require.NoError(t, s.IngestMessage(&msg))

	again := model.Message{ID: "r1", Server: "vortex", Source: model.SourceVortexRemote, Text: "changed", CreatedAt: 200}
	require.NoError(t, s.IngestMessage(&again))

	got, err := s.MessageByID("r1")
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Text, "re-ingestion must not overwrite the first copy")
}

func TestListMessagesOrderAndLimit(t *testing.T) {
	s := newTestStore(t)

	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.SaveMessage(&model.Message{
			ID: id, Server: "deblocked", Text: id, CreatedAt: int64(100 + i),
		}))
	}
	require.NoError(t, s.SaveMessage(&model.Message{ID: "other", Server: "vortex", Text: "x", CreatedAt: 50}))

	msgs, err := s.ListMessages("deblocked", 100, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "b", msgs[0].ID)
	assert.Equal(t, "c", msgs[1].ID)
}

func TestMarkSynced(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveMessage(&model.Message{ID: "m1", Server: "vortex", Text: "hi", Synced: true, CreatedAt: 1}))
	require.NoError(t, s.MarkSynced("m1", false))

	got, err := s.MessageByID("m1")
	require.NoError(t, err)
	assert.False(t, got.Synced)
}

func TestReactionToggleParity(t *testing.T) {
	s := newTestStore(t)

	reaction := model.Reaction{ID: "r1", MessageID: "m1", UserID: "u1", Server: "deblocked", Emoji: "👍"}

	// odd number of toggles leaves one row
	require.NoError(t, s.UpsertReaction(reaction))
	exists, err := s.ReactionExists("m1", "u1", "👍")
	require.NoError(t, err)
	assert.True(t, exists)

	// even number leaves zero
	require.NoError(t, s.DeleteReaction("m1", "u1", "👍"))
	exists, err = s.ReactionExists("m1", "u1", "👍")
	require.NoError(t, err)
	assert.False(t, exists)

	rows, err := s.ReactionsByMessage("m1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpsertReactionDuplicateRefreshesTimestamp(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertReaction(model.Reaction{
		ID: "r1", MessageID: "m1", UserID: "u1", Server: "deblocked", Emoji: "👍", CreatedAt: 100,
	}))
	// the losing side of the toggle race inserts the same triple again
	require.NoError(t, s.UpsertReaction(model.Reaction{
		ID: "r2", MessageID: "m1", UserID: "u1", Server: "deblocked", Emoji: "👍", CreatedAt: 200,
	}))

	rows, err := s.ReactionsByMessage("m1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(200), rows[0].CreatedAt)
}
