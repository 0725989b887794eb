package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRooms(t *testing.T) {
	rooms := parseRooms("deblocked:Deblocked Realm,vortex:Vortex Realm")
	require.Len(t, rooms, 2)
	assert.Equal(t, Room{Key: "deblocked", Label: "Deblocked Realm"}, rooms[0])
	assert.Equal(t, Room{Key: "vortex", Label: "Vortex Realm"}, rooms[1])
}

func TestParseRoomsLabelFallsBackToKey(t *testing.T) {
	rooms := parseRooms("lobby, arena : ,:orphan")
	require.Len(t, rooms, 2)
	assert.Equal(t, Room{Key: "lobby", Label: "lobby"}, rooms[0])
	assert.Equal(t, Room{Key: "arena", Label: "arena"}, rooms[1])
}

func TestParseRoomsEmptyUsesDefaults(t *testing.T) {
	rooms := parseRooms("  , ,")
	require.NotEmpty(t, rooms)
	assert.Equal(t, "deblocked", rooms[0].Key)
}

func TestNormalizeRoomUnknownKey(t *testing.T) {
	t.Setenv("CHAT_ROOMS", "lobby:Lobby,arena:Arena")

	assert.Equal(t, "arena", NormalizeRoom("arena").Key)
	assert.Equal(t, "lobby", NormalizeRoom("nebula").Key)
	assert.Equal(t, "lobby", NormalizeRoom("").Key)
}

func TestConfigDefault(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	assert.Equal(t, "8080", ServerPort())

	t.Setenv("SERVER_PORT", "9090")
	assert.Equal(t, "9090", ServerPort())
}
