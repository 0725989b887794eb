package config

import (
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var load sync.Once

// Config returns the value of an environment variable, loading .env the
// first time it is called. An .env.local file takes precedence when present.
func Config(key string) string {
	load.Do(func() {
		if err := godotenv.Load(".env.local"); err != nil {
			godotenv.Load()
		}
	})
	return os.Getenv(key)
}

func ConfigDefault(key, fallback string) string {
	if value := Config(key); value != "" {
		return value
	}
	return fallback
}

// Room is one chat partition. Every message, presence entry and reaction
// belongs to exactly one room.
type Room struct {
	Key   string
	Label string
}

const defaultRooms = "deblocked:Deblocked Realm,vortex:Vortex Realm"

// Rooms returns the configured room list. The first entry is the default
// room that unknown keys normalize to.
func Rooms() []Room {
	return parseRooms(ConfigDefault("CHAT_ROOMS", defaultRooms))
}

func parseRooms(raw string) []Room {
	var rooms []Room
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, label, found := strings.Cut(part, ":")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if !found || strings.TrimSpace(label) == "" {
			label = key
		}
		rooms = append(rooms, Room{Key: key, Label: strings.TrimSpace(label)})
	}
	if len(rooms) == 0 {
		rooms = parseRooms(defaultRooms)
	}
	return rooms
}

// NormalizeRoom coerces a client-supplied room key to a known one.
func NormalizeRoom(key string) Room {
	rooms := Rooms()
	for _, room := range rooms {
		if room.Key == key {
			return room
		}
	}
	return rooms[0]
}

// FederatedRoom is the room mirrored to the external Vortex network.
func FederatedRoom() string {
	return ConfigDefault("FEDERATED_ROOM", "vortex")
}

func VortexBase() string {
	return ConfigDefault("VORTEX_API_BASE", "https://waveunblockedddd.github.io")
}

func ServerPort() string {
	return ConfigDefault("SERVER_PORT", "8080")
}

func DataDir() string {
	return ConfigDefault("DATA_DIR", "/data")
}

func PublicDir() string {
	return ConfigDefault("PUBLIC_DIR", "public")
}
