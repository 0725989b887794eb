package presence

import (
	"sync"

	"chat-service/model"
)

// Registry is the live per-room presence projection: room -> user id ->
// profile. It is mutated only by the session router (join, leave, room
// switch, settings update) and by federation presence refreshes; the
// users table stays authoritative for profile fields. Entries never
// expire, they are removed by explicit leaves only.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]model.Profile
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]model.Profile)}
}

func (r *Registry) Put(room string, user model.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room]; !ok {
		r.rooms[room] = make(map[string]model.Profile)
	}
	r.rooms[room][user.ID] = user
}

// Merge bulk-adds profiles to a room, used by federation presence refresh.
func (r *Registry) Merge(room string, users []model.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room]; !ok {
		r.rooms[room] = make(map[string]model.Profile)
	}
	for _, user := range users {
		r.rooms[room][user.ID] = user
	}
}

func (r *Registry) Remove(room, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if users, ok := r.rooms[room]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(r.rooms, room)
		}
	}
}

// List returns a snapshot of a room's presence set. Iteration order is
// not meaningful; clients sort for display.
func (r *Registry) List(room string) []model.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.Profile, 0, len(r.rooms[room]))
	for _, user := range r.rooms[room] {
		users = append(users, user)
	}
	return users
}
