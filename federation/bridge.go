package federation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"chat-service/model"
	"chat-service/store"

	"go.uber.org/zap"
)

const (
	userCacheWindow    = 60 * time.Second
	messageCacheWindow = 25 * time.Second

	usersKey    = "users"
	messagesKey = "messages"
)

// Bridge is the best-effort two-way link to the Vortex network. Inbound
// state is pulled on cache timers and never treated as a source of truth
// beyond its refresh window; outbound pushes are fire-and-forget. Every
// failure stays inside this package: callers see stale data or a false
// bool, never an error.
type Bridge struct {
	client *Client
	cache  Cache
	store  *store.Service
	log    *zap.SugaredLogger
	room   string

	mu              sync.Mutex
	usersFetched    time.Time
	messagesFetched time.Time
}

func NewBridge(client *Client, cache Cache, st *store.Service, room string, log *zap.SugaredLogger) *Bridge {
	return &Bridge{
		client: client,
		cache:  cache,
		store:  st,
		log:    log,
		room:   room,
	}
}

// Room returns the local room the bridge mirrors.
func (b *Bridge) Room() string {
	return b.room
}

// Users returns the remote user list as local profiles, refreshing it
// when the 60s window has lapsed. A failed refresh falls back to the
// last-known-good cache, however stale.
func (b *Bridge) Users(ctx context.Context, force bool) []model.Profile {
	var cached []model.Profile
	fresh := b.fresh(&b.usersFetched, userCacheWindow)
	if !force && fresh {
		if b.load(ctx, usersKey, &cached) && len(cached) > 0 {
			return cached
		}
	}

	users, err := b.client.FetchUsers(ctx)
	if err != nil {
		b.log.Warnw("vortex user refresh failed", "err", err)
		b.load(ctx, usersKey, &cached)
		return cached
	}

	b.save(ctx, usersKey, users)
	b.stamp(&b.usersFetched)
	return users
}

// Messages returns the recent remote messages normalized into local
// shape, on a 25s window with the same last-known-good fallback.
func (b *Bridge) Messages(ctx context.Context, force bool) []model.Message {
	var cached []model.Message
	if !force && b.fresh(&b.messagesFetched, messageCacheWindow) {
		if b.load(ctx, messagesKey, &cached) && len(cached) > 0 {
			return cached
		}
	}

	msgs, err := b.client.FetchMessages(ctx, b.room)
	if err != nil {
		b.log.Warnw("vortex message refresh failed", "err", err)
		b.load(ctx, messagesKey, &cached)
		return cached
	}

	b.save(ctx, messagesKey, msgs)
	b.stamp(&b.messagesFetched)
	return msgs
}

// IngestMessages pulls the remote window and persists it idempotently:
// the author snapshot is upserted and the message inserted unless its id
// has been seen before. Already-seen messages are the expected case and
// are not logged.
func (b *Bridge) IngestMessages(ctx context.Context) {
	for _, msg := range b.Messages(ctx, false) {
		author := model.User{
			ID:     msg.UserID,
			Server: b.room,
			Name:   msg.Name,
			Color:  msg.Color,
			Avatar: msg.Avatar,
		}
		if err := b.store.UpsertUser(author); err != nil {
			b.log.Warnw("vortex author upsert failed", "user", msg.UserID, "err", err)
			continue
		}
		msg := msg
		if err := b.store.IngestMessage(&msg); err != nil {
			b.log.Warnw("vortex message ingest failed", "message", msg.ID, "err", err)
		}
	}
}

// Push mirrors a locally authored federated-room message outbound.
func (b *Bridge) Push(ctx context.Context, msg model.Message) bool {
	ok := b.client.Push(ctx, msg)
	if !ok {
		b.log.Warnw("vortex push failed", "message", msg.ID)
	}
	return ok
}

func (b *Bridge) fresh(stamp *time.Time, window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Since(*stamp) < window
}

func (b *Bridge) stamp(stamp *time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	*stamp = time.Now()
}

func (b *Bridge) load(ctx context.Context, key string, out any) bool {
	blob, err := b.cache.Get(ctx, key)
	if err != nil {
		b.log.Warnw("federation cache read failed", "key", key, "err", err)
		return false
	}
	if blob == nil {
		return false
	}
	if err := json.Unmarshal(blob, out); err != nil {
		b.log.Warnw("federation cache decode failed", "key", key, "err", err)
		return false
	}
	return true
}

func (b *Bridge) save(ctx context.Context, key string, value any) {
	blob, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := b.cache.Set(ctx, key, blob); err != nil {
		b.log.Warnw("federation cache write failed", "key", key, "err", err)
	}
}
