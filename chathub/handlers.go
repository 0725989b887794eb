package chathub

import (
	"context"
	"time"

	"chat-service/model"

	"github.com/google/uuid"
)

// JoinAck is the acknowledgment for a successful join.
type JoinAck struct {
	OK          bool            `json:"ok"`
	User        model.Profile   `json:"user"`
	Server      string          `json:"server"`
	ServerLabel string          `json:"serverLabel"`
	Online      []model.Profile `json:"online"`
}

// SendAck is the acknowledgment for a persisted message.
type SendAck struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// UserJoinedEvent is the presence:user-joined broadcast payload.
type UserJoinedEvent struct {
	User model.Profile `json:"user"`
}

// UserLeftEvent is the presence:user-left broadcast payload.
type UserLeftEvent struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// ReactionsEvent is the message:reactions broadcast payload.
type ReactionsEvent struct {
	MessageID string             `json:"messageId"`
	Reactions model.ReactionView `json:"reactions"`
}

// TypingEvent is the presence:typing broadcast payload.
type TypingEvent struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	IsTyping bool   `json:"isTyping"`
}

// Join binds a connection to a profile and room. A connection already
// bound to a different room is fully removed from the old one first:
// presence entry dropped, leave and "switched" system message broadcast,
// refreshed presence list sent. Join only fails when storage does.
func (h *Hub) Join(ctx context.Context, c Conn, p JoinPayload) (*JoinAck, error) {
	room := h.normalizeRoom(p.Server)
	user := model.Profile{ID: p.ID, Name: p.Name, Color: p.Color, Avatar: p.Avatar}

	h.mu.Lock()
	existing := h.sessions[c.ID()]
	if existing != nil && existing.room.Key != room.Key {
		old := *existing
		h.mu.Unlock()
		h.leaveRoom(c, old, old.user.Name+" switched realms")
		h.mu.Lock()
	}
	limiter := newLimiter()
	if existing != nil {
		limiter = existing.limiter
	}
	h.sessions[c.ID()] = &session{user: user, room: room, limiter: limiter}
	h.mu.Unlock()

	c.JoinRoom(room.Key)
	h.presence.Put(room.Key, user)

	if err := h.store.UpsertUser(model.User{
		ID:       user.ID,
		Server:   room.Key,
		Name:     user.Name,
		Color:    user.Color,
		Avatar:   user.Avatar,
		LastSeen: time.Now().UnixMilli(),
	}); err != nil {
		h.log.Errorw("join: user upsert failed", "user", user.ID, "err", err)
		return nil, err
	}

	if room.Key == h.federation.Room() {
		go h.refreshFederatedPresence(room.Key)
		go h.federation.IngestMessages(context.Background())
	}

	history, err := h.store.History(room.Key, 250)
	if err != nil {
		h.log.Errorw("join: history load failed", "room", room.Key, "err", err)
		return nil, err
	}
	c.Emit("history", history)

	online := h.presence.List(room.Key)
	h.broadcaster.ToRoom(room.Key, "presence:list", online)
	c.BroadcastTo(room.Key, "presence:user-joined", UserJoinedEvent{User: user})
	h.broadcaster.ToRoom(room.Key, "message:new", systemMessage(user.Name+" joined", room.Key))

	return &JoinAck{
		OK:          true,
		User:        user,
		Server:      room.Key,
		ServerLabel: room.Label,
		Online:      online,
	}, nil
}

// refreshFederatedPresence merges the remote user list into the
// federated room's presence set and re-broadcasts the list. Detached
// from the join handler; remote failures surface as a stale merge.
func (h *Hub) refreshFederatedPresence(room string) {
	users := h.federation.Users(context.Background(), false)
	if len(users) == 0 {
		return
	}
	h.presence.Merge(room, users)
	h.broadcaster.ToRoom(room, "presence:list", h.presence.List(room))
}

// Send validates, persists and broadcasts one message. The broadcast
// happens only after persistence, so room order always matches store
// order. For the federated room the outbound mirror runs detached: a
// failed push flips the stored synced flag and nothing else.
func (h *Hub) Send(ctx context.Context, c Conn, p SendPayload) (*SendAck, error) {
	sess := h.session(c.ID())
	if sess == nil {
		return nil, model.ErrNotJoined
	}
	if !sess.limiter.Allow() {
		return nil, model.ErrRateLimited
	}
	if p.Text == "" && p.Attachment == "" {
		return nil, model.ErrEmptyMessage
	}

	source := sess.room.Key
	if sess.room.Key == h.federation.Room() {
		source = model.SourceVortexLocal
	}
	msg := model.Message{
		ID:         uuid.NewString(),
		Server:     sess.room.Key,
		Source:     source,
		UserID:     sess.user.ID,
		Name:       sess.user.Name,
		Color:      sess.user.Color,
		Avatar:     sess.user.Avatar,
		Text:       p.Text,
		Attachment: p.Attachment,
		ReplyTo:    p.ReplyTo,
		Synced:     true,
		CreatedAt:  time.Now().UnixMilli(),
	}

	if err := h.store.SaveMessage(&msg); err != nil {
		h.log.Errorw("message:send persist failed", "err", err)
		return nil, model.ErrSaveFailed
	}
	enriched, err := h.store.Enrich(msg)
	if err != nil {
		h.log.Errorw("message:send enrich failed", "message", msg.ID, "err", err)
		return nil, model.ErrSaveFailed
	}

	h.broadcaster.ToRoom(sess.room.Key, "message:new", enriched)

	if sess.room.Key == h.federation.Room() {
		go h.pushOutbound(msg)
	}
	return &SendAck{OK: true, ID: msg.ID}, nil
}

func (h *Hub) pushOutbound(msg model.Message) {
	if h.federation.Push(context.Background(), msg) {
		return
	}
	if err := h.store.MarkSynced(msg.ID, false); err != nil {
		h.log.Errorw("synced flag update failed", "message", msg.ID, "err", err)
	}
}

// React toggles a (message, user, emoji) reaction and broadcasts the
// recomputed view. Read-then-write with no lock: a lost race degrades to
// a timestamp refresh via the unique triple, which is the intended
// behavior.
func (h *Hub) React(ctx context.Context, c Conn, p ReactPayload) error {
	sess := h.session(c.ID())
	if sess == nil {
		return model.ErrNotJoined
	}
	if p.MessageID == "" || p.Emoji == "" {
		return model.ErrInvalidReaction
	}

	exists, err := h.store.ReactionExists(p.MessageID, sess.user.ID, p.Emoji)
	if err != nil {
		h.log.Errorw("reaction lookup failed", "message", p.MessageID, "err", err)
		return model.ErrReactionFailed
	}
	if exists {
		err = h.store.DeleteReaction(p.MessageID, sess.user.ID, p.Emoji)
	} else {
		err = h.store.UpsertReaction(model.Reaction{
			ID:        uuid.NewString(),
			MessageID: p.MessageID,
			UserID:    sess.user.ID,
			Server:    sess.room.Key,
			Emoji:     p.Emoji,
		})
	}
	if err != nil {
		h.log.Errorw("reaction toggle failed", "message", p.MessageID, "err", err)
		return model.ErrReactionFailed
	}

	view, err := h.store.ReactionView(p.MessageID)
	if err != nil {
		h.log.Errorw("reaction view rebuild failed", "message", p.MessageID, "err", err)
		return model.ErrReactionFailed
	}
	h.broadcaster.ToRoom(sess.room.Key, "message:reactions", ReactionsEvent{
		MessageID: p.MessageID,
		Reactions: view,
	})
	return nil
}

// History re-sends the caller's room history, capped at 500 entries.
func (h *Hub) History(ctx context.Context, c Conn, limit int) (int, error) {
	sess := h.session(c.ID())
	if sess == nil {
		return 0, model.ErrNotJoined
	}
	if limit <= 0 {
		limit = 250
	}
	if limit > 500 {
		limit = 500
	}
	history, err := h.store.History(sess.room.Key, limit)
	if err != nil {
		return 0, err
	}
	c.Emit("history", history)
	return len(history), nil
}

// Pull fetches one message by id regardless of the caller's room and
// delivers its enriched form to the requester only. Used to backfill
// reply targets the client has not seen yet.
func (h *Hub) Pull(ctx context.Context, c Conn, id string) error {
	if id == "" {
		return model.ErrMissingMessage
	}
	msg, err := h.store.MessageByID(id)
	if err != nil {
		return model.ErrMissingMessage
	}
	enriched, err := h.store.Enrich(*msg)
	if err != nil {
		return err
	}
	c.Emit("message:update", enriched)
	return nil
}

// UpdateSettings applies a partial profile update to the session, the
// presence entry and the users table, then announces the new profile to
// the room.
func (h *Hub) UpdateSettings(ctx context.Context, c Conn, p SettingsPayload) (*model.Profile, error) {
	h.mu.Lock()
	sess := h.sessions[c.ID()]
	if sess == nil {
		h.mu.Unlock()
		return nil, model.ErrNotJoined
	}
	if p.Name != nil {
		sess.user.Name = *p.Name
	}
	if p.Color != nil {
		sess.user.Color = *p.Color
	}
	if p.Avatar != nil {
		sess.user.Avatar = *p.Avatar
	}
	user := sess.user
	room := sess.room.Key
	h.mu.Unlock()

	h.presence.Put(room, user)
	if err := h.store.UpsertUser(model.User{
		ID:       user.ID,
		Server:   room,
		Name:     user.Name,
		Color:    user.Color,
		Avatar:   user.Avatar,
		LastSeen: time.Now().UnixMilli(),
	}); err != nil {
		h.log.Errorw("settings: user upsert failed", "user", user.ID, "err", err)
		return nil, err
	}

	h.broadcaster.ToRoom(room, "presence:user-updated", UserJoinedEvent{User: user})
	return &user, nil
}

// Typing forwards an ephemeral typing signal to the other room members.
// Never persisted, never acknowledged.
func (h *Hub) Typing(c Conn, isTyping bool) {
	sess := h.session(c.ID())
	if sess == nil {
		return
	}
	c.BroadcastTo(sess.room.Key, "presence:typing", TypingEvent{
		UserID:   sess.user.ID,
		Name:     sess.user.Name,
		IsTyping: isTyping,
	})
}

// Disconnect tears the session down and tells the former room.
func (h *Hub) Disconnect(c Conn) {
	sess := h.takeSession(c.ID())
	if sess == nil {
		return
	}
	h.leaveRoom(c, *sess, sess.user.Name+" left")
}

// leaveRoom removes a user from a room and broadcasts the departure, the
// given system message and the refreshed presence list.
func (h *Hub) leaveRoom(c Conn, sess session, announce string) {
	c.LeaveRoom(sess.room.Key)
	h.presence.Remove(sess.room.Key, sess.user.ID)
	h.broadcaster.ToRoom(sess.room.Key, "presence:user-left", UserLeftEvent{
		UserID: sess.user.ID,
		Name:   sess.user.Name,
	})
	h.broadcaster.ToRoom(sess.room.Key, "message:new", systemMessage(announce, sess.room.Key))
	h.broadcaster.ToRoom(sess.room.Key, "presence:list", h.presence.List(sess.room.Key))
}
