package chathub

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field ceilings, enforced before any domain entity is built.
const (
	maxNameLen       = 64
	maxColorLen      = 32
	maxAvatarLen     = 512
	maxTextLen       = 4000
	maxAttachmentLen = 2048
)

const (
	defaultName  = "Guest"
	defaultColor = "#7b61ff"
)

// JoinPayload is the coerced join request.
type JoinPayload struct {
	ID     string
	Name   string
	Color  string
	Avatar string
	Server string
}

// SendPayload is the coerced message:send request.
type SendPayload struct {
	Text       string
	Attachment string
	ReplyTo    string
}

// ReactPayload is the coerced message:react request.
type ReactPayload struct {
	MessageID string
	Emoji     string
}

// SettingsPayload is the coerced settings:update request. Nil fields
// were absent from the wire and stay untouched.
type SettingsPayload struct {
	Name   *string
	Color  *string
	Avatar *string
}

// The wire hands handlers decoded JSON, so payloads arrive as
// map[string]any with whatever shapes the client chose. Everything is
// coerced and truncated here; nothing past this file trusts a
// client-declared type or length.

func asMap(raw any) map[string]any {
	if m, ok := raw.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func field(m map[string]any, key string) (string, bool) {
	value, ok := m[key].(string)
	return value, ok
}

// truncate caps a string at max characters, never splitting a rune.
func truncate(value string, max int) string {
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	return string([]rune(value)[:max])
}

func coerce(m map[string]any, key, fallback string, max int) string {
	value, ok := field(m, key)
	if !ok || value == "" {
		value = fallback
	}
	return truncate(value, max)
}

// ParseJoin coerces a join payload, generating an identity for clients
// that present none.
func ParseJoin(raw any) JoinPayload {
	m := asMap(raw)
	id, _ := field(m, "id")
	if id == "" {
		id = uuid.NewString()
	}
	server, _ := field(m, "server")
	return JoinPayload{
		ID:     id,
		Name:   coerce(m, "name", defaultName, maxNameLen),
		Color:  coerce(m, "color", defaultColor, maxColorLen),
		Avatar: coerce(m, "avatar", "", maxAvatarLen),
		Server: server,
	}
}

func ParseSend(raw any) SendPayload {
	m := asMap(raw)
	p := SendPayload{
		Text: coerce(m, "text", "", maxTextLen),
	}
	if attachment, ok := m["attachment"].(map[string]any); ok {
		p.Attachment = coerce(attachment, "url", "", maxAttachmentLen)
	}
	p.ReplyTo, _ = field(m, "replyTo")
	return p
}

func ParseReact(raw any) ReactPayload {
	m := asMap(raw)
	p := ReactPayload{}
	p.MessageID, _ = field(m, "messageId")
	p.Emoji, _ = field(m, "emoji")
	return p
}

// ParseSettings coerces a partial settings update. A name that is empty
// or whitespace does not count as present.
func ParseSettings(raw any) SettingsPayload {
	m := asMap(raw)
	p := SettingsPayload{}
	if name, ok := field(m, "name"); ok && strings.TrimSpace(name) != "" {
		value := truncate(name, maxNameLen)
		p.Name = &value
	}
	if color, ok := field(m, "color"); ok {
		value := truncate(color, maxColorLen)
		p.Color = &value
	}
	if avatar, ok := field(m, "avatar"); ok {
		value := truncate(avatar, maxAvatarLen)
		p.Avatar = &value
	}
	return p
}
