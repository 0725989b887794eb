package federation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chat-service/model"

	"github.com/google/uuid"
)

const (
	userAgent          = "chat-service/1.0"
	remoteUserLimit    = 200
	remoteMessageLimit = 200
)

// Client talks to the Vortex network over plain HTTP. The remote side is
// independently operated and loosely typed, so every record is coerced
// field by field; nothing it sends is trusted beyond that.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// fetchJSON tries each path in order and returns the first body that
// both arrives and parses.
func (c *Client) fetchJSON(ctx context.Context, paths ...string) ([]map[string]any, error) {
	var lastErr error
	for _, path := range paths {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("vortex: HTTP %d from %s", resp.StatusCode, path)
			continue
		}

		var records []map[string]any
		if err := json.Unmarshal(body, &records); err != nil {
			lastErr = fmt.Errorf("vortex: parse %s: %w", path, err)
			continue
		}
		return records, nil
	}
	return nil, lastErr
}

// FetchUsers pulls the remote user list, normalized to local profiles.
func (c *Client) FetchUsers(ctx context.Context) ([]model.Profile, error) {
	records, err := c.fetchJSON(ctx, "/api/vortex/users.json", "/users.json")
	if err != nil {
		return nil, err
	}
	if len(records) > remoteUserLimit {
		records = records[:remoteUserLimit]
	}

	users := make([]model.Profile, 0, len(records))
	for _, record := range records {
		users = append(users, model.Profile{
			ID:     pick(record, "id", "userId", uuid.NewString()),
			Name:   pick(record, "name", "username", "Vortex User"),
			Avatar: pick(record, "avatar", "photo", ""),
			Color:  pick(record, "color", "", "#60a5fa"),
		})
	}
	return users, nil
}

// FetchMessages pulls the most recent remote messages, normalized into
// local shape for the given room and tagged as remote-origin.
func (c *Client) FetchMessages(ctx context.Context, room string) ([]model.Message, error) {
	records, err := c.fetchJSON(ctx, "/api/vortex/messages.json", "/messages.json")
	if err != nil {
		return nil, err
	}
	if len(records) > remoteMessageLimit {
		records = records[len(records)-remoteMessageLimit:]
	}

	msgs := make([]model.Message, 0, len(records))
	for _, record := range records {
		msgs = append(msgs, model.Message{
			ID:         pick(record, "id", "", uuid.NewString()),
			Server:     room,
			Source:     model.SourceVortexRemote,
			UserID:     pick(record, "userId", "authorId", uuid.NewString()),
			Name:       pick(record, "name", "author", "Vortex User"),
			Color:      pick(record, "color", "", "#3ac8ff"),
			Avatar:     pick(record, "avatar", "photo", ""),
			Text:       pick(record, "text", "message", ""),
			Attachment: pick(record, "attachment", "", ""),
			ReplyTo:    pick(record, "replyTo", "", ""),
			Synced:     true,
			CreatedAt:  pickInt64(record, "createdAt", time.Now().UnixMilli()),
		})
	}
	return msgs, nil
}

// outboundMessage is the flattened shape the remote ingest endpoint takes.
type outboundMessage struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	Text       string `json:"text"`
	Attachment string `json:"attachment,omitempty"`
	ReplyTo    string `json:"replyTo,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
}

// Push mirrors a locally authored message outbound. One attempt, no
// retry; the outcome is a bool, never an error across this boundary.
func (c *Client) Push(ctx context.Context, msg model.Message) bool {
	payload, err := json.Marshal(outboundMessage{
		ID:         msg.ID,
		UserID:     msg.UserID,
		Name:       msg.Name,
		Avatar:     msg.Avatar,
		Text:       msg.Text,
		Attachment: msg.Attachment,
		ReplyTo:    msg.ReplyTo,
		CreatedAt:  msg.CreatedAt,
	})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/vortex/ingest", bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// pick returns the first non-empty string among two alternate keys,
// falling back otherwise. alt may be empty when a field has one name.
func pick(record map[string]any, key, alt, fallback string) string {
	if value, ok := record[key].(string); ok && value != "" {
		return value
	}
	if alt != "" {
		if value, ok := record[alt].(string); ok && value != "" {
			return value
		}
	}
	return fallback
}

func pickInt64(record map[string]any, key string, fallback int64) int64 {
	switch value := record[key].(type) {
	case float64:
		if value > 0 {
			return int64(value)
		}
	case int64:
		if value > 0 {
			return value
		}
	}
	return fallback
}
