package controller

import (
	"strconv"

	"chat-service/config"
	"chat-service/presence"
	"chat-service/store"

	"github.com/gofiber/fiber/v2"
)

// Chat serves the read-only HTTP mirrors of the realtime state plus the
// upload endpoint.
type Chat struct {
	Store     *store.Service
	Presence  *presence.Registry
	UploadDir string
}

func NewChat(st *store.Service, reg *presence.Registry, uploadDir string) *Chat {
	return &Chat{Store: st, Presence: reg, UploadDir: uploadDir}
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func Version(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"name": "chat-service", "version": "3.0.0"})
}

// History returns room history over plain HTTP: ?server=&limit=&since=.
func (h *Chat) History(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = 200
	}
	if limit > 500 {
		limit = 500
	}
	since, _ := strconv.ParseInt(c.Query("since"), 10, 64)
	room := config.NormalizeRoom(c.Query("server"))

	rows, err := h.Store.ListMessages(room.Key, since, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "db error"})
	}
	messages := make([]any, 0, len(rows))
	for _, row := range rows {
		enriched, err := h.Store.Enrich(row)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "db error"})
		}
		messages = append(messages, enriched)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// Online returns the live presence list of a room.
func (h *Chat) Online(c *fiber.Ctx) error {
	room := config.NormalizeRoom(c.Query("server"))
	return c.JSON(fiber.Map{"online": h.Presence.List(room.Key)})
}
