package router

import (
	"time"

	"chat-service/controller"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func Rest(app *fiber.App, chat *controller.Chat, publicDir, uploadDir string) {
	api := app.Group("/", logger.New())

	api.Get("/health", controller.Health)
	api.Get("/version", controller.Version)

	// Chat reads mirrored over plain HTTP
	api.Get("/history", chat.History)
	api.Get("/online", chat.Online)

	// Uploads
	api.Post("/upload", chat.Upload)

	app.Static("/", publicDir, fiber.Static{
		MaxAge: int((365 * 24 * time.Hour).Seconds()),
	})
	app.Static("/uploads", uploadDir, fiber.Static{
		ModifyResponse: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return nil
		},
	})
}
