package controller

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	maxAttachmentBytes = 10 << 20
	maxAvatarBytes     = 5 << 20
)

var attachmentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// Avatars allow everything attachments do except GIF.
var avatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// Upload accepts one multipart image, validates it by sniffed content
// type rather than the client-declared one, stores it under a generated
// name and returns its relative URL. ?kind=avatar tightens the limits.
func (h *Chat) Upload(c *fiber.Ctx) error {
	limit := int64(maxAttachmentBytes)
	allowed := attachmentTypes
	if c.Query("kind") == "avatar" {
		limit = maxAvatarBytes
		allowed = avatarTypes
	}

	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}
	if header.Size > limit {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "File too large"})
	}

	file, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Upload error"})
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Upload error"})
	}
	if int64(len(data)) > limit {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "File too large"})
	}

	mtype := mimetype.Detect(data)
	if !allowed[mtype.String()] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported file type"})
	}

	name := uuid.NewString() + mtype.Extension()
	if err := os.WriteFile(filepath.Join(h.UploadDir, name), data, 0o644); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Upload error"})
	}
	return c.JSON(fiber.Map{"url": "/uploads/" + name})
}
