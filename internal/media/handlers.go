package media

import (
	"strings"
	"time"

	"backend-travelapp/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/upload", authMiddleware, func(c *fiber.Ctx) error {
		var body UploadRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.ErrInvalidPayload
		}
		obj, err := svc.SaveObject(c.Context(), callerID(c), body.FileName, Kind(strings.ToUpper(body.Kind)))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(UploadResponse{
			ID:        obj.ID,
			URL:       obj.URL,
			ExpiresAt: time.Now().Add(UploadTTL),
		})
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		objs, err := svc.List(c.Context(), callerID(c))
		if err != nil {
			return err
		}
		return c.JSON(objs)
	})
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
