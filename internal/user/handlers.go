package user

import (
	"backend-travelapp/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the user endpoints. Sign-up is public; everything
// else requires a token.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req CreateInput
		if err := c.BodyParser(&req); err != nil {
			return apperr.ErrInvalidPayload
		}
		u, err := svc.Create(c.Context(), req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		users, err := svc.List(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(users)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		u, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(u)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req UpdateInput
		if err := c.BodyParser(&req); err != nil {
			return apperr.ErrInvalidPayload
		}
		userID, _ := c.Locals("user_id").(string)
		u, err := svc.Update(c.Context(), c.Params("id"), userID, req)
		if err != nil {
			return err
		}
		return c.JSON(u)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := svc.Delete(c.Context(), c.Params("id"), userID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
