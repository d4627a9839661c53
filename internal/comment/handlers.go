package comment

import (
	"backend-travelapp/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var in CreateInput
		if err := c.BodyParser(&in); err != nil {
			return apperr.ErrInvalidPayload
		}
		comment, err := svc.Create(c.Context(), callerID(c), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})

	r.Get("/post/:postId", func(c *fiber.Ctx) error {
		comments, err := svc.ListByPost(c.Context(), c.Params("postId"))
		if err != nil {
			return err
		}
		return c.JSON(comments)
	})

	r.Get("/user/:userId", func(c *fiber.Ctx) error {
		comments, err := svc.ListByUser(c.Context(), c.Params("userId"))
		if err != nil {
			return err
		}
		return c.JSON(comments)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Content string `json:"content"`
		}
		if err := c.BodyParser(&body); err != nil {
			return apperr.ErrInvalidPayload
		}
		comment, err := svc.Edit(c.Context(), c.Params("id"), callerID(c), body.Content)
		if err != nil {
			return err
		}
		return c.JSON(comment)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id"), callerID(c)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
