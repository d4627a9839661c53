package post

import (
	"net/url"

	"backend-travelapp/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Post("/", func(c *fiber.Ctx) error {
		var in CreateInput
		if err := c.BodyParser(&in); err != nil {
			return apperr.ErrInvalidPayload
		}
		p, err := svc.Create(c.Context(), callerID(c), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		posts, err := svc.ListByOwner(c.Context(), callerID(c))
		if err != nil {
			return err
		}
		return c.JSON(posts)
	})

	r.Get("/tag/:tag", func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("tag"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid tag")
		}
		posts, err := svc.ListByTag(c.Context(), name)
		if err != nil {
			return err
		}
		return c.JSON(posts)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		p, err := svc.GetByID(c.Context(), c.Params("id"), callerID(c))
		if err != nil {
			return err
		}
		return c.JSON(p)
	})

	r.Put("/:id", func(c *fiber.Ctx) error {
		var in UpdateInput
		if err := c.BodyParser(&in); err != nil {
			return apperr.ErrInvalidPayload
		}
		p, err := svc.Update(c.Context(), c.Params("id"), callerID(c), in)
		if err != nil {
			return err
		}
		return c.JSON(p)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if _, err := svc.Delete(c.Context(), c.Params("id"), callerID(c)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/like", func(c *fiber.Ctx) error {
		p, err := svc.Like(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(p)
	})

	r.Delete("/:id/like", func(c *fiber.Ctx) error {
		p, err := svc.Unlike(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(p)
	})

	r.Delete("/:id/tags/:tag", func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("tag"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid tag")
		}
		removed, err := svc.RemoveTag(c.Context(), c.Params("id"), callerID(c), name)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"removed": removed})
	})
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
