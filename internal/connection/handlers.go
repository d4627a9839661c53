package connection

import (
	"backend-travelapp/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Post("/", func(c *fiber.Ctx) error {
		var body struct {
			FollowingUserID string `json:"following_user_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return apperr.ErrInvalidPayload
		}
		conn, err := svc.Follow(c.Context(), callerID(c), body.FollowingUserID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(conn)
	})

	r.Post("/:id/accept", func(c *fiber.Ctx) error {
		conn, err := svc.Accept(c.Context(), c.Params("id"), callerID(c))
		if err != nil {
			return err
		}
		return c.JSON(conn)
	})

	r.Post("/:id/reject", func(c *fiber.Ctx) error {
		conn, err := svc.Reject(c.Context(), c.Params("id"), callerID(c))
		if err != nil {
			return err
		}
		return c.JSON(conn)
	})

	r.Delete("/following/:userId", func(c *fiber.Ctx) error {
		removed, err := svc.Unfollow(c.Context(), callerID(c), c.Params("userId"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"removed": removed})
	})

	r.Get("/followers/:userId", func(c *fiber.Ctx) error {
		conns, err := svc.ListFollowers(c.Context(), c.Params("userId"))
		if err != nil {
			return err
		}
		return c.JSON(conns)
	})

	r.Get("/following/:userId", func(c *fiber.Ctx) error {
		conns, err := svc.ListFollowing(c.Context(), c.Params("userId"))
		if err != nil {
			return err
		}
		return c.JSON(conns)
	})

	r.Get("/pending", func(c *fiber.Ctx) error {
		conns, err := svc.ListPending(c.Context(), callerID(c))
		if err != nil {
			return err
		}
		return c.JSON(conns)
	})
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
