package location

import (
	"context"
	"net/url"

	"backend-travelapp/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Input
		if err := c.BodyParser(&req); err != nil {
			return apperr.ErrInvalidPayload
		}
		loc, err := svc.Create(c.Context(), req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		locations, err := svc.List(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(locations)
	})

	r.Get("/city/:city", search(svc.ByCity, "city"))
	r.Get("/region/:region", search(svc.ByRegion, "region"))
	r.Get("/country/:country", search(svc.ByCountry, "country"))
	r.Get("/description/:description", search(svc.ByDescription, "description"))

	r.Get("/:id", func(c *fiber.Ctx) error {
		loc, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(loc)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var patch Patch
		if err := c.BodyParser(&patch); err != nil {
			return apperr.ErrInvalidPayload
		}
		loc, err := svc.Update(c.Context(), c.Params("id"), patch)
		if err != nil {
			return err
		}
		return c.JSON(loc)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// search answers 404 when nothing matches.
func search(find func(context.Context, string) ([]Location, error), param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value, err := url.PathUnescape(c.Params(param))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid "+param)
		}
		locations, err := find(c.Context(), value)
		if err != nil {
			return err
		}
		if len(locations) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "no locations found for "+param)
		}
		return c.JSON(locations)
	}
}
