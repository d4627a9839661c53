package auth

import (
	"strings"

	"backend-travelapp/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireUser.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
)

// RequireUser rejects requests without a valid access token and exposes the
// bearer's identity to later handlers through c.Locals.
func (s *Service) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.identityFromRequest(c)
		if err != nil {
			return err
		}
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalUsername, id.Username)
		return c.Next()
	}
}

func (s *Service) identityFromRequest(c *fiber.Ctx) (Identity, error) {
	token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return Identity{}, apperr.ErrUnauthenticated
	}
	return s.ValidateAccessToken(token)
}

// bearerToken extracts the credentials of an "Authorization: Bearer x" header.
// The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
