package middleware

import (
	"context"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the session cookie carrying the JWT.
const CookieName = "jwt"

const userKey = "user"

// Authenticator resolves a token to its user. *services.AuthService
// implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Protect requires a valid token, read from the session cookie or, failing
// that, an "Authorization: Bearer <token>" header. The resolved user is
// stored for CurrentUser.
func Protect(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			return apperr.Unauthorized("Not authorized, no token")
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// OptionalAuth resolves the user when a valid token is present and carries
// on anonymously otherwise.
func OptionalAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := tokenFrom(c); token != "" {
			if user, err := auth.Authenticate(c.UserContext(), token); err == nil {
				c.Locals(userKey, user)
			}
		}
		return c.Next()
	}
}

// AdminOnly must run after Protect.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if u := CurrentUser(c); u == nil || !u.IsAdmin {
			return apperr.Forbidden("Not authorized as an admin")
		}
		return c.Next()
	}
}

// SellerOnly must run after Protect.
func SellerOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if u := CurrentUser(c); u == nil || !u.IsSeller {
			return apperr.Forbidden("Not authorized as a seller")
		}
		return c.Next()
	}
}

// AdminOrSeller must run after Protect.
func AdminOrSeller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if u := CurrentUser(c); u == nil || !(u.IsAdmin || u.IsSeller) {
			return apperr.Forbidden("Not authorized as an admin or seller")
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

func tokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies(CookieName); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
