package auth

import (
	"goldsure-backend/internal/config"
	"goldsure-backend/internal/ledger"
	"goldsure-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookie = "goldsure_session"

	ctxSessionKey = "session"
)

// SessionMiddleware requires a valid session cookie. Requests without one are
// sent back to the login page.
func SessionMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(SessionCookie)
		if tokenStr == "" {
			return c.Redirect("/", fiber.StatusSeeOther)
		}

		claims, err := ParseToken(cfg.SessionSecret, tokenStr)
		if err != nil {
			c.ClearCookie(SessionCookie)
			return c.Redirect("/", fiber.StatusSeeOther)
		}

		c.Locals(ctxSessionKey, claims)
		return c.Next()
	}
}

// Session returns the claims stored by SessionMiddleware.
func Session(c *fiber.Ctx) (*SessionClaims, bool) {
	claims, ok := c.Locals(ctxSessionKey).(*SessionClaims)
	return claims, ok && claims != nil
}

// ActorFrom converts the request's session into the ledger's acting account.
func ActorFrom(c *fiber.Ctx) (ledger.Actor, error) {
	claims, ok := Session(c)
	if !ok {
		return ledger.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "Session not found")
	}
	return ledger.Actor{UserID: claims.UserID, Name: claims.Name, Role: claims.Role}, nil
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := Session(c)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Role information missing")
		}

		for _, r := range allowedRoles {
			if r == claims.Role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to do this")
	}
}
