package auth

import (
	"errors"
	"time"

	"goldsure-backend/internal/config"
	"goldsure-backend/internal/ledger"
	"goldsure-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GET /
func IndexHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenStr := c.Cookies(SessionCookie); tokenStr != "" {
			if _, err := ParseToken(cfg.SessionSecret, tokenStr); err == nil {
				return c.Redirect("/dashboard", fiber.StatusSeeOther)
			}
		}
		return web.Render(c, fiber.StatusOK, "login.html", web.LoginPage{})
	}
}

// POST /login (form: email, password, remember)
func LoginHandler(cfg *config.Config, l *ledger.Ledger, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.FormValue("email")
		password := c.FormValue("password")
		remember := c.FormValue("remember") != ""

		user, err := l.Authenticate(c.UserContext(), email, password)
		if err != nil {
			if errors.Is(err, ledger.ErrInvalidCredentials) {
				log.Info("login rejected", zap.String("email", email))
				return web.Render(c, fiber.StatusUnauthorized, "login.html", web.LoginPage{
					Error: "Invalid credentials",
					Email: email,
				})
			}
			return err
		}

		now := time.Now()
		ttl := SessionTTL
		if remember {
			ttl = RememberTTL
		}
		token, err := GenerateToken(cfg.SessionSecret, user, ttl, now)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Session could not be created")
		}

		cookie := &fiber.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		}
		if remember {
			cookie.Expires = now.Add(RememberTTL)
		}
		c.Cookie(cookie)

		log.Info("login", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)), zap.Bool("remember", remember))
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
}

// GET /logout
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.ClearCookie(SessionCookie)
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}
