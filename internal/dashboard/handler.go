package dashboard

import (
	"goldsure-backend/internal/auth"
	"goldsure-backend/internal/ledger"
	"goldsure-backend/internal/models"
	"goldsure-backend/internal/web"

	"github.com/gofiber/fiber/v2"
)

// GET /dashboard
// Owners get usage history and low-stock alerts; staff get stock and bills only.
func DashboardHandler(l *ledger.Ledger, restrictStockWrites bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := auth.Session(c)
		if !ok {
			return c.Redirect("/", fiber.StatusSeeOther)
		}

		d, err := l.ListDashboard(c.UserContext(), claims.Role)
		if err != nil {
			return err
		}

		page := web.DashboardPage{
			UserName:     claims.Name,
			CanEditStock: !restrictStockWrites || claims.Role == models.RoleOwner,
			Dashboard:    d,
		}
		if claims.Role == models.RoleOwner {
			return web.Render(c, fiber.StatusOK, "owner_dashboard.html", page)
		}
		return web.Render(c, fiber.StatusOK, "staff_dashboard.html", page)
	}
}

// GET /api/dashboard
func DashboardJSONHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := auth.Session(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Session not found")
		}
		d, err := l.ListDashboard(c.UserContext(), claims.Role)
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}
