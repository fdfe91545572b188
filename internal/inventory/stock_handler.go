package inventory

import (
	"errors"

	"goldsure-backend/internal/auth"
	"goldsure-backend/internal/ledger"
	"goldsure-backend/internal/metrics"
	"goldsure-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// parseStockForm reads the add/edit stock form. Any malformed number fails the
// whole request before the ledger is touched.
func parseStockForm(c *fiber.Ctx) (ledger.StockInput, error) {
	var in ledger.StockInput
	var err error

	in.Name = c.FormValue("item_name")
	if in.Quantity, err = web.FormInt(c, "quantity"); err != nil {
		return in, err
	}
	if in.UnitPrice, err = web.FormFloat(c, "unit_price"); err != nil {
		return in, err
	}
	if in.LowStockThreshold, err = web.FormIntDefault(c, "low_stock_threshold", 5); err != nil {
		return in, err
	}
	return in, nil
}

// POST /add_stock
func AddStockHandler(l *ledger.Ledger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		in, err := parseStockForm(c)
		if err != nil {
			return err
		}

		if _, err := l.AddOrRestock(c.UserContext(), actor, in); err != nil {
			return err
		}
		if in.Quantity > 0 {
			m.StockAdded.Add(float64(in.Quantity))
		}
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
}

// GET /edit_stock/:id
func EditStockFormHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c)
		if err != nil {
			return err
		}
		item, err := l.GetStock(c.UserContext(), id)
		if err != nil {
			return err
		}
		return web.Render(c, fiber.StatusOK, "edit_stock.html", web.EditStockPage{Item: item})
	}
}

// POST /edit_stock/:id
func EditStockHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := web.ParamID(c)
		if err != nil {
			return err
		}
		in, err := parseStockForm(c)
		if err != nil {
			return err
		}

		if _, err := l.EditStock(c.UserContext(), actor, id, in); err != nil {
			return err
		}
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
}

// GET /delete_stock/:id
func DeleteStockHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := web.ParamID(c)
		if err != nil {
			return err
		}

		if err := l.DeleteStock(c.UserContext(), actor, id); err != nil {
			return err
		}
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
}

// POST /use_stock (form: item_id, used_quantity)
// Insufficient stock is answered inline, not with a redirect.
func UseStockHandler(l *ledger.Ledger, m *metrics.Metrics, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		itemID, err := web.FormInt(c, "item_id")
		if err != nil {
			return err
		}
		if itemID <= 0 {
			return fiber.NewError(fiber.StatusNotFound, "Stock item not found")
		}
		qty, err := web.FormInt(c, "used_quantity")
		if err != nil {
			return err
		}

		ev, err := l.ConsumeStock(c.UserContext(), actor, uint(itemID), qty)
		if err != nil {
			if errors.Is(err, ledger.ErrInsufficientStock) {
				m.ConsumeRejected.Inc()
				return c.Status(fiber.StatusConflict).SendString("Not enough stock")
			}
			return err
		}

		m.StockConsumed.Add(float64(ev.Quantity))
		log.Info("stock used",
			zap.Uint("user_id", actor.UserID),
			zap.Uint("item_id", ev.StockItemID),
			zap.Int("quantity", ev.Quantity),
		)
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
}
