package server

import (
	"goldsure-backend/internal/audit"
	"goldsure-backend/internal/auth"
	"goldsure-backend/internal/billing"
	"goldsure-backend/internal/config"
	"goldsure-backend/internal/dashboard"
	"goldsure-backend/internal/inventory"
	"goldsure-backend/internal/ledger"
	"goldsure-backend/internal/logger"
	"goldsure-backend/internal/metrics"
	"goldsure-backend/internal/models"
	"goldsure-backend/internal/receipt"
	"goldsure-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Ledger   *ledger.Ledger
	Receipts *receipt.Store
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

// NewApp builds the fiber app with every route registered.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	log := d.Log

	app := fiber.New(fiber.Config{
		ErrorHandler: web.ErrorHandler(logger.Named(log, "http")),
	})
	app.Use(recover.New())
	app.Use(logger.FiberMiddleware(log))

	app.Get("/metrics", d.Metrics.Handler())

	// Public
	app.Get("/", auth.IndexHandler(cfg))
	app.Post("/login", auth.LoginHandler(cfg, d.Ledger, logger.Named(log, "auth")))
	app.Get("/logout", auth.LogoutHandler())

	// Session required
	protected := app.Group("", auth.SessionMiddleware(cfg))

	protected.Get("/dashboard", dashboard.DashboardHandler(d.Ledger, cfg.RestrictStockWrites))
	protected.Get("/api/dashboard", dashboard.DashboardJSONHandler(d.Ledger))

	// Stock writes are open to every account unless RESTRICT_STOCK_WRITES is set.
	stockWrite := func(h fiber.Handler) []fiber.Handler {
		if cfg.RestrictStockWrites {
			return []fiber.Handler{auth.RequireRole(models.RoleOwner), h}
		}
		return []fiber.Handler{h}
	}
	protected.Post("/add_stock", stockWrite(inventory.AddStockHandler(d.Ledger, d.Metrics))...)
	protected.Get("/edit_stock/:id", stockWrite(inventory.EditStockFormHandler(d.Ledger))...)
	protected.Post("/edit_stock/:id", stockWrite(inventory.EditStockHandler(d.Ledger))...)
	protected.Get("/delete_stock/:id", stockWrite(inventory.DeleteStockHandler(d.Ledger))...)

	protected.Post("/use_stock", inventory.UseStockHandler(d.Ledger, d.Metrics, logger.Named(log, "inventory")))

	// Bills
	protected.Post("/log_usage", billing.LogUsageHandler(d.Ledger, d.Receipts, d.Metrics, logger.Named(log, "billing")))
	protected.Get("/bills", billing.ListBillsHandler(d.Ledger))
	protected.Get("/bills/export.xlsx", auth.RequireRole(models.RoleOwner), billing.ExportBillsHandler(d.Ledger))
	protected.Get("/bills/:id/receipt.png", billing.ReceiptPNGHandler(d.Ledger, d.Receipts, d.Metrics))
	protected.Get("/bills/:id/receipt.pdf", billing.ReceiptPDFHandler(d.Ledger, d.Receipts, d.Metrics))

	protected.Get("/audit_logs", auth.RequireRole(models.RoleOwner), audit.ListAuditLogsHandler(d.DB))

	protected.Static("/static", "./static")

	return app
}
