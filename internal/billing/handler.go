package billing

import (
	"strings"

	"goldsure-backend/internal/auth"
	"goldsure-backend/internal/ledger"
	"goldsure-backend/internal/metrics"
	"goldsure-backend/internal/receipt"
	"goldsure-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// parseBillForm reads the bill form. quantity is required; payment defaults to
// 0 only when it is left empty.
func parseBillForm(c *fiber.Ctx) (ledger.BillingInput, error) {
	in := ledger.BillingInput{
		Name:   strings.TrimSpace(c.FormValue("name")),
		Mobile: strings.TrimSpace(c.FormValue("mobile")),
		Item:   strings.TrimSpace(c.FormValue("item")),
		Note:   strings.TrimSpace(c.FormValue("note")),
	}

	var err error
	if in.Quantity, err = web.FormInt(c, "quantity"); err != nil {
		return in, err
	}
	if in.Payment, err = web.FormFloatDefault(c, "payment", 0); err != nil {
		return in, err
	}
	return in, nil
}

// POST /log_usage
// The bill is stored first; the receipt is rendered afterwards and a render
// failure only gets logged, GET /bills/:id/receipt.png retries it.
func LogUsageHandler(l *ledger.Ledger, store *receipt.Store, m *metrics.Metrics, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		in, err := parseBillForm(c)
		if err != nil {
			return err
		}

		rec, err := l.RecordBilling(c.UserContext(), actor, in)
		if err != nil {
			return err
		}
		m.BillsRecorded.Inc()

		if _, err := store.Render(rec); err != nil {
			m.ReceiptFailures.WithLabelValues("png").Inc()
			log.Warn("receipt render failed", zap.Uint("bill_id", rec.ID), zap.Error(err))
		}
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
}

// GET /bills
func ListBillsHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logs, err := l.ListBillingLog(c.UserContext())
		if err != nil {
			return err
		}
		return web.Render(c, fiber.StatusOK, "bills.html", web.BillsPage{Logs: logs})
	}
}

// GET /bills/:id/receipt.png
func ReceiptPNGHandler(l *ledger.Ledger, store *receipt.Store, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c)
		if err != nil {
			return err
		}
		rec, err := l.GetBilling(c.UserContext(), id)
		if err != nil {
			return err
		}

		path, err := store.Ensure(rec)
		if err != nil {
			m.ReceiptFailures.WithLabelValues("png").Inc()
			return err
		}
		c.Type("png")
		return c.SendFile(path)
	}
}

// GET /bills/:id/receipt.pdf
func ReceiptPDFHandler(l *ledger.Ledger, store *receipt.Store, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c)
		if err != nil {
			return err
		}
		rec, err := l.GetBilling(c.UserContext(), id)
		if err != nil {
			return err
		}

		b, err := receipt.RenderPDF(receipt.FromRecord(store.Shop(), rec))
		if err != nil {
			m.ReceiptFailures.WithLabelValues("pdf").Inc()
			return err
		}
		c.Type("pdf")
		c.Attachment(strings.TrimSuffix(store.Path(rec.ID), ".png") + ".pdf")
		return c.Send(b)
	}
}

// GET /bills/export.xlsx
func ExportBillsHandler(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logs, err := l.ListBillingLog(c.UserContext())
		if err != nil {
			return err
		}
		buf, err := BuildWorkbook(logs)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Attachment("bills.xlsx")
		return c.Send(buf.Bytes())
	}
}
