package ledger

import (
	"context"
	"fmt"
	"time"

	"goldsure-backend/internal/audit"
	"goldsure-backend/internal/models"
)

// UsageRow is a usage event joined with the consuming account and item names.
// Names are empty when the referenced row no longer exists.
type UsageRow struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	StockItemID uint      `json:"stock_item_id"`
	Quantity    int       `json:"quantity"`
	Date        time.Time `json:"date"`
	UserName    string    `json:"user_name"`
	ItemName    string    `json:"item_name"`
}

type Dashboard struct {
	Role     models.UserRole        `json:"role"`
	Stock    []models.StockItem     `json:"stock"`
	Logs     []models.BillingRecord `json:"logs"`
	Usage    []UsageRow             `json:"usage,omitempty"`
	LowStock []models.StockItem     `json:"low_stock_items,omitempty"`
}

// ListDashboard builds the dashboard for role. Usage history and low-stock
// alerts are only filled in for owners.
func (l *Ledger) ListDashboard(ctx context.Context, role models.UserRole) (*Dashboard, error) {
	if !role.Valid() {
		return nil, &ValidationError{Field: "role", Value: string(role), Reason: "unknown role"}
	}

	stock, err := l.ListStock(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := l.ListBillingLog(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Role: role, Stock: stock, Logs: logs}
	if role != models.RoleOwner {
		return d, nil
	}

	d.Usage, err = l.listUsage(ctx)
	if err != nil {
		return nil, err
	}
	d.LowStock = LowStock(stock)
	return d, nil
}

// LowStock filters items whose quantity is below their threshold.
func LowStock(items []models.StockItem) []models.StockItem {
	low := make([]models.StockItem, 0)
	for _, it := range items {
		if it.IsLow() {
			low = append(low, it)
		}
	}
	return low
}

func (l *Ledger) listUsage(ctx context.Context) ([]UsageRow, error) {
	rows := make([]UsageRow, 0)
	err := l.db.WithContext(ctx).
		Table("usage_events AS u").
		Select("u.id, u.user_id, u.stock_item_id, u.quantity, u.date, " +
			"COALESCE(a.name, '') AS user_name, COALESCE(s.name, '') AS item_name").
		Joins("LEFT JOIN users AS a ON a.id = u.user_id").
		Joins("LEFT JOIN stock_items AS s ON s.id = u.stock_item_id").
		Order("u.date DESC, u.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("usage could not be listed: %w", err)
	}
	return rows, nil
}

// AuditTrail returns the newest audit entries first.
func (l *Ledger) AuditTrail(ctx context.Context, limit int) ([]models.AuditLog, error) {
	return audit.ListRecent(ctx, l.db, limit)
}
