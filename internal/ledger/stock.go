package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"goldsure-backend/internal/audit"
	"goldsure-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockInput carries the fields of the add and edit stock forms.
type StockInput struct {
	Name              string
	Quantity          int
	UnitPrice         float64
	LowStockThreshold int
}

// AddOrRestock merges into the item whose normalized name matches, adding the
// quantity and overwriting price and threshold. Otherwise a new item is created.
func (l *Ledger) AddOrRestock(ctx context.Context, actor Actor, in StockInput) (*models.StockItem, error) {
	name := NormalizeName(in.Name)
	if name == "" {
		return nil, &ValidationError{Field: "item_name", Reason: "must not be empty"}
	}

	// Two concurrent adds of a new name must not create two rows.
	l.restockMu.Lock()
	defer l.restockMu.Unlock()

	var item models.StockItem
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("normalized_name = ?", name).Order("id ASC").First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.StockItem{
				Name:              name,
				NormalizedName:    name,
				Quantity:          in.Quantity,
				UnitPrice:         in.UnitPrice,
				LowStockThreshold: in.LowStockThreshold,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("stock item could not be created: %w", err)
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      actor.UserID,
				UserName:    actor.Name,
				EntityType:  audit.EntityStockItem,
				EntityID:    item.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Added stock: %s x%d", item.Name, item.Quantity),
				After:       item,
			})
		case err != nil:
			return fmt.Errorf("stock lookup failed: %w", err)
		}

		// Increment in SQL so a concurrent ConsumeStock on the same row is not lost.
		before := item
		err = tx.Model(&models.StockItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"quantity":            gorm.Expr("quantity + ?", in.Quantity),
			"unit_price":          in.UnitPrice,
			"low_stock_threshold": in.LowStockThreshold,
		}).Error
		if err != nil {
			return fmt.Errorf("stock item could not be restocked: %w", err)
		}
		if err := tx.First(&item, "id = ?", item.ID).Error; err != nil {
			return fmt.Errorf("stock reload failed: %w", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			UserName:    actor.Name,
			EntityType:  audit.EntityStockItem,
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Restocked: %s +%d (now %d)", item.Name, in.Quantity, item.Quantity),
			Before:      before,
			After:       item,
		})
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (l *Ledger) GetStock(ctx context.Context, id uint) (*models.StockItem, error) {
	var item models.StockItem
	if err := l.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("stock item", id)
		}
		return nil, fmt.Errorf("stock lookup failed: %w", err)
	}
	return &item, nil
}

func (l *Ledger) ListStock(ctx context.Context) ([]models.StockItem, error) {
	var items []models.StockItem
	if err := l.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("stock could not be listed: %w", err)
	}
	return items, nil
}

// EditStock overwrites every field of the item. The name is stored as given.
func (l *Ledger) EditStock(ctx context.Context, actor Actor, id uint, in StockInput) (*models.StockItem, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, &ValidationError{Field: "item_name", Reason: "must not be empty"}
	}

	unlock := l.locks.lock(id)
	defer unlock()

	var item models.StockItem
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("stock item", id)
			}
			return fmt.Errorf("stock lookup failed: %w", err)
		}

		before := item
		item.Name = in.Name
		item.NormalizedName = NormalizeName(in.Name)
		item.Quantity = in.Quantity
		item.UnitPrice = in.UnitPrice
		item.LowStockThreshold = in.LowStockThreshold
		if err := tx.Save(&item).Error; err != nil {
			return fmt.Errorf("stock item could not be updated: %w", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			UserName:    actor.Name,
			EntityType:  audit.EntityStockItem,
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Edited stock: %s", item.Name),
			Before:      before,
			After:       item,
		})
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteStock removes the item. Usage events that reference it are kept.
func (l *Ledger) DeleteStock(ctx context.Context, actor Actor, id uint) error {
	unlock := l.locks.lock(id)
	defer unlock()

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.StockItem
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("stock item", id)
			}
			return fmt.Errorf("stock lookup failed: %w", err)
		}
		if err := tx.Delete(&models.StockItem{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("stock item could not be deleted: %w", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			UserName:    actor.Name,
			EntityType:  audit.EntityStockItem,
			EntityID:    item.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Deleted stock: %s", item.Name),
			Before:      item,
		})
	})
}

// ConsumeStock deducts quantity from the item and appends a UsageEvent in one
// transaction. Requests above the on-hand quantity fail with
// *InsufficientStockError and change nothing.
func (l *Ledger) ConsumeStock(ctx context.Context, actor Actor, itemID uint, quantity int) (*models.UsageEvent, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Field: "used_quantity", Value: fmt.Sprint(quantity), Reason: "must be positive"}
	}

	unlock := l.locks.lock(itemID)
	defer unlock()

	var event models.UsageEvent
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var accounts int64
		if err := tx.Model(&models.User{}).Where("id = ?", actor.UserID).Count(&accounts).Error; err != nil {
			return fmt.Errorf("account lookup failed: %w", err)
		}
		if accounts == 0 {
			return notFound("account", actor.UserID)
		}

		var item models.StockItem
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("stock item", itemID)
			}
			return fmt.Errorf("stock lookup failed: %w", err)
		}
		if item.Quantity < quantity {
			return &InsufficientStockError{ItemID: itemID, Requested: quantity, Available: item.Quantity}
		}

		// The guard keeps the invariant even against writers outside this process.
		res := tx.Model(&models.StockItem{}).
			Where("id = ? AND quantity >= ?", itemID, quantity).
			Update("quantity", gorm.Expr("quantity - ?", quantity))
		if res.Error != nil {
			return fmt.Errorf("stock could not be decremented: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &InsufficientStockError{ItemID: itemID, Requested: quantity, Available: item.Quantity}
		}

		event = models.UsageEvent{
			UserID:      actor.UserID,
			StockItemID: itemID,
			Quantity:    quantity,
			Date:        l.now(),
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("usage event could not be recorded: %w", err)
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			UserName:    actor.Name,
			EntityType:  audit.EntityUsageEvent,
			EntityID:    event.ID,
			Action:      models.AuditActionConsume,
			Description: fmt.Sprintf("Used stock: %s -%d (now %d)", item.Name, quantity, item.Quantity-quantity),
			After:       event,
		})
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			l.log.Info("consume rejected", zap.Uint("item_id", itemID), zap.Int("requested", quantity), zap.Error(err))
		}
		return nil, err
	}
	return &event, nil
}
