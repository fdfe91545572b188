package ledger

import (
	"context"
	"errors"
	"fmt"

	"goldsure-backend/internal/audit"
	"goldsure-backend/internal/models"

	"gorm.io/gorm"
)

type BillingInput struct {
	Name     string
	Mobile   string
	Item     string
	Quantity int
	Payment  float64
	Note     string
}

// RecordBilling appends a bill. Receipt rendering is left to the caller so a
// rendering failure can never undo the stored record. Resubmitting the same
// form creates a second bill.
func (l *Ledger) RecordBilling(ctx context.Context, actor Actor, in BillingInput) (*models.BillingRecord, error) {
	rec := models.BillingRecord{
		Name:     in.Name,
		Mobile:   in.Mobile,
		Item:     in.Item,
		Quantity: in.Quantity,
		Payment:  in.Payment,
		Note:     in.Note,
		Date:     l.now(),
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("bill could not be recorded: %w", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.UserID,
			UserName:    actor.Name,
			EntityType:  audit.EntityBillingRecord,
			EntityID:    rec.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Bill #%d: %s x%d, Rs. %.2f", rec.ID, rec.Item, rec.Quantity, rec.Payment),
			After:       rec,
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (l *Ledger) GetBilling(ctx context.Context, id uint) (*models.BillingRecord, error) {
	var rec models.BillingRecord
	if err := l.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("bill", id)
		}
		return nil, fmt.Errorf("bill lookup failed: %w", err)
	}
	return &rec, nil
}

// ListBillingLog returns every bill, newest first.
func (l *Ledger) ListBillingLog(ctx context.Context) ([]models.BillingRecord, error) {
	var logs []models.BillingRecord
	if err := l.db.WithContext(ctx).Order("date DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("bills could not be listed: %w", err)
	}
	return logs, nil
}
