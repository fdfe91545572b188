package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"goldsure-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

const (
	EntityStockItem     = "stock_item"
	EntityUsageEvent    = "usage_event"
	EntityBillingRecord = "billing_record"
)

// WriteLog appends an audit entry using db, which is normally the transaction
// that performed the change so both commit or roll back together.
func WriteLog(db *gorm.DB, opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log could not be saved: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first. limit <= 0 means no limit.
func ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]models.AuditLog, error) {
	q := db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("audit logs could not be listed: %w", err)
	}
	return logs, nil
}

// snapshot renders v as JSON, "null" when v is nil or not encodable.
func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
