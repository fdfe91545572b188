package models

import "time"

// UsageEvent: stock consumed by a user. Append-only.
// StockItemID may point at a deleted item; deleting stock keeps its history.
type UsageEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	StockItemID uint      `gorm:"index;not null" json:"stock_item_id"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Date        time.Time `gorm:"index;not null" json:"date"`
}
