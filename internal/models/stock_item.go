package models

import (
	"strings"
	"time"
)

const DefaultLowStockThreshold = 5

// StockItem: a tracked good. Items created through AddOrRestock keep the
// normalized (trimmed, lower-cased) name. NormalizedName is the restock match
// key and is rewritten whenever Name changes.
type StockItem struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:100;not null" json:"name"`
	NormalizedName    string    `gorm:"size:100;not null;default:'';index" json:"-"`
	Quantity          int       `gorm:"not null" json:"quantity"`
	UnitPrice         float64   `gorm:"not null" json:"unit_price"`
	LowStockThreshold int       `gorm:"not null;default:5" json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NormalizeStockName trims surrounding whitespace and lower-cases the name.
func NormalizeStockName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s StockItem) IsLow() bool {
	return s.Quantity < s.LowStockThreshold
}
