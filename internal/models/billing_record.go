package models

import "time"

// BillingRecord: a customer bill. Item is free text, not a StockItem reference.
type BillingRecord struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"size:100" json:"name"`
	Mobile   string    `gorm:"size:15" json:"mobile"`
	Item     string    `gorm:"size:100" json:"item"`
	Quantity int       `gorm:"not null" json:"quantity"`
	Payment  float64   `gorm:"not null;default:0" json:"payment"`
	Note     string    `gorm:"size:200" json:"note"`
	Date     time.Time `gorm:"index;not null" json:"date"`
}
