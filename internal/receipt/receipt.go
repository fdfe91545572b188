// Package receipt renders billing records as fixed-layout receipts.
package receipt

import (
	"fmt"
	"time"

	"goldsure-backend/internal/models"
)

type Receipt struct {
	Shop     string
	BillNo   uint
	Name     string
	Mobile   string
	Item     string
	Quantity int
	Payment  float64
	Note     string
	Date     time.Time
}

func FromRecord(shop string, rec *models.BillingRecord) Receipt {
	return Receipt{
		Shop:     shop,
		BillNo:   rec.ID,
		Name:     rec.Name,
		Mobile:   rec.Mobile,
		Item:     rec.Item,
		Quantity: rec.Quantity,
		Payment:  rec.Payment,
		Note:     rec.Note,
		Date:     rec.Date,
	}
}

func (r Receipt) Title() string {
	return fmt.Sprintf("%s Inventory Bill", r.Shop)
}

// Lines is the receipt body in print order, title first.
func (r Receipt) Lines() []string {
	return []string{
		r.Title(),
		fmt.Sprintf("Bill No: %d", r.BillNo),
		fmt.Sprintf("Name: %s", r.Name),
		fmt.Sprintf("Mobile: %s", r.Mobile),
		fmt.Sprintf("Item: %s", r.Item),
		fmt.Sprintf("Quantity: %d", r.Quantity),
		fmt.Sprintf("Payment: Rs. %.2f", r.Payment),
		fmt.Sprintf("Note: %s", r.Note),
		fmt.Sprintf("Date: %s", r.Date.Format("2006-01-02 15:04:05")),
	}
}
