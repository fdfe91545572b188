package billing

import (
	"bytes"
	"fmt"

	"goldsure-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bills"

var exportHeader = []interface{}{"Bill No", "Name", "Mobile", "Item", "Quantity", "Payment", "Note", "Date"}

// BuildWorkbook writes the bills, in the given order, below a header row.
func BuildWorkbook(logs []models.BillingRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("sheet could not be renamed: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	for i, r := range logs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			r.ID, r.Name, r.Mobile, r.Item, r.Quantity, r.Payment, r.Note,
			r.Date.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("row %d could not be written: %w", i+2, err)
		}
	}

	return f.WriteToBuffer()
}
