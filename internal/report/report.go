// Package report exports default quotes for a catalog.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Prices"

type Row struct {
	ItemID     string
	Name       string
	Category   string
	Option     string
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Offers     []string
	// MissingOption marks quotes priced without the pricing option their category requires.
	MissingOption bool
}

var headers = []string{
	"Item ID", "Name", "Category", "Option", "Unit Price", "Total Price", "Offers", "Missing Option",
}

func (r Row) values() []interface{} {
	return []interface{}{
		r.ItemID,
		r.Name,
		r.Category,
		r.Option,
		r.UnitPrice.InexactFloat64(),
		r.TotalPrice.InexactFloat64(),
		strings.Join(r.Offers, ", "),
		r.MissingOption,
	}
}

// WritePriceSheet writes rows as an xlsx workbook with a single "Prices" sheet.
func WritePriceSheet(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, r := range rows {
		for col, value := range r.values() {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row+1, err)
			}
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, style)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteCSV writes the same columns as WritePriceSheet, with prices fixed to two decimals.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.ItemID,
			r.Name,
			r.Category,
			r.Option,
			r.UnitPrice.StringFixed(2),
			r.TotalPrice.StringFixed(2),
			strings.Join(r.Offers, ", "),
			fmt.Sprintf("%t", r.MissingOption),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
