package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRows() []Row {
	return []Row{
		{
			ItemID:     "pack-1",
			Name:       "Menu Duo et Burger",
			Category:   "special_pack",
			Option:     "M",
			UnitPrice:  decimal.RequireFromString("410"),
			TotalPrice: decimal.RequireFromString("820"),
			Offers:     []string{"20% REMISE", "LIVRAISON GRATUITE"},
		},
		{
			ItemID:        "reg-1",
			Name:          "Tacos",
			Category:      "regular",
			UnitPrice:     decimal.Zero,
			TotalPrice:    decimal.Zero,
			MissingOption: true,
		},
	}
}

func TestWritePriceSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePriceSheet(&buf, sampleRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, headers, rows[0])
	assert.Equal(t, "pack-1", rows[1][0])
	assert.Equal(t, "410", rows[1][4])
	assert.Equal(t, "820", rows[1][5])
	assert.Equal(t, "20% REMISE, LIVRAISON GRATUITE", rows[1][6])
	assert.Equal(t, "TRUE", rows[2][7])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, headers, records[0])
	assert.Equal(t, []string{"pack-1", "Menu Duo et Burger", "special_pack", "M", "410.00", "820.00",
		"20% REMISE, LIVRAISON GRATUITE", "false"}, records[1])
	assert.Equal(t, "true", records[2][7])
}
