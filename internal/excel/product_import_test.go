package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pntme/Retail-management/internal/domain"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	file := excelize.NewFile()
	defer file.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return &buf
}

func TestParseProducts(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Name", "Sell Price", "Vendor", "Rack", "Qty", "Unit Cost"},
		{"Engine Oil 1L", 450, "Castrol", "A-2", 10, 320},
		{"Air Filter", 250, "", "", "", ""},
	})

	rows, err := ParseProducts(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Engine Oil 1L", rows[0].Name)
	assert.Equal(t, 450.0, rows[0].SellPrice)
	require.NotNil(t, rows[0].Vendor)
	assert.Equal(t, "Castrol", *rows[0].Vendor)
	assert.Equal(t, 10, rows[0].OpeningQuantity)
	assert.Equal(t, 320.0, rows[0].OpeningUnitCost)

	assert.Equal(t, "Air Filter", rows[1].Name)
	assert.Nil(t, rows[1].Vendor)
	assert.Zero(t, rows[1].OpeningQuantity)
}

func TestParseProductsSkipsBlankNames(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"name", "sell_price"},
		{"", 100},
		{"Brake Pad", 600},
	})

	rows, err := ParseProducts(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Brake Pad", rows[0].Name)
}

func TestParseProductsMissingColumns(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"name"},
		{"Brake Pad"},
	})
	_, err := ParseProducts(buf)
	assert.ErrorContains(t, err, "sell_price")
}

func TestParseProductsRejectsBadQuantity(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"name", "sell_price", "qty"},
		{"Brake Pad", 600, "many"},
	})
	_, err := ParseProducts(buf)
	assert.Error(t, err)
}

func TestWriteProfitLossRoundTrip(t *testing.T) {
	report := &domain.ProfitLossReport{
		FromDate:      "2025-06-01",
		ToDate:        "2025-06-30",
		Revenue:       1500,
		Cost:          900,
		Profit:        600,
		MarginPercent: 40,
		Daily: []domain.DailyProfitLoss{
			{Date: "2025-06-01", Revenue: 1000, Cost: 600, Profit: 400},
			{Date: "2025-06-02", Revenue: 500, Cost: 300, Profit: 200},
		},
		ByPaymentStatus: []domain.PaymentStatusTotal{
			{PaymentStatus: domain.PaymentPaid, BillCount: 2, Total: 1200},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProfitLoss(&buf, report))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	assert.ElementsMatch(t, []string{"Summary", "Daily"}, file.GetSheetList())

	revenue, err := file.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "1500", revenue)

	firstDay, err := file.GetCellValue("Daily", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", firstDay)
}
