package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pntme/Retail-management/internal/domain"
)

// WriteProfitLoss renders the report as a two-sheet workbook: a summary
// sheet and the daily breakdown.
func WriteProfitLoss(w io.Writer, report *domain.ProfitLossReport) error {
	file := excelize.NewFile()
	defer file.Close()

	summary := "Summary"
	if err := file.SetSheetName("Sheet1", summary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	summaryRows := [][]any{
		{"From", report.FromDate},
		{"To", report.ToDate},
		{"Revenue", report.Revenue},
		{"Cost", report.Cost},
		{"Profit", report.Profit},
		{"Margin %", report.MarginPercent},
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := file.SetSheetRow(summary, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}

	offset := len(summaryRows) + 2
	header := []any{"Payment Status", "Bills", "Total"}
	cell, _ := excelize.CoordinatesToCellName(1, offset)
	if err := file.SetSheetRow(summary, cell, &header); err != nil {
		return fmt.Errorf("write payment header: %w", err)
	}
	for i, t := range report.ByPaymentStatus {
		row := []any{string(t.PaymentStatus), t.BillCount, t.Total}
		cell, _ := excelize.CoordinatesToCellName(1, offset+1+i)
		if err := file.SetSheetRow(summary, cell, &row); err != nil {
			return fmt.Errorf("write payment row: %w", err)
		}
	}

	daily := "Daily"
	if _, err := file.NewSheet(daily); err != nil {
		return fmt.Errorf("create daily sheet: %w", err)
	}
	dailyHeader := []any{"Date", "Revenue", "Cost", "Profit"}
	if err := file.SetSheetRow(daily, "A1", &dailyHeader); err != nil {
		return fmt.Errorf("write daily header: %w", err)
	}
	for i, day := range report.Daily {
		row := []any{day.Date, day.Revenue, day.Cost, day.Profit}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := file.SetSheetRow(daily, cell, &row); err != nil {
			return fmt.Errorf("write daily row: %w", err)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
