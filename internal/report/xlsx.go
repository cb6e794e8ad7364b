package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxSheet        = "Transactions"
	xlsxSummarySheet = "Summary"
)

// WriteXLSX writes the export as a workbook: the rows on the first sheet and
// per-category totals on the second. Amounts are numeric cells formatted to
// two decimals.
func (x *Export) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4A90D9"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	if err := writeXLSXRow(f, xlsxSheet, 1, toAny(ExportColumns)); err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, tx := range x.Rows {
		row := i + 2
		values := []any{
			tx.Date.Format(),
			tx.Type.String(),
			tx.Category,
			tx.Amount.Float(),
			tx.Description,
		}
		if err := writeXLSXRow(f, xlsxSheet, row, values); err != nil {
			return err
		}
	}
	last := len(x.Rows) + 1
	if last > 1 {
		if err := f.SetCellStyle(xlsxSheet, "D2", fmt.Sprintf("D%d", last), amountStyle); err != nil {
			return fmt.Errorf("styling amounts: %w", err)
		}
	}
	_ = f.SetColWidth(xlsxSheet, "A", "A", 12)
	_ = f.SetColWidth(xlsxSheet, "B", "C", 16)
	_ = f.SetColWidth(xlsxSheet, "D", "D", 12)
	_ = f.SetColWidth(xlsxSheet, "E", "E", 32)

	if _, err := f.NewSheet(xlsxSummarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	if err := writeXLSXRow(f, xlsxSummarySheet, 1, []any{"Category", "Amount", "Transactions"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSummarySheet, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("styling summary header: %w", err)
	}
	sum, err := Aggregate(x.Rows)
	if err != nil {
		return fmt.Errorf("summarising export: %w", err)
	}
	row := 2
	for _, c := range sum.Rows() {
		if err := writeXLSXRow(f, xlsxSummarySheet, row, []any{c.Name, c.Amount.Float(), c.Count}); err != nil {
			return err
		}
		row++
	}
	if err := writeXLSXRow(f, xlsxSummarySheet, row, []any{"Total", sum.Total.Float(), sum.Count}); err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSummarySheet, "B2", fmt.Sprintf("B%d", row), amountStyle); err != nil {
		return fmt.Errorf("styling summary amounts: %w", err)
	}
	_ = f.SetColWidth(xlsxSummarySheet, "A", "A", 20)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeXLSXRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
