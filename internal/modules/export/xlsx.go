package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/aristath/skusim/internal/modules/presentation"
)

const (
	detailSheet  = "明細"
	summarySheet = "合計"
)

// WriteXLSX writes the table to a "明細" worksheet and the KPIs and totals to "合計".
func WriteXLSX(w io.Writer, view presentation.View) error {
	f, err := buildWorkbook(view)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(view presentation.View) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", detailSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := Columns(HeaderJapanese)
	if err := setRow(f, detailSheet, 1, toCells(header)); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(detailSheet, 1, 1, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style %s header: %w", detailSheet, err)
	}

	for i, row := range view.Table.Rows {
		cells := []interface{}{
			row.Name,
			row.SharePct,
			row.AddedUnits,
			row.RevenuePerUnit,
			row.MarginRate,
			row.GrossProfitPerUnit,
			row.AddedRevenue,
			row.AddedGrossProfit,
		}
		if err := setRow(f, detailSheet, i+2, cells); err != nil {
			return nil, err
		}
	}

	totalsRow := len(view.Table.Rows) + 2
	if err := setRow(f, detailSheet, totalsRow, []interface{}{
		"合計", nil, view.Table.Totals.AddedUnits, nil, nil, nil,
		view.Table.Totals.AddedRevenue, view.Table.Totals.AddedGrossProfit,
	}); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(detailSheet, totalsRow, totalsRow, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style %s totals: %w", detailSheet, err)
	}
	if err := setColWidths(f, detailSheet, 20, 18, "H"); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := setRow(f, summarySheet, 1, []interface{}{"指標", "値", "備考"}); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(summarySheet, 1, 1, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style %s header: %w", summarySheet, err)
	}

	for i, kpi := range view.KPIs {
		if err := setRow(f, summarySheet, i+2, []interface{}{kpi.Label, kpi.Value, kpi.Caption}); err != nil {
			return nil, err
		}
	}
	next := len(view.KPIs) + 2
	extra := [][]interface{}{
		{presentation.LabelTotalRevenue, view.Summary.AddedRevenue, ""},
		{presentation.LabelTotalProfit, view.Summary.AddedGrossProfit, "平均粗利率 " + view.Summary.BlendedMarginRate},
	}
	for i, cells := range extra {
		if err := setRow(f, summarySheet, next+i, cells); err != nil {
			return nil, err
		}
	}
	if err := setColWidths(f, summarySheet, 24, 36, "C"); err != nil {
		return nil, err
	}

	return f, nil
}

// setColWidths sizes the label column A and the value columns B through last.
func setColWidths(f *excelize.File, sheet string, labelWidth, valueWidth float64, last string) error {
	if err := f.SetColWidth(sheet, "A", "A", labelWidth); err != nil {
		return fmt.Errorf("failed to size %s column A: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "B", last, valueWidth); err != nil {
		return fmt.Errorf("failed to size %s columns B:%s: %w", sheet, last, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
