package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/gilchrisn/rmse-report/pkg/analysis"
)

// SummaryHeader is the column layout of the comparison summary table
var SummaryHeader = []string{
	"target", "model", "normalization",
	"interp_rmse", "interp_stderr", "extrap_rmse", "extrap_stderr",
	"has_error", "placeholder",
}

// summaryRows flattens comparisons into table rows; NaN becomes nil
func summaryRows(cmps []analysis.Comparison) [][]interface{} {
	rows := make([][]interface{}, 0, len(cmps)*3)
	for _, cmp := range cmps {
		for _, b := range cmp.Bars {
			rows = append(rows, []interface{}{
				cmp.Target, b.Model, string(cmp.Normalization),
				number(b.Interp), number(b.InterpErr), number(b.Extrap), number(b.ExtrapErr),
				b.HasError, b.Placeholder,
			})
		}
	}
	return rows
}

func number(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// WriteSummaryCSV writes the plotted values of every comparison as CSV
func WriteSummaryCSV(path string, cmps []analysis.Comparison) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(SummaryHeader); err != nil {
		return err
	}
	for _, row := range summaryRows(cmps) {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

func formatCell(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	}
	return fmt.Sprint(cell)
}

// WriteSummaryXLSX writes the same table as WriteSummaryCSV to a workbook
func WriteSummaryXLSX(path string, cmps []analysis.Comparison) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Comparison"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := append([][]interface{}{toCells(SummaryHeader)}, summaryRows(cmps)...)
	for i, row := range rows {
		for j, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func toCells(header []string) []interface{} {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}
