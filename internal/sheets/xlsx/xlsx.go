// Package xlsx writes exported months into a local Excel workbook, one
// worksheet per month.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/xuri/excelize/v2"

	"kharcha/internal/sheets"
)

const defaultSheet = "Sheet1"

// Writer exports to the workbook at path, creating it on first use.
type Writer struct {
	path string
}

var _ sheets.Exporter = (*Writer)(nil)

func New(path string) *Writer {
	return &Writer{path: path}
}

// ExportMonth replaces the month's worksheet with the current rows and a
// total row. Other worksheets in the workbook are left alone.
func (w *Writer) ExportMonth(ctx context.Context, m sheets.Month) (string, error) {
	rows := m.Rows()
	if len(rows) == 0 {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, created, err := w.open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	sheet := m.Label()
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return "", fmt.Errorf("look up sheet %s: %w", sheet, err)
	}
	if idx == -1 {
		if idx, err = f.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("add sheet %s: %w", sheet, err)
		}
	}
	if created && sheet != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return "", fmt.Errorf("drop default sheet: %w", err)
		}
		if idx, err = f.GetSheetIndex(sheet); err != nil {
			return "", fmt.Errorf("look up sheet %s: %w", sheet, err)
		}
	}

	last, err := writeRows(f, sheet, rows)
	if err != nil {
		return "", err
	}

	f.SetActiveSheet(idx)
	if err := f.SaveAs(w.path); err != nil {
		return "", fmt.Errorf("save %s: %w", w.path, err)
	}
	return fmt.Sprintf("%s!A1:F%d", sheet, last), nil
}

func (w *Writer) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(w.path)
	switch {
	case err == nil:
		return f, false, nil
	case errors.Is(err, fs.ErrNotExist):
		return excelize.NewFile(), true, nil
	default:
		return nil, false, fmt.Errorf("open %s: %w", w.path, err)
	}
}

// writeRows writes header, rows and a SUM total, drops any rows left over
// from a longer earlier export and returns the last row number.
func writeRows(f *excelize.File, sheet string, rows [][]any) (int, error) {
	previous, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	header := make([]any, len(sheets.Header))
	for i, h := range sheets.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	lastData := len(rows) + 1
	total := lastData + 1
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", total), &[]any{"", "", "Total", "", "", ""}); err != nil {
		return 0, fmt.Errorf("write total row: %w", err)
	}
	if err := f.SetCellFormula(sheet, fmt.Sprintf("D%d", total), fmt.Sprintf("SUM(D2:D%d)", lastData)); err != nil {
		return 0, fmt.Errorf("write total formula: %w", err)
	}

	for r := len(previous); r > total; r-- {
		if err := f.RemoveRow(sheet, r); err != nil {
			return 0, fmt.Errorf("remove stale row %d: %w", r, err)
		}
	}

	if err := styleSheet(f, sheet, total); err != nil {
		return 0, err
	}
	return total, nil
}

func styleSheet(f *excelize.File, sheet string, total int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F46E5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	inr := "₹#,##0.00"
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &inr})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &inr})
	if err != nil {
		return fmt.Errorf("total style: %w", err)
	}

	if err := f.SetCellStyle(sheet, "A1", "F1", headerStyle); err != nil {
		return err
	}
	if total > 2 {
		if err := f.SetCellStyle(sheet, "D2", fmt.Sprintf("D%d", total-1), amountStyle); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("C%d", total), fmt.Sprintf("D%d", total), totalStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "D", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 28); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "E", "F", 36)
}
