// Package xlsx writes final records to an Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
)

// Ensure Exporter implements the interface.
var _ driven.TabularExporter = (*Exporter)(nil)

// DefaultSheet is the worksheet rows are written to.
const DefaultSheet = "Sheet1"

// listSeparator joins list values into one cell.
const listSeparator = ", "

// Exporter writes one header row and one row per record.
type Exporter struct {
	sheet string
}

// New creates an exporter writing to the default worksheet.
func New() *Exporter {
	return &Exporter{sheet: DefaultSheet}
}

// Export writes rows to path, replacing any existing file.
func (e *Exporter) Export(ctx context.Context, path string, columns []string, rows []map[string]any) error {
	if path == "" {
		return fmt.Errorf("export: empty output path")
	}
	header := PresentColumns(columns, rows)

	f := excelize.NewFile()
	defer f.Close()

	if name := f.GetSheetName(0); name != e.sheet {
		if err := f.SetSheetName(name, e.sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	for i, col := range header {
		if err := e.setCell(f, i, 0, col); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for r, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, col := range header {
			value := CellValue(row[col])
			if value == nil {
				continue
			}
			if err := e.setCell(f, i, r+1, value); err != nil {
				return fmt.Errorf("write row %d: %w", r+1, err)
			}
		}
	}

	if _, err := os.Stat(path); err == nil {
		logger.Info("Excel file '%s' already exists and will be overwritten.", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	logger.Info("Excel file '%s' created or overwritten successfully.", path)
	return nil
}

// setCell writes a value at zero-based column and row.
func (e *Exporter) setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	return f.SetCellValue(e.sheet, cell, value)
}

// Remove deletes a previous output file.
func (e *Exporter) Remove(path string) (bool, error) {
	err := os.Remove(path)
	switch {
	case err == nil:
		logger.Info("Excel file '%s' has been deleted.", path)
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}

// PresentColumns filters columns to those present in at least one row,
// keeping list order.
func PresentColumns(columns []string, rows []map[string]any) []string {
	out := make([]string, 0, len(columns))
	for _, col := range columns {
		for _, row := range rows {
			if _, ok := row[col]; ok {
				out = append(out, col)
				break
			}
		}
	}
	return out
}

// CellValue renders a field for a cell. Nil becomes an empty cell and
// string lists are joined.
func CellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		return strings.Join(val, listSeparator)
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, listSeparator)
	case *string:
		if val == nil {
			return nil
		}
		return *val
	default:
		return val
	}
}
