// Package exporter writes batch results to workbook and CSV reports.
package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"camcli/internal/batch"
	apperrors "camcli/internal/errors"
)

// Sheet names of the cycle-life detail workbook.
const (
	SheetInitialResults    = "Initial Results"
	SheetCycleResults      = "Cycle Results"
	SheetDifferenceResults = "Difference Results"
)

// sampleIDHeader is the leading column attached to every sheet.
const sampleIDHeader = "Sample IDs"

// WorkbookWriter writes feature tables as Excel workbooks.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// WriteSummary writes the cross-protocol summary: a single sheet with one
// row per processed file and a leading sample ID column. sampleIDs must be
// in table row order.
func (w *WorkbookWriter) WriteSummary(path string, sampleIDs []string, table *batch.Table) error {
	w.logger.Info("writing summary workbook",
		slog.String("path", path),
		slog.Int("rows", table.NumRows()))

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, "Summary", sampleIDs, table, table.Columns()); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return apperrors.NewStorageError("failed to drop default sheet", err)
	}

	return w.save(f, path)
}

// WriteDetail writes the cycle-life detail workbook: the wide per-cycle
// table split into initial, retention, and drift column groups, one sheet
// each. Empty groups are not written. sampleIDs must be in detail table
// row order.
func (w *WorkbookWriter) WriteDetail(path string, sampleIDs []string, table *batch.Table) error {
	w.logger.Info("writing cycle-life detail workbook",
		slog.String("path", path),
		slog.Int("rows", table.NumRows()))

	initialCols, cycleCols, differenceCols := partitionColumns(table.Columns())

	f := excelize.NewFile()
	defer f.Close()

	groups := []struct {
		sheet   string
		columns []string
	}{
		{SheetInitialResults, initialCols},
		{SheetCycleResults, cycleCols},
		{SheetDifferenceResults, differenceCols},
	}

	wrote := false
	for _, group := range groups {
		if len(group.columns) == 0 || table.Empty() {
			continue
		}
		if err := writeSheet(f, group.sheet, sampleIDs, table, group.columns); err != nil {
			return err
		}
		wrote = true
	}

	if !wrote {
		return apperrors.NewValidationError("cycle-life detail table has nothing to write")
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return apperrors.NewStorageError("failed to drop default sheet", err)
	}

	return w.save(f, path)
}

// partitionColumns splits detail columns into the three report groups by
// the keyword their feature names carry.
func partitionColumns(columns []string) (initial, cycle, difference []string) {
	for _, col := range columns {
		switch {
		case strings.Contains(col, "Initial"):
			initial = append(initial, col)
		case strings.Contains(col, "Cycle"):
			cycle = append(cycle, col)
		case strings.Contains(col, "Difference"):
			difference = append(difference, col)
		}
	}
	return initial, cycle, difference
}

// writeSheet writes one sheet: header row, then one row per table row with
// the sample ID leading. Cells absent from a row stay empty.
func writeSheet(f *excelize.File, sheet string, sampleIDs []string, table *batch.Table, columns []string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return apperrors.NewStorageError("failed to create sheet", err).WithContext("sheet", sheet)
	}

	header := append([]string{sampleIDHeader}, columns...)
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return apperrors.NewStorageError("failed to compute cell name", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return apperrors.NewStorageError("failed to write header cell", err).WithContext("sheet", sheet)
		}
	}

	for row := 0; row < table.NumRows(); row++ {
		sampleID := ""
		if row < len(sampleIDs) {
			sampleID = sampleIDs[row]
		}
		cell, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return apperrors.NewStorageError("failed to compute cell name", err)
		}
		if err := f.SetCellValue(sheet, cell, sampleID); err != nil {
			return apperrors.NewStorageError("failed to write sample ID cell", err).WithContext("sheet", sheet)
		}

		for col, name := range columns {
			value, ok := table.Cell(row, name)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+2, row+2)
			if err != nil {
				return apperrors.NewStorageError("failed to compute cell name", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return apperrors.NewStorageError("failed to write data cell", err).WithContext("sheet", sheet)
			}
		}
	}

	return nil
}

// save ensures the output directory exists and writes the workbook.
func (w *WorkbookWriter) save(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create report directory", err).
			WithContext("path", path)
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to save workbook %s", filepath.Base(path)), err).
			WithContext("path", path)
	}
	return nil
}
