package cloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "camcli/internal/errors"
	"camcli/pkg/contracts/domain"
)

// ExcelReader reads cloud-format data from an Excel workbook. It scans the
// workbook for the first sheet whose header row carries the required
// cloud-format columns, so export tools are free to name sheets as they
// like.
type ExcelReader struct{}

// NewExcelReader creates an Excel cloud-format reader.
func NewExcelReader() *ExcelReader {
	return &ExcelReader{}
}

// Read implements Reader.
func (r *ExcelReader) Read(ctx context.Context, path string) (*domain.CyclingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open cloud workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	rows, headerRow, err := findCloudSheet(f)
	if err != nil {
		return nil, err
	}

	columns, err := mapColumns(rows[headerRow])
	if err != nil {
		return nil, err
	}

	record := &domain.CyclingRecord{}
	for i := headerRow + 1; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		m, err := parseMeasurement(rows[i], columns)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("bad cloud workbook row %d", i+1), err).
				WithContext("path", path)
		}
		record.Rows = append(record.Rows, m)
	}

	if err := validateRecord(path, record); err != nil {
		return nil, err
	}
	return record, nil
}

// findCloudSheet locates the first sheet containing a cloud-format header
// row and returns its rows along with the header row index.
func findCloudSheet(f *excelize.File) ([][]string, int, error) {
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		for i, row := range rows {
			text := strings.ToLower(strings.Join(row, " "))
			if strings.Contains(text, colStepType) &&
				strings.Contains(text, colCycle) &&
				strings.Contains(text, colStepAmpHours) {
				return rows, i, nil
			}
		}
	}
	return nil, 0, apperrors.NewParsingError("no cloud format sheet found in workbook", nil)
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
