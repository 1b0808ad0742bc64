package cloud

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	apperrors "camcli/internal/errors"
	"camcli/pkg/contracts/domain"
)

// CSVReader reads cloud-format CSV files: a header row naming the five
// required columns, one measurement per data row.
type CSVReader struct{}

// NewCSVReader creates a CSV cloud-format reader.
func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

// Read implements Reader.
func (r *CSVReader) Read(ctx context.Context, path string) (*domain.CyclingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open cloud CSV file", err).
			WithContext("path", path)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read cloud CSV file", err).
			WithContext("path", path)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("cloud CSV file is empty", nil).
			WithContext("path", path)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	record := &domain.CyclingRecord{}
	for i, row := range rows[1:] {
		m, err := parseMeasurement(row, columns)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("bad cloud CSV row %d", i+2), err).
				WithContext("path", path)
		}
		record.Rows = append(record.Rows, m)
	}

	if err := validateRecord(path, record); err != nil {
		return nil, err
	}
	return record, nil
}

// parseMeasurement converts one data row into a measurement using the
// header column positions.
func parseMeasurement(row []string, columns map[string]int) (domain.Measurement, error) {
	cell := func(name string) (string, error) {
		idx := columns[name]
		if idx >= len(row) {
			return "", fmt.Errorf("row has no %s column", name)
		}
		return strings.TrimSpace(row[idx]), nil
	}

	var m domain.Measurement

	stepType, err := cell(colStepType)
	if err != nil {
		return m, err
	}
	m.StepType = domain.StepType(strings.ToUpper(stepType))

	stepNumber, err := cell(colStepNumber)
	if err != nil {
		return m, err
	}
	if m.StepNumber, err = strconv.Atoi(stepNumber); err != nil {
		return m, fmt.Errorf("invalid step_number %q: %w", stepNumber, err)
	}

	cycle, err := cell(colCycle)
	if err != nil {
		return m, err
	}
	if m.Cycle, err = strconv.Atoi(cycle); err != nil {
		return m, fmt.Errorf("invalid cycle %q: %w", cycle, err)
	}

	voltage, err := cell(colVoltage)
	if err != nil {
		return m, err
	}
	if m.Voltage, err = strconv.ParseFloat(voltage, 64); err != nil {
		return m, fmt.Errorf("invalid voltage %q: %w", voltage, err)
	}

	ampHours, err := cell(colStepAmpHours)
	if err != nil {
		return m, err
	}
	if m.StepAmpHours, err = strconv.ParseFloat(ampHours, 64); err != nil {
		return m, fmt.Errorf("invalid step_amp_hours %q: %w", ampHours, err)
	}

	return m, nil
}
