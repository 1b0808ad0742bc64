// Package cloud reads normalized cycling time-series ("cloud format")
// files into domain records. The raw instrument binary decoder is an
// external collaborator; anything satisfying Reader can be plugged into
// the batch orchestrator in its place.
package cloud

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "camcli/internal/errors"
	"camcli/pkg/contracts/domain"
)

// Reader converts one test file into a normalized cycling record.
type Reader interface {
	Read(ctx context.Context, path string) (*domain.CyclingRecord, error)
}

// Cloud-format column headers.
const (
	colStepType     = "step_type"
	colStepNumber   = "step_number"
	colCycle        = "cycle"
	colVoltage      = "voltage"
	colStepAmpHours = "step_amp_hours"
)

var requiredColumns = []string{colStepType, colStepNumber, colCycle, colVoltage, colStepAmpHours}

var validate = validator.New()

// validateRecord checks a parsed record against the domain constraints
// (non-empty, cycle >= 1, non-negative step_amp_hours) before it reaches
// extraction.
func validateRecord(path string, record *domain.CyclingRecord) error {
	if err := validate.Struct(record); err != nil {
		return apperrors.NewValidationError("cloud record failed validation").
			WithContext("path", path).
			WithContext("cause", err.Error())
	}
	return nil
}

// ForFile returns the reader for a file based on its extension.
func ForFile(path string) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVReader(), nil
	case ".xlsx", ".xls":
		return NewExcelReader(), nil
	}
	return nil, apperrors.NewUnsupportedError("no reader for file type").WithContext("path", path)
}

// mapColumns builds a header-name to position map from a header row and
// verifies all required cloud-format columns are present.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, apperrors.NewParsingError("missing cloud format column", nil).
				WithContext("column", name)
		}
	}
	return columns, nil
}
