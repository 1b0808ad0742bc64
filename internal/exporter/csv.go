package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"camcli/internal/batch"
	apperrors "camcli/internal/errors"
)

// CSVWriter provides CSV export for the summary report, for labs that feed
// the results into tooling that prefers plain text over workbooks.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteSummary writes the cross-protocol summary table as a single CSV
// file with a leading sample ID column.
func (w *CSVWriter) WriteSummary(path string, sampleIDs []string, table *batch.Table) error {
	w.logger.Info("writing summary CSV",
		slog.String("path", path),
		slog.Int("rows", table.NumRows()))

	columns := table.Columns()
	headers := append([]string{sampleIDHeader}, columns...)

	records := make([][]string, 0, table.NumRows())
	for row := 0; row < table.NumRows(); row++ {
		record := make([]string, 0, len(headers))
		sampleID := ""
		if row < len(sampleIDs) {
			sampleID = sampleIDs[row]
		}
		record = append(record, sampleID)
		for _, col := range columns {
			value, ok := table.Cell(row, col)
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(value, 'f', -1, 64))
		}
		records = append(records, record)
	}

	return w.WriteCSV(path, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create report directory", err).
			WithContext("path", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create CSV file", err).
			WithContext("path", path)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return apperrors.NewStorageError("failed to write CSV header row", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write CSV record %d", i), err)
		}
	}

	writer.Flush()
	return writer.Error()
}
