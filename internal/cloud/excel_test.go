package cloud

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "camcli/internal/errors"
	"camcli/pkg/contracts/domain"
)

// writeTempWorkbook builds a minimal cloud-format workbook. The data sheet
// name and any preceding junk rows are caller-controlled to mimic the
// variety of export tools in the lab.
func writeTempWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	require.NoError(t, f.DeleteSheet("Sheet1"))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "QCL-100-A-CC-1-Formation_2.0.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func cloudHeader() []interface{} {
	return []interface{}{"step_type", "step_number", "cycle", "voltage", "step_amp_hours"}
}

func TestExcelReader_Read(t *testing.T) {
	path := writeTempWorkbook(t, "record", [][]interface{}{
		cloudHeader(),
		{"REST", 0, 1, 3.27615, 0},
		{"CHARGE", 1, 1, 4.2, 0.0123456},
		{"DISCHARGE", 2, 1, 2.5, 0.0118},
	})

	rec, err := NewExcelReader().Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rec.Rows, 3)

	assert.Equal(t, domain.StepRest, rec.Rows[0].StepType)
	assert.Equal(t, 3.27615, rec.Rows[0].Voltage)
	assert.Equal(t, 0.0123456, rec.Rows[1].StepAmpHours)
	assert.Equal(t, 2, rec.Rows[2].StepNumber)
}

func TestExcelReader_HeaderNotOnFirstRow(t *testing.T) {
	path := writeTempWorkbook(t, "export", [][]interface{}{
		{"Exported by instrument", "", "", "", ""},
		cloudHeader(),
		{"CHARGE", 1, 1, 4.2, 0.01},
	})

	rec, err := NewExcelReader().Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rec.Rows, 1)
	assert.Equal(t, domain.StepCharge, rec.Rows[0].StepType)
}

func TestExcelReader_SkipsEmptyRows(t *testing.T) {
	path := writeTempWorkbook(t, "record", [][]interface{}{
		cloudHeader(),
		{"CHARGE", 1, 1, 4.2, 0.01},
		{"", "", "", "", ""},
		{"DISCHARGE", 2, 1, 2.5, 0.009},
	})

	rec, err := NewExcelReader().Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rec.Rows, 2)
}

func TestExcelReader_NoCloudSheet(t *testing.T) {
	path := writeTempWorkbook(t, "notes", [][]interface{}{
		{"just", "some", "notes"},
	})

	_, err := NewExcelReader().Read(context.Background(), path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestExcelReader_RecordValidation(t *testing.T) {
	path := writeTempWorkbook(t, "record", [][]interface{}{
		cloudHeader(),
		{"CHARGE", 1, 0, 4.2, 0.01}, // cycle below one
	})

	_, err := NewExcelReader().Read(context.Background(), path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestExcelReader_MissingFile(t *testing.T) {
	_, err := NewExcelReader().Read(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
