package excel

import (
	"bytes"
	"strings"
	"testing"

	"sheetcharts/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	content := "\ufeffRegion, Sales ,\nNorth,10,x\nSouth, 4\n,,\n"

	result, err := NewDataReader("sales.CSV", 0).Read(strings.NewReader(content))
	require.NoError(t, err)

	table := result.Table
	assert.Equal(t, []string{"Region", "Sales", "Column_3"}, table.Headers)
	require.Len(t, table.Rows, 2, "trailing blank rows are dropped")
	assert.Equal(t, []interface{}{"North", "10", "x"}, table.Rows[0])
	assert.Equal(t, []interface{}{"South", "4"}, table.Rows[1], "short rows are kept short")
	assert.Empty(t, result.SheetName)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Q1"))
	require.NoError(t, f.SetSheetRow("Q1", "A1", &[]interface{}{"Region", "", "Sales"}))
	require.NoError(t, f.SetSheetRow("Q1", "A2", &[]interface{}{"North", "a", 10}))
	require.NoError(t, f.SetSheetRow("Q1", "A3", &[]interface{}{"South", "b", 4.5}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	result, err := NewDataReader("report.xlsx", 0).Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, "Q1", result.SheetName)
	assert.Equal(t, []string{"Region", "Column_2", "Sales"}, result.Table.Headers)
	assert.Equal(t, []interface{}{"South", "b", "4.5"}, result.Table.Rows[1])
}

func TestReadRejections(t *testing.T) {
	_, err := NewDataReader("legacy.xls", 0).Read(strings.NewReader("x"))
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))

	_, err = NewDataReader("notes.txt", 0).Read(strings.NewReader("x"))
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))

	_, err = NewDataReader("header.csv", 0).Read(strings.NewReader("a,b\n"))
	assert.Equal(t, errors.CodeNoData, errors.GetCode(err))

	_, err = NewDataReader("big.csv", 2).Read(strings.NewReader("a\n1\n2\n3\n"))
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, err = NewDataReader("broken.xlsx", 0).Read(strings.NewReader("not a zip"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSupports(t *testing.T) {
	assert.True(t, Supports("a.xlsx"))
	assert.True(t, Supports("a.xlsm"))
	assert.True(t, Supports("a.csv"))
	assert.False(t, Supports("a.xls"))
	assert.False(t, Supports("a.parquet"))
}
