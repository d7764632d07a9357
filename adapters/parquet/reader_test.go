package parquet

import (
	"bytes"
	"testing"

	"sheetcharts/internal/errors"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type salesRow struct {
	Region string  `parquet:"region"`
	Sales  float64 `parquet:"sales"`
	Units  int64   `parquet:"units"`
}

func writeParquet(t *testing.T, rows []salesRow) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[salesRow](&buf)
	_, err := writer.Write(rows)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestRead(t *testing.T) {
	r := writeParquet(t, []salesRow{
		{Region: "North", Sales: 10.5, Units: 3},
		{Region: "South", Sales: 4, Units: 1},
	})

	table, err := Read(r, r.Size(), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "sales", "units"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "North", table.Rows[0][0])
	assert.EqualValues(t, 10.5, table.Rows[0][1])
	assert.EqualValues(t, 3, table.Rows[0][2])
}

func TestReadRowLimit(t *testing.T) {
	r := writeParquet(t, []salesRow{{Region: "a"}, {Region: "b"}, {Region: "c"}})

	_, err := Read(r, r.Size(), 2)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestReadInvalid(t *testing.T) {
	r := bytes.NewReader([]byte("definitely not parquet"))
	_, err := Read(r, r.Size(), 0)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
