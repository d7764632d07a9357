// Package parquet reads Apache Parquet uploads into dataset tables.
package parquet

import (
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"time"

	"sheetcharts/domain/dataset"
	"sheetcharts/internal/errors"

	"github.com/parquet-go/parquet-go"
)

// Read loads every row of a parquet file. Headers follow the schema's
// top-level field order; rows are keyed back into that order.
func Read(r io.ReaderAt, size int64, maxRows int) (*dataset.Table, error) {
	start := time.Now()
	pqFile, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to open parquet file: %w", err))
	}

	if maxRows > 0 && pqFile.NumRows() > int64(maxRows) {
		return nil, errors.ValidationError(fmt.Sprintf("file has %d data rows; the maximum is %d", pqFile.NumRows(), maxRows))
	}

	fields := pqFile.Schema().Fields()
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Name()
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	var rows [][]interface{}
	for {
		record := make(map[string]interface{})
		if err := reader.Read(&record); err != nil {
			if stderrors.Is(err, io.EOF) {
				break
			}
			return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read row: %w", err))
		}
		row := make([]interface{}, len(headers))
		for i, h := range headers {
			row[i] = normalize(record[h])
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, errors.NoData("parquet file has no rows")
	}

	log.Printf("[ParquetReader] read %d rows x %d columns in %.2fms",
		len(rows), len(headers), float64(time.Since(start).Nanoseconds())/1e6)

	return &dataset.Table{Headers: headers, Rows: rows}, nil
}

// normalize maps parquet values onto the cell types the engine understands
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case nil, string, bool, float64, float32, int, int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
