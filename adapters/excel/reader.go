package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"sheetcharts/domain/dataset"
	"sheetcharts/internal/errors"

	"github.com/xuri/excelize/v2"
)

// File types handled by DataReader
const (
	FileTypeXLSX = "xlsx"
	FileTypeCSV  = "csv"
)

// DataReader handles reading Excel and CSV uploads into a table
type DataReader struct {
	filename string
	fileType string
	maxRows  int
}

// NewDataReader creates a reader for the named file. The extension selects
// the format; .xls and unknown extensions are rejected when read.
func NewDataReader(filename string, maxRows int) *DataReader {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	fileType := ext
	switch ext {
	case "xlsx", "xlsm":
		fileType = FileTypeXLSX
	case "csv":
		fileType = FileTypeCSV
	}
	return &DataReader{filename: filename, fileType: fileType, maxRows: maxRows}
}

// Supports reports whether the extension of filename is readable here
func Supports(filename string) bool {
	ft := NewDataReader(filename, 0).fileType
	return ft == FileTypeXLSX || ft == FileTypeCSV
}

// FileType returns the detected file type
func (r *DataReader) FileType() string {
	return r.fileType
}

// Result is a parsed upload. SheetName is only set for workbooks.
type Result struct {
	Table     *dataset.Table
	SheetName string
}

// Read parses the content into a table. Headers are trimmed and blank ones
// become Column_<n>; cells are kept as trimmed strings.
func (r *DataReader) Read(content io.Reader) (*Result, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filename)

	switch r.fileType {
	case FileTypeCSV:
		return r.readCSVData(content)
	case FileTypeXLSX:
		return r.readExcelData(content)
	default:
		if r.fileType == "" {
			return nil, errors.UnsupportedFormat("file without extension")
		}
		return nil, errors.UnsupportedFormat("." + r.fileType)
	}
}

// readExcelData reads the first sheet of a workbook
func (r *DataReader) readExcelData(content io.Reader) (*Result, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(content)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NoData("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read sheet %s: %w", sheet, err))
	}
	log.Printf("[DataReader] Sheet %q read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	table, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	return &Result{Table: table, SheetName: sheet}, nil
}

// readCSVData reads CSV data; rows may have differing lengths
func (r *DataReader) readCSVData(content io.Reader) (*Result, error) {
	reader := csv.NewReader(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read CSV file: %w", err))
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	table, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	return &Result{Table: table}, nil
}

// processRows converts raw string rows into a table
func (r *DataReader) processRows(rows [][]string) (*dataset.Table, error) {
	rows = trimTrailingBlankRows(rows)
	if len(rows) < 2 {
		return nil, errors.NoData(fmt.Sprintf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType)))
	}
	if r.maxRows > 0 && len(rows)-1 > r.maxRows {
		return nil, errors.ValidationError(fmt.Sprintf("file has %d data rows; the maximum is %d", len(rows)-1, r.maxRows))
	}

	headers := Headers(rows[0])

	dataRows := make([][]interface{}, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		dataRows = append(dataRows, cells)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &dataset.Table{Headers: headers, Rows: dataRows}, nil
}

// Headers trims header cells, strips a UTF-8 byte order mark and names
// blank headers Column_<n> by their 1-based position.
func Headers(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = h
	}
	return headers
}

func trimTrailingBlankRows(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && isBlankRow(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
