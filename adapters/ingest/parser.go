// Package ingest turns uploaded file bytes into a dataset table, choosing
// the reader by file extension.
package ingest

import (
	"bytes"
	"path/filepath"
	"strings"

	"sheetcharts/adapters/excel"
	"sheetcharts/adapters/parquet"
	"sheetcharts/internal/errors"
	"sheetcharts/ports"
)

// Parser implements ports.TableParser for xlsx, xlsm, csv and parquet
type Parser struct {
	maxRows int
}

// NewParser creates a parser that rejects files with more than maxRows data rows
func NewParser(maxRows int) *Parser {
	return &Parser{maxRows: maxRows}
}

// Parse reads content according to the extension of filename
func (p *Parser) Parse(filename string, content []byte) (*ports.ParsedFile, error) {
	if len(content) == 0 {
		return nil, errors.NoData("uploaded file is empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".parquet" {
		table, err := parquet.Read(bytes.NewReader(content), int64(len(content)), p.maxRows)
		if err != nil {
			return nil, err
		}
		return &ports.ParsedFile{Table: table, Format: "parquet"}, nil
	}

	reader := excel.NewDataReader(filename, p.maxRows)
	result, err := reader.Read(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	return &ports.ParsedFile{Table: result.Table, SheetName: result.SheetName, Format: reader.FileType()}, nil
}

// Supported lists the accepted extensions
func Supported() []string {
	return []string{".xlsx", ".xlsm", ".csv", ".parquet"}
}
