package ports

import "sheetcharts/domain/dataset"

// ParsedFile is the tabular content of an upload
type ParsedFile struct {
	Table     *dataset.Table
	SheetName string
	Format    string
}

// TableParser turns uploaded bytes into a table
type TableParser interface {
	Parse(filename string, content []byte) (*ParsedFile, error)
}
