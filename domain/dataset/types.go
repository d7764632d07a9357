package dataset

import (
	"time"

	"sheetcharts/domain/core"
)

// ColumnType is the detected shape of a column's values
type ColumnType string

const (
	ColumnNumeric ColumnType = "numeric"
	ColumnDate    ColumnType = "date"
	ColumnText    ColumnType = "text"
	ColumnEmpty   ColumnType = "empty"
)

// Dataset represents an uploaded spreadsheet and its stored tabular content
type Dataset struct {
	ID     core.ID `json:"id"`
	UserID core.ID `json:"user_id"`

	// File information
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
	MimeType         string `json:"mime_type"`
	SheetName        string `json:"sheet_name,omitempty"`
	Checksum         string `json:"checksum"` // xxhash64 of the uploaded bytes, hex

	// Dataset statistics
	RecordCount int `json:"record_count"`
	FieldCount  int `json:"field_count"`

	// Tabular content
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows,omitempty"`
	Columns []ColumnProfile `json:"columns"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Table returns the tabular view of the dataset content
func (d *Dataset) Table() *Table {
	return &Table{Headers: d.Headers, Rows: d.Rows}
}

// ColumnProfile describes a single column detected at upload time
type ColumnProfile struct {
	Name         string          `json:"name"`
	Index        int             `json:"index"`
	Type         ColumnType      `json:"type"`
	NonEmpty     int             `json:"non_empty"`
	MissingCount int             `json:"missing_count"`
	UniqueCount  int             `json:"unique_count"`
	Summary      *NumericSummary `json:"summary,omitempty"`
}

// NumericSummary holds descriptive statistics for a numeric column.
// Quartiles use the same floor-indexed nearest-rank method as boxplots.
type NumericSummary struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	Range  float64 `json:"range"`
}

// Upload represents an uploaded file before processing
type Upload struct {
	UserID   core.ID
	Filename string
	MimeType string
	Content  []byte
}

// Summary is the list view of a dataset without row content
type Summary struct {
	ID               core.ID   `json:"id" db:"id"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	FileSize         int64     `json:"file_size" db:"file_size"`
	RecordCount      int       `json:"record_count" db:"record_count"`
	FieldCount       int       `json:"field_count" db:"field_count"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
