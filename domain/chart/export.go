package chart

import "strings"

// ExportFormat is an output format for chart export
type ExportFormat string

const (
	FormatPNG  ExportFormat = "png"
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
	FormatPDF  ExportFormat = "pdf"
)

// ParseExportFormat normalizes a format name; "excel" and "image" are accepted aliases.
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "image":
		return FormatPNG, true
	case "xlsx", "excel":
		return FormatXLSX, true
	case "csv":
		return FormatCSV, true
	case "pdf":
		return FormatPDF, true
	}
	return "", false
}

// Export is a rendered chart file
type Export struct {
	Filename    string
	ContentType string
	Content     []byte
}
