// Package export renders prepared chart data to downloadable files.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"sheetcharts/domain/chart"
	"sheetcharts/internal/errors"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 576
)

// Options controls image dimensions for the formats that embed a chart image
type Options struct {
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Render writes data in the requested format
func Render(format chart.ExportFormat, data *chart.ChartData, opts Options) (*chart.Export, error) {
	if data == nil || len(data.Labels) == 0 {
		return nil, errors.NoData("chart has no data to export")
	}
	opts = opts.withDefaults()

	var (
		content     []byte
		contentType string
		err         error
	)
	switch format {
	case chart.FormatPNG:
		content, err = PNG(data, opts)
		contentType = "image/png"
	case chart.FormatXLSX:
		content, err = XLSX(data)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case chart.FormatCSV:
		content, err = CSV(data)
		contentType = "text/csv"
	case chart.FormatPDF:
		content, err = PDF(data, opts)
		contentType = "application/pdf"
	default:
		return nil, errors.UnsupportedFormat(string(format))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to export %s chart as %s", data.Type, format)
	}

	return &chart.Export{
		Filename:    Filename(data, format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

// Filename derives a download name from the chart title
func Filename(data *chart.ChartData, format chart.ExportFormat) string {
	base := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(data.Title), "-"), "-")
	if base == "" {
		base = string(data.Type) + "-chart"
	}
	return fmt.Sprintf("%s.%s", base, format)
}

// tableRows flattens chart data into a header plus one row per label.
// Histogram and boxplot charts carry their extra statistics as columns.
func tableRows(data *chart.ChartData) [][]interface{} {
	switch {
	case data.Boxplot != nil:
		b := data.Boxplot
		return [][]interface{}{
			{"label", "min", "q1", "median", "q3", "max", "mean", "outlierCount", "method"},
			{b.Label, b.Min, b.Q1, b.Median, b.Q3, b.Max, b.Mean, b.OutlierCount, b.Method},
		}
	case data.Type == chart.TypeHistogram && len(data.Rows) == len(data.Labels):
		rows := [][]interface{}{{"range", "count", "binStart", "binEnd"}}
		for _, r := range data.Rows {
			if r.Bin == nil {
				continue
			}
			rows = append(rows, []interface{}{r.Range, r.Count, r.BinStart, r.BinEnd})
		}
		return rows
	case data.Type == chart.TypeScatter && len(data.Points) > 0:
		rows := [][]interface{}{{xName(data), yName(data)}}
		for _, p := range data.Points {
			rows = append(rows, []interface{}{p.X, p.Y})
		}
		return rows
	}

	header := []interface{}{xName(data)}
	for _, s := range data.Datasets {
		header = append(header, s.Label)
	}
	rows := [][]interface{}{header}
	for i, label := range data.Labels {
		row := []interface{}{label}
		for _, s := range data.Datasets {
			if i < len(s.Data) {
				row = append(row, s.Data[i])
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func xName(data *chart.ChartData) string {
	if data.XLabel != "" {
		return data.XLabel
	}
	return "label"
}

func yName(data *chart.ChartData) string {
	if data.YLabel != "" {
		return data.YLabel
	}
	return "value"
}

// primary returns the first series' values, empty when there is none
func primary(data *chart.ChartData) []float64 {
	if len(data.Datasets) == 0 {
		return nil
	}
	return data.Datasets[0].Data
}
