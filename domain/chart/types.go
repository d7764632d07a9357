package chart

import (
	"strings"
	"time"

	"sheetcharts/domain/core"
)

// Type identifies a chart kind
type Type string

const (
	TypeBar       Type = "bar"
	TypeLine      Type = "line"
	TypeArea      Type = "area"
	TypePie       Type = "pie"
	TypeDoughnut  Type = "doughnut"
	TypeScatter   Type = "scatter"
	TypeHistogram Type = "histogram"
	TypeBoxplot   Type = "boxplot"
)

// ParseType normalizes a chart type name. ok is false for unknown names.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeBar, TypeLine, TypeArea, TypePie, TypeDoughnut, TypeScatter, TypeHistogram, TypeBoxplot:
		return t, true
	}
	return "", false
}

// IsStatistical reports whether the chart is computed from a single numeric column
func (t Type) IsStatistical() bool {
	return t == TypeHistogram || t == TypeBoxplot
}

// QuantileMethod tags the boxplot quartile algorithm. Saved charts depend on
// it, so the label travels with every boxplot result.
const QuantileMethod = "nearest-rank, floor-indexed"

// Config describes a chart the user asked for
type Config struct {
	Type              Type   `json:"chartType"`
	Title             string `json:"title,omitempty"`
	XColumn           string `json:"xAxis,omitempty"`
	YColumn           string `json:"yAxis,omitempty"`
	Column            string `json:"column,omitempty"`
	AggregateFunction string `json:"aggregateFunction,omitempty"`
	BinCount          int    `json:"binCount,omitempty"`
	Limit             int    `json:"limit,omitempty"`
}

// StatColumn returns the column a histogram or boxplot is computed over
func (c Config) StatColumn() string {
	switch {
	case c.Column != "":
		return c.Column
	case c.YColumn != "":
		return c.YColumn
	default:
		return c.XColumn
	}
}

// DerivedRow is one row of engine output. Histogram and boxplot rows carry
// their extra fields through the embedded pointers, which flatten into the
// JSON object when set.
type DerivedRow struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	*Bin
	*BoxStats
}

// Bin is a histogram bucket
type Bin struct {
	Range    string  `json:"range"`
	Count    int     `json:"count"`
	BinStart float64 `json:"binStart"`
	BinEnd   float64 `json:"binEnd"`
}

// BoxStats is the five-number summary with mean and outlier count
type BoxStats struct {
	Min          float64 `json:"min"`
	Q1           float64 `json:"q1"`
	Median       float64 `json:"median"`
	Q3           float64 `json:"q3"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	OutlierCount int     `json:"outlierCount"`
	Method       string  `json:"method"`
}

// Series is one named data series aligned with ChartData.Labels
type Series struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// Point is a scatter point
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoxplotSeries is the renderer's boxplot payload; unlike BoxStats it keeps
// the outlier values themselves.
type BoxplotSeries struct {
	Label string `json:"label"`
	BoxStats
	Outliers []float64 `json:"outliers"`
}

// ChartData is ready-to-draw chart content
type ChartData struct {
	Type     Type           `json:"chartType"`
	Title    string         `json:"title,omitempty"`
	XLabel   string         `json:"xLabel,omitempty"`
	YLabel   string         `json:"yLabel,omitempty"`
	Labels   []string       `json:"labels"`
	Datasets []Series       `json:"datasets"`
	Points   []Point        `json:"points,omitempty"`
	Boxplot  *BoxplotSeries `json:"boxplot,omitempty"`
	Rows     []DerivedRow   `json:"rows,omitempty"`
}

// FromDerived builds drawable chart data from engine rows
func FromDerived(t Type, title, seriesLabel string, rows []DerivedRow) *ChartData {
	data := &ChartData{
		Type:   t,
		Title:  title,
		Labels: make([]string, len(rows)),
		Rows:   rows,
	}
	values := make([]float64, len(rows))
	for i, r := range rows {
		data.Labels[i] = r.Label
		values[i] = r.Value
	}
	data.Datasets = []Series{{Label: seriesLabel, Data: values}}
	if t == TypeBoxplot && len(rows) == 1 && rows[0].BoxStats != nil {
		data.Boxplot = &BoxplotSeries{Label: rows[0].Label, BoxStats: *rows[0].BoxStats}
	}
	return data
}

// HistoryEntry is a saved chart
type HistoryEntry struct {
	ID        core.ID    `json:"id"`
	UserID    core.ID    `json:"user_id"`
	DatasetID core.ID    `json:"dataset_id"`
	Title     string     `json:"title"`
	ChartType Type       `json:"chart_type"`
	Config    Config     `json:"config"`
	Data      *ChartData `json:"data"`
	CreatedAt time.Time  `json:"created_at"`
}
