// Package aggregate turns raw spreadsheet rows into small derived datasets
// for charting: grouped aggregates, histogram bins and boxplot statistics.
// Every function here is pure; inputs are never mutated.
package aggregate

import (
	"fmt"

	"sheetcharts/domain/chart"
	"sheetcharts/domain/dataset"
	"sheetcharts/internal/errors"
)

// DefaultBinCount is used when a histogram request leaves binCount unset
const DefaultBinCount = 10

// Request is one of GroupRequest or StatRequest
type Request interface {
	rowLimit() int
}

// GroupRequest groups rows by one column and reduces another per group
type GroupRequest struct {
	GroupBy     string
	ValueColumn string
	Function    string
	Limit       int
}

func (r GroupRequest) rowLimit() int { return r.Limit }

// StatKind selects the statistical computation
type StatKind string

const (
	StatHistogram StatKind = "histogram"
	StatBoxplot   StatKind = "boxplot"
)

// StatRequest asks for histogram bins or boxplot statistics over one column
type StatRequest struct {
	Column   string
	Kind     StatKind
	BinCount int
	Limit    int
}

func (r StatRequest) rowLimit() int { return r.Limit }

// Aggregate dispatches a request against the first Limit rows of table
func Aggregate(table *dataset.Table, req Request) ([]chart.DerivedRow, error) {
	switch r := req.(type) {
	case GroupRequest:
		return GroupAggregate(table, r)
	case StatRequest:
		switch r.Kind {
		case StatHistogram:
			return Histogram(table, r)
		case StatBoxplot:
			return Boxplot(table, r)
		default:
			return nil, errors.InvalidInput(fmt.Sprintf("unsupported statistical chart type %q", r.Kind))
		}
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported aggregation request %T", req))
	}
}

// resolveColumn maps a header name to its index
func resolveColumn(table *dataset.Table, name string) (int, error) {
	idx := table.ColumnIndex(name)
	if idx < 0 {
		return -1, errors.ColumnNotFound(name, table.Headers)
	}
	return idx, nil
}

// statColumn validates a statistical request and returns the limited,
// drop-filtered numeric values of its column.
func statColumn(table *dataset.Table, req StatRequest) ([]float64, error) {
	if req.Column == "" {
		return nil, errors.MissingParameter("column")
	}
	idx, err := resolveColumn(table, req.Column)
	if err != nil {
		return nil, err
	}
	values := NumericValues(table.Limit(req.Limit).Column(idx))
	if len(values) == 0 {
		return nil, errors.NoValidData(req.Column)
	}
	return values, nil
}
