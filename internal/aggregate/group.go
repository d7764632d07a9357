package aggregate

import (
	"strings"

	"sheetcharts/domain/chart"
	"sheetcharts/domain/dataset"
	"sheetcharts/internal/errors"

	"github.com/montanaflynn/stats"
)

// Function is a group reducer
type Function string

const (
	FuncSum    Function = "sum"
	FuncAvg    Function = "avg"
	FuncCount  Function = "count"
	FuncMax    Function = "max"
	FuncMin    Function = "min"
	FuncMedian Function = "median"
	FuncStd    Function = "std"
)

// ParseFunction resolves a reducer name. Aliases average and stddev are
// accepted; any unrecognized name falls back to sum without error.
func ParseFunction(name string) Function {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "avg", "average":
		return FuncAvg
	case "count":
		return FuncCount
	case "max":
		return FuncMax
	case "min":
		return FuncMin
	case "median":
		return FuncMedian
	case "std", "stddev":
		return FuncStd
	default:
		return FuncSum
	}
}

type group struct {
	key    string
	values []float64
}

// GroupAggregate produces one row per distinct group key, in the order keys
// were first seen. Values use the zero-fill policy of ToNumber, so a
// non-numeric cell still counts toward count and avg.
func GroupAggregate(table *dataset.Table, req GroupRequest) ([]chart.DerivedRow, error) {
	var missing []string
	if req.GroupBy == "" {
		missing = append(missing, "groupBy")
	}
	if req.ValueColumn == "" {
		missing = append(missing, "aggregateField")
	}
	if len(missing) > 0 {
		return nil, errors.MissingParameter(missing...)
	}

	groupIdx, err := resolveColumn(table, req.GroupBy)
	if err != nil {
		return nil, err
	}
	valueIdx, err := resolveColumn(table, req.ValueColumn)
	if err != nil {
		return nil, err
	}

	limited := table.Limit(req.Limit)
	index := make(map[string]int)
	var groups []*group
	for i := range limited.Rows {
		key := GroupKey(limited.Cell(i, groupIdx))
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, &group{key: key})
		}
		groups[pos].values = append(groups[pos].values, ToNumber(limited.Cell(i, valueIdx)))
	}

	if len(groups) == 0 {
		return nil, errors.NoData("no rows available to aggregate")
	}

	fn := ParseFunction(req.Function)
	rows := make([]chart.DerivedRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, chart.DerivedRow{
			Label: g.key,
			Value: Round2(reduce(fn, g.values)),
		})
	}
	return finiteRows(req.ValueColumn, rows)
}

// reduce applies fn to a non-empty group
func reduce(fn Function, values []float64) float64 {
	if fn == FuncCount {
		return float64(len(values))
	}
	return rescaled(values, func(v []float64) float64 { return reduceFloat(fn, v) })
}

func reduceFloat(fn Function, values []float64) float64 {
	data := stats.Float64Data(values)
	var (
		result float64
		err    error
	)
	switch fn {
	case FuncAvg:
		result, err = stats.Mean(data)
	case FuncMax:
		result, err = stats.Max(data)
	case FuncMin:
		result, err = stats.Min(data)
	case FuncMedian:
		result, err = stats.Median(data)
	case FuncStd:
		result, err = stats.StandardDeviationPopulation(data)
	default:
		result, err = stats.Sum(data)
	}
	if err != nil {
		return 0
	}
	return result
}
