package aggregate

import (
	"fmt"

	"sheetcharts/domain/dataset"
	"sheetcharts/internal/errors"

	"github.com/montanaflynn/stats"
)

// Summarize computes descriptive statistics over a column's cells using the
// drop policy. Q1, median and Q3 are floor-indexed like BoxStats, so a
// column's summary and its boxplot report the same quartiles.
func Summarize(column string, cells []interface{}) (*dataset.NumericSummary, error) {
	values := NumericValues(cells)
	if len(values) == 0 {
		return nil, errors.NoValidData(column)
	}

	data := stats.Float64Data(values)
	sum, _ := data.Sum()
	lo, _ := data.Min()
	hi, _ := data.Max()
	std := rescaled(values, func(v []float64) float64 {
		s, _ := stats.StandardDeviationPopulation(v)
		return s
	})
	q1, median, q3 := floorQuartiles(sortedCopy(values))
	if !isFinite(sum) || !isFinite(hi-lo) {
		return nil, errors.InvalidInput(fmt.Sprintf("values in column %q are too large to summarize", column))
	}

	return &dataset.NumericSummary{
		Count:  len(values),
		Sum:    sum,
		Mean:   Mean(values),
		Median: median,
		StdDev: std,
		Min:    lo,
		Max:    hi,
		Q1:     q1,
		Q3:     q3,
		Range:  hi - lo,
	}, nil
}

// ProfileColumns detects each column's type and, for numeric columns,
// attaches a summary. Used when a dataset is stored.
func ProfileColumns(table *dataset.Table) []dataset.ColumnProfile {
	profiles := make([]dataset.ColumnProfile, len(table.Headers))
	for i, name := range table.Headers {
		cells := table.Column(i)
		profile := dataset.ColumnProfile{
			Name:  name,
			Index: i,
			Type:  DetectColumnType(cells),
		}

		unique := make(map[string]struct{})
		for _, c := range cells {
			if isEmptyCell(c) {
				profile.MissingCount++
				continue
			}
			profile.NonEmpty++
			unique[GroupKey(c)] = struct{}{}
		}
		profile.UniqueCount = len(unique)

		if profile.Type == dataset.ColumnNumeric {
			if summary, err := Summarize(name, cells); err == nil {
				profile.Summary = summary
			}
		}
		profiles[i] = profile
	}
	return profiles
}
