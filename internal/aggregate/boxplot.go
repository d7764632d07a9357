package aggregate

import (
	"math"
	"sort"

	"sheetcharts/domain/chart"
	"sheetcharts/domain/dataset"
)

// Boxplot summarizes a column as a single row carrying the five-number
// summary, mean and outlier count. Unparseable cells are dropped.
func Boxplot(table *dataset.Table, req StatRequest) ([]chart.DerivedRow, error) {
	values, err := statColumn(table, req)
	if err != nil {
		return nil, err
	}

	box := BoxStats(values)
	return finiteRows(req.Column, []chart.DerivedRow{{
		Label:    req.Column,
		Value:    box.Median,
		BoxStats: &box,
	}})
}

// BoxStats computes Tukey boxplot statistics over non-empty values.
//
// Quartiles are positional and not interpolated: q1 = s[floor(n*0.25)],
// median = s[floor(n*0.5)], q3 = s[floor(n*0.75)]. For 1..10 that gives
// 3, 6 and 8. Reported min and max are clamped to the 1.5*IQR fences.
func BoxStats(values []float64) chart.BoxStats {
	sorted := sortedCopy(values)
	q1, median, q3 := floorQuartiles(sorted)

	iqr := q3 - q1
	lowerFence := q1 - 1.5*iqr
	upperFence := q3 + 1.5*iqr

	outliers := 0
	for _, v := range sorted {
		if v < lowerFence || v > upperFence {
			outliers++
		}
	}

	return chart.BoxStats{
		Min:          math.Max(sorted[0], lowerFence),
		Q1:           q1,
		Median:       median,
		Q3:           q3,
		Max:          math.Min(sorted[len(sorted)-1], upperFence),
		Mean:         Mean(sorted),
		OutlierCount: outliers,
		Method:       chart.QuantileMethod,
	}
}

// floorQuartiles reads q1, median and q3 from an ascending, non-empty slice
func floorQuartiles(sorted []float64) (q1, median, q3 float64) {
	n := float64(len(sorted))
	q1 = sorted[int(math.Floor(n*0.25))]
	median = sorted[int(math.Floor(n*0.5))]
	q3 = sorted[int(math.Floor(n*0.75))]
	return q1, median, q3
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}
