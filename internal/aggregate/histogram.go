package aggregate

import (
	"fmt"
	"math"

	"sheetcharts/domain/chart"
	"sheetcharts/domain/dataset"
	"sheetcharts/internal/errors"

	"gonum.org/v1/gonum/floats"
)

// Histogram bins the column's numeric values into BinCount equal-width
// buckets over [min, max]. Unparseable cells are dropped. Exactly BinCount
// rows are returned, empty bins included.
func Histogram(table *dataset.Table, req StatRequest) ([]chart.DerivedRow, error) {
	binCount := req.BinCount
	if binCount == 0 {
		binCount = DefaultBinCount
	}
	if binCount < 1 {
		return nil, errors.InvalidInput(fmt.Sprintf("binCount must be positive, got %d", binCount))
	}

	values, err := statColumn(table, req)
	if err != nil {
		return nil, err
	}
	return finiteRows(req.Column, binValues(values, binCount))
}

func binValues(values []float64, binCount int) []chart.DerivedRow {
	lo := floats.Min(values)
	hi := floats.Max(values)
	width := (hi - lo) / float64(binCount)

	// A range wider than float64 can hold is spread by interpolation
	edge := func(i int) float64 {
		if math.IsInf(width, 0) {
			t := float64(i) / float64(binCount)
			return lo*(1-t) + hi*t
		}
		return lo + float64(i)*width
	}

	counts := make([]int, binCount)
	for _, v := range values {
		counts[binIndex(v, lo, hi, width, binCount)]++
	}

	rows := make([]chart.DerivedRow, binCount)
	for i, n := range counts {
		start := edge(i)
		end := edge(i + 1)
		label := fmt.Sprintf("%.1f-%.1f", start, end)
		rows[i] = chart.DerivedRow{
			Label: label,
			Value: float64(n),
			Bin: &chart.Bin{
				Range:    label,
				Count:    n,
				BinStart: start,
				BinEnd:   end,
			},
		}
	}
	return rows
}

// binIndex places v in [0, binCount-1]. A zero width (all values equal)
// puts everything in bin 0; the maximum lands on the last bin.
func binIndex(v, lo, hi, width float64, binCount int) int {
	if width == 0 {
		return 0
	}
	pos := (v - lo) / width
	if math.IsInf(width, 0) {
		pos = (v/2 - lo/2) / (hi/2 - lo/2) * float64(binCount)
	}
	idx := int(math.Floor(pos))
	if idx >= binCount {
		idx = binCount - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
