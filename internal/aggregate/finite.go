package aggregate

import (
	"fmt"
	"math"

	"sheetcharts/domain/chart"
	"sheetcharts/internal/errors"

	"gonum.org/v1/gonum/stat"
)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Mean averages values. Inputs near the float64 limit are rescaled so the
// mean of finite values stays finite even when their sum does not.
func Mean(values []float64) float64 {
	return rescaled(values, func(v []float64) float64 { return stat.Mean(v, nil) })
}

// rescaled evaluates fn over values and, when that overflows, again over
// values divided by their largest magnitude. fn must be scale-equivariant.
func rescaled(values []float64, fn func([]float64) float64) float64 {
	result := fn(values)
	if isFinite(result) {
		return result
	}

	var scale float64
	for _, v := range values {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 || !isFinite(scale) {
		return result
	}

	unit := make([]float64, len(values))
	for i, v := range values {
		unit[i] = v / scale
	}
	return fn(unit) * scale
}

// finiteRows rejects results that cannot be encoded as JSON numbers, such
// as a group sum past the float64 range.
func finiteRows(column string, rows []chart.DerivedRow) ([]chart.DerivedRow, error) {
	for _, r := range rows {
		values := []float64{r.Value}
		if r.Bin != nil {
			values = append(values, r.BinStart, r.BinEnd)
		}
		if r.BoxStats != nil {
			values = append(values, r.Min, r.Q1, r.Median, r.Q3, r.Max, r.Mean)
		}
		for _, v := range values {
			if !isFinite(v) {
				return nil, errors.InvalidInput(fmt.Sprintf("values in column %q are too large to aggregate", column))
			}
		}
	}
	return rows, nil
}
