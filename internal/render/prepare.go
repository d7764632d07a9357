// Package render prepares chart-ready series from a dataset table and a
// chart configuration. Categorical charts plot rows directly or, when an
// aggregate function is configured, the grouped engine output.
package render

import (
	"fmt"
	"math"
	"sort"

	"sheetcharts/domain/chart"
	"sheetcharts/domain/dataset"
	"sheetcharts/internal/aggregate"
	"sheetcharts/internal/errors"

	"gonum.org/v1/gonum/floats"
)

// Prepare builds the drawable data for cfg over table
func Prepare(table *dataset.Table, cfg chart.Config) (*chart.ChartData, error) {
	if table == nil {
		return nil, errors.NoData("dataset has no rows")
	}
	chartType, ok := chart.ParseType(string(cfg.Type))
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported chart type %q", cfg.Type))
	}
	cfg.Type = chartType

	switch chartType {
	case chart.TypeHistogram:
		return histogram(table, cfg)
	case chart.TypeBoxplot:
		return boxplot(table, cfg)
	case chart.TypeScatter:
		return scatter(table, cfg)
	default:
		if cfg.AggregateFunction != "" {
			return grouped(table, cfg)
		}
		return categorical(table, cfg)
	}
}

func titleOr(cfg chart.Config, fallback string) string {
	if cfg.Title != "" {
		return cfg.Title
	}
	return fallback
}

func requireAxes(cfg chart.Config) error {
	var missing []string
	if cfg.XColumn == "" {
		missing = append(missing, "xAxis")
	}
	if cfg.YColumn == "" {
		missing = append(missing, "yAxis")
	}
	if len(missing) > 0 {
		return errors.MissingParameter(missing...)
	}
	return nil
}

func axisIndexes(table *dataset.Table, cfg chart.Config) (int, int, error) {
	if err := requireAxes(cfg); err != nil {
		return -1, -1, err
	}
	x := table.ColumnIndex(cfg.XColumn)
	if x < 0 {
		return -1, -1, errors.ColumnNotFound(cfg.XColumn, table.Headers)
	}
	y := table.ColumnIndex(cfg.YColumn)
	if y < 0 {
		return -1, -1, errors.ColumnNotFound(cfg.YColumn, table.Headers)
	}
	return x, y, nil
}

// categorical plots one label/value pair per row
func categorical(table *dataset.Table, cfg chart.Config) (*chart.ChartData, error) {
	x, y, err := axisIndexes(table, cfg)
	if err != nil {
		return nil, err
	}
	limited := table.Limit(cfg.Limit)
	if limited.RowCount() == 0 {
		return nil, errors.NoData("dataset has no rows")
	}

	labels := make([]string, limited.RowCount())
	values := make([]float64, limited.RowCount())
	for i := range limited.Rows {
		labels[i] = aggregate.GroupKey(limited.Cell(i, x))
		values[i] = aggregate.ToNumber(limited.Cell(i, y))
	}

	return &chart.ChartData{
		Type:     cfg.Type,
		Title:    titleOr(cfg, fmt.Sprintf("%s by %s", cfg.YColumn, cfg.XColumn)),
		XLabel:   cfg.XColumn,
		YLabel:   cfg.YColumn,
		Labels:   labels,
		Datasets: []chart.Series{{Label: cfg.YColumn, Data: values}},
	}, nil
}

func grouped(table *dataset.Table, cfg chart.Config) (*chart.ChartData, error) {
	if err := requireAxes(cfg); err != nil {
		return nil, err
	}
	rows, err := aggregate.GroupAggregate(table, aggregate.GroupRequest{
		GroupBy:     cfg.XColumn,
		ValueColumn: cfg.YColumn,
		Function:    cfg.AggregateFunction,
		Limit:       cfg.Limit,
	})
	if err != nil {
		return nil, err
	}

	fn := aggregate.ParseFunction(cfg.AggregateFunction)
	seriesLabel := fmt.Sprintf("%s of %s", fn, cfg.YColumn)
	data := chart.FromDerived(cfg.Type, titleOr(cfg, fmt.Sprintf("%s by %s", seriesLabel, cfg.XColumn)), seriesLabel, rows)
	data.XLabel = cfg.XColumn
	data.YLabel = seriesLabel
	return data, nil
}

func scatter(table *dataset.Table, cfg chart.Config) (*chart.ChartData, error) {
	x, y, err := axisIndexes(table, cfg)
	if err != nil {
		return nil, err
	}
	limited := table.Limit(cfg.Limit)
	if limited.RowCount() == 0 {
		return nil, errors.NoData("dataset has no rows")
	}

	n := limited.RowCount()
	labels := make([]string, n)
	ys := make([]float64, n)
	points := make([]chart.Point, n)
	for i := range limited.Rows {
		xv := limited.Cell(i, x)
		labels[i] = aggregate.GroupKey(xv)
		ys[i] = aggregate.ToNumber(limited.Cell(i, y))
		points[i] = chart.Point{X: aggregate.ToNumber(xv), Y: ys[i]}
	}

	return &chart.ChartData{
		Type:     chart.TypeScatter,
		Title:    titleOr(cfg, fmt.Sprintf("%s vs %s", cfg.YColumn, cfg.XColumn)),
		XLabel:   cfg.XColumn,
		YLabel:   cfg.YColumn,
		Labels:   labels,
		Datasets: []chart.Series{{Label: cfg.YColumn, Data: ys}},
		Points:   points,
	}, nil
}

func histogram(table *dataset.Table, cfg chart.Config) (*chart.ChartData, error) {
	column := cfg.StatColumn()
	rows, err := aggregate.Histogram(table, aggregate.StatRequest{
		Column:   column,
		Kind:     aggregate.StatHistogram,
		BinCount: cfg.BinCount,
		Limit:    cfg.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := chart.FromDerived(chart.TypeHistogram, titleOr(cfg, "Distribution of "+column), "Frequency", rows)
	data.XLabel = column
	data.YLabel = "Frequency"
	return data, nil
}

// boxplot computes its statistics here rather than through the engine so
// the outlier values themselves can be returned.
func boxplot(table *dataset.Table, cfg chart.Config) (*chart.ChartData, error) {
	column := cfg.StatColumn()
	if column == "" {
		return nil, errors.MissingParameter("column")
	}
	idx := table.ColumnIndex(column)
	if idx < 0 {
		return nil, errors.ColumnNotFound(column, table.Headers)
	}
	values := aggregate.NumericValues(table.Limit(cfg.Limit).Column(idx))
	if len(values) == 0 {
		return nil, errors.NoValidData(column)
	}

	series := BoxplotSeries(column, values)
	return &chart.ChartData{
		Type:     chart.TypeBoxplot,
		Title:    titleOr(cfg, "Spread of "+column),
		YLabel:   column,
		Labels:   []string{column},
		Datasets: []chart.Series{{Label: column, Data: []float64{series.Median}}},
		Boxplot:  series,
	}, nil
}

// BoxplotSeries returns Tukey statistics for values together with the
// values lying outside the 1.5*IQR fences.
func BoxplotSeries(label string, values []float64) *chart.BoxplotSeries {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	at := func(p float64) float64 { return sorted[int(math.Floor(n*p))] }
	q1, median, q3 := at(0.25), at(0.5), at(0.75)

	iqr := q3 - q1
	lower, upper := q1-1.5*iqr, q3+1.5*iqr
	outliers := []float64{}
	for _, v := range sorted {
		if v < lower || v > upper {
			outliers = append(outliers, v)
		}
	}

	return &chart.BoxplotSeries{
		Label: label,
		BoxStats: chart.BoxStats{
			Min:          math.Max(floats.Min(sorted), lower),
			Q1:           q1,
			Median:       median,
			Q3:           q3,
			Max:          math.Min(floats.Max(sorted), upper),
			Mean:         aggregate.Mean(sorted),
			OutlierCount: len(outliers),
			Method:       chart.QuantileMethod,
		},
		Outliers: outliers,
	}
}
