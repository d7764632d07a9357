package export

import (
	"bytes"
	"fmt"
	"math"

	"sheetcharts/domain/chart"
	"sheetcharts/internal/errors"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var seriesColor = drawing.Color{R: 54, G: 162, B: 235, A: 255}

// PNG draws the chart as an image
func PNG(data *chart.ChartData, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	var buf bytes.Buffer
	var err error

	switch data.Type {
	case chart.TypePie, chart.TypeDoughnut:
		err = renderPie(&buf, data, opts)
	case chart.TypeLine, chart.TypeArea, chart.TypeScatter:
		err = renderContinuous(&buf, data, opts)
	case chart.TypeBoxplot:
		err = renderBars(&buf, data.Title, boxplotBars(data), opts)
	default:
		err = renderBars(&buf, data.Title, categoryBars(data), opts)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func categoryBars(data *chart.ChartData) []gochart.Value {
	values := primary(data)
	bars := make([]gochart.Value, 0, len(data.Labels))
	for i, label := range data.Labels {
		if i >= len(values) {
			break
		}
		bars = append(bars, gochart.Value{Label: label, Value: values[i]})
	}
	return bars
}

// boxplotBars draws the five-number summary as adjacent bars
func boxplotBars(data *chart.ChartData) []gochart.Value {
	b := data.Boxplot
	if b == nil {
		return categoryBars(data)
	}
	return []gochart.Value{
		{Label: "min", Value: b.Min},
		{Label: "q1", Value: b.Q1},
		{Label: "median", Value: b.Median},
		{Label: "q3", Value: b.Q3},
		{Label: "max", Value: b.Max},
	}
}

func renderBars(buf *bytes.Buffer, title string, bars []gochart.Value, opts Options) error {
	if len(bars) == 0 {
		return errors.NoData("no values to draw")
	}
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	lo, hi = paddedRange(lo, hi)

	barWidth := (opts.Width - 120) / len(bars)
	if barWidth < 4 {
		barWidth = 4
	}
	if barWidth > 80 {
		barWidth = 80
	}

	bc := gochart.BarChart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.Style{},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
	return bc.Render(gochart.PNG, buf)
}

func renderPie(buf *bytes.Buffer, data *chart.ChartData, opts Options) error {
	values := primary(data)
	slices := make([]gochart.Value, 0, len(values))
	for i, v := range values {
		// a slice needs a positive share of the total
		if v <= 0 || i >= len(data.Labels) {
			continue
		}
		slices = append(slices, gochart.Value{Label: data.Labels[i], Value: v})
	}
	if len(slices) == 0 {
		return errors.NoValidData(yName(data))
	}

	if data.Type == chart.TypeDoughnut {
		dc := gochart.DonutChart{Title: data.Title, Width: opts.Width, Height: opts.Height, Values: slices}
		return dc.Render(gochart.PNG, buf)
	}
	pc := gochart.PieChart{Title: data.Title, Width: opts.Width, Height: opts.Height, Values: slices}
	return pc.Render(gochart.PNG, buf)
}

func renderContinuous(buf *bytes.Buffer, data *chart.ChartData, opts Options) error {
	var xs, ys []float64
	var ticks []gochart.Tick

	if data.Type == chart.TypeScatter && len(data.Points) > 0 {
		for _, p := range data.Points {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
	} else {
		ys = append(ys, primary(data)...)
		for i := range ys {
			xs = append(xs, float64(i))
			if i < len(data.Labels) {
				ticks = append(ticks, gochart.Tick{Value: float64(i), Label: data.Labels[i]})
			}
		}
	}
	if len(ys) == 0 {
		return errors.NoData("no values to draw")
	}
	// go-chart needs two points to establish a range
	if len(xs) == 1 {
		xs = []float64{xs[0], xs[0] + 1}
		ys = []float64{ys[0], ys[0]}
	}

	style := gochart.Style{StrokeColor: seriesColor, StrokeWidth: 2}
	switch data.Type {
	case chart.TypeArea:
		style.FillColor = seriesColor.WithAlpha(64)
	case chart.TypeScatter:
		style = gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 4, DotColor: seriesColor}
	}

	xlo, xhi := minMax(xs)
	ylo, yhi := minMax(ys)
	if data.Type == chart.TypeArea {
		ylo = math.Min(ylo, 0)
	}
	ylo, yhi = paddedRange(ylo, yhi)
	if xhi == xlo {
		xhi = xlo + 1
	}

	name := yName(data)
	if len(data.Datasets) > 0 && data.Datasets[0].Label != "" {
		name = data.Datasets[0].Label
	}

	ch := gochart.Chart{
		Title:      data.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: xName(data), Ticks: ticks, Range: &gochart.ContinuousRange{Min: xlo, Max: xhi}},
		YAxis:      gochart.YAxis{Name: name, Range: &gochart.ContinuousRange{Min: ylo, Max: yhi}},
		Series: []gochart.Series{
			gochart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: style},
		},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	if err := ch.Render(gochart.PNG, buf); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", data.Type, err)
	}
	return nil
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// paddedRange widens [lo, hi] by 5% and guarantees a non-zero span
func paddedRange(lo, hi float64) (float64, float64) {
	if hi <= lo {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	if lo < 0 {
		lo -= pad
	}
	return lo, hi + pad
}
