package export

import (
	"fmt"

	"sheetcharts/domain/chart"

	"github.com/xuri/excelize/v2"
)

const dataSheet = "Data"

var excelChartTypes = map[chart.Type]excelize.ChartType{
	chart.TypeBar:       excelize.Col,
	chart.TypeLine:      excelize.Line,
	chart.TypeArea:      excelize.Area,
	chart.TypePie:       excelize.Pie,
	chart.TypeDoughnut:  excelize.Doughnut,
	chart.TypeScatter:   excelize.Scatter,
	chart.TypeHistogram: excelize.Col,
	chart.TypeBoxplot:   excelize.Col,
}

// XLSX writes a workbook with the chart table on a "Data" sheet and a
// native Excel chart drawn from it.
func XLSX(data *chart.ChartData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, err
	}

	rows := tableRows(data)
	// boxplot tables are one wide row; chart the five numbers as a column
	if data.Boxplot != nil {
		rows = boxplotColumn(data)
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(dataSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err := f.SetCellStyle(dataSheet, "A1", last, bold); err != nil {
			return nil, err
		}
	}

	if len(rows) > 1 {
		if err := f.AddChart(dataSheet, anchorCell(len(rows[0])), excelChart(data, rows)); err != nil {
			return nil, fmt.Errorf("failed to add chart: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func boxplotColumn(data *chart.ChartData) [][]interface{} {
	b := data.Boxplot
	return [][]interface{}{
		{"statistic", b.Label},
		{"min", b.Min},
		{"q1", b.Q1},
		{"median", b.Median},
		{"q3", b.Q3},
		{"max", b.Max},
		{"mean", b.Mean},
		{"outlierCount", b.OutlierCount},
	}
}

func anchorCell(columns int) string {
	cell, _ := excelize.CoordinatesToCellName(columns+2, 2)
	return cell
}

func excelChart(data *chart.ChartData, rows [][]interface{}) *excelize.Chart {
	chartType, ok := excelChartTypes[data.Type]
	if !ok {
		chartType = excelize.Col
	}

	last := len(rows)
	if data.Boxplot != nil {
		// min..max, leaving mean and outlier count out of the bars
		last = 6
	}
	return &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", dataSheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", dataSheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", dataSheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: data.Title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}
}
