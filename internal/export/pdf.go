package export

import (
	"bytes"

	"sheetcharts/domain/chart"

	"github.com/go-pdf/fpdf"
)

// maxPDFRows caps the data table so large categorical charts stay on a few pages
const maxPDFRows = 200

// PDF writes a landscape report with the title, the chart image and its data table
func PDF(data *chart.ChartData, opts Options) ([]byte, error) {
	image, err := PNG(data, opts)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(data.Title, true)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 10, data.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	imageOpts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("chart", imageOpts, bytes.NewReader(image))
	imageH := contentW * float64(opts.Height) / float64(opts.Width)
	pdf.ImageOptions("chart", left, pdf.GetY(), contentW, imageH, true, imageOpts, 0, "")
	pdf.Ln(4)

	rows := tableRows(data)
	if len(rows) > maxPDFRows+1 {
		rows = rows[:maxPDFRows+1]
	}
	colW := contentW / float64(len(rows[0]))
	for i, row := range rows {
		if i == 0 {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetFillColor(230, 230, 230)
		} else {
			pdf.SetFont("Helvetica", "", 9)
		}
		for _, v := range row {
			pdf.CellFormat(colW, 6, formatCell(v), "1", 0, "L", i == 0, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
