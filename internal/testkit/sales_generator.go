package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"sheetcharts/domain/dataset"
)

// SalesGeneratorConfig configures the synthetic sales sheet generator
type SalesGeneratorConfig struct {
	Rows        int       `json:"rows"`
	Regions     []string  `json:"regions"`
	Products    []string  `json:"products"`
	BasePrice   float64   `json:"base_price"`
	OutlierRate float64   `json:"outlier_rate"` // share of rows with an extreme Revenue
	MissingRate float64   `json:"missing_rate"` // share of blank Revenue cells
	DirtyRate   float64   `json:"dirty_rate"`   // share of Revenue cells written as text like "n/a"
	StartDate   time.Time `json:"start_date"`
	Seed        int64     `json:"seed"`
}

// SalesHeaders is the column layout of generated sheets
var SalesHeaders = []string{"Date", "Region", "Product", "Units", "Revenue"}

// DefaultSalesConfig returns sensible defaults for sales sheet generation
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		Rows:        200,
		Regions:     []string{"North", "South", "East", "West"},
		Products:    []string{"Widget", "Gadget", "Gizmo"},
		BasePrice:   25,
		OutlierRate: 0.02,
		MissingRate: 0.03,
		DirtyRate:   0.02,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:        42,
	}
}

// SalesDataGenerator produces deterministic spreadsheet-shaped sales data
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a new sales data generator
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	if len(config.Regions) == 0 {
		config.Regions = DefaultSalesConfig().Regions
	}
	if len(config.Products) == 0 {
		config.Products = DefaultSalesConfig().Products
	}
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRecords returns the header row followed by Rows data rows, all as strings
func (g *SalesDataGenerator) GenerateRecords() [][]string {
	records := make([][]string, 0, g.config.Rows+1)
	records = append(records, append([]string(nil), SalesHeaders...))

	for i := 0; i < g.config.Rows; i++ {
		region := g.config.Regions[g.rng.Intn(len(g.config.Regions))]
		product := g.config.Products[g.rng.Intn(len(g.config.Products))]
		units := 1 + g.rng.Intn(20)
		day := g.config.StartDate.AddDate(0, 0, i%90)

		records = append(records, []string{
			day.Format("2006-01-02"),
			region,
			product,
			strconv.Itoa(units),
			g.revenueCell(units, region),
		})
	}
	return records
}

// revenueCell applies the missing, dirty and outlier rates to a unit price
// that varies a little by region.
func (g *SalesDataGenerator) revenueCell(units int, region string) string {
	roll := g.rng.Float64()
	switch {
	case roll < g.config.MissingRate:
		return ""
	case roll < g.config.MissingRate+g.config.DirtyRate:
		return "n/a"
	}

	price := g.config.BasePrice * (1 + 0.05*float64(len(region)%4))
	revenue := float64(units) * price * (0.9 + 0.2*g.rng.Float64())
	if g.rng.Float64() < g.config.OutlierRate {
		revenue *= 20
	}
	return strconv.FormatFloat(math.Round(revenue*100)/100, 'f', 2, 64)
}

// GenerateTable returns the generated rows as a table of string cells
func (g *SalesDataGenerator) GenerateTable() *dataset.Table {
	records := g.GenerateRecords()
	table := &dataset.Table{Headers: records[0], Rows: make([][]interface{}, 0, len(records)-1)}
	for _, rec := range records[1:] {
		row := make([]interface{}, len(rec))
		for i, cell := range rec {
			row[i] = cell
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// GenerateCSV returns the generated rows encoded as CSV
func (g *SalesDataGenerator) GenerateCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(g.GenerateRecords()); err != nil {
		return nil, fmt.Errorf("failed to write sales csv: %w", err)
	}
	return buf.Bytes(), nil
}

// SalesCSV is a shorthand for a seeded sheet of n rows
func SalesCSV(n int, seed int64) []byte {
	cfg := DefaultSalesConfig()
	cfg.Rows = n
	cfg.Seed = seed
	content, err := NewSalesDataGenerator(cfg).GenerateCSV()
	if err != nil {
		panic(err)
	}
	return content
}
