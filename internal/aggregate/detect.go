package aggregate

import (
	"math"
	"strconv"
	"strings"
	"time"

	"sheetcharts/domain/dataset"
)

// Classification threshold: a column is numeric (or date) when more than
// this share of its non-empty cells parse as such.
const typeRatioThreshold = 0.8

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// DetectColumnType classifies one column's raw values as numeric, date,
// text or empty. It never fails.
func DetectColumnType(values []interface{}) dataset.ColumnType {
	present := 0
	numeric := 0
	dates := 0
	for _, v := range values {
		if isEmptyCell(v) {
			continue
		}
		present++
		if isFiniteNumber(v) {
			numeric++
		}
		if isDate(v) {
			dates++
		}
	}

	if present == 0 {
		return dataset.ColumnEmpty
	}
	if float64(numeric)/float64(present) > typeRatioThreshold {
		return dataset.ColumnNumeric
	}
	if float64(dates)/float64(present) > typeRatioThreshold {
		return dataset.ColumnDate
	}
	return dataset.ColumnText
}

func isEmptyCell(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// isFiniteNumber is stricter than ParseNumber: the whole trimmed string
// must be a number, so "12abc" does not make a column numeric.
func isFiniteNumber(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		_, ok := ParseNumber(v)
		return ok
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isDate(v interface{}) bool {
	switch c := v.(type) {
	case time.Time:
		return !c.IsZero()
	case string:
		s := strings.TrimSpace(c)
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
	}
	return false
}
