package aggregate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ToNumber converts a cell for group aggregation. Missing or unparseable
// cells become 0 and are still counted by the caller.
func ToNumber(cell interface{}) float64 {
	if cell == nil {
		return 0
	}
	if s, ok := cell.(string); ok && s == "" {
		return 0
	}
	if v, ok := ParseNumber(cell); ok {
		return v
	}
	return 0
}

// ParseNumber converts a cell for the statistical path. ok is false when the
// cell has no finite numeric reading; such cells are dropped, never zeroed.
// Strings are read like a browser's parseFloat: leading whitespace skipped,
// longest numeric prefix taken ("3.5kg" reads as 3.5).
func ParseNumber(cell interface{}) (float64, bool) {
	var v float64
	switch c := cell.(type) {
	case nil:
		return 0, false
	case string:
		return parseLeadingFloat(c)
	case float64:
		v = c
	case float32:
		v = float64(c)
	case int:
		v = float64(c)
	case int8:
		v = float64(c)
	case int16:
		v = float64(c)
	case int32:
		v = float64(c)
	case int64:
		v = float64(c)
	case uint:
		v = float64(c)
	case uint8:
		v = float64(c)
	case uint16:
		v = float64(c)
	case uint32:
		v = float64(c)
	case uint64:
		v = float64(c)
	case json.Number:
		return parseLeadingFloat(c.String())
	case bool, time.Time:
		return 0, false
	default:
		return parseLeadingFloat(fmt.Sprint(c))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseLeadingFloat scans sign, digits, fraction and exponent from the
// start of s and parses that prefix.
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	intStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	digits := i - intStart

	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		digits += j - i - 1
		i = j
	}
	if digits == 0 {
		return 0, false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			i = j
		}
	}

	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// NumericValues applies the drop policy: cells that do not parse are skipped.
func NumericValues(cells []interface{}) []float64 {
	values := make([]float64, 0, len(cells))
	for _, c := range cells {
		if v, ok := ParseNumber(c); ok {
			values = append(values, v)
		}
	}
	return values
}

// Round2 rounds half toward positive infinity at two decimals, matching
// Math.round(v * 100) / 100 so results agree with previously saved charts.
// Magnitudes of 1e15 and up carry no cents and are returned as is.
func Round2(v float64) float64 {
	if math.Abs(v) >= 1e15 || !isFinite(v) {
		return v
	}
	return math.Floor(v*100+0.5) / 100
}

// GroupKey stringifies a group-by cell. Missing cells group under "Unknown".
func GroupKey(cell interface{}) string {
	switch c := cell.(type) {
	case nil:
		return UnknownGroup
	case string:
		if c == "" {
			return UnknownGroup
		}
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(c), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(c)
	case time.Time:
		return c.Format(time.RFC3339)
	default:
		return fmt.Sprint(c)
	}
}

// UnknownGroup labels rows whose group-by cell is missing
const UnknownGroup = "Unknown"
