package aggregate

import (
	"testing"
	"time"

	"sheetcharts/domain/dataset"

	"github.com/stretchr/testify/assert"
)

func TestDetectColumnType(t *testing.T) {
	tests := []struct {
		name   string
		values []interface{}
		want   dataset.ColumnType
	}{
		{"all empty", []interface{}{nil, "", nil}, dataset.ColumnEmpty},
		{"no values", nil, dataset.ColumnEmpty},
		{"numeric strings", []interface{}{"1", "2.5", "-3", "4e2", "5"}, dataset.ColumnNumeric},
		{"numbers", []interface{}{1.0, 2, int64(3)}, dataset.ColumnNumeric},
		{"empties ignored", []interface{}{"1", "", nil, "2"}, dataset.ColumnNumeric},
		{"exactly 80 percent is not enough", []interface{}{"1", "2", "3", "4", "x"}, dataset.ColumnText},
		{"above 80 percent", []interface{}{"1", "2", "3", "4", "5", "x"}, dataset.ColumnNumeric},
		{"unit suffix is text", []interface{}{"1kg", "2kg", "3kg"}, dataset.ColumnText},
		{"iso dates", []interface{}{"2024-01-02", "2024-02-03", "2024-03-04"}, dataset.ColumnDate},
		{"mixed date layouts", []interface{}{"01/02/2024", "2024-02-03 10:00:00", "Jan 5, 2024"}, dataset.ColumnDate},
		{"time values", []interface{}{time.Now(), time.Now()}, dataset.ColumnDate},
		{"words", []interface{}{"North", "South", "East"}, dataset.ColumnText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectColumnType(tt.values))
		})
	}
}
