package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnIndexFirstExactMatch(t *testing.T) {
	table := &Table{Headers: []string{"Region", "Sales", "Sales", "sales"}}

	assert.Equal(t, 1, table.ColumnIndex("Sales"))
	assert.Equal(t, 3, table.ColumnIndex("sales"))
	assert.Equal(t, -1, table.ColumnIndex("Revenue"))
}

func TestCellShortRows(t *testing.T) {
	table := &Table{
		Headers: []string{"a", "b", "c"},
		Rows:    [][]interface{}{{"1", "2"}, {"3"}},
	}

	assert.Equal(t, "2", table.Cell(0, 1))
	assert.Nil(t, table.Cell(0, 2))
	assert.Nil(t, table.Cell(1, 1))
	assert.Nil(t, table.Cell(5, 0))
	assert.Equal(t, []interface{}{"2", nil}, table.Column(1))
}

func TestLimit(t *testing.T) {
	table := &Table{Headers: []string{"a"}, Rows: [][]interface{}{{"1"}, {"2"}, {"3"}}}

	assert.Equal(t, 2, table.Limit(2).RowCount())
	assert.Equal(t, 3, table.Limit(0).RowCount())
	assert.Equal(t, 3, table.Limit(10).RowCount())
	assert.Equal(t, 3, table.RowCount(), "limit must not mutate the source")
}
