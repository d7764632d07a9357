package aggregate

import (
	"encoding/json"
	"testing"

	"sheetcharts/domain/dataset"
	"sheetcharts/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramRangeWiderThanFloat64(t *testing.T) {
	rows, err := Histogram(columnTable("v", "-1e308", "1e308", "0"), StatRequest{Column: "v", BinCount: 5})
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []int{1, 0, 1, 0, 1}, []int{rows[0].Count, rows[1].Count, rows[2].Count, rows[3].Count, rows[4].Count})
	assert.Equal(t, -1e308, rows[0].BinStart)
	assert.Equal(t, 1e308, rows[4].BinEnd)
	for i := 1; i < len(rows); i++ {
		assert.Equal(t, rows[i-1].BinEnd, rows[i].BinStart, "bin %d", i)
	}

	_, err = json.Marshal(rows)
	assert.NoError(t, err)
}

func TestGroupAggregateNearFloat64Limit(t *testing.T) {
	table := &dataset.Table{
		Headers: []string{"k", "v"},
		Rows:    [][]interface{}{{"A", "1e308"}, {"A", "1e308"}},
	}

	for _, fn := range []string{"avg", "median", "max", "std"} {
		rows, err := GroupAggregate(table, GroupRequest{GroupBy: "k", ValueColumn: "v", Function: fn})
		require.NoError(t, err, fn)
		_, err = json.Marshal(rows)
		assert.NoError(t, err, fn)
	}

	rows, err := GroupAggregate(table, GroupRequest{GroupBy: "k", ValueColumn: "v", Function: "avg"})
	require.NoError(t, err)
	assert.Equal(t, 1e308, rows[0].Value)

	_, err = GroupAggregate(table, GroupRequest{GroupBy: "k", ValueColumn: "v", Function: "sum"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestBoxplotNearFloat64Limit(t *testing.T) {
	rows, err := Boxplot(columnTable("v", "-1e308", "1e308", "1e308"), StatRequest{Column: "v", Kind: StatBoxplot})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, -1e308, rows[0].Min)
	assert.Equal(t, 1e308, rows[0].Max)
	assert.InDelta(t, 1e308/3, rows[0].Mean, 1e293)

	_, err = json.Marshal(rows)
	assert.NoError(t, err)
}

func TestSummarizeRejectsOverflowingSum(t *testing.T) {
	_, err := Summarize("v", []interface{}{"1e308", "1e308"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestMeanRescalesOnOverflow(t *testing.T) {
	assert.Equal(t, 1e308, Mean([]float64{1e308, 1e308}))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}
