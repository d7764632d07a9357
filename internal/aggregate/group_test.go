package aggregate

import (
	"testing"

	"sheetcharts/domain/chart"
	"sheetcharts/domain/dataset"
	"sheetcharts/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesTable() *dataset.Table {
	return &dataset.Table{
		Headers: []string{"Region", "Sales", "Units"},
		Rows: [][]interface{}{
			{"North", "10", "1"},
			{"South", "4", "2"},
			{"North", "20", "3"},
			{"East", "7.256", "4"},
			{"South", "6", "5"},
			{"North", "abc", "6"},
		},
	}
}

func TestGroupAggregateFunctions(t *testing.T) {
	tests := []struct {
		fn   string
		want []chart.DerivedRow
	}{
		{"sum", []chart.DerivedRow{{Label: "North", Value: 30}, {Label: "South", Value: 10}, {Label: "East", Value: 7.26}}},
		{"avg", []chart.DerivedRow{{Label: "North", Value: 10}, {Label: "South", Value: 5}, {Label: "East", Value: 7.26}}},
		{"average", []chart.DerivedRow{{Label: "North", Value: 10}, {Label: "South", Value: 5}, {Label: "East", Value: 7.26}}},
		{"count", []chart.DerivedRow{{Label: "North", Value: 3}, {Label: "South", Value: 2}, {Label: "East", Value: 1}}},
		{"max", []chart.DerivedRow{{Label: "North", Value: 20}, {Label: "South", Value: 6}, {Label: "East", Value: 7.26}}},
		{"min", []chart.DerivedRow{{Label: "North", Value: 0}, {Label: "South", Value: 4}, {Label: "East", Value: 7.26}}},
		{"median", []chart.DerivedRow{{Label: "North", Value: 10}, {Label: "South", Value: 5}, {Label: "East", Value: 7.26}}},
		{"std", []chart.DerivedRow{{Label: "North", Value: 8.16}, {Label: "South", Value: 1}, {Label: "East", Value: 0}}},
		{"stddev", []chart.DerivedRow{{Label: "North", Value: 8.16}, {Label: "South", Value: 1}, {Label: "East", Value: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			rows, err := GroupAggregate(salesTable(), GroupRequest{GroupBy: "Region", ValueColumn: "Sales", Function: tt.fn})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestGroupAggregateCountIncludesZeroCoercedRows(t *testing.T) {
	table := &dataset.Table{
		Headers: []string{"k", "v"},
		Rows:    [][]interface{}{{"A", ""}, {"A", "x"}, {"B", "3"}},
	}

	rows, err := GroupAggregate(table, GroupRequest{GroupBy: "k", ValueColumn: "v", Function: "count"})
	require.NoError(t, err)
	assert.Equal(t, []chart.DerivedRow{{Label: "A", Value: 2}, {Label: "B", Value: 1}}, rows)
}

func TestGroupAggregateSumTreatsTextAsZero(t *testing.T) {
	table := &dataset.Table{
		Headers: []string{"k", "v"},
		Rows:    [][]interface{}{{"A", "5"}, {"A", "abc"}, {"A", "3"}},
	}

	rows, err := GroupAggregate(table, GroupRequest{GroupBy: "k", ValueColumn: "v", Function: "sum"})
	require.NoError(t, err)
	assert.Equal(t, []chart.DerivedRow{{Label: "A", Value: 8}}, rows)

	avg, err := GroupAggregate(table, GroupRequest{GroupBy: "k", ValueColumn: "v", Function: "avg"})
	require.NoError(t, err)
	assert.Equal(t, 2.67, avg[0].Value, "zero-coerced cell counts toward the average")
}

func TestGroupAggregateUnknownFunctionFallsBackToSum(t *testing.T) {
	sum, err := GroupAggregate(salesTable(), GroupRequest{GroupBy: "Region", ValueColumn: "Sales", Function: "sum"})
	require.NoError(t, err)

	for _, name := range []string{"bogus", "", "SUMMARY"} {
		rows, err := GroupAggregate(salesTable(), GroupRequest{GroupBy: "Region", ValueColumn: "Sales", Function: name})
		require.NoError(t, err)
		assert.Equal(t, sum, rows, "function %q", name)
	}
}

func TestGroupAggregateUnknownGroupKey(t *testing.T) {
	table := &dataset.Table{
		Headers: []string{"k", "v"},
		Rows:    [][]interface{}{{nil, "1"}, {"", "2"}, {"A", "3"}, {}},
	}

	rows, err := GroupAggregate(table, GroupRequest{GroupBy: "k", ValueColumn: "v", Function: "sum"})
	require.NoError(t, err)
	assert.Equal(t, []chart.DerivedRow{{Label: "Unknown", Value: 3}, {Label: "A", Value: 3}}, rows)
}

func TestGroupAggregateRowLimit(t *testing.T) {
	rows, err := GroupAggregate(salesTable(), GroupRequest{GroupBy: "Region", ValueColumn: "Sales", Function: "count", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []chart.DerivedRow{{Label: "North", Value: 1}, {Label: "South", Value: 1}}, rows)
}

func TestGroupAggregateErrors(t *testing.T) {
	_, err := GroupAggregate(salesTable(), GroupRequest{GroupBy: "Country", ValueColumn: "Sales"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeColumnNotFound, errors.GetCode(err))
	assert.Contains(t, err.Error(), `"Region", "Sales", "Units"`)

	_, err = GroupAggregate(salesTable(), GroupRequest{GroupBy: "Region", ValueColumn: "Revenue"})
	assert.Equal(t, errors.CodeColumnNotFound, errors.GetCode(err))

	_, err = GroupAggregate(salesTable(), GroupRequest{ValueColumn: "Sales"})
	assert.Equal(t, errors.CodeMissingParameter, errors.GetCode(err))
	assert.Contains(t, err.Error(), "groupBy")

	_, err = GroupAggregate(salesTable(), GroupRequest{})
	assert.Contains(t, err.Error(), "groupBy, aggregateField")

	empty := &dataset.Table{Headers: []string{"Region", "Sales"}}
	_, err = GroupAggregate(empty, GroupRequest{GroupBy: "Region", ValueColumn: "Sales"})
	assert.Equal(t, errors.CodeNoData, errors.GetCode(err))
}

func TestGroupAggregateIsIdempotent(t *testing.T) {
	table := salesTable()
	req := GroupRequest{GroupBy: "Region", ValueColumn: "Sales", Function: "std"}

	first, err := GroupAggregate(table, req)
	require.NoError(t, err)
	second, err := GroupAggregate(table, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, salesTable(), table, "input must not be mutated")
	for _, r := range first {
		assert.Equal(t, Round2(r.Value), r.Value)
	}
}

func TestParseFunction(t *testing.T) {
	assert.Equal(t, FuncAvg, ParseFunction(" Average "))
	assert.Equal(t, FuncStd, ParseFunction("STDDEV"))
	assert.Equal(t, FuncSum, ParseFunction("bogus"))
}
