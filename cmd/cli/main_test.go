package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSheet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	content := "Region,Units,Revenue\nNorth,1,10\nSouth,2,4\nNorth,3,20\nEast,4,n/a\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestColumnsCommand(t *testing.T) {
	out, err := run(t, "columns", writeSheet(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Region")
	assert.Contains(t, out, "text")
	assert.Contains(t, out, "numeric")
}

func TestAggregateCommandJSON(t *testing.T) {
	out, err := run(t, "aggregate", writeSheet(t), "--group-by", "Region", "--field", "Revenue", "--func", "sum", "--json")
	require.NoError(t, err)

	var rows []struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "North", rows[0].Label)
	assert.Equal(t, 30.0, rows[0].Value)
	assert.Equal(t, 0.0, rows[2].Value)
}

func TestHistogramAndBoxplotCommands(t *testing.T) {
	path := writeSheet(t)

	out, err := run(t, "histogram", path, "--column", "Revenue", "--bins", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "4.0-8.0")

	out, err = run(t, "boxplot", path, "--column", "Revenue")
	require.NoError(t, err)
	assert.Contains(t, out, "nearest-rank, floor-indexed")
}

func TestSummaryCommandErrors(t *testing.T) {
	_, err := run(t, "summary", writeSheet(t), "--column", "Profit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `available columns: ["Region", "Units", "Revenue"]`)
}

func TestExportCommandWritesEveryFormat(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "export", writeSheet(t), "--type", "bar", "--x", "Region", "--y", "Revenue",
		"--func", "sum", "--title", "Revenue by region", "--format", "png,csv,xlsx,pdf", "--out", dir)
	require.NoError(t, err)

	for _, name := range []string{"revenue-by-region.png", "revenue-by-region.csv", "revenue-by-region.xlsx", "revenue-by-region.pdf"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}

	_, err = run(t, "export", writeSheet(t), "--format", "svg", "--out", dir)
	assert.Error(t, err)
}

func TestSampleCommand(t *testing.T) {
	out, err := run(t, "sample", "--rows", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Date,Region,Product,Units,Revenue")
	assert.Equal(t, 6, bytes.Count([]byte(out), []byte("\n")))
}
