package dataset

// Table is a rectangular-ish dataset: ordered headers and rows of raw cells.
// Rows are not required to match the header length; absent cells read as nil.
type Table struct {
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows"`
}

// ColumnIndex resolves a header name to the first position with an exact
// match, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the raw value at (row, col), nil when the row is short.
func (t *Table) Cell(row, col int) interface{} {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}

// Column copies the values of one column, one entry per row.
func (t *Table) Column(col int) []interface{} {
	values := make([]interface{}, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Cell(i, col)
	}
	return values
}

// Limit returns a view over the first n rows. n <= 0 keeps every row.
func (t *Table) Limit(n int) *Table {
	if n <= 0 || n >= len(t.Rows) {
		return t
	}
	return &Table{Headers: t.Headers, Rows: t.Rows[:n]}
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}
