package model

import "fmt"

// Table is an in-memory spreadsheet: an ordered header row plus string cells.
// Every row has exactly one cell per column.
type Table struct {
	index   map[string]int
	columns []string
	rows    [][]string
}

// NewTable creates an empty table with the given header. Names are kept as
// given, surrounding spaces included; only empty names become "Unnamed: <i>"
// and repeated names get ".1", ".2" suffixes so every column can be
// addressed by name.
func NewTable(columns []string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for i, name := range columns {
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		t.appendColumn(uniqueName(name, t.index))
	}
	return t
}

func uniqueName(name string, taken map[string]int) string {
	if _, exists := taken[name]; !exists {
		return name
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.%d", name, n)
		if _, exists := taken[candidate]; !exists {
			return candidate
		}
	}
}

func (t *Table) appendColumn(name string) int {
	idx := len(t.columns)
	t.columns = append(t.columns, name)
	t.index[name] = idx
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], "")
	}
	return idx
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the table has a column with the exact name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// AddColumn appends an empty column unless it already exists.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.appendColumn(name)
	}
}

// AppendRow adds a data row; short rows are padded and long rows truncated.
func (t *Table) AppendRow(values []string) {
	row := make([]string, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Row returns a copy of the i-th data row.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Column returns a copy of the named column's values.
func (t *Table) Column(name string) ([]string, bool) {
	idx, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, true
}

// Cell returns the value at row i of the named column, or "" if absent.
func (t *Table) Cell(i int, column string) string {
	idx, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return ""
	}
	return t.rows[i][idx]
}

// SetCell writes a value, creating the column when needed.
func (t *Table) SetCell(i int, column, value string) {
	if i < 0 || i >= len(t.rows) {
		panic(fmt.Sprintf("model: row %d out of range [0,%d)", i, len(t.rows)))
	}
	t.AddColumn(column)
	t.rows[i][t.index[column]] = value
}

// Truncate drops every row from index n onwards.
func (t *Table) Truncate(n int) {
	if n < len(t.rows) && n >= 0 {
		t.rows = t.rows[:n]
	}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		index:   make(map[string]int, len(t.index)),
		columns: make([]string, len(t.columns)),
		rows:    make([][]string, len(t.rows)),
	}
	copy(c.columns, t.columns)
	for k, v := range t.index {
		c.index[k] = v
	}
	for i, row := range t.rows {
		c.rows[i] = make([]string, len(row))
		copy(c.rows[i], row)
	}
	return c
}
