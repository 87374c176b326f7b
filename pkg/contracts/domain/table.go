package domain

// Table is an ordered set of rows sharing one ordered header.
// Every row is aligned to Columns; missing cells are empty strings.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable builds a table, padding or truncating rows to the header width
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: columns,
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, t.align(row))
	}
	return t
}

// AppendRow adds a row aligned to the header
func (t *Table) AppendRow(row []string) {
	t.Rows = append(t.Rows, t.align(row))
}

func (t *Table) align(row []string) []string {
	out := make([]string, len(t.Columns))
	copy(out, row)
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the first column with the given name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the header contains name
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Value returns the cell at row i in the named column.
// ok is false when the column does not exist.
func (t *Table) Value(i int, column string) (value string, ok bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return "", false
	}
	return t.Rows[i][idx], true
}

// Head returns a copy holding at most n leading rows
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	head := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, n),
	}
	for i := 0; i < n; i++ {
		head.Rows[i] = append([]string(nil), t.Rows[i]...)
	}
	return head
}

// Records returns the rows as column-name keyed maps, in row order
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, c := range t.Columns {
			rec[c] = row[i]
		}
		out = append(out, rec)
	}
	return out
}
