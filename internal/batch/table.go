package batch

import "camcli/internal/features"

// Table is an append-only feature table. Column order is the order in
// which feature names are first seen across appended rows; the column set
// is the union over all rows, so rows may leave cells empty.
type Table struct {
	columns []string
	seen    map[string]bool
	rows    []map[string]float64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{seen: make(map[string]bool)}
}

// AppendRow adds a feature set as the table's next row, extending the
// column set with any feature names not seen before.
func (t *Table) AppendRow(fs *features.FeatureSet) {
	row := make(map[string]float64, fs.Len())
	for _, key := range fs.Keys() {
		if !t.seen[key] {
			t.seen[key] = true
			t.columns = append(t.columns, key)
		}
		value, _ := fs.Value(key)
		row[key] = value
	}
	t.rows = append(t.rows, row)
}

// Columns returns the column names in first-seen order.
func (t *Table) Columns() []string {
	columns := make([]string, len(t.columns))
	copy(columns, t.columns)
	return columns
}

// NumRows returns the number of appended rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Cell returns the value at a row and column and whether it is present.
func (t *Table) Cell(row int, column string) (float64, bool) {
	if row < 0 || row >= len(t.rows) {
		return 0, false
	}
	v, ok := t.rows[row][column]
	return v, ok
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return len(t.rows) == 0
}
