// Package dataset provides the ordered tabular container the orchestrator
// operates on. A Table preserves column order so augmented output keeps the
// original columns first, feature columns after.
package dataset

import (
	"fmt"
)

// Table is an ordered-column tabular dataset. Rows are maps from column name
// to value; the column list fixes iteration and output order.
type Table struct {
	columns []string
	rows    []map[string]interface{}
}

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	t := &Table{columns: make([]string, len(columns))}
	copy(t.columns, columns)
	return t
}

// FromRecords creates a table from existing rows with the given column order.
func FromRecords(columns []string, rows []map[string]interface{}) *Table {
	t := New(columns...)
	t.rows = make([]map[string]interface{}, len(rows))
	copy(t.rows, rows)
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th row. The returned map is the table's own storage;
// callers must treat it as read-only.
func (t *Table) Row(i int) map[string]interface{} {
	return t.rows[i]
}

// Append adds a row to the table.
func (t *Table) Append(row map[string]interface{}) {
	t.rows = append(t.rows, row)
}

// Column returns all values of the named column in row order.
func (t *Table) Column(name string) ([]interface{}, bool) {
	if !t.HasColumn(name) {
		return nil, false
	}
	out := make([]interface{}, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[name]
	}
	return out, true
}

// Concat returns a new table with the given columns appended after the
// existing ones, one extra row map merged per existing row. The input table
// is left unmodified.
func (t *Table) Concat(columns []string, rows []map[string]interface{}) (*Table, error) {
	if len(rows) != len(t.rows) {
		return nil, fmt.Errorf("concat: %d rows provided for table of %d rows", len(rows), len(t.rows))
	}
	out := New(append(t.Columns(), columns...)...)
	out.rows = make([]map[string]interface{}, len(t.rows))
	for i, row := range t.rows {
		merged := make(map[string]interface{}, len(row)+len(rows[i]))
		for k, v := range row {
			merged[k] = v
		}
		for k, v := range rows[i] {
			merged[k] = v
		}
		out.rows[i] = merged
	}
	return out, nil
}

// Drop returns a new table without the named column. Dropping a column the
// table does not declare returns an equivalent copy.
func (t *Table) Drop(column string) *Table {
	columns := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if c != column {
			columns = append(columns, c)
		}
	}
	out := New(columns...)
	out.rows = make([]map[string]interface{}, len(t.rows))
	for i, row := range t.rows {
		copied := make(map[string]interface{}, len(row))
		for k, v := range row {
			if k != column {
				copied[k] = v
			}
		}
		out.rows[i] = copied
	}
	return out
}
