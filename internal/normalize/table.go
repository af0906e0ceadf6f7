package normalize

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// RawTable is a parsed upstream table before normalization. Every row is
// aligned with Headers, a cell past the end of a row or a nil cell is missing.
// Cells are usually strings but already typed values are accepted as well.
type RawTable struct {
	Headers []string
	Rows    [][]any
}

func (t RawTable) cell(row []any, col int) any {
	if col < 0 || col >= len(row) {
		return nil
	}
	return row[col]
}

// Row is aligned with the columns of the table it belongs to.
type Row []any

// Table is a canonical table, values are one of string, time.Time, []string,
// bool, int64 or nil when absent.
type Table struct {
	Columns []string
	Rows    []Row
}

var ErrUnknownColumn = errors.New("unknown column")

func (t Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column or -1.
func (t Table) Index(column string) int {
	return slices.Index(t.Columns, column)
}

// Value returns the value of a column in a row, ok is false when the column
// or the row does not exist.
func (t Table) Value(row int, column string) (value any, ok bool) {
	col := t.Index(column)
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	return t.Rows[row][col], true
}

// Record returns a row as a column -> value map, every column is present.
func (t Table) Record(row int) map[string]any {
	record := make(map[string]any, len(t.Columns))
	for i, c := range t.Columns {
		record[c] = t.Rows[row][i]
	}
	return record
}

// Select returns a table with only the given columns, in the given order.
func (t Table) Select(columns ...string) (Table, error) {
	indexes := make([]int, len(columns))
	for i, c := range columns {
		if slices.Contains(columns[:i], c) {
			return Table{}, fmt.Errorf("select: duplicate column %q", c)
		}
		indexes[i] = t.Index(c)
		if indexes[i] < 0 {
			return Table{}, fmt.Errorf("select %q: %w", c, ErrUnknownColumn)
		}
	}

	rows := make([]Row, len(t.Rows))
	for r, row := range t.Rows {
		selected := make(Row, len(indexes))
		for i, idx := range indexes {
			selected[i] = cloneValue(row[idx])
		}
		rows[r] = selected
	}
	return Table{Columns: slices.Clone(columns), Rows: rows}, nil
}

func cloneValue(value any) any {
	if list, ok := value.([]string); ok {
		return slices.Clone(list)
	}
	return value
}

// Clone copies the table down to its list values, writes to the copy never
// reach `t`.
func (t Table) Clone() Table {
	out := Table{Columns: slices.Clone(t.Columns)}
	if t.Rows == nil {
		return out
	}
	out.Rows = make([]Row, len(t.Rows))
	for r, row := range t.Rows {
		cloned := make(Row, len(row))
		for i, value := range row {
			cloned[i] = cloneValue(value)
		}
		out.Rows[r] = cloned
	}
	return out
}

// Join places the columns of `right` after the columns of `left`, row by row.
// Both tables must have the same number of rows and no column in common.
func Join(left, right Table) (Table, error) {
	if len(left.Rows) != len(right.Rows) {
		return Table{}, fmt.Errorf("join: %d rows on the left, %d on the right", len(left.Rows), len(right.Rows))
	}
	for _, c := range right.Columns {
		if left.Index(c) >= 0 {
			return Table{}, fmt.Errorf("join: column %q on both sides", c)
		}
	}

	columns := make([]string, 0, len(left.Columns)+len(right.Columns))
	columns = append(columns, left.Columns...)
	columns = append(columns, right.Columns...)

	rows := make([]Row, len(left.Rows))
	for r := range left.Rows {
		row := make(Row, 0, len(columns))
		row = append(row, left.Rows[r]...)
		row = append(row, right.Rows[r]...)
		rows[r] = row
	}
	return Table{Columns: columns, Rows: rows}, nil
}

// Raw turns a canonical table back into a RawTable with uppercased headers.
func (t Table) Raw() RawTable {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = strings.ToUpper(c)
	}
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = slices.Clone([]any(row))
	}
	return RawTable{Headers: headers, Rows: rows}
}

// Diff reports the differences between two tables, it is empty when they hold
// the same columns and values.
func Diff(a, b Table) string {
	return cmp.Diff(a, b, cmpopts.EquateEmpty())
}

func Equal(a, b Table) bool {
	return Diff(a, b) == ""
}

const DisplayDateLayout = "2006-01-02"

// Format renders a canonical value as text.
func Format(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(DisplayDateLayout)
	case []string:
		return strings.Join(v, "/")
	case bool:
		if v {
			return "Y"
		}
		return "N"
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
