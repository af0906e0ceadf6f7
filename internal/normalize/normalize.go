// Package normalize turns a raw upstream table into a canonical table: headers
// are remapped onto the schema's canonical columns, cells are trimmed, and the
// typed columns are coerced.
package normalize

import (
	"fmt"
	"mlbids/internal/schema"
	"strings"
)

// CoercionError is returned when a cell cannot be typed, it aborts the whole
// normalization.
type CoercionError struct {
	// Row is the zero based index of the row in the raw table.
	Row    int
	Column string
	Value  any
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("row %d: column %q: cannot coerce %#v: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// sources returns, for every canonical column, the index of the raw header
// that feeds it or -1.
func sources(headers []string, entry schema.Entry) []int {
	columns := entry.Columns()
	canonical := make(map[string]string, len(columns))
	for _, c := range columns {
		canonical[strings.ToUpper(c)] = c
	}

	out := make([]int, len(columns))
	for i := range out {
		out[i] = -1
	}
	for i, header := range headers {
		column, ok := entry.Lookup(header)
		if !ok {
			// a table that is already canonical maps onto itself
			column, ok = canonical[strings.ToUpper(strings.TrimSpace(header))]
		}
		if !ok {
			continue
		}
		idx := entry.Index(column)
		if out[idx] < 0 {
			out[idx] = i
		}
	}
	return out
}

func trim(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// Normalize remaps, reindexes, trims and coerces `raw` against `entry`. The
// resulting table always has exactly the entry's columns in order, columns
// missing from `raw` are nil in every row (or their coerced default).
func Normalize(raw RawTable, entry schema.Entry) (Table, error) {
	columns := entry.Columns()
	src := sources(raw.Headers, entry)
	rules := coercersFor(entry.Kind())

	rows := make([]Row, len(raw.Rows))
	for r, rawRow := range raw.Rows {
		row := make(Row, len(columns))
		for c, column := range columns {
			value := trim(raw.cell(rawRow, src[c]))

			coerce, ok := rules[column]
			if ok {
				coerced, err := coerce(value)
				if err != nil {
					return Table{}, &CoercionError{
						Row:    r,
						Column: column,
						Value:  value,
						Err:    err,
					}
				}
				value = coerced
			}
			row[c] = value
		}
		rows[r] = row
	}

	return Table{Columns: columns, Rows: rows}, nil
}
