package cmd

import (
	"mlbids/internal/normalize"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// renderTable prints the first `limit` rows of a canonical table (every row
// when limit <= 0), as csv when asCSV is set.
func renderTable(tbl normalize.Table, limit int, asCSV bool) {
	t := newTable()

	header := make(table.Row, len(tbl.Columns))
	for i, c := range tbl.Columns {
		header[i] = c
	}
	t.AppendHeader(header)

	rows := tbl.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, row := range rows {
		out := make(table.Row, len(row))
		for i, value := range row {
			out[i] = normalize.Format(value)
		}
		t.AppendRow(out)
	}

	if asCSV {
		t.RenderCSV()
		return
	}
	if len(rows) < tbl.Len() {
		t.AppendFooter(table.Row{"showing", len(rows), "of", tbl.Len()})
	}
	t.Render()
}
