package dataset

import (
	"fmt"
	"io"
	"mlbids/internal/normalize"
	"mlbids/lib/htmlutil"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseError is returned when a fetched document does not contain the single
// data table (or readable CSV) the reader expects.
type ParseError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.URL, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// htmlLayout describes the rendering artifacts of a published sheet.
type htmlLayout struct {
	// skipRows is the amount of rows dropped from the top of the table, the
	// first of them holds the real headers.
	skipRows int
	// skipColumns is the amount of leading columns dropped (the sheet's row
	// numbers).
	skipColumns int
}

var (
	mainLayout      = htmlLayout{skipRows: 2, skipColumns: 1}
	changelogLayout = htmlLayout{skipRows: 1}
)

func readGrid(page io.Reader) ([][]string, string, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, "parse html", err
	}

	tables := doc.Find("table")
	if tables.Length() != 1 {
		return nil, fmt.Sprintf("expected exactly 1 table, found %d", tables.Length()), nil
	}

	// the html parser always wraps bare rows in a tbody, header rows in a
	// thead are the sheet's column letters.
	var grid [][]string
	tables.ChildrenFiltered("tbody").ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			text := htmlutil.CleanText(cell.Get(0))
			span := 1
			if attr, ok := cell.Attr("colspan"); ok {
				parsed, err := strconv.Atoi(strings.TrimSpace(attr))
				if err == nil && parsed > 1 {
					span = parsed
				}
			}
			for i := 0; i < span; i++ {
				row = append(row, text)
			}
		})
		grid = append(grid, row)
	})

	return grid, "", nil
}

func isBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func gridCell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

// parseHTMLTable reads the single table in `page` into a raw table: the first
// row is promoted to headers, `layout` artifacts are dropped along with columns
// and rows that are entirely empty.
func parseHTMLTable(url string, page io.Reader, layout htmlLayout) (normalize.RawTable, error) {
	grid, reason, err := readGrid(page)
	if err != nil || reason != "" {
		return normalize.RawTable{}, &ParseError{URL: url, Reason: reason, Err: err}
	}
	if len(grid) < layout.skipRows || len(grid) == 0 {
		return normalize.RawTable{}, &ParseError{
			URL:    url,
			Reason: fmt.Sprintf("expected at least %d rows, found %d", max(layout.skipRows, 1), len(grid)),
		}
	}

	width := 0
	for _, row := range grid {
		width = max(width, len(row))
	}

	header := grid[0]
	body := grid[layout.skipRows:]

	var keep []int
	for col := layout.skipColumns; col < width; col++ {
		empty := true
		for _, row := range body {
			if strings.TrimSpace(gridCell(row, col)) != "" {
				empty = false
				break
			}
		}
		if !empty {
			keep = append(keep, col)
		}
	}

	raw := normalize.RawTable{Headers: make([]string, len(keep))}
	for i, col := range keep {
		raw.Headers[i] = gridCell(header, col)
	}
	for _, row := range body {
		values := make([]string, len(keep))
		for i, col := range keep {
			values[i] = gridCell(row, col)
		}
		if isBlank(values) {
			continue
		}
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		raw.Rows = append(raw.Rows, cells)
	}

	return raw, nil
}
