package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mlbids/internal/normalize"
	"mlbids/lib/htmlutil"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

// spoolCSV writes `contents` to a temporary file and parses it from disk, the
// file is removed before returning regardless of the outcome.
func spoolCSV(dir, url string, contents []byte) (raw normalize.RawTable, err error) {
	f, err := os.CreateTemp(dir, "mlbids-*.csv")
	if err != nil {
		return normalize.RawTable{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		removeErr := os.Remove(f.Name())
		if err == nil && removeErr != nil {
			err = fmt.Errorf("remove temp file: %w", removeErr)
		}
	}()
	defer f.Close()

	_, err = f.Write(contents)
	if err != nil {
		return normalize.RawTable{}, fmt.Errorf("write temp file: %w", err)
	}
	_, err = f.Seek(0, io.SeekStart)
	if err != nil {
		return normalize.RawTable{}, fmt.Errorf("seek temp file: %w", err)
	}

	return parseCSV(url, f)
}

func cleanRecord(record []string) {
	for i, v := range record {
		record[i] = htmlutil.CleanString(v)
	}
}

// parseCSV reads comma delimited text with headers on the first line. Rows
// may be shorter or longer than the header, blank rows are dropped. Cells are
// cleaned the same way as web view cells.
func parseCSV(url string, in io.Reader) (normalize.RawTable, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return normalize.RawTable{}, &ParseError{URL: url, Reason: "csv has no header line"}
	}
	if err != nil {
		return normalize.RawTable{}, &ParseError{URL: url, Reason: "read csv header", Err: err}
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	cleanRecord(header)

	raw := normalize.RawTable{Headers: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return normalize.RawTable{}, &ParseError{URL: url, Reason: "read csv record", Err: err}
		}
		cleanRecord(record)
		if isBlank(record) {
			continue
		}
		cells := make([]any, len(record))
		for i, v := range record {
			cells[i] = v
		}
		raw.Rows = append(raw.Rows, cells)
	}

	return raw, nil
}
