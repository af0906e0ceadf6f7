// Package schema holds the canonical column layouts of the player id map and its
// changelog, and the mapping from the raw upstream headers onto them.
//
// A definition is a pair of JSON documents per kind:
//
//	<kind>_columns.json    ordered list of canonical column names
//	<kind>_columnmap.json  raw header -> canonical column name
//
// The built-in definitions are embedded, a directory with the same layout can
// be loaded instead with LoadDir.
package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/titanous/json5"
)

type Kind string

const (
	Main      Kind = "playeridmap"
	Changelog Kind = "changelog"
)

func (k Kind) columnsFile() string {
	return fmt.Sprintf("%s_columns.json", k)
}

func (k Kind) columnMapFile() string {
	return fmt.Sprintf("%s_columnmap.json", k)
}

// Error is returned when a definition is internally inconsistent.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema %q: %s", e.Kind, e.Reason)
}

func schemaError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Entry is a validated schema definition, it is never mutated after it is
// built and is safe to share.
type Entry struct {
	kind      Kind
	columns   []string
	headerMap map[string]string
}

func (e Entry) Kind() Kind {
	return e.kind
}

// Columns returns the canonical columns in order.
func (e Entry) Columns() []string {
	return slices.Clone(e.columns)
}

// HeaderMap returns the uppercased raw header -> canonical column mapping.
func (e Entry) HeaderMap() map[string]string {
	return maps.Clone(e.headerMap)
}

// Lookup maps a raw upstream header onto its canonical column, the comparison
// ignores case and surrounding whitespace.
func (e Entry) Lookup(rawHeader string) (string, bool) {
	column, ok := e.headerMap[normalizeHeader(rawHeader)]
	return column, ok
}

// Index returns the position of a canonical column or -1.
func (e Entry) Index(column string) int {
	return slices.Index(e.columns, column)
}

func normalizeHeader(header string) string {
	return strings.ToUpper(strings.TrimSpace(header))
}

// Parse builds an Entry out of the two JSON (or json5) documents of a
// definition and checks that every canonical column has exactly one raw header.
func Parse(kind Kind, columnsJSON, columnMapJSON []byte) (Entry, error) {
	var columns []string
	err := json5.Unmarshal(columnsJSON, &columns)
	if err != nil {
		return Entry{}, schemaError(kind, "parse %s: %v", kind.columnsFile(), err)
	}
	var rawMap map[string]string
	err = json5.Unmarshal(columnMapJSON, &rawMap)
	if err != nil {
		return Entry{}, schemaError(kind, "parse %s: %v", kind.columnMapFile(), err)
	}

	if len(columns) == 0 {
		return Entry{}, schemaError(kind, "no canonical columns")
	}
	columnSet := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if strings.TrimSpace(c) == "" {
			return Entry{}, schemaError(kind, "empty canonical column name")
		}
		if _, dup := columnSet[c]; dup {
			return Entry{}, schemaError(kind, "duplicate canonical column %q", c)
		}
		columnSet[c] = struct{}{}
	}

	if len(rawMap) != len(columns) {
		return Entry{}, schemaError(
			kind,
			"%d header mappings for %d canonical columns",
			len(rawMap), len(columns),
		)
	}

	headerMap := make(map[string]string, len(rawMap))
	sources := make(map[string]string, len(rawMap))
	for raw, column := range rawMap {
		key := normalizeHeader(raw)
		if key == "" {
			return Entry{}, schemaError(kind, "empty raw header mapped to %q", column)
		}
		if _, dup := headerMap[key]; dup {
			return Entry{}, schemaError(kind, "raw header %q is mapped more than once", key)
		}
		if _, ok := columnSet[column]; !ok {
			return Entry{}, schemaError(kind, "raw header %q maps to unknown column %q", key, column)
		}
		if other, dup := sources[column]; dup {
			return Entry{}, schemaError(kind, "column %q has two raw headers %q and %q", column, other, key)
		}
		headerMap[key] = column
		sources[column] = key
	}

	for _, c := range columns {
		if _, ok := sources[c]; !ok {
			return Entry{}, schemaError(kind, "column %q has no raw header", c)
		}
	}

	return Entry{
		kind:      kind,
		columns:   columns,
		headerMap: headerMap,
	}, nil
}

// LoadFS reads the definition of `kind` from the root of `fsys`.
func LoadFS(kind Kind, fsys fs.FS) (Entry, error) {
	columns, err := fs.ReadFile(fsys, kind.columnsFile())
	if err != nil {
		return Entry{}, err
	}
	columnMap, err := fs.ReadFile(fsys, kind.columnMapFile())
	if err != nil {
		return Entry{}, err
	}
	return Parse(kind, columns, columnMap)
}

// LoadDir reads the definition of `kind` from a directory on disk.
func LoadDir(kind Kind, dir string) (Entry, error) {
	return LoadFS(kind, os.DirFS(dir))
}

//go:embed data/*.json
var definitions embed.FS

func loadEmbedded(kind Kind) func() (Entry, error) {
	return sync.OnceValues(func() (Entry, error) {
		sub, err := fs.Sub(definitions, "data")
		if err != nil {
			return Entry{}, err
		}
		return LoadFS(kind, sub)
	})
}

var embedded = map[Kind]func() (Entry, error){
	Main:      loadEmbedded(Main),
	Changelog: loadEmbedded(Changelog),
}

// Load returns the built-in definition of `kind`, it is parsed once per process.
func Load(kind Kind) (Entry, error) {
	load, ok := embedded[kind]
	if !ok {
		return Entry{}, schemaError(kind, "unknown schema kind")
	}
	return load()
}
