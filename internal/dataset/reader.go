// Package dataset reads the player id map and its changelog from the urls the
// tools page links to and normalizes them into canonical tables. Every read is
// a fresh round trip, nothing is cached between calls.
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"mlbids/internal/components/assert"
	"mlbids/internal/components/telemetry"
	"mlbids/internal/normalize"
	"mlbids/internal/schema"
	"mlbids/internal/scrapers/sfbb"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = telemetry.Tracer("mlbids/internal/dataset")

const (
	report_reader_read  = "reader.read"
	report_reader_rows  = "reader.rows"
	report_reader_save  = "reader.save"
	report_reader_parse = "reader.parse"
)

type Locator interface {
	Resolve(ctx context.Context) (sfbb.URLs, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, link string) ([]byte, error)
}

type Options struct {
	// MainSchema and ChangelogSchema default to the embedded definitions.
	MainSchema      *schema.Entry
	ChangelogSchema *schema.Entry
	// TempDir is where csv downloads are spooled, it defaults to os.TempDir().
	TempDir string
}

type Reader struct {
	locator   Locator
	fetcher   Fetcher
	main      schema.Entry
	changelog schema.Entry
	tempDir   string
	tel       telemetry.API
}

func NewReader(locator Locator, fetcher Fetcher, opts Options, tel telemetry.API) (Reader, error) {
	assert.NotNil(locator)
	assert.NotNil(fetcher)
	assert.NotNil(tel)

	load := func(override *schema.Entry, kind schema.Kind) (schema.Entry, error) {
		if override != nil {
			return *override, nil
		}
		return schema.Load(kind)
	}
	mainEntry, err := load(opts.MainSchema, schema.Main)
	if err != nil {
		return Reader{}, err
	}
	changelogEntry, err := load(opts.ChangelogSchema, schema.Changelog)
	if err != nil {
		return Reader{}, err
	}

	return Reader{
		locator:   locator,
		fetcher:   fetcher,
		main:      mainEntry,
		changelog: changelogEntry,
		tempDir:   opts.TempDir,
		tel:       telemetry.NewScopedAPI("dataset", tel),
	}, nil
}

type source int

const (
	sourceHTML source = iota
	sourceCSV
)

func (s source) String() string {
	if s == sourceCSV {
		return "csv"
	}
	return "html"
}

type request struct {
	name   string
	entry  schema.Entry
	source source
	layout htmlLayout
	link   func(sfbb.URLs) string
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r Reader) read(ctx context.Context, req request) (table normalize.Table, err error) {
	ctx, span := tracer.Start(ctx, req.name)
	defer func() { endSpan(span, err) }()

	urls, err := r.locator.Resolve(ctx)
	if err != nil {
		return normalize.Table{}, err
	}
	link := req.link(urls)
	span.SetAttributes(
		attribute.String("url", link),
		attribute.String("source", req.source.String()),
	)
	r.tel.ReportDebug(report_reader_read, req.name, link)

	contents, err := r.fetcher.Fetch(ctx, link)
	if err != nil {
		return normalize.Table{}, err
	}

	var raw normalize.RawTable
	switch req.source {
	case sourceCSV:
		raw, err = spoolCSV(r.tempDir, link, contents)
	default:
		raw, err = parseHTMLTable(link, bytes.NewReader(contents), req.layout)
	}
	if err != nil {
		r.tel.ReportBroken(report_reader_parse, err, req.name)
		return normalize.Table{}, err
	}

	table, err = normalize.Normalize(raw, req.entry)
	if err != nil {
		r.tel.ReportBroken(report_reader_parse, err, req.name)
		return normalize.Table{}, fmt.Errorf("normalize %s: %w", req.name, err)
	}

	span.SetAttributes(attribute.Int("rows", table.Len()))
	r.tel.ReportCount(report_reader_rows, int64(table.Len()))
	return table, nil
}

// ReadMain reads the player id map from its web view.
func (r Reader) ReadMain(ctx context.Context) (normalize.Table, error) {
	return r.read(ctx, request{
		name:   "ReadMain",
		entry:  r.main,
		source: sourceHTML,
		layout: mainLayout,
		link:   func(u sfbb.URLs) string { return u.WebView },
	})
}

// ReadChangelog reads the changelog from its web view.
func (r Reader) ReadChangelog(ctx context.Context) (normalize.Table, error) {
	return r.read(ctx, request{
		name:   "ReadChangelog",
		entry:  r.changelog,
		source: sourceHTML,
		layout: changelogLayout,
		link:   func(u sfbb.URLs) string { return u.ChangelogWebView },
	})
}

// ReadMainCSV reads the player id map from its csv download, the result is
// equal to ReadMain's for the same upstream snapshot.
func (r Reader) ReadMainCSV(ctx context.Context) (normalize.Table, error) {
	return r.read(ctx, request{
		name:   "ReadMainCSV",
		entry:  r.main,
		source: sourceCSV,
		link:   func(u sfbb.URLs) string { return u.CSVDownload },
	})
}

// ReadChangelogCSV reads the changelog from its csv download.
func (r Reader) ReadChangelogCSV(ctx context.Context) (normalize.Table, error) {
	return r.read(ctx, request{
		name:   "ReadChangelogCSV",
		entry:  r.changelog,
		source: sourceCSV,
		link:   func(u sfbb.URLs) string { return u.ChangelogCSVDownload },
	})
}

// URLs resolves the current endpoints.
func (r Reader) URLs(ctx context.Context) (sfbb.URLs, error) {
	return r.locator.Resolve(ctx)
}
