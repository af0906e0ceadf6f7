package dataset

import (
	"context"
	"fmt"
	"mlbids/internal/scrapers/sfbb"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
)

func (r Reader) save(ctx context.Context, name, path string, link func(sfbb.URLs) string) (abs string, err error) {
	ctx, span := tracer.Start(ctx, name)
	defer func() { endSpan(span, err) }()

	abs, err = filepath.Abs(path)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("path", abs))

	urls, err := r.locator.Resolve(ctx)
	if err != nil {
		return "", err
	}
	contents, err := r.fetcher.Fetch(ctx, link(urls))
	if err != nil {
		return "", err
	}

	err = os.WriteFile(abs, contents, 0644)
	if err != nil {
		r.tel.ReportBroken(report_reader_save, err, abs)
		return "", fmt.Errorf("write %s: %w", abs, err)
	}
	r.tel.ReportDebug(report_reader_save, name, abs, len(contents))
	return abs, nil
}

// SaveExcel downloads the workbook (player id map and changelog) to `path` as
// is and returns its absolute path.
func (r Reader) SaveExcel(ctx context.Context, path string) (string, error) {
	return r.save(ctx, "SaveExcel", path, func(u sfbb.URLs) string { return u.ExcelDownload })
}

// SaveCSV downloads the player id map csv to `path` and returns its absolute
// path.
func (r Reader) SaveCSV(ctx context.Context, path string) (string, error) {
	return r.save(ctx, "SaveCSV", path, func(u sfbb.URLs) string { return u.CSVDownload })
}

// SaveChangelogCSV downloads the changelog csv to `path` and returns its
// absolute path.
func (r Reader) SaveChangelogCSV(ctx context.Context, path string) (string, error) {
	return r.save(ctx, "SaveChangelogCSV", path, func(u sfbb.URLs) string { return u.ChangelogCSVDownload })
}
