package sfbb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mlbids/internal/components/assert"
	"mlbids/internal/components/telemetry"
	"mlbids/lib/htmlutil"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_tools_resolve = "tools.resolve"
)

// DefaultToolsURL is the page that links to the current player id map.
const DefaultToolsURL = "https://www.smartfantasybaseball.com/tools/"

// the links to the player id map live in the first cell of the second row of
// the table in the post body.
const urlsCellSelector = "div.entry-content > div > table tr:nth-child(2) > td:first-child"

const urlCount = 5

// URLs are the redirect urls for viewing/downloading the player id map, in the
// order the page lists them.
type URLs struct {
	// ExcelDownload downloads the player id map and changelog as a workbook.
	ExcelDownload string
	// WebView is the player id map as a web page.
	WebView string
	// CSVDownload downloads the player id map as CSV.
	CSVDownload string
	// ChangelogWebView is the changelog as a web page.
	ChangelogWebView string
	// ChangelogCSVDownload downloads the changelog as CSV.
	ChangelogCSVDownload string
}

// All returns the urls in page order.
func (u URLs) All() []string {
	return []string{
		u.ExcelDownload,
		u.WebView,
		u.CSVDownload,
		u.ChangelogWebView,
		u.ChangelogCSVDownload,
	}
}

// LocatorError is returned when the tools page no longer has the structure the
// locator expects. It is not retried, the selector needs to be updated.
type LocatorError struct {
	URL    string
	Reason string
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("locate player id map urls on %s: %s", e.URL, e.Reason)
}

// ParseURLs extracts the player id map urls from the tools page, relative
// links are resolved against `base`.
func ParseURLs(base *url.URL, page io.Reader) (URLs, error) {
	locatorError := func(format string, args ...any) error {
		return &LocatorError{URL: base.String(), Reason: fmt.Sprintf(format, args...)}
	}

	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return URLs{}, locatorError("parse html: %v", err)
	}

	cell := doc.Find(urlsCellSelector).First()
	if cell.Length() == 0 {
		return URLs{}, locatorError("no element matches %q", urlsCellSelector)
	}

	anchors := htmlutil.GetAnchors(base, cell.Find("a"))
	if len(anchors) != urlCount {
		return URLs{}, locatorError("expected %d links, found %d", urlCount, len(anchors))
	}
	hrefs := make([]string, len(anchors))
	for i, a := range anchors {
		if a.Href == "" {
			return URLs{}, locatorError("link %d (%q) has no href", i, a.Name)
		}
		hrefs[i] = a.Href
	}

	return URLs{
		ExcelDownload:        hrefs[0],
		WebView:              hrefs[1],
		CSVDownload:          hrefs[2],
		ChangelogWebView:     hrefs[3],
		ChangelogCSVDownload: hrefs[4],
	}, nil
}

// Tools locates the player id map on the tools page.
type Tools struct {
	client  *Client
	address *url.URL
	tel     telemetry.API
}

func NewTools(client *Client, address string, tel telemetry.API) (Tools, error) {
	assert.NotNil(client)
	assert.NotNil(tel)

	parsed, err := url.Parse(address)
	if err != nil {
		return Tools{}, err
	}
	return Tools{
		client:  client,
		address: parsed,
		tel:     telemetry.NewScopedAPI("sfbb_tools", tel),
	}, nil
}

func (t Tools) Address() string {
	return t.address.String()
}

// Resolve fetches the tools page and returns the current urls, every call is a
// fresh request.
func (t Tools) Resolve(ctx context.Context) (URLs, error) {
	page, err := t.client.Fetch(ctx, t.address.String())
	if err != nil {
		return URLs{}, err
	}

	urls, err := ParseURLs(t.address, bytes.NewReader(page))
	if err != nil {
		t.tel.ReportBroken(report_tools_resolve, err)
		return URLs{}, err
	}

	t.tel.ReportDebug(report_tools_resolve, urls.All())
	return urls, nil
}
