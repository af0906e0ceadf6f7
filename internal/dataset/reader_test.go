package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"mlbids/internal/components/telemetry"
	"mlbids/internal/normalize"
	"mlbids/internal/schema"
	"mlbids/internal/scrapers/sfbb"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// sheetHTML renders rows the way a published sheet does: a thead of column
// letters, a leading row number column and (optionally) a frozen spacer row
// under the header row.
func sheetHTML(rows [][]string, freezebar bool) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="sheets-viewport"><table class="waffle"><thead><tr><th></th>`)
	for i := range rows[0] {
		fmt.Fprintf(&b, "<th>%c</th>", 'A'+i)
	}
	b.WriteString("</tr></thead><tbody>")
	for i, row := range rows {
		fmt.Fprintf(&b, "<tr><th>%d</th>", i+1)
		for _, cell := range row {
			fmt.Fprintf(&b, "<td>%s</td>", cell)
		}
		b.WriteString("</tr>")
		if i == 0 && freezebar {
			b.WriteString(`<tr style="height: 3px"><th></th>`)
			for range row {
				b.WriteString(`<td class="freezebar-cell"></td>`)
			}
			b.WriteString("</tr>")
		}
	}
	b.WriteString("</tbody></table></div></body></html>")
	return b.String()
}

func sheetCSV(rows [][]string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	err := w.WriteAll(rows)
	if err != nil {
		panic(err)
	}
	return b.String()
}

var mainRows = [][]string{
	{"IDPLAYER", "PLAYERNAME", "BIRTHDATE", "LG", "ALLPOS", "ACTIVE", "UNUSED", "ESPNID", "ESPNNAME", "MLBID"},
	{"aaronha01", "Hank Aaron", "2/5/1934", "NL", "OF/1B", "N", "", "", "Hank Aaron", "110001"},
	{"acunaro01", "Ronald  Acuna\u00a0Jr.", "12/18/97", "NL", "OF", "Y", "", "36185", "Ronald Acuna Jr.", "660670.0"},
	{"", "", "", "", "", "", "", "", "", ""},
	{"ohtansh01", "Shohei Ohtani", "07/05/1994", "NL", "DH/P", "y", "", "39832", "Shohei Ohtani", "660271"},
}

var changelogRows = [][]string{
	{"DATE", "CHANGE"},
	{"10/01/2024", "Added  Jackson\u00a0Holliday"},
	{"09/15/2024", "Fixed Ohtani\nESPN id"},
}

type upstream struct {
	srv     *httptest.Server
	pages   map[string]string
	mutex   sync.Mutex
	fetches map[string]int
}

func (u *upstream) fetchCount(path string) int {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.fetches[path]
}

func newUpstream(t testing.TB) *upstream {
	u := &upstream{
		pages: map[string]string{
			"/web":           sheetHTML(mainRows, true),
			"/csv":           "\ufeff" + sheetCSV(mainRows),
			"/changelog-web": sheetHTML(changelogRows, false),
			"/changelog-csv": sheetCSV(changelogRows),
			"/excel":         "PK\x03\x04 not really a workbook",
		},
		fetches: map[string]int{},
	}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mutex.Lock()
		u.fetches[r.URL.Path]++
		u.mutex.Unlock()

		if r.URL.Path == "/tools/" {
			fmt.Fprint(w, `<div class="entry-content"><div><table>
<tr><td>Player ID Map</td></tr>
<tr><td>
<a href="/excel">Excel</a>
<a href="/web">Web</a>
<a href="/csv">CSV</a>
<a href="/changelog-web">Changelog</a>
<a href="/changelog-csv">Changelog CSV</a>
</td></tr>
</table></div></div>`)
			return
		}
		page, ok := u.pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, page)
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func newTestReader(t testing.TB, u *upstream, tempDir string) Reader {
	client := sfbb.NewClient(sfbb.ClientOptions{DisableCloudflareBypass: true}, telemetry.SlogAPI{})
	tools, err := sfbb.NewTools(client, u.srv.URL+"/tools/", telemetry.SlogAPI{})
	require.NoError(t, err)
	reader, err := NewReader(tools, client, Options{TempDir: tempDir}, telemetry.SlogAPI{})
	require.NoError(t, err)
	return reader
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestReadMain(t *testing.T) {
	u := newUpstream(t)
	reader := newTestReader(t, u, t.TempDir())

	table, err := reader.ReadMain(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())
	require.Len(t, table.Columns, 43)

	expected := []map[string]any{
		{
			"PlayerID": "aaronha01", "PlayerName": "Hank Aaron", "Birthdate": date(1934, time.February, 5),
			"League": "NL", "AllPositions": []string{"OF", "1B"}, "Active": false,
			"ESPNID": int64(0), "ESPNName": "Hank Aaron", "MLBID": int64(110001),
		},
		{
			"PlayerID": "acunaro01", "PlayerName": "Ronald Acuna Jr.", "Birthdate": date(1997, time.December, 18),
			"League": "NL", "AllPositions": []string{"OF"}, "Active": true,
			"ESPNID": int64(36185), "ESPNName": "Ronald Acuna Jr.", "MLBID": int64(660670),
		},
		{
			"PlayerID": "ohtansh01", "PlayerName": "Shohei Ohtani", "Birthdate": date(1994, time.July, 5),
			"League": "NL", "AllPositions": []string{"DH", "P"}, "Active": true,
			"ESPNID": int64(39832), "ESPNName": "Shohei Ohtani", "MLBID": int64(660271),
		},
	}
	for i, fields := range expected {
		record := table.Record(i)
		for column, value := range fields {
			require.Equal(t, value, record[column], "row %d column %s", i, column)
		}
		require.Nil(t, record["Team"])
		require.Equal(t, int64(0), record["YahooID"])
	}
}

func TestReadChangelog(t *testing.T) {
	u := newUpstream(t)
	reader := newTestReader(t, u, t.TempDir())

	table, err := reader.ReadChangelog(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Date", "Change"}, table.Columns)
	require.Equal(t, []normalize.Row{
		{date(2024, time.October, 1), "Added Jackson Holliday"},
		{date(2024, time.September, 15), "Fixed Ohtani ESPN id"},
	}, table.Rows)
}

func TestCSVMatchesHTML(t *testing.T) {
	u := newUpstream(t)
	reader := newTestReader(t, u, t.TempDir())
	ctx := context.Background()

	mainHTML, err := reader.ReadMain(ctx)
	require.NoError(t, err)
	mainCSV, err := reader.ReadMainCSV(ctx)
	require.NoError(t, err)
	if diff := normalize.Diff(mainHTML, mainCSV); diff != "" {
		t.Fatal(diff)
	}

	changelog, err := reader.ReadChangelog(ctx)
	require.NoError(t, err)
	changelogCSV, err := reader.ReadChangelogCSV(ctx)
	require.NoError(t, err)
	if diff := normalize.Diff(changelog, changelogCSV); diff != "" {
		t.Fatal(diff)
	}
}

func TestEveryReadIsFresh(t *testing.T) {
	u := newUpstream(t)
	reader := newTestReader(t, u, t.TempDir())

	for i := 0; i < 2; i++ {
		_, err := reader.ReadChangelog(context.Background())
		require.NoError(t, err)
	}
	require.Equal(t, 2, u.fetchCount("/tools/"))
	require.Equal(t, 2, u.fetchCount("/changelog-web"))
}

func TestReadRejectsTableCount(t *testing.T) {
	cases := []struct {
		name string
		page string
	}{
		{name: "no table", page: "<html><body><p>Sheet unpublished</p></body></html>"},
		{name: "two tables", page: sheetHTML(changelogRows, false) + sheetHTML(changelogRows, false)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := newUpstream(t)
			u.pages["/changelog-web"] = tc.page
			reader := newTestReader(t, u, t.TempDir())

			_, err := reader.ReadChangelog(context.Background())
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			require.Equal(t, u.srv.URL+"/changelog-web", parseErr.URL)
		})
	}
}

func TestReadPropagatesCoercionErrors(t *testing.T) {
	u := newUpstream(t)
	u.pages["/changelog-csv"] = sheetCSV([][]string{
		{"DATE", "CHANGE"},
		{"10/01/24", "two digit year"},
	})
	reader := newTestReader(t, u, t.TempDir())

	_, err := reader.ReadChangelogCSV(context.Background())
	var coercionErr *normalize.CoercionError
	require.ErrorAs(t, err, &coercionErr)
	require.Equal(t, "Date", coercionErr.Column)
	require.Equal(t, 0, coercionErr.Row)
}

func TestReadPropagatesTransportErrors(t *testing.T) {
	u := newUpstream(t)
	delete(u.pages, "/csv")
	reader := newTestReader(t, u, t.TempDir())

	_, err := reader.ReadMainCSV(context.Background())
	var transportErr *sfbb.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, http.StatusNotFound, transportErr.StatusCode)
}

func TestCSVTempFileIsRemoved(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		u := newUpstream(t)
		dir := t.TempDir()
		reader := newTestReader(t, u, dir)

		_, err := reader.ReadMainCSV(context.Background())
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("parse failure", func(t *testing.T) {
		u := newUpstream(t)
		u.pages["/csv"] = "IDPLAYER,PLAYERNAME\naaronha01,\"Hank\" Aaron\n"
		dir := t.TempDir()
		reader := newTestReader(t, u, dir)

		_, err := reader.ReadMainCSV(context.Background())
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}

func TestParseCSVToleratesRaggedRows(t *testing.T) {
	raw, err := parseCSV("test.csv", strings.NewReader("DATE,CHANGE\n10/01/2024\n,\n09/15/2024,Fixed,extra\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"DATE", "CHANGE"}, raw.Headers)
	require.Equal(t, [][]any{
		{"10/01/2024"},
		{"09/15/2024", "Fixed", "extra"},
	}, raw.Rows)
}

func TestCSVCellsAreCleanedLikeHTML(t *testing.T) {
	rows := [][]string{
		{"DATE", "CHANGE"},
		{"10/01/2024", "Added  Jackson\u00a0Holliday"},
		{"09/15/2024", " Fixed Ohtani\r\nESPN\tid "},
	}

	entry, err := schema.Load(schema.Changelog)
	require.NoError(t, err)

	rawHTML, err := parseHTMLTable("web", strings.NewReader(sheetHTML(rows, false)), changelogLayout)
	require.NoError(t, err)
	fromHTML, err := normalize.Normalize(rawHTML, entry)
	require.NoError(t, err)

	rawCSV, err := parseCSV("csv", strings.NewReader(sheetCSV(rows)))
	require.NoError(t, err)
	require.Equal(t, [][]any{
		{"10/01/2024", "Added Jackson Holliday"},
		{"09/15/2024", "Fixed Ohtani ESPN id"},
	}, rawCSV.Rows)
	fromCSV, err := normalize.Normalize(rawCSV, entry)
	require.NoError(t, err)

	if diff := normalize.Diff(fromHTML, fromCSV); diff != "" {
		t.Fatal(diff)
	}
}

func TestSave(t *testing.T) {
	u := newUpstream(t)
	reader := newTestReader(t, u, t.TempDir())
	dir := t.TempDir()
	ctx := context.Background()

	cases := []struct {
		name     string
		save     func(context.Context, string) (string, error)
		expected string
	}{
		{name: "excel", save: reader.SaveExcel, expected: u.pages["/excel"]},
		{name: "csv", save: reader.SaveCSV, expected: u.pages["/csv"]},
		{name: "changelog", save: reader.SaveChangelogCSV, expected: u.pages["/changelog-csv"]},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".out")
			abs, err := tc.save(ctx, path)
			require.NoError(t, err)
			require.True(t, filepath.IsAbs(abs))
			require.Equal(t, path, abs)

			contents, err := os.ReadFile(abs)
			require.NoError(t, err)
			require.Equal(t, tc.expected, string(contents))
		})
	}
}
