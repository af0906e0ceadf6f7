package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<table><tr><td id=\"cell\">  Ronald  <b>Acuna</b><br>Jr.\n</td></tr></table>",
	))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Ronald Acuna Jr.", CleanText(doc.Find("#cell").Nodes[0]))
}

func TestCleanString(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{in: "Added  Jackson\u00a0Holliday", expected: "Added Jackson Holliday"},
		{in: "Fixed Ohtani\r\nESPN id ", expected: "Fixed Ohtani ESPN id"},
		{in: "\ufeffIDPLAYER", expected: "IDPLAYER"},
		{in: "tab\tseparated\x00", expected: "tab separated"},
		{in: " \u00a0 ", expected: ""},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, CleanString(test.in), test.in)
	}
}

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<div>
			<a href="https://docs.google.com/export?format=xlsx">Excel</a>
			<a href="/relative/path.csv"> CSV </a>
			<a>No link</a>
		</div>
	`))
	if err != nil {
		t.Fatal(err)
	}

	base, err := url.Parse("https://www.smartfantasybaseball.com/tools/")
	if err != nil {
		t.Fatal(err)
	}

	anchors := GetAnchors(base, doc.Find("a"))
	diff := cmp.Diff([]Anchor{
		{Name: "Excel", Href: "https://docs.google.com/export?format=xlsx"},
		{Name: "CSV", Href: "https://www.smartfantasybaseball.com/relative/path.csv"},
		{Name: "No link", Href: ""},
	}, anchors)
	if diff != "" {
		t.Fatal(diff)
	}

	anchors = GetAnchors(nil, doc.Find("a"))
	require.Equal(t, "/relative/path.csv", anchors[1].Href)
}
