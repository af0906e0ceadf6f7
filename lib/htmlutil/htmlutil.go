package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	// <br> inside a cell separates words
	if node.Type == html.ElementNode && node.Data == "br" {
		buffer.WriteByte(' ')
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var whitespace = regexp.MustCompile(`[\s\x{00a0}]+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanString collapses runs of whitespace (nbsp included) into one space,
// removes non-printable characters and trims the result.
func CleanString(s string) string {
	s = whitespace.ReplaceAllString(s, " ")
	s = removeNonPrintable(s)
	return strings.TrimSpace(s)
}

// CleanText is CleanString over the text of a node, <br> counts as whitespace.
func CleanText(node *html.Node) string {
	return CleanString(GetText(node))
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors returns every anchor in the selection in document order, hrefs are
// resolved against `base` when it is not nil. An anchor without an href (or with
// an unparsable one) has an empty Href.
func GetAnchors(base *url.URL, sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = strings.TrimSpace(a.Val)
				break
			}
		}

		if href != "" {
			link, err := url.Parse(href)
			switch {
			case err != nil:
				href = ""
			case base != nil:
				href = base.ResolveReference(link).String()
			default:
				href = link.String()
			}
		}

		anchors = append(anchors, Anchor{
			Name: CleanText(n),
			Href: href,
		})
	}

	return anchors
}
