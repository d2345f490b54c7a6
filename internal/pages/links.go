package pages

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Link is a navigation reference found inside rendered markup.
type Link struct {
	Page string
	Text string
}

// DanglingLink is a data-page reference that does not resolve to a key.
type DanglingLink struct {
	From Key
	Page string
}

func (d DanglingLink) String() string {
	return fmt.Sprintf("%s -> %q", d.From, d.Page)
}

// Links extracts every element carrying a data-page attribute, in document
// order.
func Links(markup string) ([]Link, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	var links []Link
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "data-page" {
					links = append(links, Link{Page: attr.Val, Text: strings.TrimSpace(textContent(n))})
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return links, nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// CheckLinks reports every data-page reference in the library's documents
// that does not name a known page.
func CheckLinks(lib *Library) ([]DanglingLink, error) {
	var dangling []DanglingLink
	for _, doc := range lib.Documents() {
		links, err := Links(doc.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Source, err)
		}
		for _, link := range links {
			if _, ok := Parse(link.Page); !ok {
				dangling = append(dangling, DanglingLink{From: doc.Key, Page: link.Page})
			}
		}
	}
	sort.SliceStable(dangling, func(i, j int) bool { return dangling[i].From < dangling[j].From })
	return dangling, nil
}
