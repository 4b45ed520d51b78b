package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Text converts the children of every node in sel into plain text. Text
// nodes are copied verbatim so indentation survives; <br> becomes a line
// break, links and images become their markdown forms, and decoration such
// as <font> is unwrapped.
func Text(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(&b, c)
		}
	}
	return strings.ReplaceAll(b.String(), "\r\n", "\n")
}

func writeNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "br":
		b.WriteByte('\n')
		return
	case "script", "style":
		return
	case "img":
		if src := attr(n, "src"); src != "" {
			b.WriteString("![](")
			b.WriteString(src)
			b.WriteString(")")
		}
		return
	case "a":
		var inner strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(&inner, c)
		}
		href := attr(n, "href")
		if href == "" || href == inner.String() {
			b.WriteString(inner.String())
			return
		}
		b.WriteString("[")
		b.WriteString(inner.String())
		b.WriteString("](")
		b.WriteString(href)
		b.WriteString(")")
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(b, c)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Pre returns every <pre> block of a rendered page in document order.
func Pre(page string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, err
	}
	return doc.Find("pre"), nil
}
