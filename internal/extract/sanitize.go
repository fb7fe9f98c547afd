package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/weeklybind/weeklybind/internal/textutil"
)

// Inline elements kept whole inside paragraph markup. Everything else
// contributes only its visible text.
var allowedInline = map[string]bool{
	"em": true, "strong": true, "i": true, "b": true, "span": true,
}

// Elements stripped from paragraphs before any other processing.
var strippedElements = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "embed": true,
}

// sanitizeParagraph reduces a paragraph element to safe inline markup:
// script-like elements removed, small caps approximated as plain caps,
// drop-cap markers unwrapped, hyperlinks kept only with safe targets,
// and everything outside the allow-list flattened to text. The result
// is whitespace-collapsed and symbol-normalized. The node is mutated.
func sanitizeParagraph(p *html.Node) string {
	for _, n := range findElements(p, func(n *html.Node) bool { return strippedElements[n.Data] }) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	for _, n := range findElements(p, func(n *html.Node) bool { return n.Data == "small" }) {
		upper := strings.ToUpper(nodeText(n))
		removeChildren(n)
		n.AppendChild(&html.Node{Type: html.TextNode, Data: upper})
		unwrap(n)
	}
	for _, n := range findElements(p, func(n *html.Node) bool {
		return n.Data == "span" && attrVal(n, "data-caps") == "initial"
	}) {
		unwrap(n)
	}

	var b strings.Builder
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(html.EscapeString(c.Data))
		case html.ElementNode:
			switch {
			case allowedInline[c.Data]:
				b.WriteString(" ")
				_ = html.Render(&b, c)
				b.WriteString(" ")
			case c.Data == "a":
				if hasUnsafeScheme(attrVal(c, "href")) {
					b.WriteString(html.EscapeString(nodeText(c)))
				} else {
					b.WriteString(" ")
					_ = html.Render(&b, c)
					b.WriteString(" ")
				}
			default:
				b.WriteString(html.EscapeString(nodeText(c)))
			}
		}
	}
	return textutil.ConvertSymbols(textutil.CollapseWhitespace(b.String()))
}

// findElements returns all element descendants (and the node itself)
// matching the predicate, in document order.
func findElements(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.ElementNode && match(cur) {
			out = append(out, cur)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// nodeText concatenates all text descendants of n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// unwrap promotes n's children into its parent, in place, and removes n.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for n.FirstChild != nil {
		c := n.FirstChild
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

func removeChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
