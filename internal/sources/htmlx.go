// SPDX-License-Identifier: MIT

package sources

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// The HTML sources scrape listing pages that were written for browsers,
// not APIs. These helpers keep the per-source parsers small: find
// elements by tag, read attributes and flatten text the way the pages
// render it.

// ParseHTML parses a full document. The parser is lenient and builds the
// implied structure (html/head/body, tbody) even when the markup omits it.
func ParseHTML(data []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(data))
}

// FindFirst returns the first element with the given tag in depth-first
// order, or nil.
func FindFirst(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every element matching one of the given tags in
// depth-first order, descending into matches.
func FindAll(n *html.Node, tags ...string) []*html.Node {
	match := func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, t := range tags {
			if n.Data == t {
				return true
			}
		}
		return false
	}

	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasClass reports whether the element's class list contains name.
func HasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// Text flattens the subtree's text nodes: each node is trimmed, empty
// nodes are dropped and the rest are joined with sep. With sep == "" the
// pieces are concatenated directly.
func Text(n *html.Node, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, sep)
}

// FindFirstLink returns the href of the first anchor under n that carries
// one.
func FindFirstLink(n *html.Node) (string, bool) {
	for _, a := range FindAll(n, "a") {
		if href := Attr(a, "href"); href != "" {
			return href, true
		}
	}
	return "", false
}
