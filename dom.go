package inplace

import (
	"strings"

	"golang.org/x/net/html"
)

func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := getAttr(n, key)
	return ok
}

func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// parseInner parses markup as the content of n without touching n.
func parseInner(n *html.Node, markup string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(markup), n)
}

// replaceChildren swaps the children of n for nodes.
func replaceChildren(n *html.Node, nodes []*html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
}

// setInnerHTML parses markup first and only then replaces the children of n,
// so a parse failure leaves n as it was.
func setInnerHTML(n *html.Node, markup string) error {
	nodes, err := parseInner(n, markup)
	if err != nil {
		return err
	}
	replaceChildren(n, nodes)
	return nil
}

// innerHTML renders the children of n.
func innerHTML(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
