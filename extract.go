package inplace

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// firstElementInner parses data into a detached <div> and returns the inner
// markup of its first element child. When data yields no element at all it is
// returned unchanged.
func firstElementInner(data string) (string, error) {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(data), container)
	if err != nil {
		return "", err
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	first := goquery.NewDocumentFromNode(container).Children().First()
	if first.Length() == 0 {
		return data, nil
	}

	return first.Html()
}
