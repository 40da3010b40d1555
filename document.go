package inplace

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultSelector picks the block elements that usually carry article text.
const DefaultSelector = "p, li, h1, h2, h3, h4, h5, h6, blockquote, figcaption, td, th, dt, dd"

// Document is a parsed page.
type Document struct {
	doc      *goquery.Document
	fragment bool
}

// ParseDocument parses an HTML page or fragment.
func ParseDocument(content string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, &DocumentError{Message: "failed to parse HTML", Cause: err}
	}
	return &Document{
		doc:      doc,
		fragment: !strings.Contains(strings.ToLower(content), "<html"),
	}, nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.doc.Nodes[0]
}

// Anchors returns the elements matching selector that are worth translating,
// in document order. Elements inside ignored tags or data-no-translate
// subtrees, already marked elements, translation output, elements without
// text, and elements nested inside another candidate are left out.
func (d *Document) Anchors(selector string) []*html.Node {
	if selector == "" {
		selector = DefaultSelector
	}

	var anchors []*html.Node
	picked := make(map[*html.Node]bool)

	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		if hasAttr(n, TranslatedAttr) || hasAttr(n, ResultAttr) {
			return
		}
		if strings.TrimSpace(s.Text()) == "" {
			return
		}
		for p := n; p != nil; p = p.Parent {
			if p.Type != html.ElementNode {
				continue
			}
			if IgnoredTags[strings.ToLower(p.Data)] || hasAttr(p, "data-no-translate") {
				return
			}
			if p != n && (picked[p] || hasAttr(p, ResultAttr)) {
				return
			}
		}
		picked[n] = true
		anchors = append(anchors, n)
	})

	return anchors
}

// HTML renders the document. Fragments are rendered without the html, head
// and body wrappers the parser added.
func (d *Document) HTML() (string, error) {
	if d.fragment {
		body := d.doc.Find("body")
		if body.Length() > 0 {
			return body.Html()
		}
	}
	return d.doc.Html()
}

// TranslateDocument parses content, translates every anchor matching
// selector, waits for all replies and renders the result.
func (o *Overlay) TranslateDocument(ctx context.Context, content, selector string, service ServiceID, credential string) (*ProcessedContent, error) {
	doc, err := ParseDocument(content)
	if err != nil {
		return nil, err
	}

	tasks, err := o.TranslateAll(ctx, doc.Anchors(selector), service, credential)
	if err != nil {
		return nil, err
	}

	summary, err := WaitAll(ctx, tasks)
	if err != nil {
		return nil, err
	}

	rendered, err := o.Render(doc)
	if err != nil {
		return nil, err
	}

	return &ProcessedContent{
		Content:   rendered,
		Total:     summary.Total,
		Committed: summary.Committed,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
	}, nil
}

// Render renders doc while holding the overlay's DOM lock, so it is safe to
// call while tasks are still in flight.
func (o *Overlay) Render(doc *Document) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	out, err := doc.HTML()
	if err != nil {
		return "", &DocumentError{Message: "failed to serialize HTML", Cause: err}
	}
	return out, nil
}
