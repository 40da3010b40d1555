package inplace

import (
	"golang.org/x/net/html"
)

// Guard decides whether an anchor may be translated and records the state of
// every anchor it has claimed. Anchors are keyed by node identity; the marker
// attributes are written as well so other tools scanning the page see them.
//
// Guard is not safe for concurrent use. The overlay calls it while holding its
// DOM lock.
type Guard struct {
	states  map[*html.Node]State
	outputs map[*html.Node]bool
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{
		states:  make(map[*html.Node]State),
		outputs: make(map[*html.Node]bool),
	}
}

// ShouldTranslate reports whether anchor has never been translated and is not
// itself translation output.
func (g *Guard) ShouldTranslate(anchor *html.Node) bool {
	if anchor == nil || anchor.Type != html.ElementNode {
		return false
	}
	if _, seen := g.states[anchor]; seen {
		return false
	}
	if g.outputs[anchor] {
		return false
	}
	return !hasAttr(anchor, TranslatedAttr) && !hasAttr(anchor, ResultAttr)
}

// Claim marks anchor as translated, creates its result node and inserts it as
// the anchor's next sibling. It returns false when the anchor must not be
// translated. The result node starts empty.
func (g *Guard) Claim(anchor *html.Node) (*html.Node, bool) {
	if !g.ShouldTranslate(anchor) {
		return nil, false
	}

	result := &html.Node{
		Type:      html.ElementNode,
		Data:      anchor.Data,
		DataAtom:  anchor.DataAtom,
		Namespace: anchor.Namespace,
	}
	setAttr(result, TranslatedAttr, "1")
	setAttr(result, ResultAttr, "1")

	setAttr(anchor, TranslatedAttr, "1")
	if anchor.Parent != nil {
		anchor.Parent.InsertBefore(result, anchor.NextSibling)
	}

	g.states[anchor] = StatePending
	g.outputs[result] = true
	return result, true
}

// Resolve moves a pending anchor to its final state. Anchors that are not
// pending are left alone.
func (g *Guard) Resolve(anchor *html.Node, state State) {
	if g.states[anchor] != StatePending {
		return
	}
	if state == StateCommitted || state == StateFailed {
		g.states[anchor] = state
	}
}

// State returns the state recorded for anchor. Anchors the guard never
// claimed are untranslated.
func (g *Guard) State(anchor *html.Node) State {
	return g.states[anchor]
}

// IsOutput reports whether n is a result node created by this guard.
func (g *Guard) IsOutput(n *html.Node) bool {
	return g.outputs[n]
}
