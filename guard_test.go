package inplace

import (
	"testing"

	"golang.org/x/net/html"
)

func TestGuard_Claim(t *testing.T) {
	doc := mustParse(t, `<div><p>Hello</p><p>World</p></div>`)
	anchor := mustFind(t, doc, "p")
	g := NewGuard()

	if !g.ShouldTranslate(anchor) {
		t.Fatal("Expected fresh anchor to be translatable")
	}

	result, ok := g.Claim(anchor)
	if !ok {
		t.Fatal("Expected Claim to succeed")
	}

	if anchor.NextSibling != result {
		t.Error("Expected result node to be the anchor's next sibling")
	}
	if result.Data != "p" {
		t.Errorf("Expected result tag p, got %q", result.Data)
	}
	if v, _ := getAttr(anchor, TranslatedAttr); v != "1" {
		t.Errorf("Expected anchor to carry %s=1, got %q", TranslatedAttr, v)
	}
	if hasAttr(anchor, ResultAttr) {
		t.Errorf("Expected anchor not to carry %s", ResultAttr)
	}
	if !hasAttr(result, TranslatedAttr) || !hasAttr(result, ResultAttr) {
		t.Error("Expected result node to carry both markers")
	}
	if result.FirstChild != nil {
		t.Error("Expected result node to start empty")
	}
	if g.State(anchor) != StatePending {
		t.Errorf("Expected state pending, got %s", g.State(anchor))
	}

	want := `<div><p rs-translated="1">Hello</p><p rs-translated="1" rs-translated-result="1"></p><p>World</p></div>`
	if got := mustRender(t, doc); got != want {
		t.Errorf("Rendered document:\n got: %s\nwant: %s", got, want)
	}
}

func TestGuard_ClaimTwice(t *testing.T) {
	doc := mustParse(t, `<p>Hello</p>`)
	anchor := mustFind(t, doc, "p")
	g := NewGuard()

	if _, ok := g.Claim(anchor); !ok {
		t.Fatal("Expected first Claim to succeed")
	}
	if _, ok := g.Claim(anchor); ok {
		t.Error("Expected second Claim to be refused")
	}

	if got := doc.doc.Find("p").Length(); got != 2 {
		t.Errorf("Expected exactly one result node, found %d paragraphs", got)
	}
}

func TestGuard_ResultIsNeverTranslated(t *testing.T) {
	doc := mustParse(t, `<p>Hello</p>`)
	anchor := mustFind(t, doc, "p")
	g := NewGuard()

	result, _ := g.Claim(anchor)

	if g.ShouldTranslate(result) {
		t.Error("Expected result node to be refused")
	}
	if !g.IsOutput(result) {
		t.Error("Expected result node to be recorded as output")
	}
	if g.IsOutput(anchor) {
		t.Error("Expected anchor not to be output")
	}
}

func TestGuard_ShouldTranslate(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   bool
	}{
		{"fresh", `<p>Hello</p>`, true},
		{"marked translated", `<p rs-translated="1">Hello</p>`, false},
		{"marked result", `<p rs-translated-result="1">Hello</p>`, false},
		{"marker value ignored", `<p rs-translated="0">Hello</p>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.markup)
			if got := NewGuard().ShouldTranslate(mustFind(t, doc, "p")); got != tt.want {
				t.Errorf("ShouldTranslate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGuard_ShouldTranslate_NonElements(t *testing.T) {
	g := NewGuard()

	if g.ShouldTranslate(nil) {
		t.Error("Expected nil to be refused")
	}
	if g.ShouldTranslate(&html.Node{Type: html.TextNode, Data: "Hello"}) {
		t.Error("Expected text node to be refused")
	}
}

func TestGuard_Resolve(t *testing.T) {
	doc := mustParse(t, `<p>Hello</p>`)
	anchor := mustFind(t, doc, "p")
	g := NewGuard()

	g.Resolve(anchor, StateCommitted)
	if g.State(anchor) != StateUntranslated {
		t.Errorf("Expected unclaimed anchor to stay untranslated, got %s", g.State(anchor))
	}

	g.Claim(anchor)
	g.Resolve(anchor, StatePending)
	if g.State(anchor) != StatePending {
		t.Errorf("Expected pending, got %s", g.State(anchor))
	}

	g.Resolve(anchor, StateFailed)
	if g.State(anchor) != StateFailed {
		t.Errorf("Expected failed, got %s", g.State(anchor))
	}

	g.Resolve(anchor, StateCommitted)
	if g.State(anchor) != StateFailed {
		t.Errorf("Expected final state to stick, got %s", g.State(anchor))
	}
}
