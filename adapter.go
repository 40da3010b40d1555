package inplace

import (
	"encoding/json"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Adapter translates between an anchor and one backend's payload and reply
// shapes. There is exactly one adapter per ServiceID.
type Adapter interface {
	// Service returns the identifier this adapter serves.
	Service() ServiceID

	// BuildRequest builds the request body for anchor.
	BuildRequest(anchor *html.Node, credential string) (json.RawMessage, error)

	// ExtractResult turns the reply data into the inner markup of the
	// result node.
	ExtractResult(data string) (string, error)
}

// GenerativeBody is the request body of the credentialed generative service.
type GenerativeBody struct {
	OpenAIKey string `json:"openaiKey"`
	Text      string `json:"text"`
}

// textAdapter sends the text content only; its backend does not understand
// markup and returns a bare translated string.
type textAdapter struct{}

func (textAdapter) Service() ServiceID { return ServiceTencent }

func (textAdapter) BuildRequest(anchor *html.Node, _ string) (json.RawMessage, error) {
	return marshalJSON(goquery.NewDocumentFromNode(anchor).Text())
}

func (textAdapter) ExtractResult(data string) (string, error) {
	return data, nil
}

// markupAdapter sends the outer HTML so inline structure survives. The
// backend echoes the whole element back.
type markupAdapter struct{}

func (markupAdapter) Service() ServiceID { return ServiceGoogle }

func (markupAdapter) BuildRequest(anchor *html.Node, _ string) (json.RawMessage, error) {
	outer, err := outerHTML(anchor)
	if err != nil {
		return nil, err
	}
	return marshalJSON(outer)
}

func (markupAdapter) ExtractResult(data string) (string, error) {
	return firstElementInner(data)
}

// generativeAdapter sends the outer HTML together with the caller's API key.
type generativeAdapter struct{}

func (generativeAdapter) Service() ServiceID { return ServiceOpenAI }

func (generativeAdapter) BuildRequest(anchor *html.Node, credential string) (json.RawMessage, error) {
	if credential == "" {
		return nil, &ConfigError{Message: "credential required", Service: string(ServiceOpenAI)}
	}
	outer, err := outerHTML(anchor)
	if err != nil {
		return nil, err
	}
	return marshalJSON(GenerativeBody{OpenAIKey: credential, Text: outer})
}

func (generativeAdapter) ExtractResult(data string) (string, error) {
	return firstElementInner(data)
}

func outerHTML(n *html.Node) (string, error) {
	return goquery.OuterHtml(goquery.NewDocumentFromNode(n).Selection)
}

// Registry maps every ServiceID to its adapter.
type Registry struct {
	adapters map[ServiceID]Adapter
}

// DefaultRegistry returns the registry of the built-in adapters.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(textAdapter{}, markupAdapter{}, generativeAdapter{})
	if err != nil {
		panic(err)
	}
	return r
}

// NewRegistry builds a registry from adapters. Every identifier returned by
// Services must be covered, and each only once.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[ServiceID]Adapter, len(adapters))}
	for _, a := range adapters {
		if _, dup := r.adapters[a.Service()]; dup {
			return nil, &ConfigError{Message: "duplicate adapter", Service: string(a.Service())}
		}
		r.adapters[a.Service()] = a
	}
	for _, id := range Services() {
		if _, ok := r.adapters[id]; !ok {
			return nil, &ConfigError{Message: "no adapter registered", Service: string(id)}
		}
	}
	return r, nil
}

// Lookup returns the adapter for id, or a ConfigError for an unknown id.
func (r *Registry) Lookup(id ServiceID) (Adapter, error) {
	a, ok := r.adapters[id]
	if !ok {
		return nil, &ConfigError{Message: "unknown translation service", Service: string(id)}
	}
	return a, nil
}

// BuildRequest builds the request envelope for anchor.
func (r *Registry) BuildRequest(id ServiceID, anchor *html.Node, credential string) (Request, error) {
	a, err := r.Lookup(id)
	if err != nil {
		return Request{}, err
	}
	body, err := a.BuildRequest(anchor, credential)
	if err != nil {
		return Request{}, err
	}
	return Request{Name: id, Body: body}, nil
}

// ExtractResult extracts the inner markup from reply data for id.
func (r *Registry) ExtractResult(id ServiceID, data string) (string, error) {
	a, err := r.Lookup(id)
	if err != nil {
		return "", err
	}
	return a.ExtractResult(data)
}
