package inplace

import "strings"

// ServiceID selects the translation backend and the adapter used to talk to it.
type ServiceID string

const (
	// ServiceTencent is the plain-text service. It receives the anchor's text
	// content and returns the bare translated string.
	ServiceTencent ServiceID = "tencent"
	// ServiceGoogle is the markup-preserving service. It receives the anchor's
	// outer HTML and echoes back a translated copy of the element.
	ServiceGoogle ServiceID = "google"
	// ServiceOpenAI is the credentialed generative service. It receives the
	// outer HTML together with a caller-supplied API key.
	ServiceOpenAI ServiceID = "openai"
)

// Services returns every known service identifier.
func Services() []ServiceID {
	return []ServiceID{ServiceTencent, ServiceGoogle, ServiceOpenAI}
}

// ParseServiceID maps a configuration string to a ServiceID.
func ParseServiceID(s string) (ServiceID, error) {
	id := ServiceID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Services() {
		if id == known {
			return id, nil
		}
	}
	return "", &ConfigError{Message: "unknown translation service", Service: s}
}

func (s ServiceID) String() string {
	return string(s)
}

// State is the lifecycle of a single anchor.
type State int

const (
	// StateUntranslated is the initial state of every anchor.
	StateUntranslated State = iota
	// StatePending means the placeholder is shown and a request is in flight.
	StatePending
	// StateCommitted means the translated content was written.
	StateCommitted
	// StateFailed means the placeholder was kept and the error logged.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUntranslated:
		return "untranslated"
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Marker attributes written to the page.
const (
	// TranslatedAttr marks an anchor (and its result) as already translated.
	TranslatedAttr = "rs-translated"
	// ResultAttr marks an element as translation output.
	ResultAttr = "rs-translated-result"
)

// FailureMarkup is what the relay sends back when a backend call fails.
const FailureMarkup = "<p>Translation failed.</p>"

// ProcessedContent is the result of translating a whole document.
type ProcessedContent struct {
	Content   string // Rendered page including result nodes
	Total     int    // Anchors found
	Committed int    // Anchors whose translation was written
	Failed    int    // Anchors left with the placeholder
	Skipped   int    // Anchors that were already translated
}

// IgnoredTags contains HTML tags whose content is never picked as an anchor.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}
