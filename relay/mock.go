package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockBackend is a backend for testing. Bodies are matched after decoding
// when they are JSON strings and verbatim otherwise.
type MockBackend struct {
	Translations map[string]string // Map of decoded body to translation
	Err          error             // Returned by every call when set

	mu        sync.Mutex
	callCount int
	lastBody  json.RawMessage
}

// NewMockBackend creates a new mock backend with default translations.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Translations: map[string]string{
			"Hello":        "你好",
			"<p>Hello</p>": "<p>你好</p>",
			"World":        "世界",
		},
	}
}

// Translate returns mock translations. Unknown input comes back bracketed.
func (m *MockBackend) Translate(ctx context.Context, body json.RawMessage) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastBody = append(json.RawMessage(nil), body...)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}

	key := string(body)
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		key = s
	}

	if translation, ok := m.Translations[key]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s]", key), nil
}

// CallCount returns the number of Translate calls.
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastBody returns the body of the most recent call.
func (m *MockBackend) LastBody() json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBody
}

// Reset resets the call count and last body.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastBody = nil
}

var _ Backend = (*MockBackend)(nil)
