package inplace

import "testing"

func TestHashText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple text",
			input:    "Hello World",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:     "text with leading whitespace",
			input:    "  Hello World",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:     "text with trailing whitespace",
			input:    "Hello World  ",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:     "text with both whitespace",
			input:    "  Hello World  ",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:  "empty string",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HashText(tt.input)
			if tt.expected != "" && result != tt.expected {
				t.Errorf("HashText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			// Verify hash length (SHA-256 = 64 hex chars)
			if len(result) != 64 {
				t.Errorf("HashText(%q) length = %d, want 64", tt.input, len(result))
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	req := Request{Name: ServiceGoogle, Body: []byte(`"Hello World"`)}

	result := CacheKey(req)
	expected := "google:" + HashText(`"Hello World"`)

	if result != expected {
		t.Errorf("CacheKey() = %q, want %q", result, expected)
	}

	other := CacheKey(Request{Name: ServiceTencent, Body: req.Body})
	if other == result {
		t.Error("CacheKey should differ between services for the same body")
	}
}

func TestCacheKeyExtended(t *testing.T) {
	req := Request{Name: ServiceOpenAI, Body: []byte(`{"openaiKey":"k","text":"<p>Hi</p>"}`)}

	result := CacheKeyExtended(req, "zh_CN", "gpt-3.5-turbo-instruct")
	expected := CacheKey(req) + ":zh_CN:gpt-3.5-turbo-instruct"

	if result != expected {
		t.Errorf("CacheKeyExtended() = %q, want %q", result, expected)
	}
}

func TestHashText_NormalizesUnicode(t *testing.T) {
	composed := "café"
	decomposed := "café"

	if HashText(composed) != HashText(decomposed) {
		t.Error("composed and decomposed forms should hash the same")
	}
}
