package inplace

import "testing"

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"zh_CN", "zh_CN"},
		{"zh-cn", "zh_CN"},
		{"ja", "ja_JP"},
		{"EN", "en_US"},
		{"xx", "xx"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if result := NormalizeLocale(tt.code); result != tt.expected {
				t.Errorf("NormalizeLocale(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}

func TestGetLanguageName(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"zh_CN", "Simplified Chinese"},
		{"zh-TW", "Traditional Chinese"},
		{"ja", "Japanese"},     // short code expansion
		{"unknown", "unknown"}, // fallback
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			result := GetLanguageName(tt.code)
			if result != tt.expected {
				t.Errorf("GetLanguageName(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}

func TestLanguageTag(t *testing.T) {
	tag, err := LanguageTag(DefaultTargetLang)
	if err != nil {
		t.Fatalf("LanguageTag failed: %v", err)
	}
	if tag.String() != "zh-CN" {
		t.Errorf("expected zh-CN, got %s", tag)
	}

	if _, err := LanguageTag("not a language!"); err == nil {
		t.Error("expected error for invalid code")
	}
}

func TestTencentCode(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"zh_CN", "zh"},
		{"zh_TW", "zh-TW"},
		{"en", "en"},
		{"nl_NL", "nl"},
	}

	for _, tt := range tests {
		if result := TencentCode(tt.code); result != tt.expected {
			t.Errorf("TencentCode(%q) = %q, want %q", tt.code, result, tt.expected)
		}
	}
}
