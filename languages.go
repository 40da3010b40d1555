package inplace

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultTargetLang is the language relay backends translate into.
const DefaultTargetLang = "zh_CN"

// LanguageNames maps locale codes to the names used in generative prompts.
var LanguageNames = map[string]string{
	"zh_CN": "Simplified Chinese",
	"zh_TW": "Traditional Chinese",
	"en_US": "English",
	"ja_JP": "Japanese",
	"ko_KR": "Korean",
	"fr_FR": "French",
	"de_DE": "German",
	"es_ES": "Spanish",
	"it_IT": "Italian",
	"pt_BR": "Portuguese",
	"ru_RU": "Russian",
	"tr_TR": "Turkish",
	"vi_VN": "Vietnamese",
	"id_ID": "Indonesian",
	"th_TH": "Thai",
	"ms_MY": "Malay",
	"ar_SA": "Arabic",
	"hi_IN": "Hindi",
}

// ShortCodeToLocale maps short language codes to full locale codes.
var ShortCodeToLocale = map[string]string{
	"zh": "zh_CN",
	"en": "en_US",
	"ja": "ja_JP",
	"ko": "ko_KR",
	"fr": "fr_FR",
	"de": "de_DE",
	"es": "es_ES",
	"it": "it_IT",
	"pt": "pt_BR",
	"ru": "ru_RU",
	"tr": "tr_TR",
	"vi": "vi_VN",
	"id": "id_ID",
	"th": "th_TH",
	"ms": "ms_MY",
	"ar": "ar_SA",
	"hi": "hi_IN",
}

// tencentCodes maps locale codes to the target codes of Tencent's TMT API.
var tencentCodes = map[string]string{
	"zh_CN": "zh",
	"zh_TW": "zh-TW",
	"en_US": "en",
	"ja_JP": "ja",
	"ko_KR": "ko",
	"fr_FR": "fr",
	"de_DE": "de",
	"es_ES": "es",
	"it_IT": "it",
	"pt_BR": "pt",
	"ru_RU": "ru",
	"tr_TR": "tr",
	"vi_VN": "vi",
	"id_ID": "id",
	"th_TH": "th",
	"ms_MY": "ms",
	"ar_SA": "ar",
	"hi_IN": "hi",
}

// NormalizeLocale converts a language code to the standard format
// (e.g., "zh-cn" → "zh_CN", "ja" → "ja_JP").
func NormalizeLocale(langCode string) string {
	code := strings.ReplaceAll(strings.TrimSpace(langCode), "-", "_")
	parts := strings.SplitN(code, "_", 2)
	if len(parts) == 1 {
		if locale, ok := ShortCodeToLocale[strings.ToLower(code)]; ok {
			return locale
		}
		return strings.ToLower(code)
	}
	return strings.ToLower(parts[0]) + "_" + strings.ToUpper(parts[1])
}

// GetLanguageName returns the prompt name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	if name, ok := LanguageNames[NormalizeLocale(langCode)]; ok {
		return name
	}
	return langCode
}

// LanguageTag parses a language code into a BCP 47 tag.
func LanguageTag(langCode string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(NormalizeLocale(langCode), "_", "-"))
}

// TencentCode returns the TMT target code for a language code, falling back
// to the base language.
func TencentCode(langCode string) string {
	locale := NormalizeLocale(langCode)
	if code, ok := tencentCodes[locale]; ok {
		return code
	}
	return strings.SplitN(locale, "_", 2)[0]
}
