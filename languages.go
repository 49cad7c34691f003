package pugtl

import "strings"

// LanguageNames maps ISO 639-1 codes to English names for provider prompts
// and log output. It covers the languages the detector can report.
var LanguageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"pt": "Portuguese",
	"ca": "Catalan",
	"fr": "French",
	"it": "Italian",
	"de": "German",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	if name, ok := LanguageNames[BaseLanguage(langCode)]; ok {
		return name
	}
	return langCode
}

// NormalizeLocale converts a language code to the standard format (e.g., "es-MX" → "es_MX").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(strings.TrimSpace(langCode), "-", "_")
}

// BaseLanguage returns the lower-cased language part of a locale
// ("es_MX" → "es").
func BaseLanguage(langCode string) string {
	base, _, _ := strings.Cut(NormalizeLocale(langCode), "_")
	return strings.ToLower(base)
}

// IsSourceLocale reports whether a lang attribute value names the source
// language.
func IsSourceLocale(langCode string) bool {
	return BaseLanguage(langCode) == SourceLang
}
