package culturo

import (
	"strings"

	"golang.org/x/text/language"
)

// SupportedLanguages lists the language codes offered to clients, in display order.
var SupportedLanguages = []string{"en", "es", "fr", "de", "it", "pt", "zh", "ja", "ru", "ar"}

// LanguageNames maps language codes to the human-readable names used in prompts.
var LanguageNames = map[string]string{
	"en": "Inglês",
	"es": "Espanhol",
	"fr": "Francês",
	"de": "Alemão",
	"it": "Italiano",
	"pt": "Português",
	"zh": "Chinês",
	"ja": "Japonês",
	"ru": "Russo",
	"ar": "Árabe",
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// GetLanguageName returns the human-readable name for a language code.
// Regional tags ("pt-BR", "es_MX") fall back to their base language.
// Unknown codes are returned unchanged.
func GetLanguageName(langCode string) string {
	if name, ok := LanguageNames[langCode]; ok {
		return name
	}
	if base := BaseLanguage(langCode); base != "" {
		if name, ok := LanguageNames[base]; ok {
			return name
		}
	}
	return langCode
}

// BaseLanguage returns the ISO 639 base of a language tag, or "" if the tag
// cannot be parsed.
func BaseLanguage(langCode string) string {
	tag, err := language.Parse(NormalizeLocale(strings.TrimSpace(langCode)))
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// IsSupportedLanguage reports whether the code (or its base language) is offered to clients.
func IsSupportedLanguage(langCode string) bool {
	if _, ok := LanguageNames[langCode]; ok {
		return true
	}
	_, ok := LanguageNames[BaseLanguage(langCode)]
	return ok
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(langCode string) string {
	base := BaseLanguage(langCode)
	if base == "" {
		base = strings.ToLower(strings.Split(NormalizeLocale(langCode), "-")[0])
	}
	if RTLLanguages[base] {
		return "rtl"
	}
	return "ltr"
}

// NormalizeLocale converts a locale code to BCP 47 separators (e.g., "es_ES" → "es-ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}
