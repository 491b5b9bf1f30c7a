package culturo

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FallbackNotes is returned as cultural notes when the model reply carries no usable JSON.
const FallbackNotes = "Tradução padrão sem análise cultural detalhada."

// ExtractJSONObject returns the substring from the first '{' to the last '}'
// of text. It returns ErrNoJSONObject when there is no such span and an error
// wrapping ErrMalformedJSON when the span is not valid JSON.
//
// The match is greedy: prose after the object that itself contains a '}'
// is swallowed into the span and makes it invalid.
func ExtractJSONObject(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	if start < 0 {
		return nil, ErrNoJSONObject
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return nil, ErrNoJSONObject
	}

	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		var v any
		err := json.Unmarshal([]byte(candidate), &v)
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return json.RawMessage(candidate), nil
}

// ParseTranslationReply turns a raw model reply into a TranslationResult.
// When the reply has no valid JSON object the whole reply becomes both
// translations and the notes are FallbackNotes; the second return value
// reports whether that fallback was used.
func ParseTranslationReply(raw string) (TranslationResult, bool) {
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return fallbackResult(raw), true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(obj, &fields); err != nil {
		return fallbackResult(raw), true
	}

	return TranslationResult{
		CulturalTranslation: fieldText(fields, "cultural_translation"),
		LiteralTranslation:  fieldText(fields, "literal_translation"),
		CulturalNotes:       fieldText(fields, "cultural_notes"),
	}, false
}

func fallbackResult(raw string) TranslationResult {
	return TranslationResult{
		CulturalTranslation: raw,
		LiteralTranslation:  raw,
		CulturalNotes:       FallbackNotes,
	}
}

// fieldText returns the string value of key, the raw JSON text for
// non-string values, or "" when the key is absent or null.
func fieldText(fields map[string]json.RawMessage, key string) string {
	value, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(value))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}
