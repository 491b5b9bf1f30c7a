package culturo

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks that text, source_lang and target_lang are present.
// Source and target are allowed to be equal; that check belongs to clients.
func (r TranslationRequest) Validate() error {
	trimmed := TranslationRequest{
		Text:       strings.TrimSpace(r.Text),
		SourceLang: strings.TrimSpace(r.SourceLang),
		TargetLang: strings.TrimSpace(r.TargetLang),
	}
	err := validation.ValidateStruct(&trimmed,
		validation.Field(&trimmed.Text, validation.Required),
		validation.Field(&trimmed.SourceLang, validation.Required),
		validation.Field(&trimmed.TargetLang, validation.Required),
	)
	return toValidationError(err)
}

// WithDefaults returns a copy of r with an empty cultural context set to general.
func (r TranslationRequest) WithDefaults() TranslationRequest {
	if strings.TrimSpace(string(r.CulturalContext)) == "" {
		r.CulturalContext = ContextGeneral
	}
	return r
}

// Validate checks that the learner message is present.
func (r ChatRequest) Validate() error {
	trimmed := ChatRequest{Message: strings.TrimSpace(r.Message)}
	err := validation.ValidateStruct(&trimmed,
		validation.Field(&trimmed.Message, validation.Required),
	)
	return toValidationError(err)
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for field, fieldErr := range fieldErrs {
		if fieldErr == nil {
			continue
		}
		out.Fields[field] = fieldErr.Error()
	}
	if len(out.Fields) == 0 {
		return nil
	}
	return out
}
