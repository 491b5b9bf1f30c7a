package culturo

import (
	"errors"
	"strings"
	"testing"
)

func TestTranslationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     TranslationRequest
		invalid []string
	}{
		{"valid", TranslationRequest{Text: "Hi", SourceLang: "en", TargetLang: "pt"}, nil},
		{"missing all", TranslationRequest{}, []string{"source_lang", "target_lang", "text"}},
		{"whitespace only", TranslationRequest{Text: " ", SourceLang: "\t", TargetLang: "pt"}, []string{"source_lang", "text"}},
		{"long text", TranslationRequest{Text: strings.Repeat("á", 6000), SourceLang: "en", TargetLang: "pt"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.invalid == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			got := vErr.FieldNames()
			if strings.Join(got, ",") != strings.Join(tt.invalid, ",") {
				t.Errorf("invalid fields = %v, want %v", got, tt.invalid)
			}
		})
	}
}

func TestChatRequest_Validate(t *testing.T) {
	if err := (ChatRequest{Message: strings.Repeat("a", 6000)}).Validate(); err != nil {
		t.Errorf("long message should be accepted, got %v", err)
	}

	var vErr *ValidationError
	if err := (ChatRequest{Message: "  "}).Validate(); !errors.As(err, &vErr) {
		t.Fatalf("blank message: expected ValidationError, got %v", err)
	}
	if got := vErr.FieldNames(); len(got) != 1 || got[0] != "message" {
		t.Errorf("invalid fields = %v, want [message]", got)
	}
}

func TestTranslationRequest_WithDefaults(t *testing.T) {
	req := TranslationRequest{Text: "Hi"}.WithDefaults()
	if req.CulturalContext != ContextGeneral {
		t.Errorf("CulturalContext = %q", req.CulturalContext)
	}

	req = TranslationRequest{CulturalContext: "sarcastic"}.WithDefaults()
	if req.CulturalContext != "sarcastic" {
		t.Error("unknown contexts are kept for echoing")
	}
}
