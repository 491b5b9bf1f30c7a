package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ZaguanLabs/culturo"
)

var (
	// ErrEmptyText is reported when the source text is blank.
	ErrEmptyText = errors.New("Por favor, digite um texto para traduzir")
	// ErrSameLanguages is reported when source and target are equal.
	ErrSameLanguages = errors.New("Os idiomas de origem e destino devem ser diferentes")
)

const genericTranslateError = "Erro ao traduzir texto"

// Translator is the subset of Client used by TranslationState.
type Translator interface {
	Translate(ctx context.Context, req culturo.TranslationRequest) (*TranslateResponse, error)
}

// TranslationSnapshot is a copy of the form state.
type TranslationSnapshot struct {
	Text            string
	SourceLang      string
	TargetLang      string
	CulturalContext culturo.CulturalContext

	TranslatedText     string
	LiteralTranslation string
	CulturalNotes      string
	HasResult          bool

	Translating bool
	Error       string
}

// TranslationState holds a translation form: input, languages and the last
// result or error. It is safe for concurrent use.
type TranslationState struct {
	api Translator

	mu    sync.Mutex
	state TranslationSnapshot
}

// NewTranslationState creates a form translating from source to target in
// the general context.
func NewTranslationState(api Translator, source, target string) *TranslationState {
	return &TranslationState{
		api: api,
		state: TranslationSnapshot{
			SourceLang:      source,
			TargetLang:      target,
			CulturalContext: culturo.ContextGeneral,
		},
	}
}

// Snapshot returns the current state.
func (s *TranslationState) Snapshot() TranslationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetText replaces the source text.
func (s *TranslationState) SetText(text string) {
	s.mu.Lock()
	s.state.Text = text
	s.mu.Unlock()
}

// SetLanguages replaces the source and target languages.
func (s *TranslationState) SetLanguages(source, target string) {
	s.mu.Lock()
	s.state.SourceLang = source
	s.state.TargetLang = target
	s.mu.Unlock()
}

// SetContext selects the cultural context for the next translation.
func (s *TranslationState) SetContext(ctx culturo.CulturalContext) {
	s.mu.Lock()
	s.state.CulturalContext = ctx
	s.mu.Unlock()
}

// Translate validates the form and calls the API. Validation failures set
// Error and leave any previous result in place; API failures clear it.
func (s *TranslationState) Translate(ctx context.Context) error {
	s.mu.Lock()
	req := culturo.TranslationRequest{
		Text:            s.state.Text,
		SourceLang:      s.state.SourceLang,
		TargetLang:      s.state.TargetLang,
		CulturalContext: s.state.CulturalContext,
	}
	switch {
	case strings.TrimSpace(req.Text) == "":
		s.state.Error = ErrEmptyText.Error()
		s.mu.Unlock()
		return ErrEmptyText
	case req.SourceLang == req.TargetLang:
		s.state.Error = ErrSameLanguages.Error()
		s.mu.Unlock()
		return ErrSameLanguages
	}
	s.state.Translating = true
	s.state.Error = ""
	s.mu.Unlock()

	resp, err := s.api.Translate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Translating = false
	if err != nil {
		s.state.Error = translateErrorMessage(err)
		s.clearResult()
		return err
	}
	s.state.TranslatedText = resp.TranslatedText
	s.state.LiteralTranslation = resp.LiteralTranslation
	s.state.CulturalNotes = resp.CulturalNotes
	s.state.HasResult = true
	return nil
}

// Swap exchanges source and target languages. The previous translation
// becomes the new source text, or the text is emptied when there is none.
// The displayed result is kept until the next Translate.
func (s *TranslationState) Swap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SourceLang, s.state.TargetLang = s.state.TargetLang, s.state.SourceLang
	if s.state.HasResult {
		s.state.Text = s.state.TranslatedText
	} else {
		s.state.Text = ""
	}
}

func (s *TranslationState) clearResult() {
	s.state.TranslatedText = ""
	s.state.LiteralTranslation = ""
	s.state.CulturalNotes = ""
	s.state.HasResult = false
}

func translateErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if apiErr != nil {
		return genericTranslateError
	}
	return err.Error()
}
