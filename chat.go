package culturo

import (
	"context"
	"strings"
	"time"
)

const (
	defaultChatTemperature = 0.7
	defaultChatMaxTokens   = 500
	defaultChatLanguage    = "en"

	// EmptyChatReply is sent when the model answers with no content.
	EmptyChatReply = "Desculpe, não consegui processar sua mensagem."
)

// Tutor is the language-learning chat assistant.
type Tutor struct {
	model       ChatModel
	temperature float32
	maxTokens   int
	now         func() time.Time
}

// TutorOption is a functional option for configuring the Tutor.
type TutorOption func(*Tutor)

// WithTutorTemperature sets the sampling temperature for chat replies.
func WithTutorTemperature(temperature float32) TutorOption {
	return func(t *Tutor) {
		if temperature > 0 {
			t.temperature = temperature
		}
	}
}

// WithTutorMaxTokens caps the length of chat replies.
func WithTutorMaxTokens(n int) TutorOption {
	return func(t *Tutor) {
		if n > 0 {
			t.maxTokens = n
		}
	}
}

// WithClock overrides the time source used to stamp replies.
func WithClock(now func() time.Time) TutorOption {
	return func(t *Tutor) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTutor creates a Tutor backed by model.
func NewTutor(model ChatModel, opts ...TutorOption) *Tutor {
	t := &Tutor{
		model:       model,
		temperature: defaultChatTemperature,
		maxTokens:   defaultChatMaxTokens,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Reply answers a single learner message. Only the language code shapes the
// system prompt; req.Context is accepted for compatibility.
func (t *Tutor) Reply(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if t.model == nil {
		return nil, &TranslationError{Message: "no model configured"}
	}

	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = defaultChatLanguage
	}

	reply, err := t.model.Complete(ctx, CompletionRequest{
		SystemPrompt: BuildChatPrompt(lang),
		UserPrompt:   req.Message,
		Temperature:  t.temperature,
		MaxTokens:    t.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = EmptyChatReply
	}

	return &ChatReply{Message: reply, Timestamp: t.now().UTC()}, nil
}
