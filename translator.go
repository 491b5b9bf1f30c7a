package culturo

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// ChatModel is the interface for upstream chat-completion backends.
type ChatModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest contains the parameters of a single chat completion.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// cacheDeleter is implemented by caches that can drop a single entry.
type cacheDeleter interface {
	Delete(key string) error
}

const (
	defaultTranslateTemperature = 0.4
	defaultTranslateMaxTokens   = 2000
)

// Translator produces cultural translations through a ChatModel.
type Translator struct {
	model          ChatModel
	cache          TranslationCache
	cacheNamespace string
	temperature    float32
	maxTokens      int
	logger         *zap.Logger
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithCacheNamespace separates cached results per model (usually the model name).
func WithCacheNamespace(ns string) TranslatorOption {
	return func(t *Translator) {
		t.cacheNamespace = ns
	}
}

// WithTemperature sets the sampling temperature for translations.
func WithTemperature(temperature float32) TranslatorOption {
	return func(t *Translator) {
		if temperature > 0 {
			t.temperature = temperature
		}
	}
}

// WithMaxTokens caps the length of the model reply.
func WithMaxTokens(n int) TranslatorOption {
	return func(t *Translator) {
		if n > 0 {
			t.maxTokens = n
		}
	}
}

// WithLogger sets the logger used for cache and parse diagnostics.
func WithLogger(logger *zap.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTranslator creates a Translator backed by model.
func NewTranslator(model ChatModel, opts ...TranslatorOption) *Translator {
	t := &Translator{
		model:       model,
		temperature: defaultTranslateTemperature,
		maxTokens:   defaultTranslateMaxTokens,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Translate returns the cultural translation, literal translation and notes for req.
// A reply the model failed to format as JSON still yields a result (see ParseTranslationReply).
func (t *Translator) Translate(ctx context.Context, req TranslationRequest) (*TranslationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.WithDefaults()

	key := t.cacheKey(req)
	if cached, ok := t.lookup(key); ok {
		return cached, nil
	}

	if t.model == nil {
		return nil, &TranslationError{Message: "no model configured"}
	}

	prompt := BuildTranslationPrompt(req)
	reply, err := t.model.Complete(ctx, CompletionRequest{
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
		Temperature:  t.temperature,
		MaxTokens:    t.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, &TranslationError{Message: "translation failed", Cause: ErrEmptyReply}
	}

	result, fallback := ParseTranslationReply(reply)
	if fallback {
		t.logger.Warn("model reply was not valid JSON, using fallback",
			zap.String("source_lang", req.SourceLang),
			zap.String("target_lang", req.TargetLang),
			zap.Int("reply_length", len(reply)),
		)
		return &result, nil
	}

	t.store(key, result)
	return &result, nil
}

func (t *Translator) cacheKey(req TranslationRequest) string {
	hash := HashText(string(req.CulturalContext) + "\x00" + req.Text)
	return CacheKeyExtended(hash, req.SourceLang, req.TargetLang, t.cacheNamespace)
}

func (t *Translator) lookup(key string) (*TranslationResult, bool) {
	if t.cache == nil {
		return nil, false
	}
	raw, ok := t.cache.Get(key)
	if !ok {
		return nil, false
	}
	var result TranslationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		t.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		if d, ok := t.cache.(cacheDeleter); ok {
			if err := d.Delete(key); err != nil {
				t.logger.Warn("cache delete failed", zap.Error(&CacheError{Message: "deleting entry", Cause: err}))
			}
		}
		return nil, false
	}
	return &result, true
}

func (t *Translator) store(key string, result TranslationResult) {
	if t.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := t.cache.Set(key, string(data)); err != nil {
		t.logger.Warn("cache set failed", zap.Error(&CacheError{Message: "storing translation", Cause: err}))
	}
}
