package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/culturo"
	"github.com/ZaguanLabs/culturo/internal/observability"
)

const (
	msgMissingTranslateFields = "Parâmetros obrigatórios: text, source_lang, target_lang"
	msgAPIKeyMissing          = "DeepSeek API key não configurada"
	msgAPIKeyInvalid          = "API key do DeepSeek inválida"
	msgUpstreamRateLimited    = "Limite de requisições da API DeepSeek excedido"
	msgUpstreamFailed         = "Erro na API DeepSeek"
	msgUpstreamEmpty          = "Resposta inválida da API DeepSeek"
	msgTranslateInternal      = "Erro interno ao processar tradução"
	msgInvalidJSON            = "JSON inválido no corpo da requisição"
)

// TranslationService produces cultural translations.
type TranslationService interface {
	Translate(ctx context.Context, req culturo.TranslationRequest) (*culturo.TranslationResult, error)
}

// TranslateHandlers serves /translate.
type TranslateHandlers struct {
	svc          TranslationService
	configured   bool
	maxBodyBytes int64
}

// TranslateOption customises TranslateHandlers.
type TranslateOption func(*TranslateHandlers)

// WithConfigured reports whether an upstream API key is available.
func WithConfigured(ok bool) TranslateOption {
	return func(h *TranslateHandlers) {
		h.configured = ok
	}
}

// WithTranslateBodyLimit caps the request body size.
func WithTranslateBodyLimit(n int64) TranslateOption {
	return func(h *TranslateHandlers) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// NewTranslateHandlers constructs the translate handler set. A nil svc is
// treated as an unconfigured upstream.
func NewTranslateHandlers(svc TranslationService, opts ...TranslateOption) *TranslateHandlers {
	h := &TranslateHandlers{
		svc:          svc,
		configured:   svc != nil,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers the translate endpoints.
func (h *TranslateHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.translate)
	r.Get("/", h.metadata)
}

type translateResponse struct {
	Success            bool   `json:"success"`
	TranslatedText     string `json:"translated_text"`
	LiteralTranslation string `json:"literal_translation"`
	CulturalNotes      string `json:"cultural_notes"`
	SourceLang         string `json:"source_lang"`
	TargetLang         string `json:"target_lang"`
	CulturalContext    string `json:"cultural_context"`
}

type contextPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type languagePayload struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
}

type metadataResponse struct {
	Message            string            `json:"message"`
	Status             string            `json:"status"`
	Configured         bool              `json:"configured"`
	SupportedLanguages []string          `json:"supported_languages"`
	Languages          []languagePayload `json:"languages"`
	CulturalContexts   []contextPayload  `json:"cultural_contexts"`
}

func (h *TranslateHandlers) translate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	var req culturo.TranslationRequest
	if err := decodeJSONBody(r, h.maxBodyBytes, &req); err != nil {
		writeError(w, bodyErrorStatus(err), msgInvalidJSON, nil)
		return
	}

	if err := req.Validate(); err != nil {
		var verr *culturo.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, msgMissingTranslateFields, map[string]any{"details": verr.Fields})
			return
		}
		writeError(w, http.StatusBadRequest, msgMissingTranslateFields, nil)
		return
	}

	if !h.configured || h.svc == nil {
		logger.Error("translation requested without upstream credentials")
		writeError(w, http.StatusInternalServerError, msgAPIKeyMissing, nil)
		return
	}

	req = req.WithDefaults()
	result, err := h.svc.Translate(ctx, req)
	if err != nil {
		logger.Error("translation failed",
			zap.String("source_lang", req.SourceLang),
			zap.String("target_lang", req.TargetLang),
			zap.Int("upstream_status", culturo.StatusCode(err)),
			zap.Error(err),
		)
		status, body := translateFailure(err)
		writeJSONResponse(w, status, body)
		return
	}

	writeJSONResponse(w, http.StatusOK, translateResponse{
		Success:            true,
		TranslatedText:     result.CulturalTranslation,
		LiteralTranslation: result.LiteralTranslation,
		CulturalNotes:      result.CulturalNotes,
		SourceLang:         req.SourceLang,
		TargetLang:         req.TargetLang,
		CulturalContext:    string(req.CulturalContext),
	})
}

// translateFailure maps a service error onto the status and body clients expect.
func translateFailure(err error) (int, map[string]any) {
	var verr *culturo.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, map[string]any{"error": msgMissingTranslateFields, "details": verr.Fields}
	}
	if errors.Is(err, culturo.ErrEmptyReply) {
		return http.StatusInternalServerError, map[string]any{"error": msgUpstreamEmpty}
	}

	var perr *culturo.ProviderError
	if errors.As(err, &perr) && perr.StatusCode != 0 {
		switch perr.StatusCode {
		case http.StatusUnauthorized:
			return http.StatusUnauthorized, map[string]any{"error": msgAPIKeyInvalid}
		case http.StatusTooManyRequests:
			return http.StatusTooManyRequests, map[string]any{"error": msgUpstreamRateLimited}
		default:
			return http.StatusInternalServerError, map[string]any{"error": msgUpstreamFailed}
		}
	}

	return http.StatusInternalServerError, map[string]any{
		"error":   msgTranslateInternal,
		"details": err.Error(),
	}
}

func (h *TranslateHandlers) metadata(w http.ResponseWriter, r *http.Request) {
	contexts := culturo.Contexts()
	payload := make([]contextPayload, 0, len(contexts))
	for _, c := range contexts {
		payload = append(payload, contextPayload{
			ID:          string(c.ID),
			Name:        c.Name,
			Description: c.Description,
		})
	}

	languages := make([]string, len(culturo.SupportedLanguages))
	copy(languages, culturo.SupportedLanguages)
	details := make([]languagePayload, 0, len(languages))
	for _, code := range languages {
		details = append(details, languagePayload{
			Code:      code,
			Name:      culturo.GetLanguageName(code),
			Direction: culturo.GetDirection(code),
		})
	}

	writeJSONResponse(w, http.StatusOK, metadataResponse{
		Message:            "API de tradução cultural com DeepSeek",
		Status:             "operational",
		Configured:         h.configured && h.svc != nil,
		SupportedLanguages: languages,
		Languages:          details,
		CulturalContexts:   payload,
	})
}
