package httpapi

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/culturo/internal/observability"
	"github.com/ZaguanLabs/culturo/pronunciation"
)

const (
	msgPronunciationFailed  = "Failed to analyze pronunciation"
	msgPronunciationApology = "Não foi possível analisar sua pronúncia. Tente novamente."
	maxAudioBodyBytes       = 10 << 20
)

// PronunciationHandlers serves /pronunciation.
type PronunciationHandlers struct {
	scorer       pronunciation.Scorer
	maxBodyBytes int64
}

// NewPronunciationHandlers constructs the pronunciation handler set.
func NewPronunciationHandlers(scorer pronunciation.Scorer) *PronunciationHandlers {
	return &PronunciationHandlers{scorer: scorer, maxBodyBytes: maxAudioBodyBytes}
}

// Routes registers the pronunciation endpoint.
func (h *PronunciationHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.analyze)
}

type pronunciationRequest struct {
	AudioData    string `json:"audioData"`
	TargetPhrase string `json:"targetPhrase"`
	Language     string `json:"language"`
}

func (h *PronunciationHandlers) analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	var body pronunciationRequest
	if err := decodeJSONBody(r, h.maxBodyBytes, &body); err != nil {
		writeFailure(w, bodyErrorStatus(err), msgPronunciationFailed, msgPronunciationApology, nil)
		return
	}
	if strings.TrimSpace(body.TargetPhrase) == "" {
		writeFailure(w, http.StatusBadRequest, msgPronunciationFailed, msgPronunciationApology, nil)
		return
	}
	if h.scorer == nil {
		writeFailure(w, http.StatusInternalServerError, msgPronunciationFailed, msgPronunciationApology, nil)
		return
	}

	result, err := h.scorer.Score(ctx, pronunciation.Request{
		TargetPhrase: body.TargetPhrase,
		Language:     body.Language,
		Audio:        decodeAudio(body.AudioData),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pronunciation.ErrMissingPhrase) {
			status = http.StatusBadRequest
		}
		logger.Error("pronunciation scoring failed", zap.Error(err))
		writeFailure(w, status, msgPronunciationFailed, msgPronunciationApology, nil)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// decodeAudio accepts plain base64 or a data URL. Undecodable input is
// passed through as raw bytes.
func decodeAudio(data string) []byte {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil
	}
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ","); i >= 0 {
			data = data[i+1:]
		}
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return []byte(data)
	}
	return decoded
}
