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
	msgChatFailed     = "Failed to process chat message"
	msgChatApology    = "Desculpe, estou com problemas para responder. Tente novamente em instantes."
	msgChatMissingMsg = "Message is required"
)

// ChatService answers learner messages.
type ChatService interface {
	Reply(ctx context.Context, req culturo.ChatRequest) (*culturo.ChatReply, error)
}

// ChatHandlers serves /chat.
type ChatHandlers struct {
	tutor        ChatService
	maxBodyBytes int64
}

// NewChatHandlers constructs the chat handler set.
func NewChatHandlers(tutor ChatService) *ChatHandlers {
	return &ChatHandlers{tutor: tutor, maxBodyBytes: defaultMaxBodyBytes}
}

// Routes registers the chat endpoint.
func (h *ChatHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.chat)
}

type chatReplyPayload struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (h *ChatHandlers) chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	var req culturo.ChatRequest
	if err := decodeJSONBody(r, h.maxBodyBytes, &req); err != nil {
		logger.Warn("undecodable chat body", zap.Error(err))
		if errors.Is(err, errBodyTooLarge) {
			writeFailure(w, http.StatusRequestEntityTooLarge, msgChatFailed, msgChatApology, nil)
			return
		}
		writeFailure(w, http.StatusInternalServerError, msgChatFailed, msgChatApology, nil)
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, msgChatMissingMsg, msgChatApology, nil)
		return
	}
	if h.tutor == nil {
		logger.Error("chat requested without a tutor")
		writeFailure(w, http.StatusInternalServerError, msgChatFailed, msgChatApology, nil)
		return
	}

	reply, err := h.tutor.Reply(ctx, req)
	if err != nil {
		var verr *culturo.ValidationError
		if errors.As(err, &verr) {
			writeFailure(w, http.StatusBadRequest, msgChatMissingMsg, msgChatApology, nil)
			return
		}
		logger.Error("chat reply failed",
			zap.String("language", req.Language),
			zap.Int("upstream_status", culturo.StatusCode(err)),
			zap.Error(err),
		)
		writeFailure(w, http.StatusInternalServerError, msgChatFailed, msgChatApology, nil)
		return
	}

	writeSuccess(w, http.StatusOK, chatReplyPayload{
		Message:   reply.Message,
		Timestamp: culturo.FormatTimestamp(reply.Timestamp),
	})
}
