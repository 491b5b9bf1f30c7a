package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/culturo/internal/observability"
	"github.com/ZaguanLabs/culturo/lessons"
)

const (
	msgLessonsFetchFailed = "Failed to fetch lessons"
	msgLessonCreateFailed = "Failed to create lesson"
	msgLessonUpdateFailed = "Failed to update lesson progress"
	msgLessonNotFound     = "Lesson not found"
	msgLessonInvalidID    = "Invalid lesson id"
	maxLessonRequestBody  = 64 * 1024
)

// LessonHandlers serves /lessons.
type LessonHandlers struct {
	repo lessons.Repository
}

// NewLessonHandlers constructs the lesson handler set.
func NewLessonHandlers(repo lessons.Repository) *LessonHandlers {
	return &LessonHandlers{repo: repo}
}

// Routes registers the lesson endpoints.
func (h *LessonHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{lessonID}", h.get)
	r.Patch("/{lessonID}/progress", h.updateProgress)
}

func (h *LessonHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.repo == nil {
		writeFailure(w, http.StatusInternalServerError, msgLessonsFetchFailed, "", nil)
		return
	}

	query := r.URL.Query()
	filter := lessons.Filter{
		Language: query.Get("language"),
		Category: query.Get("category"),
	}

	items, err := h.repo.List(ctx, filter)
	if err != nil {
		observability.FromContext(ctx).Error("listing lessons failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, msgLessonsFetchFailed, "", nil)
		return
	}
	if items == nil {
		items = []lessons.Lesson{}
	}
	writeSuccess(w, http.StatusOK, items)
}

func (h *LessonHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := lessonID(r)
	if !ok {
		writeFailure(w, http.StatusBadRequest, msgLessonInvalidID, "", nil)
		return
	}
	if h.repo == nil {
		writeFailure(w, http.StatusInternalServerError, msgLessonsFetchFailed, "", nil)
		return
	}

	lesson, err := h.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, lessons.ErrLessonNotFound) {
			writeFailure(w, http.StatusNotFound, msgLessonNotFound, "", nil)
			return
		}
		observability.FromContext(ctx).Error("loading lesson failed", zap.Int64("lesson_id", id), zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, msgLessonsFetchFailed, "", nil)
		return
	}
	writeSuccess(w, http.StatusOK, lesson)
}

func (h *LessonHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var draft lessons.Draft
	if err := decodeJSONBody(r, maxLessonRequestBody, &draft); err != nil {
		writeFailure(w, bodyErrorStatus(err), msgLessonCreateFailed, "", nil)
		return
	}
	if h.repo == nil {
		writeFailure(w, http.StatusInternalServerError, msgLessonCreateFailed, "", nil)
		return
	}

	lesson, err := h.repo.Create(ctx, draft)
	if err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			writeFailure(w, http.StatusBadRequest, msgLessonCreateFailed, "", map[string]any{"details": fieldErrs})
			return
		}
		observability.FromContext(ctx).Error("creating lesson failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, msgLessonCreateFailed, "", nil)
		return
	}
	writeSuccess(w, http.StatusCreated, lesson)
}

type progressRequest struct {
	Progress *int `json:"progress"`
}

func (h *LessonHandlers) updateProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := lessonID(r)
	if !ok {
		writeFailure(w, http.StatusBadRequest, msgLessonInvalidID, "", nil)
		return
	}

	var body progressRequest
	if err := decodeJSONBody(r, maxLessonRequestBody, &body); err != nil || body.Progress == nil {
		writeFailure(w, http.StatusBadRequest, msgLessonUpdateFailed, "", nil)
		return
	}
	if h.repo == nil {
		writeFailure(w, http.StatusInternalServerError, msgLessonUpdateFailed, "", nil)
		return
	}

	lesson, err := h.repo.UpdateProgress(ctx, id, *body.Progress)
	if err != nil {
		if errors.Is(err, lessons.ErrLessonNotFound) {
			writeFailure(w, http.StatusNotFound, msgLessonNotFound, "", nil)
			return
		}
		observability.FromContext(ctx).Error("updating lesson progress failed", zap.Int64("lesson_id", id), zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, msgLessonUpdateFailed, "", nil)
		return
	}
	writeSuccess(w, http.StatusOK, lesson)
}

func lessonID(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "lessonID"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
