package client

import (
	"context"
	"sync"

	"github.com/ZaguanLabs/culturo/lessons"
)

// LessonStore is the subset of Client used by LessonBook.
type LessonStore interface {
	Lessons(ctx context.Context, filter lessons.Filter) ([]lessons.Lesson, error)
	CreateLesson(ctx context.Context, draft lessons.Draft) (*lessons.Lesson, error)
	UpdateLessonProgress(ctx context.Context, id int64, progress int) (*lessons.Lesson, error)
}

// LessonBook caches the lesson list last fetched from the API.
type LessonBook struct {
	api LessonStore

	mu      sync.Mutex
	lessons []lessons.Lesson
	err     error
}

// NewLessonBook returns an empty book. Call Refresh to load it.
func NewLessonBook(api LessonStore) *LessonBook {
	return &LessonBook{api: api}
}

// Lessons returns a copy of the cached list.
func (b *LessonBook) Lessons() []lessons.Lesson {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]lessons.Lesson, len(b.lessons))
	copy(out, b.lessons)
	return out
}

// Err returns the error of the last operation, if any.
func (b *LessonBook) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Refresh replaces the cached list with the lessons matching filter.
// On failure the previous list is kept.
func (b *LessonBook) Refresh(ctx context.Context, filter lessons.Filter) error {
	items, err := b.api.Lessons(ctx, filter)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
	if err != nil {
		return err
	}
	b.lessons = items
	return nil
}

// Create adds a lesson and appends it to the cached list.
func (b *LessonBook) Create(ctx context.Context, draft lessons.Draft) (*lessons.Lesson, error) {
	lesson, err := b.api.CreateLesson(ctx, draft)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
	if err != nil {
		return nil, err
	}
	b.lessons = append(b.lessons, *lesson)
	return lesson, nil
}

// SetProgress stores progress for id and updates the cached copy with the
// server's clamped value.
func (b *LessonBook) SetProgress(ctx context.Context, id int64, progress int) error {
	lesson, err := b.api.UpdateLessonProgress(ctx, id, progress)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
	if err != nil {
		return err
	}
	for i := range b.lessons {
		if b.lessons[i].ID == id {
			b.lessons[i] = *lesson
			return nil
		}
	}
	return nil
}
