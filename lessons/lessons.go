// Package lessons stores the lesson catalog and learner progress.
package lessons

import (
	"context"
	"errors"
	"html"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/microcosm-cc/bluemonday"
	"github.com/uptrace/bun"
)

// ErrLessonNotFound is returned when no lesson has the requested id.
var ErrLessonNotFound = errors.New("lesson not found")

// Difficulty labels used by the seed catalog.
const (
	DifficultyEasy   = "Fácil"
	DifficultyMedium = "Médio"
	DifficultyHard   = "Difícil"
)

// Lesson is one entry of the catalog.
type Lesson struct {
	bun.BaseModel `bun:"table:lessons,alias:l"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	Title       string `bun:"title,notnull" json:"title"`
	Description string `bun:"description" json:"description"`
	Duration    string `bun:"duration" json:"duration"`
	Difficulty  string `bun:"difficulty" json:"difficulty"`
	Progress    int    `bun:"progress,notnull,default:0" json:"progress"`
	Category    string `bun:"category,notnull" json:"category"`
	Language    string `bun:"language,notnull" json:"language"`
}

// Filter narrows List results. Empty fields match everything; set fields
// must match exactly (case-sensitive).
type Filter struct {
	Language string
	Category string
}

// Matches reports whether l passes the filter.
func (f Filter) Matches(l Lesson) bool {
	if f.Language != "" && l.Language != f.Language {
		return false
	}
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	return true
}

// Draft is the client-supplied content of a new lesson.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Difficulty  string `json:"difficulty"`
	Category    string `json:"category"`
	Language    string `json:"language"`
}

// Validate checks required fields and length limits.
func (d Draft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&d.Description, validation.RuneLength(0, 2000)),
		validation.Field(&d.Duration, validation.RuneLength(0, 50)),
		validation.Field(&d.Difficulty, validation.RuneLength(0, 50)),
		validation.Field(&d.Category, validation.Required, validation.RuneLength(1, 64)),
		validation.Field(&d.Language, validation.Required, validation.RuneLength(2, 35)),
	)
}

var textPolicy = bluemonday.StrictPolicy()

// Sanitize strips markup and surrounding whitespace from every field.
func (d Draft) Sanitize() Draft {
	return Draft{
		Title:       plainText(d.Title),
		Description: plainText(d.Description),
		Duration:    plainText(d.Duration),
		Difficulty:  plainText(d.Difficulty),
		Category:    plainText(d.Category),
		Language:    plainText(d.Language),
	}
}

// maxSanitizePasses bounds how many layers of entity escaping are peeled.
const maxSanitizePasses = 4

// plainText strips markup until unescaping no longer produces new markup.
// Input that is still changing after maxSanitizePasses is returned escaped.
func plainText(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(textPolicy.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// lesson builds a Lesson with zero progress from a draft.
func (d Draft) lesson(id int64) Lesson {
	return Lesson{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Duration:    d.Duration,
		Difficulty:  d.Difficulty,
		Category:    d.Category,
		Language:    d.Language,
	}
}

// Repository persists lessons.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Lesson, error)
	Get(ctx context.Context, id int64) (Lesson, error)
	// Create sanitises and validates the draft, assigns the next id and
	// zero progress.
	Create(ctx context.Context, draft Draft) (Lesson, error)
	// UpdateProgress stores progress clamped to [0, 100].
	UpdateProgress(ctx context.Context, id int64, progress int) (Lesson, error)
}

// ClampProgress limits p to the [0, 100] range.
func ClampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// DefaultLessons returns the seed catalog.
func DefaultLessons() []Lesson {
	return []Lesson{
		{
			ID:          1,
			Title:       "Cumprimentos Básicos",
			Description: "Aprenda a se apresentar e saudar pessoas",
			Duration:    "15 min",
			Difficulty:  DifficultyEasy,
			Progress:    100,
			Category:    "basics",
			Language:    "en",
		},
		{
			ID:          2,
			Title:       "No Restaurante",
			Description: "Como fazer pedidos e pedir a conta",
			Duration:    "20 min",
			Difficulty:  DifficultyMedium,
			Progress:    75,
			Category:    "daily",
			Language:    "en",
		},
		{
			ID:          3,
			Title:       "Direções e Transporte",
			Description: "Navegue pela cidade com confiança",
			Duration:    "25 min",
			Difficulty:  DifficultyMedium,
			Progress:    30,
			Category:    "travel",
			Language:    "en",
		},
		{
			ID:          4,
			Title:       "Conversas Informais",
			Description: "Fale sobre hobbies e interesses",
			Duration:    "30 min",
			Difficulty:  DifficultyHard,
			Progress:    0,
			Category:    "social",
			Language:    "en",
		},
	}
}

func prepareDraft(draft Draft) (Draft, error) {
	clean := draft.Sanitize()
	if err := clean.Validate(); err != nil {
		return Draft{}, err
	}
	return clean, nil
}
