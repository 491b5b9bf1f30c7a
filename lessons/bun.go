package lessons

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// BunRepository implements Repository on a SQL database through bun.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository wraps db. Call Migrate before first use.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Migrate creates the lessons table and inserts seed when the table is empty.
func (r *BunRepository) Migrate(ctx context.Context, seed ...Lesson) error {
	if _, err := r.db.NewCreateTable().Model((*Lesson)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create lessons table: %w", err)
	}
	if len(seed) == 0 {
		return nil
	}

	count, err := r.db.NewSelect().Model((*Lesson)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count lessons: %w", err)
	}
	if count > 0 {
		return nil
	}

	rows := make([]Lesson, len(seed))
	copy(rows, seed)
	if _, err := r.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("seed lessons: %w", err)
	}
	return nil
}

func (r *BunRepository) List(ctx context.Context, filter Filter) ([]Lesson, error) {
	var out []Lesson
	q := r.db.NewSelect().Model(&out).OrderExpr("?TableAlias.id ASC")
	if filter.Language != "" {
		q = q.Where("?TableAlias.language = ?", filter.Language)
	}
	if filter.Category != "" {
		q = q.Where("?TableAlias.category = ?", filter.Category)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("lesson repository error: %w", err)
	}
	if out == nil {
		out = []Lesson{}
	}
	return out, nil
}

func (r *BunRepository) Get(ctx context.Context, id int64) (Lesson, error) {
	var l Lesson
	err := r.db.NewSelect().Model(&l).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return Lesson{}, mapRepositoryError(err)
	}
	return l, nil
}

func (r *BunRepository) Create(ctx context.Context, draft Draft) (Lesson, error) {
	clean, err := prepareDraft(draft)
	if err != nil {
		return Lesson{}, err
	}

	l := clean.lesson(0)
	if _, err := r.db.NewInsert().Model(&l).Returning("*").Exec(ctx); err != nil {
		return Lesson{}, fmt.Errorf("lesson repository error: %w", err)
	}
	return l, nil
}

func (r *BunRepository) UpdateProgress(ctx context.Context, id int64, progress int) (Lesson, error) {
	res, err := r.db.NewUpdate().
		Model((*Lesson)(nil)).
		Set("progress = ?", ClampProgress(progress)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return Lesson{}, fmt.Errorf("lesson repository error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Lesson{}, ErrLessonNotFound
	}
	return r.Get(ctx, id)
}

func mapRepositoryError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrLessonNotFound
	}
	return fmt.Errorf("lesson repository error: %w", err)
}

var _ Repository = (*BunRepository)(nil)
