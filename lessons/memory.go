package lessons

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	byID   map[int64]Lesson
	nextID int64
}

// NewMemoryRepository constructs an in-memory repository holding seed.
// Contents are lost on restart.
func NewMemoryRepository(seed ...Lesson) Repository {
	m := &memoryRepository{
		byID:   make(map[int64]Lesson, len(seed)),
		nextID: 1,
	}
	for _, l := range seed {
		m.byID[l.ID] = l
		if l.ID >= m.nextID {
			m.nextID = l.ID + 1
		}
	}
	return m
}

func (m *memoryRepository) List(_ context.Context, filter Filter) ([]Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Lesson, 0, len(m.byID))
	for _, l := range m.byID {
		if filter.Matches(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepository) Get(_ context.Context, id int64) (Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.byID[id]
	if !ok {
		return Lesson{}, ErrLessonNotFound
	}
	return l, nil
}

func (m *memoryRepository) Create(_ context.Context, draft Draft) (Lesson, error) {
	clean, err := prepareDraft(draft)
	if err != nil {
		return Lesson{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	l := clean.lesson(m.nextID)
	m.byID[l.ID] = l
	m.nextID++
	return l, nil
}

func (m *memoryRepository) UpdateProgress(_ context.Context, id int64, progress int) (Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.byID[id]
	if !ok {
		return Lesson{}, ErrLessonNotFound
	}
	l.Progress = ClampProgress(progress)
	m.byID[id] = l
	return l, nil
}
