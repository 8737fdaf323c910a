package repository

import (
	"context"
	"sync"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

var _ domain.HabitRepository = (*InMemoryHabitRepository)(nil)

// InMemoryHabitRepository stores deep copies of the habits it is given, so
// callers cannot mutate the "persisted" state behind its back.
type InMemoryHabitRepository struct {
	store []*domain.Habit
	saved bool

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{}
}

func cloneAll(habits []*domain.Habit) []*domain.Habit {
	clones := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		clones = append(clones, h.Clone())
	}
	return clones
}

func (r *InMemoryHabitRepository) LoadAll(ctx context.Context) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.saved {
		return nil, domain.ErrStorageNotFound
	}
	return cloneAll(r.store), nil
}

func (r *InMemoryHabitRepository) SaveAll(ctx context.Context, habits []*domain.Habit) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store = cloneAll(habits)
	r.saved = true
	return nil
}

func (r *InMemoryHabitRepository) Close() error {
	return nil
}
