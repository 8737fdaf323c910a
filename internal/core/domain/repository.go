package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound      = errors.New("habit not found")
	ErrHabitAlreadyExists = errors.New("a habit with this name already exists")
	ErrStorageNotFound    = errors.New("habit storage not found")
	ErrStorageCorrupt     = errors.New("habit storage is corrupt")
)

type HabitRepository interface {
	// LoadAll returns every persisted habit in stored order.
	// It returns ErrStorageNotFound when nothing was ever saved and
	// ErrStorageCorrupt when the stored data cannot be decoded.
	LoadAll(ctx context.Context) ([]*Habit, error)

	// SaveAll replaces the whole persisted collection with habits.
	// A failed SaveAll must leave the previous collection intact.
	SaveAll(ctx context.Context, habits []*Habit) error

	// Close releases the underlying storage handle.
	Close() error
}
