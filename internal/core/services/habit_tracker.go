package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

var ErrNilHabit = errors.New("habit cannot be nil")

// HabitTracker owns the ordered habit collection and keeps it in sync with
// its repository: every successful mutation is persisted before it returns,
// and a failed save leaves the in-memory collection as it was.
type HabitTracker struct {
	repo   domain.HabitRepository
	habits []*domain.Habit
	now    func() time.Time
	logger *zap.Logger
}

type TrackerOption func(*HabitTracker)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) TrackerOption {
	return func(t *HabitTracker) {
		t.now = now
	}
}

func WithLogger(logger *zap.Logger) TrackerOption {
	return func(t *HabitTracker) {
		t.logger = logger
	}
}

// NewHabitTracker builds a tracker and loads the persisted habits.
func NewHabitTracker(ctx context.Context, repo domain.HabitRepository, opts ...TrackerOption) (*HabitTracker, error) {
	t := &HabitTracker{
		repo:   repo,
		habits: []*domain.Habit{},
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.Load(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Today is the tracker's current calendar date.
func (t *HabitTracker) Today() time.Time {
	return domain.DateOf(t.now())
}

// Load replaces the in-memory collection with the persisted one. Missing or
// corrupt storage yields an empty collection; other read failures are
// returned.
func (t *HabitTracker) Load(ctx context.Context) error {
	habits, err := t.repo.LoadAll(ctx)
	switch {
	case errors.Is(err, domain.ErrStorageNotFound):
		t.logger.Info("no habit storage yet, starting empty")
		t.habits = []*domain.Habit{}
	case errors.Is(err, domain.ErrStorageCorrupt):
		t.logger.Warn("habit storage unreadable, starting empty", zap.Error(err))
		t.habits = []*domain.Habit{}
	case err != nil:
		return fmt.Errorf("failed to load habits: %w", err)
	default:
		t.habits = habits
		t.logger.Debug("habits loaded", zap.Int("count", len(habits)))
	}
	return nil
}

// Save writes the full collection to the repository.
func (t *HabitTracker) Save(ctx context.Context) error {
	return t.persist(ctx, t.habits)
}

func (t *HabitTracker) persist(ctx context.Context, habits []*domain.Habit) error {
	if err := t.repo.SaveAll(ctx, habits); err != nil {
		t.logger.Error("failed to save habits", zap.Error(err))
		return fmt.Errorf("failed to save habits: %w", err)
	}
	t.logger.Debug("habits saved", zap.Int("count", len(habits)))
	return nil
}

// commit persists next and only then makes it the current collection.
func (t *HabitTracker) commit(ctx context.Context, next []*domain.Habit) error {
	if err := t.persist(ctx, next); err != nil {
		return err
	}
	t.habits = next
	return nil
}

// Habits returns the collection in insertion order. The slice is a copy; the
// habits are shared.
func (t *HabitTracker) Habits() []*domain.Habit {
	return slices.Clone(t.habits)
}

func (t *HabitTracker) index(name string) int {
	return slices.IndexFunc(t.habits, func(h *domain.Habit) bool {
		return h.Name == name
	})
}

// Find returns the first habit called name.
func (t *HabitTracker) Find(name string) (*domain.Habit, bool) {
	i := t.index(name)
	if i < 0 {
		return nil, false
	}
	return t.habits[i], true
}

// Add appends habit and saves. Names are unique within a tracker.
func (t *HabitTracker) Add(ctx context.Context, habit *domain.Habit) error {
	if habit == nil {
		return ErrNilHabit
	}
	if err := habit.Validate(); err != nil {
		return err
	}
	if t.index(habit.Name) >= 0 {
		return fmt.Errorf("%w: %q", domain.ErrHabitAlreadyExists, habit.Name)
	}

	next := append(slices.Clone(t.habits), habit)
	if err := t.commit(ctx, next); err != nil {
		return err
	}

	t.logger.Info("habit added", zap.String("name", habit.Name), zap.Stringer("periodicity", habit.Periodicity))
	return nil
}

// Create builds a habit starting today and adds it.
func (t *HabitTracker) Create(ctx context.Context, name, periodicity string) (*domain.Habit, error) {
	p, err := domain.ParsePeriodicity(periodicity)
	if err != nil {
		return nil, err
	}

	habit, err := domain.NewHabit(name, p, t.Today())
	if err != nil {
		return nil, err
	}

	if err := t.Add(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// Delete removes every habit called name and saves, even when none matched.
// It reports whether anything was removed.
func (t *HabitTracker) Delete(ctx context.Context, name string) (bool, error) {
	next := slices.DeleteFunc(slices.Clone(t.habits), func(h *domain.Habit) bool {
		return h.Name == name
	})
	removed := len(next) < len(t.habits)

	if err := t.commit(ctx, next); err != nil {
		return false, err
	}

	if removed {
		t.logger.Info("habit deleted", zap.String("name", name))
	}
	return removed, nil
}

// CheckOff marks the first habit called name as done today and saves. It
// reports false, without saving, when no habit has that name.
func (t *HabitTracker) CheckOff(ctx context.Context, name string) (bool, error) {
	habit, ok := t.Find(name)
	if !ok {
		return false, nil
	}

	appended := habit.CheckOff(t.now())
	if err := t.persist(ctx, t.habits); err != nil {
		if appended {
			habit.Completions = habit.Completions[:len(habit.Completions)-1]
		}
		return false, err
	}

	t.logger.Info("habit checked off", zap.String("name", name), zap.Bool("new_completion", appended))
	return true, nil
}

// Replace swaps in a whole new collection, as the predefined-habit loader does.
func (t *HabitTracker) Replace(ctx context.Context, habits []*domain.Habit) error {
	seen := make(map[string]bool, len(habits))
	for _, h := range habits {
		if h == nil {
			return ErrNilHabit
		}
		if err := h.Validate(); err != nil {
			return err
		}
		if seen[h.Name] {
			return fmt.Errorf("%w: %q", domain.ErrHabitAlreadyExists, h.Name)
		}
		seen[h.Name] = true
	}

	return t.commit(ctx, slices.Clone(habits))
}
