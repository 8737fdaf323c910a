package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
)

var today = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return domain.AddDays(today, -n)
}

func fixedClock() time.Time {
	return today
}

type MockRepo struct {
	stored        []domain.HabitRecord
	saved         bool
	loadError     error
	simulateError error
	saveCalls     int
}

func NewMockRepo() *MockRepo {
	return &MockRepo{}
}

func (m *MockRepo) LoadAll(ctx context.Context) ([]*domain.Habit, error) {
	if m.loadError != nil {
		return nil, m.loadError
	}
	if !m.saved {
		return nil, domain.ErrStorageNotFound
	}
	return domain.HabitsFromRecords(m.stored)
}

func (m *MockRepo) SaveAll(ctx context.Context, habits []*domain.Habit) error {
	m.saveCalls++
	if m.simulateError != nil {
		return m.simulateError
	}
	m.stored = domain.ToRecords(habits)
	m.saved = true
	return nil
}

func (m *MockRepo) Close() error {
	return nil
}

func newTestTracker(t *testing.T, repo domain.HabitRepository) *services.HabitTracker {
	t.Helper()
	tracker, err := services.NewHabitTracker(context.Background(), repo, services.WithClock(fixedClock))
	require.NoError(t, err)
	return tracker
}

func newJSONTracker(t *testing.T, path string) *services.HabitTracker {
	t.Helper()
	repo, err := repository.NewJSONHabitRepository(path)
	require.NoError(t, err)
	return newTestTracker(t, repo)
}

func mustHabit(t *testing.T, name string, p domain.Periodicity, completions ...time.Time) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(name, p, daysAgo(30))
	require.NoError(t, err)
	for _, c := range completions {
		h.CheckOff(c)
	}
	return h
}

func names(habits []*domain.Habit) []string {
	out := make([]string, 0, len(habits))
	for _, h := range habits {
		out = append(out, h.Name)
	}
	return out
}

func TestNewHabitTracker_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Missing storage yields an empty collection", func(t *testing.T) {
		tracker := newJSONTracker(t, filepath.Join(t.TempDir(), "nonexistent_file.json"))
		assert.Empty(t, tracker.Habits())
	})

	t.Run("Success: Corrupt storage yields an empty collection", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "habits.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"name": "A", "periodicity": `), 0o644))

		tracker := newJSONTracker(t, path)
		assert.Empty(t, tracker.Habits())
	})

	t.Run("Success: Corrupt file is discarded on next save", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "habits.json")
		require.NoError(t, os.WriteFile(path, []byte(`garbage`), 0o644))

		tracker := newJSONTracker(t, path)
		_, err := tracker.Create(ctx, "Walk", "daily")
		require.NoError(t, err)

		reloaded := newJSONTracker(t, path)
		assert.Equal(t, []string{"Walk"}, names(reloaded.Habits()))
	})

	t.Run("Fail: Other read errors propagate", func(t *testing.T) {
		repo := NewMockRepo()
		readErr := errors.New("permission denied")
		repo.loadError = readErr

		tracker, err := services.NewHabitTracker(ctx, repo)

		assert.ErrorIs(t, err, readErr)
		assert.Nil(t, tracker)
	})
}

func TestHabitTracker_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Appends and persists", func(t *testing.T) {
		repo := NewMockRepo()
		tracker := newTestTracker(t, repo)

		require.NoError(t, tracker.Add(ctx, mustHabit(t, "Test", domain.PeriodicityDaily)))

		assert.Equal(t, []string{"Test"}, names(tracker.Habits()))
		assert.Equal(t, 1, repo.saveCalls)
		require.Len(t, repo.stored, 1)
		assert.Equal(t, "Test", repo.stored[0].Name)
	})

	t.Run("Fail: Duplicate name is rejected without saving", func(t *testing.T) {
		repo := NewMockRepo()
		tracker := newTestTracker(t, repo)
		require.NoError(t, tracker.Add(ctx, mustHabit(t, "Test", domain.PeriodicityDaily)))

		err := tracker.Add(ctx, mustHabit(t, "Test", domain.PeriodicityWeekly))

		assert.ErrorIs(t, err, domain.ErrHabitAlreadyExists)
		assert.Len(t, tracker.Habits(), 1)
		assert.Equal(t, 1, repo.saveCalls)
	})

	t.Run("Fail: Invalid habit is rejected", func(t *testing.T) {
		tracker := newTestTracker(t, NewMockRepo())

		err := tracker.Add(ctx, &domain.Habit{Name: "Typo", Periodicity: "wekly"})
		assert.ErrorIs(t, err, domain.ErrInvalidPeriodicity)

		assert.ErrorIs(t, tracker.Add(ctx, nil), services.ErrNilHabit)
		assert.Empty(t, tracker.Habits())
	})

	t.Run("Fail: Habit that would not load back is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "habits.json")
		tracker := newJSONTracker(t, path)
		_, err := tracker.Create(ctx, "Keep", "daily")
		require.NoError(t, err)

		day := domain.DateOf(today)
		bad := []*domain.Habit{
			{Name: "Hours", Periodicity: domain.PeriodicityDaily, CreationDate: day,
				Completions: []time.Time{day.Add(9 * time.Hour), day.Add(12 * time.Hour)}},
			{Name: "Twice", Periodicity: domain.PeriodicityDaily, CreationDate: day,
				Completions: []time.Time{day, day}},
			{Name: "Undated", Periodicity: domain.PeriodicityDaily},
		}
		for _, h := range bad {
			assert.Error(t, tracker.Add(ctx, h), h.Name)
			assert.Error(t, tracker.Replace(ctx, []*domain.Habit{h}), h.Name)
		}

		_, err = tracker.Create(ctx, "New", "weekly")
		require.NoError(t, err)

		reloaded := newJSONTracker(t, path)
		assert.Equal(t, []string{"Keep", "New"}, names(reloaded.Habits()))
	})

	t.Run("Fail: Save error leaves memory unchanged", func(t *testing.T) {
		repo := NewMockRepo()
		tracker := newTestTracker(t, repo)
		diskErr := errors.New("disk full")
		repo.simulateError = diskErr

		err := tracker.Add(ctx, mustHabit(t, "Test", domain.PeriodicityDaily))

		assert.ErrorIs(t, err, diskErr)
		assert.Empty(t, tracker.Habits())
	})
}

func TestHabitTracker_Create(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(t, NewMockRepo())

	h, err := tracker.Create(ctx, " Stretch ", "Weekly")
	require.NoError(t, err)
	assert.Equal(t, "Stretch", h.Name)
	assert.Equal(t, domain.PeriodicityWeekly, h.Periodicity)
	assert.Equal(t, "2024-03-15", domain.FormatDate(h.CreationDate))

	_, err = tracker.Create(ctx, "Nap", "hourly")
	assert.ErrorIs(t, err, domain.ErrInvalidPeriodicity)

	_, err = tracker.Create(ctx, "", "daily")
	assert.ErrorIs(t, err, domain.ErrHabitNameEmpty)

	assert.Equal(t, []string{"Stretch"}, names(tracker.Habits()))
}

func TestHabitTracker_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Scenario: Deleting A leaves only B on disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "habits.json")
		tracker := newJSONTracker(t, path)
		require.NoError(t, tracker.Add(ctx, mustHabit(t, "A", domain.PeriodicityDaily)))
		require.NoError(t, tracker.Add(ctx, mustHabit(t, "B", domain.PeriodicityWeekly)))

		removed, err := tracker.Delete(ctx, "A")

		require.NoError(t, err)
		assert.True(t, removed)
		assert.Equal(t, []string{"B"}, names(tracker.Habits()))

		reloaded := newJSONTracker(t, path)
		assert.Equal(t, []string{"B"}, names(reloaded.Habits()))
	})

	t.Run("Success: Removes every habit with the name", func(t *testing.T) {
		repo := NewMockRepo()
		repo.saved = true
		repo.stored = []domain.HabitRecord{
			{Name: "A", Periodicity: "daily", CreationDate: "2024-01-01"},
			{Name: "B", Periodicity: "daily", CreationDate: "2024-01-01"},
			{Name: "A", Periodicity: "weekly", CreationDate: "2024-01-01"},
		}
		tracker := newTestTracker(t, repo)

		removed, err := tracker.Delete(ctx, "A")

		require.NoError(t, err)
		assert.True(t, removed)
		assert.Equal(t, []string{"B"}, names(tracker.Habits()))
	})

	t.Run("Success: Unknown name still saves", func(t *testing.T) {
		repo := NewMockRepo()
		tracker := newTestTracker(t, repo)

		removed, err := tracker.Delete(ctx, "ghost")

		require.NoError(t, err)
		assert.False(t, removed)
		assert.Equal(t, 1, repo.saveCalls)
	})

	t.Run("Fail: Save error keeps the habit", func(t *testing.T) {
		repo := NewMockRepo()
		tracker := newTestTracker(t, repo)
		require.NoError(t, tracker.Add(ctx, mustHabit(t, "A", domain.PeriodicityDaily)))
		repo.simulateError = errors.New("read-only filesystem")

		removed, err := tracker.Delete(ctx, "A")

		assert.Error(t, err)
		assert.False(t, removed)
		assert.Equal(t, []string{"A"}, names(tracker.Habits()))
	})
}

func TestHabitTracker_CheckOff(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Checks off today and persists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "habits.json")
		tracker := newJSONTracker(t, path)
		require.NoError(t, tracker.Add(ctx, mustHabit(t, "Test", domain.PeriodicityDaily, daysAgo(1))))

		ok, err := tracker.CheckOff(ctx, "Test")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = tracker.CheckOff(ctx, "Test")
		require.NoError(t, err)
		assert.True(t, ok)

		h, found := tracker.Find("Test")
		require.True(t, found)
		assert.Len(t, h.Completions, 2, "checking off twice on one day must not duplicate")

		reloaded := newJSONTracker(t, path)
		h, found = reloaded.Find("Test")
		require.True(t, found)
		assert.Equal(t, 2, h.CurrentStreak(tracker.Today()))
	})

	t.Run("Scenario: Missing habit fails and leaves the file unchanged", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "habits.json")
		tracker := newJSONTracker(t, path)
		require.NoError(t, tracker.Add(ctx, mustHabit(t, "A", domain.PeriodicityDaily)))

		before, err := os.ReadFile(path)
		require.NoError(t, err)
		beforeInfo, err := os.Stat(path)
		require.NoError(t, err)

		ok, err := tracker.CheckOff(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		afterInfo, err := os.Stat(path)
		require.NoError(t, err)

		assert.Equal(t, before, after)
		assert.Equal(t, beforeInfo.ModTime(), afterInfo.ModTime())
	})

	t.Run("Success: Only the first match is checked off", func(t *testing.T) {
		repo := NewMockRepo()
		repo.saved = true
		repo.stored = []domain.HabitRecord{
			{Name: "A", Periodicity: "daily", CreationDate: "2024-01-01"},
			{Name: "A", Periodicity: "weekly", CreationDate: "2024-01-01"},
		}
		tracker := newTestTracker(t, repo)

		ok, err := tracker.CheckOff(ctx, "A")
		require.NoError(t, err)
		assert.True(t, ok)

		habits := tracker.Habits()
		assert.Len(t, habits[0].Completions, 1)
		assert.Empty(t, habits[1].Completions)
	})

	t.Run("Fail: Save error rolls the completion back", func(t *testing.T) {
		repo := NewMockRepo()
		tracker := newTestTracker(t, repo)
		require.NoError(t, tracker.Add(ctx, mustHabit(t, "A", domain.PeriodicityDaily)))
		diskErr := errors.New("disk full")
		repo.simulateError = diskErr

		ok, err := tracker.CheckOff(ctx, "A")

		assert.ErrorIs(t, err, diskErr)
		assert.False(t, ok)
		h, _ := tracker.Find("A")
		assert.Empty(t, h.Completions)
	})
}

func TestHabitTracker_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "habits.json")

	tracker := newJSONTracker(t, path)
	require.NoError(t, tracker.Replace(ctx, services.PredefinedHabits(today)))
	require.NoError(t, tracker.Add(ctx, mustHabit(t, "Journal", domain.PeriodicityDaily, today, daysAgo(1))))

	reloaded := newJSONTracker(t, path)

	require.Equal(t, len(tracker.Habits()), len(reloaded.Habits()))
	for i, want := range tracker.Habits() {
		assert.Equal(t, want.ToRecord(), reloaded.Habits()[i].ToRecord())
	}
}

func TestHabitTracker_Replace(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepo()
	tracker := newTestTracker(t, repo)

	require.NoError(t, tracker.Replace(ctx, []*domain.Habit{
		mustHabit(t, "A", domain.PeriodicityDaily),
		mustHabit(t, "B", domain.PeriodicityWeekly),
	}))
	assert.Equal(t, []string{"A", "B"}, names(tracker.Habits()))

	err := tracker.Replace(ctx, []*domain.Habit{
		mustHabit(t, "C", domain.PeriodicityDaily),
		mustHabit(t, "C", domain.PeriodicityDaily),
	})
	assert.ErrorIs(t, err, domain.ErrHabitAlreadyExists)
	assert.Equal(t, []string{"A", "B"}, names(tracker.Habits()))
	assert.Equal(t, 1, repo.saveCalls)
}

func TestHabitTracker_StreakScenarios(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		habit *domain.Habit
		want  int
	}{
		{"Daily A with three consecutive days", mustHabit(t, "A", domain.PeriodicityDaily, today, daysAgo(1), daysAgo(2)), 3},
		{"Weekly B broken after two weeks", mustHabit(t, "B", domain.PeriodicityWeekly, today, daysAgo(7), daysAgo(21)), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker(t, NewMockRepo())
			require.NoError(t, tracker.Add(ctx, tt.habit))

			h, ok := tracker.Find(tt.habit.Name)
			require.True(t, ok)
			assert.Equal(t, tt.want, h.CurrentStreak(tracker.Today()))
		})
	}
}
