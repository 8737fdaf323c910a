package services

import (
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

// The analytics helpers only read the habits they are given.

func AllHabits(habits []*domain.Habit) []*domain.Habit {
	return habits
}

func FilterByPeriodicity(habits []*domain.Habit, p domain.Periodicity) []*domain.Habit {
	filtered := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if h.Periodicity == p {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

// LongestStreak is the highest current streak across habits, 0 when there
// are none.
func LongestStreak(habits []*domain.Habit, asOf time.Time) int {
	longest := 0
	for _, h := range habits {
		if s := h.CurrentStreak(asOf); s > longest {
			longest = s
		}
	}
	return longest
}

// StreakPerHabit maps each habit name to its current streak. With duplicate
// names the last habit wins.
func StreakPerHabit(habits []*domain.Habit, asOf time.Time) map[string]int {
	streaks := make(map[string]int, len(habits))
	for _, h := range habits {
		streaks[h.Name] = h.CurrentStreak(asOf)
	}
	return streaks
}

func BuildSummary(input domain.StatsInput) domain.Summary {
	asOf := domain.DateOf(input.AsOf)

	summary := domain.Summary{
		AsOf:          domain.FormatDate(asOf),
		TotalHabits:   len(input.Habits),
		DailyHabits:   len(FilterByPeriodicity(input.Habits, domain.PeriodicityDaily)),
		WeeklyHabits:  len(FilterByPeriodicity(input.Habits, domain.PeriodicityWeekly)),
		LongestStreak: LongestStreak(input.Habits, asOf),
		HabitStats:    make([]domain.HabitStat, 0, len(input.Habits)),
	}

	for _, h := range input.Habits {
		summary.HabitStats = append(summary.HabitStats, domain.HabitStat{
			Name:             h.Name,
			Periodicity:      h.Periodicity,
			CreationDate:     domain.FormatDate(h.CreationDate),
			CurrentStreak:    h.CurrentStreak(asOf),
			LongestStreak:    h.LongestStreak(),
			TotalCompletions: h.TotalCompletions(),
			CompletedToday:   h.CompletedOn(asOf),
		})
	}

	return summary
}
